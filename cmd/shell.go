package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/directory"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse and edit the directory interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		gw, _, err := openGateway(ctx, cmd)
		if err != nil {
			return err
		}
		d := directory.New(gw, directory.WithLogger(logger.Default().With("directory")))
		defer d.Close()
		// A failed mount is shown as a banner; "reload" retries.
		_ = d.Mount(ctx)
		return shell.New(d, os.Stdin, os.Stdout).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
