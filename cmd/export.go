package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/export"
)

var (
	s3Endpoint  string
	s3PathStyle bool
)

var exportCmd = &cobra.Command{
	Use:   "export <dest>",
	Short: "Write a JSON snapshot of the collection",
	Long:  "Write every user to dest: a file path, - for stdout, or s3://bucket/key.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		gw, cfg, err := openGateway(ctx, cmd)
		if err != nil {
			return err
		}
		defer gw.Close()

		opts := export.S3Options{
			Region:    cfg.Export.S3.Region,
			Endpoint:  cfg.Export.S3.Endpoint,
			PathStyle: cfg.Export.S3.PathStyle,
		}
		if cmd.Flags().Changed("s3-endpoint") {
			opts.Endpoint = s3Endpoint
		}
		if cmd.Flags().Changed("s3-path-style") {
			opts.PathStyle = s3PathStyle
		}
		sink, err := export.ParseDestination(ctx, args[0], opts)
		if err != nil {
			return err
		}

		e := &export.Exporter{Gateway: gw, Collection: cfg.Collection}
		snap, err := e.Export(ctx, sink)
		if err != nil {
			return err
		}
		if args[0] != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d users to %s\n", snap.Count, sink)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&s3Endpoint,
		"s3-endpoint", "", "Custom S3 endpoint, e.g. a MinIO URL")

	exportCmd.Flags().BoolVar(&s3PathStyle,
		"s3-path-style", false, "Use path-style S3 addressing")

	rootCmd.AddCommand(exportCmd)
}
