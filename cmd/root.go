package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/backend"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/config"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/directory"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
)

var (
	configPath string
	driver     string
	collection string
	verbose    bool
	noColor    bool
)

// rootCmd is the base command for the CLI.  It delegates to
// subcommands defined in serve.go, shell.go, users.go and export.go.
// See init functions in those files for flag definitions.
var rootCmd = &cobra.Command{
	Use:           "userdir",
	Short:         "User directory backed by a pluggable document store",
	Long:          "Create, list, search, edit and delete user records stored in memory, SQLite, Redis, Postgres, MongoDB, Firestore or a remote userdir server.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Default().SetVerbose(verbose)
		logger.Default().SetColor(!noColor)
	},
}

// Execute runs the root command.  It should be invoked from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the persistent flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = driver
	}
	if flags.Changed("collection") {
		cfg.Collection = collection
	}
	if !flags.Changed("verbose") {
		logger.Default().SetVerbose(cfg.Log.Verbose)
	}
	if !flags.Changed("no-color") {
		logger.Default().SetColor(cfg.Log.Color)
	}
	return cfg, nil
}

// openGateway loads the config and connects to its driver.
func openGateway(ctx context.Context, cmd *cobra.Command) (backend.Gateway, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	gw, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Default().Debug("Using %s driver, collection %q", cfg.Driver, cfg.Collection)
	return gw, cfg, nil
}

// openDirectory builds a directory over the configured gateway and mounts
// it.  The caller closes the directory, which closes the gateway.
func openDirectory(ctx context.Context, cmd *cobra.Command) (*directory.Directory, error) {
	gw, _, err := openGateway(ctx, cmd)
	if err != nil {
		return nil, err
	}
	d := directory.New(gw, directory.WithLogger(logger.Default().With("directory")))
	if err := d.Mount(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath,
		"config", "c", "", "Path to config file (default ./userdir.yaml)")

	rootCmd.PersistentFlags().StringVarP(&driver,
		"driver", "d", config.DriverSQLite, fmt.Sprintf("Gateway driver %v", config.Drivers))

	rootCmd.PersistentFlags().StringVar(&collection,
		"collection", "users", "Collection holding the user documents")

	rootCmd.PersistentFlags().BoolVarP(&verbose,
		"verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVar(&noColor,
		"no-color", false, "Disable coloured log output")
}
