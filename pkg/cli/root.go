// Package cli implements the normalmap command-line interface.
//
// Every filter of pkg/stdimg is reachable as a subcommand working on image
// files, and the interactive command keeps a document open between
// commands. Settings are layered: built-in defaults, normalmap.toml (or
// --config), .env files and NORMALMAP_* variables, then flags.
//
// All commands support --verbose (-v) for debug-level logging. Loggers and
// the merged configuration are passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/normalmap/pkg/config"
)

var (
	version = "dev" // semantic version, set with SetVersion or ldflags
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version and used
// by the update command.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext returns the configuration attached to ctx, or the
// defaults.
func configFromContext(ctx context.Context) config.Config {
	if c, ok := ctx.Value(configKey).(config.Config); ok {
		return c
	}
	return config.Default()
}

// NewRootCommand builds the normalmap command tree.
func NewRootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
		envFiles   []string
		workers    int
	)

	root := &cobra.Command{
		Use:   "normalmap",
		Short: "Normal map tools for selections and textures",
		Long: `normalmap estimates tangent-space normal maps from the shape of a selection
mask and renormalizes existing normal-map textures to a fixed vector length.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envFiles...); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Runtime.Workers = workers
			}

			level := parseLevel(cfg.Runtime.LogLevel)
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			logger.Debug("configuration loaded", "config", configPath, "workers", cfg.Runtime.Workers)

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("normalmap %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&configPath, "config", "c", "", "TOML config file (default ./"+config.DefaultFile+" if present)")
	pf.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	pf.IntVarP(&workers, "workers", "j", 0, "worker goroutines, 0 uses GOMAXPROCS")

	root.AddCommand(newSelectionCmd())
	root.AddCommand(newRenormalizeCmd())
	root.AddCommand(newCommandsCmd())
	root.AddCommand(newInteractiveCmd())
	root.AddCommand(newUpdateCmd())

	return root
}

// Execute runs the CLI with ctx, which is typically cancelled on interrupt.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
