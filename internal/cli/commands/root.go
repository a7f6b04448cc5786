package commands

import (
	"errors"
	"runtime"

	"github.com/conduit-lang/restmap/internal/cli/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "restmap",
		Short: "Map REST resources to typed objects",
		Long: color.CyanString(`restmap - declarative REST resource mapping

Resource types are declared in restmap.yaml: their fields, URL templates
and transport options. restmap resolves URLs for them and fetches them
through the configured middleware and cache.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./restmap.yaml)")
	flags.StringVar(&opts.cacheDriver, "cache-driver", "", "cache backend: memory, none, redis, sqlite3, postgres, pgx")
	flags.StringVar(&opts.cacheDSN, "cache-dsn", "", "cache backend address or data source name")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newResolveCommand(opts))
	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newFilterCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			ui.KeyValues(cmd.OutOrStdout(), color.NoColor, [][2]string{
				{"restmap version", Version},
				{"Git commit", GitCommit},
				{"Build date", BuildDate},
				{"Go version", goVer},
			})
		},
	}
}

// Execute runs the root command and prints any failure
func Execute() error {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		rootCmd.PrintErr(describeError(err, noColor || color.NoColor))
	}
	return err
}

func describeError(err error, noColor bool) string {
	var (
		cfgErr     *configError
		unknownErr *unknownResourceError
		noURLErr   *noURLError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ui.ConfigError(cfgErr.err, noColor)
	case errors.As(err, &unknownErr):
		return ui.ResourceNotFound(unknownErr.name, unknownErr.defined, noColor)
	case errors.As(err, &noURLErr):
		return ui.NoURL(noURLErr.resource, noURLErr.role, noURLErr.vars, noColor)
	default:
		return ui.Error(err, noColor)
	}
}
