package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/docsql/internal/cli"
)

// Set by the root PersistentPreRunE.
var (
	cfg        *cli.Config
	configPath string
	logger     = zap.NewNop()
)

var (
	cfgFile string
	verbose int
	quiet   bool
)

// noConfig lists commands that run without loading docsql.yaml.
var noConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"version":    true,
}

var rootCmd = &cobra.Command{
	Use:   "docsql",
	Short: "JSON:API documents from single PostgreSQL queries",
	Long: `docsql compiles JSON:API requests (sparse fieldsets, includes, sorting and
paging) against a schema of tables and relationships into one SQL
statement that returns the complete document.

Configuration is read from docsql.yaml, discovered upwards from the working
directory, and DOCSQL_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noConfig[cmd.Name()] {
			return nil
		}

		var err error
		if cfg, configPath, err = cli.LoadConfig(cfgFile); err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		if logger, err = cli.NewLogger(verbose, quiet); err != nil {
			return cli.ConfigError("creating logger", err)
		}
		logger.Debug("configuration loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: nearest docsql.yaml)")
	flags.CountVarP(&verbose, "verbose", "v", "log more detail, repeat for debug output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only print errors and results")

	groups := []struct {
		group    cobra.Group
		commands []*cobra.Command
	}{
		{cobra.Group{ID: "document", Title: "Documents:"}, []*cobra.Command{buildCmd, queryCmd}},
		{cobra.Group{ID: "schema", Title: "Schema:"}, []*cobra.Command{validateCmd, doctorCmd}},
		{cobra.Group{ID: "utility", Title: "Utility:"}, []*cobra.Command{configCmd, versionCmd}},
	}
	for _, g := range groups {
		rootCmd.AddGroup(&g.group)
		for _, cmd := range g.commands {
			cmd.GroupID = g.group.ID
			rootCmd.AddCommand(cmd)
		}
	}
}

// Execute runs the root command and exits with the error's exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}
