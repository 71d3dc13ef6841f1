package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/docsql/internal/cli"
	"github.com/pthm/docsql/internal/doctor"
)

var (
	doctorDB      string
	doctorSchema  string
	doctorDetails bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check a schema against the database",
	Long: `Check that the tables and columns a schema names exist and that a
document query for every resource type runs.`,
	Example: `  # Run health checks
  docsql doctor --db postgres://localhost/blog

  # Include check details
  docsql doctor --db postgres://localhost/blog --details`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := cmp.Or(doctorSchema, cfg.Schema)

		dsn := doctorDB
		if dsn == "" {
			var err error
			if dsn, err = cfg.DSN(); err != nil {
				return cli.ConfigError("resolving database", err)
			}
		}

		return runDoctor(cmd, dsn, schemaPath)
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.StringVar(&doctorSchema, "schema", "", "path to schema file")
	f.BoolVar(&doctorDetails, "details", false, "show check details")
}

func runDoctor(cmd *cobra.Command, dsn, schemaPath string) error {
	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := db.PingContext(ctx); err != nil {
		return cli.DBConnectError("connecting to database", err)
	}

	out := cmd.OutOrStdout()
	if !quiet {
		fmt.Fprintln(out, "docsql doctor - Health Check")
	}

	report, err := doctor.New(db, schemaPath, configOptions()...).Run(ctx)
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(out, doctorDetails)

	if report.HasErrors() {
		return cli.GeneralError("health checks failed", nil)
	}
	return nil
}
