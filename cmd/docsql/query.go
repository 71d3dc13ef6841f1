package main

import (
	"bytes"
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pthm/docsql"
	"github.com/pthm/docsql/internal/cli"
)

var (
	queryFlags  requestFlags
	queryDB     string
	queryDriver string
	queryPretty bool
)

var queryCmd = &cobra.Command{
	Use:   "query <type>",
	Short: "Run a document request against PostgreSQL",
	Long: `Compile a JSON:API document request, run it against the database and
print the resulting document.`,
	Example: `  # Fetch an article with its comments and their authors
  docsql query articles --id 1 --query 'include=comments.author' --db postgres://localhost/blog

  # Use the pgx driver and indent the output
  docsql query users --driver pgx --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFlags.compile(args[0])
		if err != nil {
			return err
		}

		dsn := queryDB
		if dsn == "" {
			if dsn, err = cfg.DSN(); err != nil {
				return cli.ConfigError("resolving database", err)
			}
		}
		driver := cmp.Or(queryDriver, cfg.Database.Driver)

		return runQuery(cmd, driver, dsn, q)
	},
}

func init() {
	queryFlags.register(queryCmd)
	f := queryCmd.Flags()
	f.StringVar(&queryDB, "db", "", "database URL")
	f.StringVar(&queryDriver, "driver", "", "database/sql driver: postgres or pgx")
	f.BoolVar(&queryPretty, "pretty", false, "indent the document")
}

func runQuery(cmd *cobra.Command, driver, dsn string, q docsql.Query) error {
	db, err := sql.Open(driver, dsn)
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

	doc, err := docsql.NewExecutor(db, docsql.WithLogger(logger)).Document(ctx, q)
	if err != nil {
		return cli.GeneralError("running query", err)
	}

	if queryPretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return cli.GeneralError("formatting document", err)
		}
		doc = buf.Bytes()
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(doc))
	return nil
}
