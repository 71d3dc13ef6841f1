package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildFlags requestFlags

var buildCmd = &cobra.Command{
	Use:   "build <type>",
	Short: "Compile a document request to SQL",
	Long: `Compile a JSON:API document request for a resource type and print the
SQL statement followed by its arguments. No database connection is made.`,
	Example: `  # Articles with their authors, newest first
  docsql build articles --query 'fields[articles]=name,author&include=author&sort=-created_at'

  # One article
  docsql build articles --id 1

  # The comments of an article
  docsql build articles --id 1 --related comments

  # Articles from a custom row source
  docsql build articles --from 'SELECT * FROM articles WHERE author_id = $1' --arg 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := buildFlags.compile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, q.SQL)
		if !quiet {
			for i, a := range q.Args {
				fmt.Fprintf(out, "-- $%d = %v\n", i+1, a)
			}
		}
		return nil
	},
}

func init() {
	buildFlags.register(buildCmd)
}
