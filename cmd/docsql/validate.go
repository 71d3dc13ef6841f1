package main

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a schema file",
	Long: `Validate a schema file: entity columns, identities, attributes,
relationships and relationship orderings are all checked.`,
	Example: `  # Validate a specific schema file
  docsql validate --schema api/schema.yaml

  # Validate using config file settings
  docsql validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := cmp.Or(validateSchema, cfg.Schema)

		_, reg, err := loadSchema(schemaPath)
		if err != nil {
			return err
		}

		if quiet {
			return nil
		}
		out := cmd.OutOrStdout()
		types := reg.Types()
		fmt.Fprintf(out, "Schema is valid. Found %d types:\n", len(types))
		for _, typeName := range types {
			e, err := reg.EntityOf(typeName)
			if err != nil {
				return err
			}
			attrs, err := reg.Graph().AttributesOf(e.Name)
			if err != nil {
				return err
			}
			rels, err := reg.Graph().RelationshipsOf(e.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  - %s (%s: %d attributes, %d relationships)\n",
				typeName, e.Name, len(attrs), len(rels))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "path to schema file")
}
