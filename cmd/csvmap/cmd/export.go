/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/query"
)

func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the archived records of a schema as a text table",
		Long: `Write the archived records of a schema as a text table, in the order
the records were imported. Each --where condition (field, operator, value)
narrows the output; the operators are =, !=, >, >=, < and <=, and NULL
matches absent values.

Examples:
  csvmap export --schema people --out people.txt
  csvmap export -s people --where "score>=9" --where "grade!=F"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name, _ := cmd.Flags().GetString("schema")
			out, _ := cmd.Flags().GetString("out")
			where, _ := cmd.Flags().GetStringArray("where")

			queries, err := query.ParseAll(where)
			if err != nil {
				return err
			}

			service, closeArchive, err := openService(cmd, true, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			text, err := service.Export(name, queries...)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, []byte(text))
		},
	}

	addSchemaFlag(exportCmd)
	exportCmd.Flags().StringP("out", "o", "-", "Text output file (- for stdout)")
	exportCmd.Flags().StringArrayP("where", "w", nil, "Filter condition such as score>=9 (repeatable)")
	return exportCmd
}
