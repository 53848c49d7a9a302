/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSchemasCmd() *cobra.Command {
	schemasCmd := &cobra.Command{
		Use:   "schemas",
		Short: "List the configured schemas",
		Long: `List the schemas of the loaded configuration with their fields in
column order. Ignored fields are listed but never written or read.

Example:
  csvmap schemas --schema-file ./schemas.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			service, closeArchive, err := openService(cmd, false, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			defs := service.Schemas()
			if len(defs) == 0 {
				cmd.Println("No schemas configured")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, def := range defs {
				fmt.Fprintf(w, "%s\n", def.Name)
				for i, field := range def.Fields {
					note := ""
					if field.Ignore {
						note = "ignored"
					}
					fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", i+1, field.Name, field.Type, note)
				}
			}
			return w.Flush()
		},
	}
	return schemasCmd
}
