/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Archive the records of a text table",
		Long: `Parse a text table with the fields of a schema and append every record
to the archive in the data directory. The IDs of the archived records are
printed one per line.

Nothing is archived when any line of the table is rejected.

Example:
  csvmap import --schema people --in people.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name, _ := cmd.Flags().GetString("schema")
			in, _ := cmd.Flags().GetString("in")

			service, closeArchive, err := openService(cmd, true, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			var ids []ksuid.KSUID
			if isStdio(in) {
				text, err := readTable(cmd)
				if err != nil {
					return fmt.Errorf("failed to read table: %w", err)
				}
				ids, err = service.Import(name, text)
				if err != nil {
					return err
				}
			} else {
				ids, err = service.ImportFile(name, in)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(out, id.String())
			}
			cmd.Printf("Imported %d records into %s\n", len(ids), name)
			return nil
		},
	}

	addSchemaFlag(importCmd)
	importCmd.Flags().StringP("in", "i", "-", "Text input file (- for stdin)")
	return importCmd
}
