/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/schema"
)

func newDeserializeCmd() *cobra.Command {
	deserializeCmd := &cobra.Command{
		Use:   "deserialize",
		Short: "Read a text table into JSON records",
		Long: `Parse a delimited text table with the fields of a schema and write the
records as a JSON array.

Values that cannot be parsed fall back to the zero value of their type (null
for nullable types). A line with the wrong number of fields fails the whole
table. A table read from stdin may end with one line terminator; a file given
with --in is read exactly, so a trailing newline is an extra, empty line.

Examples:
  csvmap deserialize --schema people --in people.txt
  csvmap deserialize -s people --separator "," < people.csv > people.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name, _ := cmd.Flags().GetString("schema")
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")

			service, closeArchive, err := openService(cmd, false, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			var records []schema.Record
			if isStdio(in) {
				text, err := readTable(cmd)
				if err != nil {
					return fmt.Errorf("failed to read table: %w", err)
				}
				records, err = service.Deserialize(name, text)
				if err != nil {
					return err
				}
			} else {
				records, err = service.DeserializeFile(name, in)
				if err != nil {
					return err
				}
			}
			values, err := service.JSONRecords(name, records)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(values, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode records: %w", err)
			}
			return writeOutput(cmd, out, data)
		},
	}

	addSchemaFlag(deserializeCmd)
	deserializeCmd.Flags().StringP("in", "i", "-", "Text input file (- for stdin)")
	deserializeCmd.Flags().StringP("out", "o", "-", "JSON output file (- for stdout)")
	return deserializeCmd
}
