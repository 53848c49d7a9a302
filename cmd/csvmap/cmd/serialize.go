/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/api"
	"github.com/ssargent/csvmap/pkg/schema"
)

func newSerializeCmd() *cobra.Command {
	serializeCmd := &cobra.Command{
		Use:   "serialize",
		Short: "Write JSON records as a text table",
		Long: `Read a JSON array of records (or an object with a "records" array) and
write them as a delimited text table in the field order of the schema.

Missing and null values are written as NULL.

Examples:
  csvmap serialize --schema people --in people.json --out people.txt
  cat people.json | csvmap serialize -s people`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name, _ := cmd.Flags().GetString("schema")
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")

			data, err := readInput(cmd, in)
			if err != nil {
				return fmt.Errorf("failed to read records: %w", err)
			}
			records, err := decodeRecords(data)
			if err != nil {
				return err
			}

			service, closeArchive, err := openService(cmd, false, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			if !isStdio(out) {
				return service.SerializeToFile(name, records, out)
			}
			text, err := service.Serialize(name, records)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, []byte(text))
		},
	}

	addSchemaFlag(serializeCmd)
	serializeCmd.Flags().StringP("in", "i", "-", "JSON input file (- for stdin)")
	serializeCmd.Flags().StringP("out", "o", "-", "Text output file (- for stdout)")
	return serializeCmd
}

func addSchemaFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "Schema name (required)")
	if err := cmd.MarkFlagRequired("schema"); err != nil {
		panic(err)
	}
}

// decodeRecords parses a JSON array of records or a serialize request body.
// Numbers are kept as json.Number so integers and decimals stay exact.
func decodeRecords(data []byte) ([]schema.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []schema.Record{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	if trimmed[0] == '{' {
		var req api.SerializeRequest
		if err := decoder.Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON records: %w", err)
		}
		return req.Records, nil
	}

	var records []schema.Record
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("invalid JSON records: %w", err)
	}
	return records, nil
}
