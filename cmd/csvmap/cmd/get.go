/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/schema"
	"github.com/ssargent/csvmap/pkg/storage"
)

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <schema> <id>",
		Short: "Get an archived record",
		Long: `Get an archived record by ID. The archived line is printed as is, or as a
JSON object with --json.

Example:
  csvmap get people 2HfFZjxcPbOKyfLEXlmBwl29Pmg --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name := args[0]
			asJSON, _ := cmd.Flags().GetBool("json")

			id, err := storage.ParseID(args[1])
			if err != nil {
				return err
			}

			service, closeArchive, err := openService(cmd, true, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			line, rec, err := service.Get(name, id)
			if err != nil {
				return fmt.Errorf("error getting record: %w", err)
			}

			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), line)
				return nil
			}

			values, err := service.JSONRecords(name, []schema.Record{rec})
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(values[0], "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	getCmd.Flags().Bool("json", false, "Print the record as JSON")
	return getCmd
}
