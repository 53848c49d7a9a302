/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/csvmap/pkg/storage"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <schema> <id>",
		Short: "Delete an archived record",
		Long: `Delete an archived record by ID.

Example:
  csvmap delete people 2HfFZjxcPbOKyfLEXlmBwl29Pmg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := storage.ParseID(args[1])
			if err != nil {
				return err
			}

			service, closeArchive, err := openService(cmd, true, nil)
			if err != nil {
				return err
			}
			defer closeInto(closeArchive, &err)

			if err := service.Delete(args[0], id); err != nil {
				return fmt.Errorf("error deleting record: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}
