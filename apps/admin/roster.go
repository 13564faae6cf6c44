package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/services/spreadsheet"
)

func (cli *commandLine) importStudentsCmd() *cobra.Command {
	var file, classroom string
	cmd := &cobra.Command{
		Use:   "import-students",
		Short: "Add the students of an xlsx roster, skipping taken student ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrap(err, "opening roster")
			}
			defer f.Close()

			rows, err := sheetsvc.ParseRoster(f)
			if err != nil {
				return errors.Wrap(err, file)
			}
			res, err := cli.svc.ImportRoster(cmd.Context(), rows, classroom)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", res.Imported, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "xlsx roster")
	cmd.Flags().StringVarP(&classroom, "classroom", "c", "", "classroom name for rows without one")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
