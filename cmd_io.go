package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stevemurr/policyledger/export"
	"github.com/stevemurr/policyledger/logging"
	"github.com/stevemurr/policyledger/schema"
	"github.com/stevemurr/policyledger/store"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Add every record from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			entries, err := schema.ParseImport(data)
			if err != nil {
				return err
			}
			log := logging.New("cli")
			return withRecords(cmd, opts, func(s *store.Records) error {
				for i, f := range entries {
					rec, err := s.Add(f)
					if err := warnIfNotDurable(cmd, err); err != nil {
						return fmt.Errorf("entry %d: %w", i, err)
					}
					log.Debug("imported", "id", rec.ID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records.\n", len(entries))
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all records with premiums to xlsx, json or yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				guess, ok := export.FormatFromPath(out)
				if !ok {
					return fmt.Errorf("cannot infer format from %q; pass --format", out)
				}
				format = guess
			}
			if err := export.CheckFormat(format); err != nil {
				return err
			}
			return withRecords(cmd, opts, func(s *store.Records) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := export.Write(f, format, s.List()); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", s.Len(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (required)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: xlsx, json, yaml (default: from extension)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
