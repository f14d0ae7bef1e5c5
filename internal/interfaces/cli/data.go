package cli

import (
	"fmt"
	"os"

	"github.com/circlesoft/crm/internal/infrastructure/export"
	"github.com/spf13/cobra"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's data as json, yaml or xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			file, err := opts.app.Backup.Export(cmd.Context(), opts.userID, f)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if out == "" {
				out = file.Name
			}
			if err := os.WriteFile(out, file.Data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(file.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, yaml or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default: generated name)`)
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from a spreadsheet",
	}

	var path string
	customers := &cobra.Command{
		Use:   "customers",
		Short: "Import customers from an xlsx workbook (Name, Store, Contact, Notes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return fmt.Errorf("%w: --file", errMissingFlag)
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := opts.app.Backup.ImportCustomers(cmd.Context(), opts.userID, f)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "imported %d, skipped %d, rejected %d\n", res.Imported, len(res.Skipped), len(res.Errors))
			for _, name := range res.Skipped {
				fmt.Fprintf(w, "  skipped %s: already exists\n", name)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(w, "  row %d %s: %s\n", e.Row, e.Column, e.Message)
			}
			return nil
		},
	}
	customers.Flags().StringVarP(&path, "file", "f", "", "xlsx workbook")
	cmd.AddCommand(customers)
	return cmd
}

func newBackupCommand(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Store an export at the configured backup destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			location, err := opts.app.Backup.Backup(cmd.Context(), opts.userID, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, yaml or xlsx")
	return cmd
}
