package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCmd writes the config and question bank to a backup file.
func NewExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export config and questions to a JSON backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			data, err := rt.service.ExportJSON()
			if err != nil {
				return err
			}
			path := rt.service.BackupFileName()
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("exported to "+path))
			return nil
		},
	}
}

// NewImportCmd replaces config and questions with a backup file.
func NewImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import config and questions from a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.service.Import(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", successStyle.Render(
				fmt.Sprintf("imported %d questions", rt.service.Questions.Len())))
			return nil
		},
	}
}

// NewResetCmd restores the bundled config and questions.
func NewResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default config and questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.service.Reset(cmd.Context(), opts.confirmer(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("restored defaults"))
			return nil
		},
	}
}
