package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-seat-api/internal/dto"
)

// NewExportCmd creates the export command.
func NewExportCmd(open Opener) *cobra.Command {
	var (
		examID string
		date   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the allocation of an exam date to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc SeatService) error {
				doc, err := svc.Export(cmd.Context(), dto.AllocationQuery{ExamID: examID, Date: date})
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = doc.Filename
				}
				if path == "-" {
					_, err = cmd.OutOrStdout().Write(doc.Body)
					return err
				}
				if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d bytes)\n", green("Wrote"), bold(path), len(doc.Body))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&examID, "exam", "", "Exam ID")
	cmd.Flags().StringVar(&date, "date", "", "Exam date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: generated file name)")
	_ = cmd.MarkFlagRequired("exam")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
