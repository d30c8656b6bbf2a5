package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-seat-api/internal/dto"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd(open Opener) *cobra.Command {
	var examID, date string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the seat allocation for an exam date",
		Long: `Places every eligible student of the exam date into halls and replaces any
allocation already stored for that date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc SeatService) error {
				summary, err := svc.Generate(cmd.Context(), dto.GenerateAllocationRequest{ExamID: examID, Date: date})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %s on %s\n", green("Allocated"), examID, date)
				fmt.Fprintf(out, "  Students:       %d\n", summary.Eligible)
				fmt.Fprintf(out, "  Seats used:     %d of %d\n", summary.SeatsUsed, summary.SeatsAvailable)
				fmt.Fprintf(out, "  Halls:          %d (%s)\n", summary.HallsUsed, strings.Join(summary.HallIDs, ", "))
				if summary.SharedBenches > 0 {
					fmt.Fprintf(out, "  Shared benches: %s\n", yellow(summary.SharedBenches))
				} else {
					fmt.Fprintf(out, "  Shared benches: 0\n")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&examID, "exam", "", "Exam ID")
	cmd.Flags().StringVar(&date, "date", "", "Exam date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("exam")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
