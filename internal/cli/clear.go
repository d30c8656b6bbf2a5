package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-seat-api/internal/dto"
)

// NewClearCmd creates the clear command.
func NewClearCmd(open Opener) *cobra.Command {
	var examID, date string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored seat allocations",
		Long:  `Removes the allocation of one exam date, or of every date when --date is omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc SeatService) error {
				var (
					result *dto.ClearAllocationResponse
					err    error
				)
				if date != "" {
					result, err = svc.ClearForDate(cmd.Context(), examID, date)
				} else {
					result, err = svc.ClearForExam(cmd.Context(), examID)
				}
				if err != nil {
					return err
				}

				scope := "all dates"
				if date != "" {
					scope = date
				}
				if result.Removed == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing to clear for %s (%s)\n", examID, scope)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d seats for %s (%s)\n", yellow("Cleared"), result.Removed, examID, scope)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&examID, "exam", "", "Exam ID")
	cmd.Flags().StringVar(&date, "date", "", "Exam date (YYYY-MM-DD); omit to clear every date")
	_ = cmd.MarkFlagRequired("exam")

	return cmd
}
