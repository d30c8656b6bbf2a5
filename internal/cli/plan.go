package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-seat-api/internal/dto"
)

// NewPlanCmd creates the plan command.
func NewPlanCmd(open Opener) *cobra.Command {
	var examID, date string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Check hall capacity for an exam date without allocating",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc SeatService) error {
				plan, err := svc.Capacity(cmd.Context(), dto.AllocationQuery{ExamID: examID, Date: date})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s for %s on %s\n", bold("Capacity plan"), examID, date)
				fmt.Fprintf(out, "  Eligible students: %d\n", plan.Eligible)
				fmt.Fprintf(out, "  Hall pool seats:   %d\n", plan.TotalCapacity)
				fmt.Fprintf(out, "  Halls required:    %d\n", plan.RequiredHalls)
				for _, hall := range plan.SelectedHalls {
					fmt.Fprintf(out, "    - %s (%d seats)\n", hall.HallNumber, hall.Seats)
				}
				if plan.Feasible {
					fmt.Fprintf(out, "  Status:            %s\n", green("fits"))
				} else {
					fmt.Fprintf(out, "  Status:            %s\n", red(fmt.Sprintf("short by %d seats", plan.Shortfall)))
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
