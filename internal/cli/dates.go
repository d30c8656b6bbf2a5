package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDatesCmd creates the dates command.
func NewDatesCmd(open Opener) *cobra.Command {
	var examID string

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "List exam dates that hold a seat allocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(open, func(svc SeatService) error {
				dates, err := svc.Dates(cmd.Context(), examID)
				if err != nil {
					return err
				}
				if len(dates) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No allocations stored for %s\n", examID)
					return nil
				}
				for _, date := range dates {
					fmt.Fprintln(cmd.OutOrStdout(), date)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&examID, "exam", "", "Exam ID")
	_ = cmd.MarkFlagRequired("exam")

	return cmd
}
