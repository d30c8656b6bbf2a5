// Package cli implements the seatctl operator commands.
package cli

import (
	"context"

	"github.com/fatih/color"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	"github.com/noah-isme/exam-seat-api/pkg/export"
)

// SeatService is the allocation surface the commands drive.
type SeatService interface {
	Generate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.AllocationSummary, error)
	ClearForDate(ctx context.Context, examID, date string) (*dto.ClearAllocationResponse, error)
	ClearForExam(ctx context.Context, examID string) (*dto.ClearAllocationResponse, error)
	Capacity(ctx context.Context, query dto.AllocationQuery) (*dto.CapacityPlanResponse, error)
	Dates(ctx context.Context, examID string) ([]string, error)
	Export(ctx context.Context, query dto.AllocationQuery) (*export.Document, error)
}

// Opener connects to the backing stores and returns the service with its cleanup.
type Opener func() (SeatService, func() error, error)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func withService(open Opener, fn func(SeatService) error) error {
	svc, closeFn, err := open()
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck
	return fn(svc)
}
