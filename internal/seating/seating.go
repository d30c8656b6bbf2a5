// Package seating computes exam seat allocations from plain records.
//
// The package performs no I/O: callers load halls and eligible students, hand them to an Engine
// and persist the returned placements themselves. Given the same inputs it always produces the
// same placements.
package seating

import (
	"errors"
	"fmt"
)

// DefaultSeatsPerBench is used when neither the engine nor a hall specifies a bench size.
const DefaultSeatsPerBench = 3

// ErrInsufficientSlots is returned by Assign when there are more students than slots.
var ErrInsufficientSlots = errors.New("seating: not enough seat slots for students")

// Student is an examinee that must be seated for one exam date.
type Student struct {
	ID           string
	RollNumber   string
	Name         string
	DepartmentID string
	SubjectID    string
}

// Hall is an exam hall made of benches. BenchCount and SeatsPerBench are optional; when unset the
// layout is derived from Capacity.
type Hall struct {
	ID            string
	OrderKey      string
	Capacity      int
	BenchCount    int
	SeatsPerBench int
}

// Layout returns the number of benches and the bench size for the hall.
func (h Hall) Layout(defaultSeatsPerBench int) (benches, seatsPerBench int) {
	if h.BenchCount > 0 && h.SeatsPerBench > 0 {
		return h.BenchCount, h.SeatsPerBench
	}
	seatsPerBench = h.SeatsPerBench
	if seatsPerBench <= 0 {
		seatsPerBench = defaultSeatsPerBench
	}
	if seatsPerBench <= 0 {
		seatsPerBench = DefaultSeatsPerBench
	}
	if h.Capacity <= 0 {
		return 0, seatsPerBench
	}
	return (h.Capacity + seatsPerBench - 1) / seatsPerBench, seatsPerBench
}

// Seats is the number of usable seats: the configured capacity capped by the bench layout.
func (h Hall) Seats(defaultSeatsPerBench int) int {
	if h.Capacity <= 0 {
		return 0
	}
	benches, perBench := h.Layout(defaultSeatsPerBench)
	if total := benches * perBench; total < h.Capacity {
		return total
	}
	return h.Capacity
}

// Slot addresses a single seat.
type Slot struct {
	HallID   string
	Bench    int
	Position int
}

// Placement binds a student to a slot.
type Placement struct {
	Slot
	Student Student
}

// CapacityError reports that the hall pool cannot seat every eligible student.
type CapacityError struct {
	Eligible  int
	Capacity  int
	Shortfall int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("seating: %d eligible students exceed hall capacity %d (short by %d seats)", e.Eligible, e.Capacity, e.Shortfall)
}
