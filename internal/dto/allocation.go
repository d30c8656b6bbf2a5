package dto

import "time"

// GenerateAllocationRequest identifies the (exam, date) key of an allocation run.
type GenerateAllocationRequest struct {
	ExamID string `json:"examId" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Key returns the lock and cache key for the run.
func (r GenerateAllocationRequest) Key() string {
	return r.ExamID + "|" + r.Date
}

// AllocationQuery captures query parameters for listing, exporting and clearing allocations.
type AllocationQuery struct {
	ExamID string `form:"examId" validate:"required"`
	Date   string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

// AllocationSummary is returned after a successful generation run.
type AllocationSummary struct {
	ExamID           string    `json:"examId"`
	Date             string    `json:"date"`
	Eligible         int       `json:"eligible"`
	SeatsUsed        int       `json:"seatsUsed"`
	SeatsAvailable   int       `json:"seatsAvailable"`
	HallsUsed        int       `json:"hallsUsed"`
	HallIDs          []string  `json:"hallIds"`
	StudentsUnseated int       `json:"studentsUnseated"`
	SharedBenches    int       `json:"sharedBenches"`
	Attempts         int       `json:"attempts"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// CapacityHall describes a hall in a capacity plan.
type CapacityHall struct {
	ID         string `json:"id"`
	HallNumber string `json:"hallNumber"`
	Seats      int    `json:"seats"`
}

// CapacityPlanResponse is a dry run of the capacity planner.
type CapacityPlanResponse struct {
	ExamID           string         `json:"examId"`
	Date             string         `json:"date"`
	Eligible         int            `json:"eligible"`
	RequiredHalls    int            `json:"requiredHalls"`
	SelectedHalls    []CapacityHall `json:"selectedHalls"`
	TotalCapacity    int            `json:"totalCapacity"`
	SelectedCapacity int            `json:"selectedCapacity"`
	Shortfall        int            `json:"shortfall"`
	Feasible         bool           `json:"feasible"`
}

// ClearAllocationResponse reports removed allocation rows.
type ClearAllocationResponse struct {
	ExamID  string `json:"examId"`
	Date    string `json:"date,omitempty"`
	Removed int64  `json:"removed"`
}

// RegenerateJobResponse is returned when a regeneration is queued.
type RegenerateJobResponse struct {
	JobID  string `json:"jobId"`
	ExamID string `json:"examId"`
	Date   string `json:"date"`
	Status string `json:"status"`
}
