package dto

// CreateHallRequest registers an exam hall. Omitted layout fields fall back to the configured
// standard hall.
type CreateHallRequest struct {
	HallNumber    string  `json:"hallNumber" validate:"required,max=50"`
	BuildingName  *string `json:"buildingName" validate:"omitempty,max=100"`
	Floor         *string `json:"floor" validate:"omitempty,max=20"`
	Capacity      *int    `json:"capacity" validate:"omitempty,min=1,max=1000"`
	BenchCount    *int    `json:"benchCount" validate:"omitempty,min=1"`
	SeatsPerBench *int    `json:"seatsPerBench" validate:"omitempty,min=1,max=10"`
}
