package models

import "time"

// ExamHall is a room with a fixed seating capacity. BenchCount and SeatsPerBench are optional
// layout overrides; zero means the configured default layout applies.
type ExamHall struct {
	ID            string    `db:"id" json:"id"`
	HallNumber    string    `db:"hall_number" json:"hall_number"`
	BuildingName  *string   `db:"building_name" json:"building_name,omitempty"`
	Floor         *string   `db:"floor" json:"floor,omitempty"`
	Capacity      int       `db:"capacity" json:"capacity"`
	BenchCount    int       `db:"bench_count" json:"bench_count"`
	SeatsPerBench int       `db:"seats_per_bench" json:"seats_per_bench"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
