package models

import "time"

// SeatAllocation binds one student to one seat for an exam date.
type SeatAllocation struct {
	ID           string    `db:"id" json:"id"`
	ExamID       string    `db:"exam_id" json:"exam_id"`
	ExamDate     time.Time `db:"exam_date" json:"exam_date"`
	HallID       string    `db:"hall_id" json:"hall_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	BenchNumber  int       `db:"bench_number" json:"bench_number"`
	Position     int       `db:"position" json:"position"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SeatAllocationDetail is a seat allocation joined with hall, student, department and subject labels.
type SeatAllocationDetail struct {
	SeatAllocation
	HallNumber     string `db:"hall_number" json:"hall_number"`
	RollNumber     string `db:"roll_number" json:"roll_number"`
	StudentName    string `db:"student_name" json:"student_name"`
	DepartmentName string `db:"department_name" json:"department_name"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
}
