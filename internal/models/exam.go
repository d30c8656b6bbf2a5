package models

import "time"

// Exam is an examination series that spans one or more dates.
type Exam struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	AcademicYear     *string   `db:"academic_year" json:"academic_year,omitempty"`
	DefaultStartTime *string   `db:"default_start_time" json:"default_start_time,omitempty"`
	DefaultEndTime   *string   `db:"default_end_time" json:"default_end_time,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ExamSchedule is one timetable entry: a department sits a subject on a date.
type ExamSchedule struct {
	ID           string    `db:"id" json:"id"`
	ExamID       string    `db:"exam_id" json:"exam_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	ExamDate     time.Time `db:"exam_date" json:"exam_date"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Section      *string   `db:"section" json:"section,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ExamScheduleDetail adds display labels to a schedule entry.
type ExamScheduleDetail struct {
	ExamSchedule
	DepartmentName string `db:"department_name" json:"department_name"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
}
