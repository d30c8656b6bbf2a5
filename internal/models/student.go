package models

// EligibleStudent is a student sitting an exam on a given date, carrying the subject they sit.
type EligibleStudent struct {
	ID           string `db:"id" json:"id"`
	RollNumber   string `db:"roll_number" json:"roll_number"`
	FullName     string `db:"full_name" json:"full_name"`
	DepartmentID string `db:"department_id" json:"department_id"`
	SubjectID    string `db:"subject_id" json:"subject_id"`
}
