package dto

// CreateExamRequest registers an exam series.
type CreateExamRequest struct {
	Name             string  `json:"name" validate:"required,max=150"`
	AcademicYear     *string `json:"academicYear" validate:"omitempty,max=20"`
	DefaultStartTime *string `json:"defaultStartTime" validate:"omitempty,datetime=15:04"`
	DefaultEndTime   *string `json:"defaultEndTime" validate:"omitempty,datetime=15:04"`
}

// AddExamEntryRequest adds a timetable entry to an exam. Missing times and academic year fall
// back to the exam defaults.
type AddExamEntryRequest struct {
	DepartmentID string  `json:"departmentId" validate:"required"`
	SubjectID    string  `json:"subjectId" validate:"required"`
	ExamDate     string  `json:"examDate" validate:"required,datetime=2006-01-02"`
	StartTime    *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime      *string `json:"endTime" validate:"omitempty,datetime=15:04"`
	AcademicYear *string `json:"academicYear" validate:"omitempty,max=20"`
	Section      *string `json:"section" validate:"omitempty,max=10"`
}

// ClearEntriesResponse reports how many entries and allocations were removed.
type ClearEntriesResponse struct {
	ExamID             string `json:"examId"`
	EntriesRemoved     int64  `json:"entriesRemoved"`
	AllocationsRemoved int64  `json:"allocationsRemoved"`
}
