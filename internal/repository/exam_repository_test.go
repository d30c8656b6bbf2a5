package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seat-api/internal/models"
)

func TestExamRepositoryCreateExam(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exams")).
		WithArgs(sqlmock.AnyArg(), "Midterms", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	exam := &models.Exam{Name: "Midterms"}
	require.NoError(t, repo.CreateExam(context.Background(), exam))
	assert.NotEmpty(t, exam.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryFindExamByIDMissing(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindExamByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExamRepositoryDeleteEntryNotFound(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_schedules WHERE id = $1")).
		WithArgs("entry-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteEntry(context.Background(), nil, "entry-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExamRepositoryCreateEntry(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_schedules")).
		WithArgs(sqlmock.AnyArg(), "exam-1", "dept-1", "sub-1", examDay, "09:00", "12:00", "2024", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ExamSchedule{
		ExamID:       "exam-1",
		DepartmentID: "dept-1",
		SubjectID:    "sub-1",
		ExamDate:     examDay,
		StartTime:    "09:00",
		EndTime:      "12:00",
		AcademicYear: "2024",
	}
	require.NoError(t, repo.CreateEntry(context.Background(), nil, entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListEntries(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"id", "exam_id", "department_id", "subject_id", "exam_date", "start_time", "end_time",
		"academic_year", "section", "created_at", "department_name", "subject_name"}).
		AddRow("e-1", "exam-1", "dept-1", "sub-1", examDay, "09:00", "12:00", "2024", "A", time.Now(), "CSE", "Data Structures")
	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_schedules es")).
		WithArgs("exam-1").
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), "exam-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", *entries[0].Section)
	assert.Equal(t, "CSE", entries[0].DepartmentName)
}
