package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seat-api/internal/models"
)

func TestHallRepositoryListOrdered(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewHallRepository(db)

	rows := sqlmock.NewRows([]string{"id", "hall_number", "building_name", "floor", "capacity", "bench_count", "seats_per_bench", "created_at"}).
		AddRow("h1", "101", "Main", "Ground", 45, 0, 0, time.Now()).
		AddRow("h2", "102", nil, nil, 30, 10, 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM exam_halls ORDER BY hall_number COLLATE "C" ASC, id ASC`)).WillReturnRows(rows)

	halls, err := repo.ListOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, halls, 2)
	assert.Equal(t, "Main", *halls[0].BuildingName)
	assert.Nil(t, halls[1].BuildingName)
	assert.Equal(t, 10, halls[1].BenchCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallRepositoryListOrderedError(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewHallRepository(db)

	mock.ExpectQuery("FROM exam_halls").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListOrdered(context.Background())
	assert.ErrorContains(t, err, "list exam halls")
}

func TestHallRepositoryCreate(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewHallRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_halls")).
		WithArgs(sqlmock.AnyArg(), "201", nil, nil, 45, 15, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	hall := &models.ExamHall{HallNumber: "201", Capacity: 45, BenchCount: 15, SeatsPerBench: 3}
	require.NoError(t, repo.Create(context.Background(), hall))
	assert.NotEmpty(t, hall.ID)
	assert.False(t, hall.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallRepositoryDeleteMissing(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewHallRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_halls WHERE id = $1")).
		WithArgs("h9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "h9"), sql.ErrNoRows)
}

func TestEligibleStudentRepositoryListEligible(t *testing.T) {
	db, mock := newSeatingRepoMock(t)
	repo := NewEligibleStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "roll_number", "full_name", "department_id", "subject_id"}).
		AddRow("stu-1", "21CS001", "Ada", "dept-cse", "sub-ds").
		AddRow("stu-2", "21EC001", "Grace", "dept-ece", "sub-sig")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (s.id) s.id, s.roll_number, s.full_name, s.department_id, es.subject_id")).
		WithArgs("exam-1", examDay).
		WillReturnRows(rows)

	students, err := repo.ListEligible(context.Background(), "exam-1", examDay)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "sub-sig", students[1].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
