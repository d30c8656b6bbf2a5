package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seat-api/internal/models"
)

// insertChunkSize keeps bulk inserts well below the Postgres bind parameter limit.
const insertChunkSize = 500

// AllocationRepository persists seat allocations.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByExamDate removes every allocation for the (exam, date) key.
func (r *AllocationRepository) DeleteByExamDate(ctx context.Context, exec sqlx.ExtContext, examID string, date time.Time) (int64, error) {
	const query = `DELETE FROM seat_allocations WHERE exam_id = $1 AND exam_date = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, examID, date)
	if err != nil {
		return 0, fmt.Errorf("delete seat allocations for date: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("seat allocation rows affected: %w", err)
	}
	return affected, nil
}

// DeleteByExam removes every allocation of an exam across all dates.
func (r *AllocationRepository) DeleteByExam(ctx context.Context, exec sqlx.ExtContext, examID string) (int64, error) {
	const query = `DELETE FROM seat_allocations WHERE exam_id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, examID)
	if err != nil {
		return 0, fmt.Errorf("delete seat allocations for exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("seat allocation rows affected: %w", err)
	}
	return affected, nil
}

// InsertBatch writes allocations using multi-row inserts.
func (r *AllocationRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.SeatAllocation) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO seat_allocations (id, exam_id, exam_date, hall_id, department_id, subject_id, student_id, bench_number, position, created_at)
VALUES (:id, :exam_id, :exam_date, :hall_id, :department_id, :subject_id, :student_id, :bench_number, :position, :created_at)`

	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
	}

	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, rows[start:end]); err != nil {
			return fmt.Errorf("insert seat allocations: %w", err)
		}
	}
	return nil
}

// ListByExamDate returns allocations for the key with display labels, in seat order. Hall numbers
// sort bytewise so the listing follows the order the seating engine walks halls in.
func (r *AllocationRepository) ListByExamDate(ctx context.Context, examID string, date time.Time) ([]models.SeatAllocationDetail, error) {
	const query = `SELECT sa.id, sa.exam_id, sa.exam_date, sa.hall_id, sa.department_id, sa.subject_id, sa.student_id,
    sa.bench_number, sa.position, sa.created_at,
    h.hall_number, s.roll_number, s.full_name AS student_name, d.name AS department_name, sub.name AS subject_name
FROM seat_allocations sa
JOIN exam_halls h ON h.id = sa.hall_id
JOIN students s ON s.id = sa.student_id
JOIN departments d ON d.id = sa.department_id
JOIN subjects sub ON sub.id = sa.subject_id
WHERE sa.exam_id = $1 AND sa.exam_date = $2
ORDER BY h.hall_number COLLATE "C" ASC, h.id ASC, sa.bench_number ASC, sa.position ASC`
	var rows []models.SeatAllocationDetail
	if err := r.db.SelectContext(ctx, &rows, query, examID, date); err != nil {
		return nil, fmt.Errorf("list seat allocations: %w", err)
	}
	return rows, nil
}

// ListDates returns the distinct dates that hold allocations for an exam.
func (r *AllocationRepository) ListDates(ctx context.Context, examID string) ([]time.Time, error) {
	const query = `SELECT DISTINCT exam_date FROM seat_allocations WHERE exam_id = $1 ORDER BY exam_date ASC`
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, examID); err != nil {
		return nil, fmt.Errorf("list allocation dates: %w", err)
	}
	return dates, nil
}
