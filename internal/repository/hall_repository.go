package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seat-api/internal/models"
)

// HallRepository manages the exam hall pool.
type HallRepository struct {
	db *sqlx.DB
}

// NewHallRepository constructs a HallRepository.
func NewHallRepository(db *sqlx.DB) *HallRepository {
	return &HallRepository{db: db}
}

// ListOrdered returns every hall ordered bytewise by hall number then id.
func (r *HallRepository) ListOrdered(ctx context.Context) ([]models.ExamHall, error) {
	const query = `SELECT id, hall_number, building_name, floor, capacity, bench_count, seats_per_bench, created_at
FROM exam_halls ORDER BY hall_number COLLATE "C" ASC, id ASC`
	var halls []models.ExamHall
	if err := r.db.SelectContext(ctx, &halls, query); err != nil {
		return nil, fmt.Errorf("list exam halls: %w", err)
	}
	return halls, nil
}

// FindByID fetches a hall. It returns sql.ErrNoRows when absent.
func (r *HallRepository) FindByID(ctx context.Context, id string) (*models.ExamHall, error) {
	const query = `SELECT id, hall_number, building_name, floor, capacity, bench_count, seats_per_bench, created_at
FROM exam_halls WHERE id = $1`
	var hall models.ExamHall
	if err := r.db.GetContext(ctx, &hall, query, id); err != nil {
		return nil, err
	}
	return &hall, nil
}

// Create inserts a hall.
func (r *HallRepository) Create(ctx context.Context, hall *models.ExamHall) error {
	if hall.ID == "" {
		hall.ID = uuid.NewString()
	}
	hall.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO exam_halls (id, hall_number, building_name, floor, capacity, bench_count, seats_per_bench, created_at)
VALUES (:id, :hall_number, :building_name, :floor, :capacity, :bench_count, :seats_per_bench, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hall); err != nil {
		return fmt.Errorf("create exam hall: %w", err)
	}
	return nil
}

// Delete removes a hall. It returns sql.ErrNoRows when absent.
func (r *HallRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exam_halls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exam hall: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("exam hall rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
