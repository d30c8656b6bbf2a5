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

// ExamRepository manages exams and their timetable entries.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateExam inserts a new exam.
func (r *ExamRepository) CreateExam(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (id, name, academic_year, default_start_time, default_end_time, created_at, updated_at)
VALUES (:id, :name, :academic_year, :default_start_time, :default_end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// FindExamByID fetches an exam. It returns sql.ErrNoRows when absent.
func (r *ExamRepository) FindExamByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, name, academic_year, default_start_time, default_end_time, created_at, updated_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// UpdateExamDefaults stores the default times and academic year of an exam.
func (r *ExamRepository) UpdateExamDefaults(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET academic_year = :academic_year, default_start_time = :default_start_time,
    default_end_time = :default_end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, exam); err != nil {
		return fmt.Errorf("update exam defaults: %w", err)
	}
	return nil
}

// DeleteExam removes an exam. It returns sql.ErrNoRows when absent.
func (r *ExamRepository) DeleteExam(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `DELETE FROM exams WHERE id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("exam rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListEntries returns an exam's timetable ordered by date, start time and department.
func (r *ExamRepository) ListEntries(ctx context.Context, examID string) ([]models.ExamScheduleDetail, error) {
	const query = `SELECT es.id, es.exam_id, es.department_id, es.subject_id, es.exam_date, es.start_time, es.end_time,
    es.academic_year, es.section, es.created_at, d.name AS department_name, sub.name AS subject_name
FROM exam_schedules es
JOIN departments d ON d.id = es.department_id
JOIN subjects sub ON sub.id = es.subject_id
WHERE es.exam_id = $1
ORDER BY es.exam_date ASC, es.start_time ASC, d.name ASC`
	var entries []models.ExamScheduleDetail
	if err := r.db.SelectContext(ctx, &entries, query, examID); err != nil {
		return nil, fmt.Errorf("list exam entries: %w", err)
	}
	return entries, nil
}

// FindEntryByID fetches a timetable entry. It returns sql.ErrNoRows when absent.
func (r *ExamRepository) FindEntryByID(ctx context.Context, id string) (*models.ExamSchedule, error) {
	const query = `SELECT id, exam_id, department_id, subject_id, exam_date, start_time, end_time, academic_year, section, created_at
FROM exam_schedules WHERE id = $1`
	var entry models.ExamSchedule
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateEntry inserts a timetable entry.
func (r *ExamRepository) CreateEntry(ctx context.Context, exec sqlx.ExtContext, entry *models.ExamSchedule) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exam_schedules (id, exam_id, department_id, subject_id, exam_date, start_time, end_time, academic_year, section, created_at)
VALUES (:id, :exam_id, :department_id, :subject_id, :exam_date, :start_time, :end_time, :academic_year, :section, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("create exam entry: %w", err)
	}
	return nil
}

// DeleteEntry removes one timetable entry. It returns sql.ErrNoRows when absent.
func (r *ExamRepository) DeleteEntry(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `DELETE FROM exam_schedules WHERE id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("exam entry rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteEntriesByExam removes every timetable entry of an exam.
func (r *ExamRepository) DeleteEntriesByExam(ctx context.Context, exec sqlx.ExtContext, examID string) (int64, error) {
	const query = `DELETE FROM exam_schedules WHERE exam_id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, examID)
	if err != nil {
		return 0, fmt.Errorf("delete exam entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exam entry rows affected: %w", err)
	}
	return affected, nil
}
