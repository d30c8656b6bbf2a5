package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seat-api/internal/models"
)

// EligibleStudentRepository resolves which students sit an exam on a date.
type EligibleStudentRepository struct {
	db *sqlx.DB
}

// NewEligibleStudentRepository constructs an EligibleStudentRepository.
func NewEligibleStudentRepository(db *sqlx.DB) *EligibleStudentRepository {
	return &EligibleStudentRepository{db: db}
}

// ListEligible returns students whose department and academic year match a schedule entry for the
// exam date. An entry naming a section restricts it to that section. A student matched by more
// than one entry is returned once, with the lowest subject id.
func (r *EligibleStudentRepository) ListEligible(ctx context.Context, examID string, date time.Time) ([]models.EligibleStudent, error) {
	const query = `SELECT DISTINCT ON (s.id) s.id, s.roll_number, s.full_name, s.department_id, es.subject_id
FROM exam_schedules es
JOIN students s ON s.department_id = es.department_id
    AND s.academic_year = es.academic_year
    AND (es.section IS NULL OR s.section = es.section)
WHERE es.exam_id = $1 AND es.exam_date = $2
ORDER BY s.id, es.subject_id`
	var students []models.EligibleStudent
	if err := r.db.SelectContext(ctx, &students, query, examID, date); err != nil {
		return nil, fmt.Errorf("list eligible students: %w", err)
	}
	return students, nil
}
