package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	"github.com/noah-isme/exam-seat-api/internal/models"
	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
	"github.com/noah-isme/exam-seat-api/pkg/lock"
)

const clockLayout = "15:04"

type examStore interface {
	CreateExam(ctx context.Context, exam *models.Exam) error
	FindExamByID(ctx context.Context, id string) (*models.Exam, error)
	UpdateExamDefaults(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
	DeleteExam(ctx context.Context, exec sqlx.ExtContext, id string) error
	ListEntries(ctx context.Context, examID string) ([]models.ExamScheduleDetail, error)
	FindEntryByID(ctx context.Context, id string) (*models.ExamSchedule, error)
	CreateEntry(ctx context.Context, exec sqlx.ExtContext, entry *models.ExamSchedule) error
	DeleteEntry(ctx context.Context, exec sqlx.ExtContext, id string) error
	DeleteEntriesByExam(ctx context.Context, exec sqlx.ExtContext, examID string) (int64, error)
}

type allocationClearer interface {
	DeleteByExamDate(ctx context.Context, exec sqlx.ExtContext, examID string, date time.Time) (int64, error)
	DeleteByExam(ctx context.Context, exec sqlx.ExtContext, examID string) (int64, error)
	ListDates(ctx context.Context, examID string) ([]time.Time, error)
}

type allocationNotifier interface {
	NotifyCleared(ctx context.Context, examID, date string, removed int64, reason string)
	ScheduleRegenerate(examID, date string) error
}

// ExamScheduleService manages exams and timetable entries. Any timetable change drops the seat
// allocations it invalidates in the same transaction, holding the same per-date lock as allocation runs.
type ExamScheduleService struct {
	exams          examStore
	allocations    allocationClearer
	notifier       allocationNotifier
	tx             txProvider
	locker         lock.Locker
	validator      *validator.Validate
	logger         *zap.Logger
	autoRegenerate bool
}

// NewExamScheduleService wires timetable dependencies.
func NewExamScheduleService(
	exams examStore,
	allocations allocationClearer,
	notifier allocationNotifier,
	tx txProvider,
	locker lock.Locker,
	validate *validator.Validate,
	logger *zap.Logger,
	autoRegenerate bool,
) *ExamScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocal(5 * time.Second)
	}
	return &ExamScheduleService{
		exams:          exams,
		allocations:    allocations,
		notifier:       notifier,
		tx:             tx,
		locker:         locker,
		validator:      validate,
		logger:         logger,
		autoRegenerate: autoRegenerate,
	}
}

// CreateExam registers a new exam.
func (s *ExamScheduleService) CreateExam(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	defaultStart, err := normalizeClockPtr(req.DefaultStartTime, "defaultStartTime")
	if err != nil {
		return nil, err
	}
	defaultEnd, err := normalizeClockPtr(req.DefaultEndTime, "defaultEndTime")
	if err != nil {
		return nil, err
	}
	exam := &models.Exam{
		Name:             req.Name,
		AcademicYear:     req.AcademicYear,
		DefaultStartTime: defaultStart,
		DefaultEndTime:   defaultEnd,
	}
	if err := s.exams.CreateExam(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// GetExam fetches an exam.
func (s *ExamScheduleService) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.exams.FindExamByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// ListEntries returns the timetable of an exam.
func (s *ExamScheduleService) ListEntries(ctx context.Context, examID string) ([]models.ExamScheduleDetail, error) {
	if _, err := s.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	entries, err := s.exams.ListEntries(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam entries")
	}
	if entries == nil {
		entries = []models.ExamScheduleDetail{}
	}
	return entries, nil
}

// AddEntry adds a timetable entry. Missing times and academic year fall back to the exam defaults,
// and an exam without defaults adopts the entry's values.
func (s *ExamScheduleService) AddEntry(ctx context.Context, examID string, req dto.AddExamEntryRequest) (*models.ExamSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam entry payload")
	}
	exam, err := s.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.ExamDate)
	if err != nil {
		return nil, err
	}

	start := firstNonEmpty(req.StartTime, exam.DefaultStartTime)
	end := firstNonEmpty(req.EndTime, exam.DefaultEndTime)
	year := firstNonEmpty(req.AcademicYear, exam.AcademicYear)
	if start == "" || end == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startTime and endTime are required until the exam has default times")
	}
	if year == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academicYear is required until the exam has a default academic year")
	}
	startAt, err := parseClock(start, "startTime")
	if err != nil {
		return nil, err
	}
	endAt, err := parseClock(end, "endTime")
	if err != nil {
		return nil, err
	}
	if !endAt.After(startAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}
	start, end = startAt.Format(clockLayout), endAt.Format(clockLayout)

	seeded := seedDefaults(exam, start, end, year)
	entry := &models.ExamSchedule{
		ExamID:       examID,
		DepartmentID: req.DepartmentID,
		SubjectID:    req.SubjectID,
		ExamDate:     date,
		StartTime:    start,
		EndTime:      end,
		AcademicYear: year,
		Section:      req.Section,
	}

	release, err := lockDates(ctx, s.locker, examID, []time.Time{date})
	if err != nil {
		return nil, err
	}

	var removed int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.exams.CreateEntry(ctx, tx, entry); err != nil {
			return err
		}
		if seeded {
			if err := s.exams.UpdateExamDefaults(ctx, tx, exam); err != nil {
				return err
			}
		}
		var err error
		removed, err = s.allocations.DeleteByExamDate(ctx, tx, examID, date)
		return err
	})
	// the regeneration job takes the same lock
	release()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add exam entry")
	}

	s.afterDateChange(ctx, examID, req.ExamDate, removed, "entry_added")
	return entry, nil
}

// DeleteEntry removes a timetable entry and the allocation of its date.
func (s *ExamScheduleService) DeleteEntry(ctx context.Context, id string) error {
	entry, err := s.exams.FindEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam entry")
	}

	release, err := lockDates(ctx, s.locker, entry.ExamID, []time.Time{entry.ExamDate})
	if err != nil {
		return err
	}

	var removed int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.exams.DeleteEntry(ctx, tx, id); err != nil {
			return err
		}
		var err error
		removed, err = s.allocations.DeleteByExamDate(ctx, tx, entry.ExamID, entry.ExamDate)
		return err
	})
	release()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam entry")
	}

	s.afterDateChange(ctx, entry.ExamID, entry.ExamDate.Format(dateLayout), removed, "entry_deleted")
	return nil
}

// ClearEntries removes every timetable entry of an exam together with all of its allocations.
func (s *ExamScheduleService) ClearEntries(ctx context.Context, examID string) (*dto.ClearEntriesResponse, error) {
	if _, err := s.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	release, err := s.lockExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	defer release()

	resp := &dto.ClearEntriesResponse{ExamID: examID}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if resp.AllocationsRemoved, err = s.allocations.DeleteByExam(ctx, tx, examID); err != nil {
			return err
		}
		resp.EntriesRemoved, err = s.exams.DeleteEntriesByExam(ctx, tx, examID)
		return err
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear exam entries")
	}

	s.notifier.NotifyCleared(ctx, examID, "", resp.AllocationsRemoved, "entries_cleared")
	return resp, nil
}

// DeleteExam removes an exam with its timetable and allocations.
func (s *ExamScheduleService) DeleteExam(ctx context.Context, examID string) error {
	release, err := s.lockExam(ctx, examID)
	if err != nil {
		return err
	}
	defer release()

	var removed int64
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if removed, err = s.allocations.DeleteByExam(ctx, tx, examID); err != nil {
			return err
		}
		if _, err = s.exams.DeleteEntriesByExam(ctx, tx, examID); err != nil {
			return err
		}
		return s.exams.DeleteExam(ctx, tx, examID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}

	s.notifier.NotifyCleared(ctx, examID, "", removed, "exam_deleted")
	return nil
}

// lockExam locks every date that has a timetable entry or an allocation.
func (s *ExamScheduleService) lockExam(ctx context.Context, examID string) (func(), error) {
	entries, err := s.exams.ListEntries(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam entries")
	}
	dates, err := s.allocations.ListDates(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocation dates")
	}
	for _, entry := range entries {
		dates = append(dates, entry.ExamDate)
	}
	return lockDates(ctx, s.locker, examID, dates)
}

func (s *ExamScheduleService) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ExamScheduleService) afterDateChange(ctx context.Context, examID, date string, removed int64, reason string) {
	s.notifier.NotifyCleared(ctx, examID, date, removed, reason)
	if !s.autoRegenerate {
		return
	}
	if err := s.notifier.ScheduleRegenerate(examID, date); err != nil {
		s.logger.Warn("schedule allocation regeneration",
			zap.String("exam_id", examID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
}

// seedDefaults fills the exam defaults that are still unset and reports whether any changed.
func seedDefaults(exam *models.Exam, start, end, year string) bool {
	changed := false
	if exam.DefaultStartTime == nil || *exam.DefaultStartTime == "" {
		exam.DefaultStartTime = &start
		changed = true
	}
	if exam.DefaultEndTime == nil || *exam.DefaultEndTime == "" {
		exam.DefaultEndTime = &end
		changed = true
	}
	if exam.AcademicYear == nil || *exam.AcademicYear == "" {
		exam.AcademicYear = &year
		changed = true
	}
	return changed
}

// parseClock reads an HH:MM time of day. Single-digit hours are accepted.
func parseClock(value, field string) (time.Time, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" must be a HH:MM time")
	}
	return t, nil
}

func normalizeClockPtr(value *string, field string) (*string, error) {
	if value == nil || *value == "" {
		return value, nil
	}
	t, err := parseClock(*value, field)
	if err != nil {
		return nil, err
	}
	formatted := t.Format(clockLayout)
	return &formatted, nil
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
