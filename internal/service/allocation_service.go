package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	"github.com/noah-isme/exam-seat-api/internal/events"
	"github.com/noah-isme/exam-seat-api/internal/models"
	"github.com/noah-isme/exam-seat-api/internal/seating"
	"github.com/noah-isme/exam-seat-api/pkg/database"
	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
	"github.com/noah-isme/exam-seat-api/pkg/export"
	"github.com/noah-isme/exam-seat-api/pkg/jobs"
	"github.com/noah-isme/exam-seat-api/pkg/lock"
)

const (
	dateLayout = "2006-01-02"

	// RegenerateJobType identifies queued regeneration jobs.
	RegenerateJobType = "allocation.regenerate"

	triggerGenerate   = "generate"
	triggerRegenerate = "regenerate"
	triggerAsync      = "async"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type examReader interface {
	FindExamByID(ctx context.Context, id string) (*models.Exam, error)
}

type hallLister interface {
	ListOrdered(ctx context.Context) ([]models.ExamHall, error)
}

type eligibleStudentLister interface {
	ListEligible(ctx context.Context, examID string, date time.Time) ([]models.EligibleStudent, error)
}

type allocationStore interface {
	DeleteByExamDate(ctx context.Context, exec sqlx.ExtContext, examID string, date time.Time) (int64, error)
	DeleteByExam(ctx context.Context, exec sqlx.ExtContext, examID string) (int64, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.SeatAllocation) error
	ListByExamDate(ctx context.Context, examID string, date time.Time) ([]models.SeatAllocationDetail, error)
	ListDates(ctx context.Context, examID string) ([]time.Time, error)
}

type jobQueue interface {
	Enqueue(job jobs.Job) (string, error)
}

// AllocationConfig governs allocation runs.
type AllocationConfig struct {
	SeatsPerBench int
	MaxAttempts   int
	RetryBackoff  time.Duration
	CacheTTL      time.Duration
}

// AllocationService generates, lists and clears seat allocations per (exam, date).
type AllocationService struct {
	exams       examReader
	halls       hallLister
	students    eligibleStudentLister
	allocations allocationStore
	tx          txProvider
	locker      lock.Locker
	cache       *CacheService
	metrics     *MetricsService
	events      *events.Emitter
	engine      *seating.Engine
	exporter    *export.CSVExporter
	queue       jobQueue
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         AllocationConfig
	now         func() time.Time
}

// NewAllocationService wires allocation dependencies. Optional collaborators may be nil.
func NewAllocationService(
	exams examReader,
	halls hallLister,
	students eligibleStudentLister,
	allocations allocationStore,
	tx txProvider,
	locker lock.Locker,
	cache *CacheService,
	metrics *MetricsService,
	emitter *events.Emitter,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AllocationConfig,
) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocal(5 * time.Second)
	}
	if emitter == nil {
		emitter = events.NewEmitter(nil, logger)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	return &AllocationService{
		exams:       exams,
		halls:       halls,
		students:    students,
		allocations: allocations,
		tx:          tx,
		locker:      locker,
		cache:       cache,
		metrics:     metrics,
		events:      emitter,
		engine:      seating.NewEngine(cfg.SeatsPerBench),
		exporter:    export.NewCSVExporter(),
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AttachQueue enables asynchronous regeneration through q.
func (s *AllocationService) AttachQueue(q jobQueue) {
	s.queue = q
}

// Generate computes and persists the seat allocation for an (exam, date) key, replacing any
// previous allocation for the key.
func (s *AllocationService) Generate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.AllocationSummary, error) {
	return s.run(ctx, req, triggerGenerate)
}

// Regenerate recomputes the allocation of a key from scratch.
func (s *AllocationService) Regenerate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.AllocationSummary, error) {
	return s.run(ctx, req, triggerRegenerate)
}

func (s *AllocationService) run(ctx context.Context, req dto.GenerateAllocationRequest, trigger string) (*dto.AllocationSummary, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExam(ctx, req.ExamID); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if attempt > 1 && s.cfg.RetryBackoff > 0 {
			if err := sleepContext(ctx, s.cfg.RetryBackoff); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "allocation run cancelled")
			}
		}

		result, err := s.attempt(ctx, req.ExamID, date)
		if err == nil {
			summary := s.summarize(req, result, attempt)
			s.afterGenerate(ctx, summary, trigger, time.Since(start))
			return summary, nil
		}
		if !retryable(err) {
			s.metrics.RecordAllocationRun(outcomeOf(err), time.Since(start))
			return nil, err
		}
		lastErr = err
		s.logger.Warn("allocation run conflicted",
			zap.String("exam_id", req.ExamID),
			zap.String("date", req.Date),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	s.metrics.RecordAllocationRun(OutcomeConflict, time.Since(start))
	return nil, appErrors.Wrap(lastErr, appErrors.ErrGenerationConflict.Code, appErrors.ErrGenerationConflict.Status, appErrors.ErrGenerationConflict.Message)
}

// attempt performs one locked load, compute and persist cycle. Lock contention and database
// conflicts are returned unwrapped so the caller can retry them.
func (s *AllocationService) attempt(ctx context.Context, examID string, date time.Time) (*seating.Result, error) {
	release, err := s.locker.Acquire(ctx, lockKey(examID, date))
	if err != nil {
		if errors.Is(err, lock.ErrLockBusy) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire allocation lock")
	}
	defer release()

	halls, students, err := s.loadInputs(ctx, examID, date)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Run(students, halls)
	if err != nil {
		return nil, capacityError(err)
	}

	if err := s.persist(ctx, examID, date, result.Placements); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AllocationService) loadInputs(ctx context.Context, examID string, date time.Time) ([]seating.Hall, []seating.Student, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("allocation_inputs", time.Since(start)) }()

	hallRows, err := s.halls.ListOrdered(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load exam halls")
	}
	studentRows, err := s.students.ListEligible(ctx, examID, date)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load eligible students")
	}
	return toSeatingHalls(hallRows), toSeatingStudents(studentRows), nil
}

func (s *AllocationService) persist(ctx context.Context, examID string, date time.Time, placements []seating.Placement) (err error) {
	rows := make([]models.SeatAllocation, 0, len(placements))
	for _, p := range placements {
		rows = append(rows, models.SeatAllocation{
			ExamID:       examID,
			ExamDate:     date,
			HallID:       p.HallID,
			DepartmentID: p.Student.DepartmentID,
			SubjectID:    p.Student.SubjectID,
			StudentID:    p.Student.ID,
			BenchNumber:  p.Bench,
			Position:     p.Position,
		})
	}

	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("allocation_persist", time.Since(start)) }()

	tx, err := s.tx.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return storageError(err, "failed to begin allocation transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.allocations.DeleteByExamDate(ctx, tx, examID, date); err != nil {
		return storageError(err, "failed to remove previous allocation")
	}
	if err = s.allocations.InsertBatch(ctx, tx, rows); err != nil {
		return storageError(err, "failed to store allocation")
	}
	if err = tx.Commit(); err != nil {
		return storageError(err, "failed to commit allocation")
	}
	return nil
}

func (s *AllocationService) summarize(req dto.GenerateAllocationRequest, result *seating.Result, attempts int) *dto.AllocationSummary {
	hallIDs := make([]string, 0, len(result.Plan.Selected))
	for _, hall := range result.Plan.Selected {
		hallIDs = append(hallIDs, hall.ID)
	}
	return &dto.AllocationSummary{
		ExamID:           req.ExamID,
		Date:             req.Date,
		Eligible:         result.Summary.Eligible,
		SeatsUsed:        result.Summary.SeatsUsed,
		SeatsAvailable:   result.Summary.SeatsAvailable,
		HallsUsed:        result.Summary.HallsUsed,
		HallIDs:          hallIDs,
		StudentsUnseated: result.Summary.StudentsUnseated,
		SharedBenches:    result.Summary.SharedBenches,
		Attempts:         attempts,
		GeneratedAt:      s.now(),
	}
}

func (s *AllocationService) afterGenerate(ctx context.Context, summary *dto.AllocationSummary, trigger string, elapsed time.Duration) {
	_ = s.cache.Invalidate(ctx, AllocationListKey(summary.ExamID, summary.Date))
	s.metrics.RecordAllocationRun(OutcomeSuccess, elapsed)
	s.metrics.SetAllocationResult(summary.SeatsUsed, summary.SharedBenches)
	s.events.Generated(ctx, events.AllocationGeneratedEvent{
		ExamID:        summary.ExamID,
		ExamDate:      summary.Date,
		Eligible:      summary.Eligible,
		SeatsUsed:     summary.SeatsUsed,
		HallsUsed:     summary.HallsUsed,
		HallIDs:       summary.HallIDs,
		SharedBenches: summary.SharedBenches,
		Trigger:       trigger,
		OccurredAt:    summary.GeneratedAt,
	})
	s.logger.Info("allocation generated",
		zap.String("exam_id", summary.ExamID),
		zap.String("date", summary.Date),
		zap.String("trigger", trigger),
		zap.Int("seats_used", summary.SeatsUsed),
		zap.Int("halls_used", summary.HallsUsed),
		zap.Int("shared_benches", summary.SharedBenches),
		zap.Int("attempts", summary.Attempts),
		zap.Duration("elapsed", elapsed),
	)
}

// ClearForDate removes the allocation of one exam date. Clearing an empty key succeeds.
func (s *AllocationService) ClearForDate(ctx context.Context, examID, date string) (*dto.ClearAllocationResponse, error) {
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examId is required")
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lockKey(examID, day))
	if err != nil {
		return nil, lockError(err)
	}
	defer release()

	removed, err := s.clear(ctx, func(exec sqlx.ExtContext) (int64, error) {
		return s.allocations.DeleteByExamDate(ctx, exec, examID, day)
	})
	if err != nil {
		return nil, err
	}
	s.NotifyCleared(ctx, examID, date, removed, "cleared")
	return &dto.ClearAllocationResponse{ExamID: examID, Date: date, Removed: removed}, nil
}

// ClearForExam removes the allocations of every date of an exam.
func (s *AllocationService) ClearForExam(ctx context.Context, examID string) (*dto.ClearAllocationResponse, error) {
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examId is required")
	}
	days, err := s.allocations.ListDates(ctx, examID)
	if err != nil {
		return nil, storageError(err, "failed to list allocation dates")
	}
	release, err := lockDates(ctx, s.locker, examID, days)
	if err != nil {
		return nil, err
	}
	defer release()

	removed, err := s.clear(ctx, func(exec sqlx.ExtContext) (int64, error) {
		return s.allocations.DeleteByExam(ctx, exec, examID)
	})
	if err != nil {
		return nil, err
	}
	s.NotifyCleared(ctx, examID, "", removed, "cleared")
	return &dto.ClearAllocationResponse{ExamID: examID, Removed: removed}, nil
}

func (s *AllocationService) clear(ctx context.Context, del func(exec sqlx.ExtContext) (int64, error)) (removed int64, err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, storageError(err, "failed to begin clear transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if removed, err = del(tx); err != nil {
		return 0, storageError(err, "failed to clear allocation")
	}
	if err = tx.Commit(); err != nil {
		return 0, storageError(err, "failed to commit clear")
	}
	return removed, nil
}

// NotifyCleared invalidates cached listings and publishes a cleared event. An empty date covers
// the whole exam.
func (s *AllocationService) NotifyCleared(ctx context.Context, examID, date string, removed int64, reason string) {
	pattern := AllocationExamPattern(examID)
	if date != "" {
		pattern = AllocationListKey(examID, date)
	}
	_ = s.cache.Invalidate(ctx, pattern)
	s.events.Cleared(ctx, events.AllocationClearedEvent{ExamID: examID, ExamDate: date, Removed: removed, Reason: reason})
	s.logger.Info("allocation cleared",
		zap.String("exam_id", examID),
		zap.String("date", date),
		zap.Int64("removed", removed),
		zap.String("reason", reason),
	)
}

// List returns the stored allocation of a key in seat order. The boolean reports a cache hit.
func (s *AllocationService) List(ctx context.Context, query dto.AllocationQuery) ([]models.SeatAllocationDetail, bool, error) {
	date, err := s.validateQuery(query)
	if err != nil {
		return nil, false, err
	}

	key := AllocationListKey(query.ExamID, query.Date)
	var cached []models.SeatAllocationDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}
	gen := s.cache.Generation()

	rows, err := s.allocations.ListByExamDate(ctx, query.ExamID, date)
	if err != nil {
		return nil, false, storageError(err, "failed to list allocation")
	}
	if rows == nil {
		rows = []models.SeatAllocationDetail{}
	}
	_, _ = s.cache.SetIfCurrent(ctx, key, rows, s.cfg.CacheTTL, gen)
	return rows, false, nil
}

// Dates lists the exam dates that currently hold an allocation.
func (s *AllocationService) Dates(ctx context.Context, examID string) ([]string, error) {
	if err := s.ensureExam(ctx, examID); err != nil {
		return nil, err
	}
	days, err := s.allocations.ListDates(ctx, examID)
	if err != nil {
		return nil, storageError(err, "failed to list allocation dates")
	}
	dates := make([]string, 0, len(days))
	for _, day := range days {
		dates = append(dates, day.Format(dateLayout))
	}
	return dates, nil
}

// Capacity runs the planner for a key without persisting anything.
func (s *AllocationService) Capacity(ctx context.Context, query dto.AllocationQuery) (*dto.CapacityPlanResponse, error) {
	date, err := s.validateQuery(query)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExam(ctx, query.ExamID); err != nil {
		return nil, err
	}
	halls, students, err := s.loadInputs(ctx, query.ExamID, date)
	if err != nil {
		return nil, err
	}

	plan := s.engine.Plan(len(students), halls)
	selected := make([]dto.CapacityHall, 0, len(plan.Selected))
	for _, hall := range plan.Selected {
		selected = append(selected, dto.CapacityHall{ID: hall.ID, HallNumber: hall.OrderKey, Seats: hall.Seats(s.engine.SeatsPerBench)})
	}
	return &dto.CapacityPlanResponse{
		ExamID:           query.ExamID,
		Date:             query.Date,
		Eligible:         plan.Eligible,
		RequiredHalls:    plan.Required,
		SelectedHalls:    selected,
		TotalCapacity:    plan.TotalCapacity,
		SelectedCapacity: plan.SelectedCapacity,
		Shortfall:        plan.Shortfall,
		Feasible:         plan.Shortfall == 0,
	}, nil
}

// Export renders the stored allocation of a key as a CSV document.
func (s *AllocationService) Export(ctx context.Context, query dto.AllocationQuery) (*export.Document, error) {
	rows, _, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"hall_number", "bench_number", "position", "roll_number", "student_name", "department", "subject"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, []string{
			row.HallNumber,
			fmt.Sprintf("%d", row.BenchNumber),
			fmt.Sprintf("%d", row.Position),
			row.RollNumber,
			row.StudentName,
			row.DepartmentName,
			row.SubjectName,
		})
	}

	body, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render allocation export")
	}
	return &export.Document{
		Filename:    fmt.Sprintf("seating-%s-%s.csv", query.ExamID, query.Date),
		ContentType: export.ContentTypeCSV,
		Body:        body,
	}, nil
}

// EnqueueRegenerate queues a background regeneration of a key. A key that is already queued is
// reported with status already_queued.
func (s *AllocationService) EnqueueRegenerate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.RegenerateJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	if err := s.ensureExam(ctx, req.ExamID); err != nil {
		return nil, err
	}
	return s.enqueue(req)
}

// ScheduleRegenerate queues a regeneration without checking the exam. It is used after timetable
// changes that already resolved the exam.
func (s *AllocationService) ScheduleRegenerate(examID, date string) error {
	_, err := s.enqueue(dto.GenerateAllocationRequest{ExamID: examID, Date: date})
	return err
}

func (s *AllocationService) enqueue(req dto.GenerateAllocationRequest) (*dto.RegenerateJobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "background regeneration is not enabled")
	}
	resp := &dto.RegenerateJobResponse{ExamID: req.ExamID, Date: req.Date, Status: "queued"}
	id, err := s.queue.Enqueue(jobs.Job{Type: RegenerateJobType, Key: req.Key(), Payload: req})
	switch {
	case errors.Is(err, jobs.ErrAlreadyQueued):
		resp.Status = "already_queued"
		return resp, nil
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to queue regeneration")
	}
	resp.JobID = id
	return resp, nil
}

// HandleRegenerateJob is the jobs.Handler for queued regenerations.
func (s *AllocationService) HandleRegenerateJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateAllocationRequest)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	_, err := s.run(ctx, req, triggerAsync)
	return err
}

// RetryableJobError reports whether a failed regeneration job is worth another attempt.
func RetryableJobError(err error) bool {
	return errors.Is(err, appErrors.ErrGenerationConflict) || errors.Is(err, appErrors.ErrStorage)
}

func (s *AllocationService) validateQuery(query dto.AllocationQuery) (time.Time, error) {
	if err := s.validator.Struct(query); err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation query")
	}
	if query.Date == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	return parseDate(query.Date)
}

func (s *AllocationService) ensureExam(ctx context.Context, examID string) error {
	if _, err := s.exams.FindExamByID(ctx, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load exam")
	}
	return nil
}

func toSeatingHalls(rows []models.ExamHall) []seating.Hall {
	halls := make([]seating.Hall, 0, len(rows))
	for _, row := range rows {
		halls = append(halls, seating.Hall{
			ID:            row.ID,
			OrderKey:      row.HallNumber,
			Capacity:      row.Capacity,
			BenchCount:    row.BenchCount,
			SeatsPerBench: row.SeatsPerBench,
		})
	}
	return halls
}

func toSeatingStudents(rows []models.EligibleStudent) []seating.Student {
	students := make([]seating.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, seating.Student{
			ID:           row.ID,
			RollNumber:   row.RollNumber,
			Name:         row.FullName,
			DepartmentID: row.DepartmentID,
			SubjectID:    row.SubjectID,
		})
	}
	return students
}

func capacityError(err error) error {
	var capErr *seating.CapacityError
	if errors.As(err, &capErr) {
		appErr := appErrors.WithDetails(appErrors.ErrCapacityExceeded, map[string]interface{}{
			"eligible":  capErr.Eligible,
			"capacity":  capErr.Capacity,
			"shortfall": capErr.Shortfall,
		})
		appErr.Message = fmt.Sprintf("%d eligible students exceed hall capacity %d by %d seats", capErr.Eligible, capErr.Capacity, capErr.Shortfall)
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "seat assignment failed")
}

// storageError keeps database conflicts unwrapped for the retry loop.
func storageError(err error, message string) error {
	if database.IsConflict(err) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, message)
}

func retryable(err error) bool {
	return errors.Is(err, lock.ErrLockBusy) || database.IsConflict(err)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrCapacityExceeded):
		return OutcomeCapacity
	case errors.Is(err, appErrors.ErrGenerationConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must use the YYYY-MM-DD format")
	}
	return date, nil
}

func lockKey(examID string, date time.Time) string {
	return examID + "|" + date.Format(dateLayout)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
