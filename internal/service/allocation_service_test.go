package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	"github.com/noah-isme/exam-seat-api/internal/events"
	"github.com/noah-isme/exam-seat-api/internal/models"
	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
	"github.com/noah-isme/exam-seat-api/pkg/export"
	"github.com/noah-isme/exam-seat-api/pkg/jobs"
	"github.com/noah-isme/exam-seat-api/pkg/lock"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type examReaderStub struct {
	err error
}

func (e examReaderStub) FindExamByID(ctx context.Context, id string) (*models.Exam, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &models.Exam{ID: id, Name: "Semester Finals"}, nil
}

type hallListerStub struct {
	halls []models.ExamHall
}

func (h hallListerStub) ListOrdered(ctx context.Context) ([]models.ExamHall, error) {
	return h.halls, nil
}

type studentListerStub struct {
	students []models.EligibleStudent
}

func (s studentListerStub) ListEligible(ctx context.Context, examID string, date time.Time) ([]models.EligibleStudent, error) {
	return s.students, nil
}

type allocationStoreStub struct {
	insertErrs []error
	deleteErr  error
	removed    int64
	deletes    int
	inserted   [][]models.SeatAllocation
	listed     []models.SeatAllocationDetail
	listCalls  int
	dates      []time.Time
	onList     func()
}

func (a *allocationStoreStub) DeleteByExamDate(ctx context.Context, exec sqlx.ExtContext, examID string, date time.Time) (int64, error) {
	a.deletes++
	if a.deleteErr != nil {
		return 0, a.deleteErr
	}
	return a.removed, nil
}

func (a *allocationStoreStub) DeleteByExam(ctx context.Context, exec sqlx.ExtContext, examID string) (int64, error) {
	a.deletes++
	return a.removed, a.deleteErr
}

func (a *allocationStoreStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.SeatAllocation) error {
	if len(a.insertErrs) > 0 {
		err := a.insertErrs[0]
		a.insertErrs = a.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	copied := make([]models.SeatAllocation, len(rows))
	copy(copied, rows)
	a.inserted = append(a.inserted, copied)
	return nil
}

func (a *allocationStoreStub) ListByExamDate(ctx context.Context, examID string, date time.Time) ([]models.SeatAllocationDetail, error) {
	a.listCalls++
	if a.onList != nil {
		a.onList()
	}
	return a.listed, nil
}

func (a *allocationStoreStub) ListDates(ctx context.Context, examID string) ([]time.Time, error) {
	return a.dates, nil
}

type lockStub struct {
	err   error
	calls int
	keys  []string
}

func (l *lockStub) Acquire(ctx context.Context, key string) (func(), error) {
	l.calls++
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	return func() {}, nil
}

type publisherStub struct {
	keys []string
}

func (p *publisherStub) Publish(ctx context.Context, key string, payload interface{}) error {
	p.keys = append(p.keys, key)
	return nil
}

func (p *publisherStub) Close() error { return nil }

type queueStub struct {
	err  error
	jobs []jobs.Job
}

func (q *queueStub) Enqueue(job jobs.Job) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, job)
	return "job-1", nil
}

type allocationFixture struct {
	svc       *AllocationService
	mock      sqlmock.Sqlmock
	store     *allocationStoreStub
	locker    lock.Locker
	publisher *publisherStub
	metrics   *MetricsService
	cache     *cacheRepoStub
}

func seatingHalls(capacities ...int) []models.ExamHall {
	halls := make([]models.ExamHall, 0, len(capacities))
	for i, capacity := range capacities {
		halls = append(halls, models.ExamHall{
			ID:         fmt.Sprintf("hall-%d", i+1),
			HallNumber: fmt.Sprintf("%d", 101+i),
			Capacity:   capacity,
		})
	}
	return halls
}

func eligibleStudents(dept, subject string, count int) []models.EligibleStudent {
	students := make([]models.EligibleStudent, 0, count)
	for i := 1; i <= count; i++ {
		students = append(students, models.EligibleStudent{
			ID:           fmt.Sprintf("%s-%03d", dept, i),
			RollNumber:   fmt.Sprintf("%d", i),
			FullName:     fmt.Sprintf("%s student %d", dept, i),
			DepartmentID: dept,
			SubjectID:    subject,
		})
	}
	return students
}

func newAllocationFixture(t *testing.T, halls []models.ExamHall, students []models.EligibleStudent, locker lock.Locker) *allocationFixture {
	tx, mock := newTxProviderMock(t)
	store := &allocationStoreStub{}
	publisher := &publisherStub{}
	metrics := NewMetricsService()
	cacheRepo := newCacheRepoStub()
	if locker == nil {
		locker = lock.NewLocal(0)
	}
	svc := NewAllocationService(
		examReaderStub{},
		hallListerStub{halls: halls},
		studentListerStub{students: students},
		store,
		tx,
		locker,
		NewCacheService(cacheRepo, metrics, time.Minute, nil, true),
		metrics,
		events.NewEmitter(publisher, nil),
		nil,
		nil,
		AllocationConfig{SeatsPerBench: 3, RetryBackoff: time.Millisecond},
	)
	return &allocationFixture{svc: svc, mock: mock, store: store, locker: locker, publisher: publisher, metrics: metrics, cache: cacheRepo}
}

var generateRequest = dto.GenerateAllocationRequest{ExamID: "exam-1", Date: "2024-05-01"}

func TestAllocationServiceGenerateTwoDepartments(t *testing.T) {
	students := append(eligibleStudents("A", "math", 50), eligibleStudents("B", "physics", 40)...)
	fx := newAllocationFixture(t, seatingHalls(45, 45, 45), students, nil)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	summary, err := fx.svc.Generate(context.Background(), generateRequest)

	require.NoError(t, err)
	assert.Equal(t, 90, summary.SeatsUsed)
	assert.Equal(t, 2, summary.HallsUsed)
	assert.Equal(t, []string{"hall-1", "hall-2"}, summary.HallIDs)
	assert.Zero(t, summary.StudentsUnseated)
	assert.Equal(t, 1, summary.Attempts)
	assert.Equal(t, 1, fx.store.deletes)
	require.Len(t, fx.store.inserted, 1)
	assert.Len(t, fx.store.inserted[0], 90)

	seats := map[string]bool{}
	for _, row := range fx.store.inserted[0] {
		key := fmt.Sprintf("%s/%d/%d", row.HallID, row.BenchNumber, row.Position)
		assert.False(t, seats[key], "seat %s assigned twice", key)
		seats[key] = true
		assert.Equal(t, "2024-05-01", row.ExamDate.Format(dateLayout))
	}

	assert.Equal(t, []string{events.AllocationGenerated}, fx.publisher.keys)
	assert.Equal(t, []string{AllocationListKey("exam-1", "2024-05-01")}, fx.cache.patterns)
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.metrics.allocationRuns.WithLabelValues(OutcomeSuccess)))
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceCapacityExceededTouchesNothing(t *testing.T) {
	students := append(eligibleStudents("A", "math", 60), eligibleStudents("B", "math", 40)...)
	fx := newAllocationFixture(t, seatingHalls(45, 45), students, nil)

	_, err := fx.svc.Generate(context.Background(), generateRequest)

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
	appErr := appErrors.FromError(err)
	assert.Equal(t, 10, appErr.Details["shortfall"])
	assert.Zero(t, fx.store.deletes)
	assert.Empty(t, fx.store.inserted)
	assert.Empty(t, fx.publisher.keys)
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.metrics.allocationRuns.WithLabelValues(OutcomeCapacity)))
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceNoHallsIsCapacityExceeded(t *testing.T) {
	fx := newAllocationFixture(t, nil, eligibleStudents("A", "math", 12), nil)

	_, err := fx.svc.Generate(context.Background(), generateRequest)

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
	assert.Equal(t, 12, appErrors.FromError(err).Details["shortfall"])
	assert.Zero(t, fx.store.deletes)
	assert.Empty(t, fx.store.inserted)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceRetriesDatabaseConflictOnce(t *testing.T) {
	fx := newAllocationFixture(t, seatingHalls(45), eligibleStudents("A", "math", 10), nil)
	fx.store.insertErrs = []error{&pq.Error{Code: "40001"}}
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	summary, err := fx.svc.Generate(context.Background(), generateRequest)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Attempts)
	assert.Equal(t, 10, summary.SeatsUsed)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceSurfacesConflictAfterRetry(t *testing.T) {
	busy := &lockStub{err: lock.ErrLockBusy}
	fx := newAllocationFixture(t, seatingHalls(45), eligibleStudents("A", "math", 10), busy)

	_, err := fx.svc.Generate(context.Background(), generateRequest)

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrGenerationConflict))
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Equal(t, 2, busy.calls)
	assert.True(t, RetryableJobError(err))
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceStorageErrorRollsBack(t *testing.T) {
	fx := newAllocationFixture(t, seatingHalls(45), eligibleStudents("A", "math", 10), nil)
	fx.store.deleteErr = errors.New("disk full")
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.svc.Generate(context.Background(), generateRequest)

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStorage))
	assert.Empty(t, fx.store.inserted)
	assert.Empty(t, fx.publisher.keys)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceZeroEligibleReplacesPreviousRows(t *testing.T) {
	fx := newAllocationFixture(t, seatingHalls(45), nil, nil)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	summary, err := fx.svc.Generate(context.Background(), generateRequest)

	require.NoError(t, err)
	assert.Zero(t, summary.SeatsUsed)
	assert.Zero(t, summary.HallsUsed)
	assert.Equal(t, 1, fx.store.deletes)
	require.Len(t, fx.store.inserted, 1)
	assert.Empty(t, fx.store.inserted[0])
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceDeterministicRows(t *testing.T) {
	students := append(append(eligibleStudents("CSE", "ds", 37), eligibleStudents("ECE", "sig", 22)...), eligibleStudents("ME", "thermo", 18)...)
	fx := newAllocationFixture(t, seatingHalls(45, 45, 45), students, nil)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	_, err := fx.svc.Generate(context.Background(), generateRequest)
	require.NoError(t, err)
	_, err = fx.svc.Regenerate(context.Background(), generateRequest)
	require.NoError(t, err)

	require.Len(t, fx.store.inserted, 2)
	assert.Equal(t, fx.store.inserted[0], fx.store.inserted[1])
}

func TestAllocationServiceGenerateValidation(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)

	_, err := fx.svc.Generate(context.Background(), dto.GenerateAllocationRequest{ExamID: "exam-1", Date: "2024-13-01"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = fx.svc.Generate(context.Background(), dto.GenerateAllocationRequest{Date: "2024-05-01"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAllocationServiceGenerateUnknownExam(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)
	fx.svc.exams = examReaderStub{err: sql.ErrNoRows}

	_, err := fx.svc.Generate(context.Background(), generateRequest)

	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAllocationServiceClearForDate(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)
	fx.store.removed = 90
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.ClearForDate(context.Background(), "exam-1", "2024-05-01")

	require.NoError(t, err)
	assert.Equal(t, int64(90), resp.Removed)
	assert.Equal(t, []string{events.AllocationCleared}, fx.publisher.keys)
	assert.Equal(t, []string{AllocationListKey("exam-1", "2024-05-01")}, fx.cache.patterns)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceClearIsIdempotent(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	first, err := fx.svc.ClearForExam(context.Background(), "exam-1")
	require.NoError(t, err)
	second, err := fx.svc.ClearForExam(context.Background(), "exam-1")
	require.NoError(t, err)

	assert.Zero(t, first.Removed)
	assert.Zero(t, second.Removed)
	assert.Equal(t, []string{AllocationExamPattern("exam-1"), AllocationExamPattern("exam-1")}, fx.cache.patterns)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceClearForDateBusy(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, &lockStub{err: lock.ErrLockBusy})

	_, err := fx.svc.ClearForDate(context.Background(), "exam-1", "2024-05-01")

	assert.True(t, errors.Is(err, appErrors.ErrGenerationConflict))
}

func TestAllocationServiceClearForExamLocksAllocatedDates(t *testing.T) {
	busy := &lockStub{err: lock.ErrLockBusy}
	fx := newAllocationFixture(t, nil, nil, busy)
	fx.store.dates = []time.Time{time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

	_, err := fx.svc.ClearForExam(context.Background(), "exam-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrGenerationConflict))
	assert.Equal(t, []string{"exam-1|2024-05-01"}, busy.keys)
	assert.Zero(t, fx.store.deletes)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceListCachesRows(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)
	fx.store.listed = []models.SeatAllocationDetail{{HallNumber: "101"}}
	fx.svc.cache = NewCacheService(&memoryCache{store: map[string][]models.SeatAllocationDetail{}}, nil, time.Minute, nil, true)
	query := dto.AllocationQuery{ExamID: "exam-1", Date: "2024-05-01"}

	rows, hit, err := fx.svc.List(context.Background(), query)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 1)

	rows, hit, err = fx.svc.List(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "101", rows[0].HallNumber)
	assert.Equal(t, 1, fx.store.listCalls)
}

func TestAllocationServiceListSkipsCachingRowsClearedDuringRead(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)
	memory := &memoryCache{store: map[string][]models.SeatAllocationDetail{}}
	fx.svc.cache = NewCacheService(memory, nil, time.Minute, nil, true)
	fx.store.listed = []models.SeatAllocationDetail{{HallNumber: "101"}}
	// a regeneration commits and invalidates while the listing query is in flight
	fx.store.onList = func() {
		fx.svc.NotifyCleared(context.Background(), "exam-1", "2024-05-01", 1, "cleared")
	}
	query := dto.AllocationQuery{ExamID: "exam-1", Date: "2024-05-01"}

	rows, hit, err := fx.svc.List(context.Background(), query)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 1)
	assert.Empty(t, memory.store)

	fx.store.onList = nil
	_, hit, err = fx.svc.List(context.Background(), query)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, fx.store.listCalls)
	assert.Len(t, memory.store, 1)
}

func TestAllocationServiceListRequiresDate(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)

	_, _, err := fx.svc.List(context.Background(), dto.AllocationQuery{ExamID: "exam-1"})

	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAllocationServiceCapacityPlan(t *testing.T) {
	fx := newAllocationFixture(t, seatingHalls(45, 45), eligibleStudents("A", "math", 100), nil)

	plan, err := fx.svc.Capacity(context.Background(), dto.AllocationQuery{ExamID: "exam-1", Date: "2024-05-01"})

	require.NoError(t, err)
	assert.False(t, plan.Feasible)
	assert.Equal(t, 10, plan.Shortfall)
	assert.Equal(t, 90, plan.TotalCapacity)
	assert.Empty(t, plan.SelectedHalls)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestAllocationServiceExport(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)
	fx.store.listed = []models.SeatAllocationDetail{{
		SeatAllocation: models.SeatAllocation{BenchNumber: 1, Position: 2},
		HallNumber:     "101",
		RollNumber:     "21CS001",
		StudentName:    "Ada",
		DepartmentName: "CSE",
		SubjectName:    "Data Structures",
	}}

	doc, err := fx.svc.Export(context.Background(), dto.AllocationQuery{ExamID: "exam-1", Date: "2024-05-01"})

	require.NoError(t, err)
	assert.Equal(t, "seating-exam-1-2024-05-01.csv", doc.Filename)
	assert.Equal(t, export.ContentTypeCSV, doc.ContentType)
	lines := strings.Split(strings.TrimSpace(string(doc.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "hall_number,bench_number,position,roll_number,student_name,department,subject", lines[0])
	assert.Equal(t, "101,1,2,21CS001,Ada,CSE,Data Structures", lines[1])

	_, err = fx.svc.Export(context.Background(), dto.AllocationQuery{ExamID: "exam-1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAllocationServiceEnqueueRegenerate(t *testing.T) {
	fx := newAllocationFixture(t, nil, nil, nil)

	_, err := fx.svc.EnqueueRegenerate(context.Background(), generateRequest)
	assert.True(t, errors.Is(err, appErrors.ErrServiceUnavailable))

	queue := &queueStub{}
	fx.svc.AttachQueue(queue)
	resp, err := fx.svc.EnqueueRegenerate(context.Background(), generateRequest)
	require.NoError(t, err)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "job-1", resp.JobID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "exam-1|2024-05-01", queue.jobs[0].Key)

	queue.err = jobs.ErrAlreadyQueued
	resp, err = fx.svc.EnqueueRegenerate(context.Background(), generateRequest)
	require.NoError(t, err)
	assert.Equal(t, "already_queued", resp.Status)
}

func TestAllocationServiceHandleRegenerateJob(t *testing.T) {
	fx := newAllocationFixture(t, seatingHalls(45), eligibleStudents("A", "math", 3), nil)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	err := fx.svc.HandleRegenerateJob(context.Background(), jobs.Job{ID: "job-1", Payload: generateRequest})
	require.NoError(t, err)
	assert.Len(t, fx.store.inserted[0], 3)

	err = fx.svc.HandleRegenerateJob(context.Background(), jobs.Job{ID: "job-2", Payload: "bogus"})
	assert.Error(t, err)
}

type memoryCache struct {
	store map[string][]models.SeatAllocationDetail
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	rows, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.SeatAllocationDetail)) = rows
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.store[key] = value.([]models.SeatAllocationDetail)
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(m.store, pattern)
	return nil
}

func TestAllocationServiceDates(t *testing.T) {
	f := newAllocationFixture(t, nil, nil, nil)
	f.store.dates = []time.Time{
		time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
	}

	dates, err := f.svc.Dates(context.Background(), "exam-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-10", "2024-05-12"}, dates)
}
