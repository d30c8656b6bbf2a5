package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	"github.com/noah-isme/exam-seat-api/internal/models"
	"github.com/noah-isme/exam-seat-api/pkg/database"
	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
)

type hallStore interface {
	ListOrdered(ctx context.Context) ([]models.ExamHall, error)
	FindByID(ctx context.Context, id string) (*models.ExamHall, error)
	Create(ctx context.Context, hall *models.ExamHall) error
	Delete(ctx context.Context, id string) error
}

// HallDefaults describes the standard hall used when a request omits its layout.
type HallDefaults struct {
	Capacity       int
	BenchesPerHall int
	SeatsPerBench  int
}

// HallService manages the exam hall pool.
type HallService struct {
	halls     hallStore
	defaults  HallDefaults
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHallService constructs a HallService.
func NewHallService(halls hallStore, defaults HallDefaults, validate *validator.Validate, logger *zap.Logger) *HallService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.SeatsPerBench <= 0 {
		defaults.SeatsPerBench = 3
	}
	if defaults.BenchesPerHall <= 0 {
		defaults.BenchesPerHall = 15
	}
	if defaults.Capacity <= 0 {
		defaults.Capacity = defaults.BenchesPerHall * defaults.SeatsPerBench
	}
	return &HallService{halls: halls, defaults: defaults, validator: validate, logger: logger}
}

// List returns the hall pool in allocation order.
func (s *HallService) List(ctx context.Context) ([]models.ExamHall, error) {
	halls, err := s.halls.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam halls")
	}
	if halls == nil {
		halls = []models.ExamHall{}
	}
	return halls, nil
}

// Get fetches a hall.
func (s *HallService) Get(ctx context.Context, id string) (*models.ExamHall, error) {
	hall, err := s.halls.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam hall not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam hall")
	}
	return hall, nil
}

// Create registers a hall. A hall without capacity or layout gets the standard hall; a partial
// layout is completed from capacity and the default bench size.
func (s *HallService) Create(ctx context.Context, req dto.CreateHallRequest) (*models.ExamHall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam hall payload")
	}
	hall, err := s.layout(req)
	if err != nil {
		return nil, err
	}
	if err := s.halls.Create(ctx, hall); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "hall number already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam hall")
	}
	s.logger.Info("exam hall created",
		zap.String("hall_id", hall.ID),
		zap.String("hall_number", hall.HallNumber),
		zap.Int("capacity", hall.Capacity),
	)
	return hall, nil
}

// Delete removes a hall that no seat allocation references.
func (s *HallService) Delete(ctx context.Context, id string) error {
	if err := s.halls.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "exam hall not found")
		case database.IsForeignKeyViolation(err):
			return appErrors.Clone(appErrors.ErrConflict, "exam hall is used by seat allocations; clear them before deleting the hall")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam hall")
	}
	return nil
}

func (s *HallService) layout(req dto.CreateHallRequest) (*models.ExamHall, error) {
	hall := &models.ExamHall{
		HallNumber:   req.HallNumber,
		BuildingName: req.BuildingName,
		Floor:        req.Floor,
	}

	if req.Capacity == nil && req.BenchCount == nil && req.SeatsPerBench == nil {
		hall.Capacity = s.defaults.Capacity
		hall.BenchCount = s.defaults.BenchesPerHall
		hall.SeatsPerBench = s.defaults.SeatsPerBench
		if hall.BenchCount*hall.SeatsPerBench < hall.Capacity {
			hall.BenchCount = ceilDiv(hall.Capacity, hall.SeatsPerBench)
		}
		return hall, nil
	}

	seats := s.defaults.SeatsPerBench
	if req.SeatsPerBench != nil {
		seats = *req.SeatsPerBench
	}
	switch {
	case req.Capacity != nil && req.BenchCount != nil:
		hall.Capacity = *req.Capacity
		hall.BenchCount = *req.BenchCount
	case req.Capacity != nil:
		hall.Capacity = *req.Capacity
		hall.BenchCount = ceilDiv(hall.Capacity, seats)
	default:
		hall.BenchCount = s.defaults.BenchesPerHall
		if req.BenchCount != nil {
			hall.BenchCount = *req.BenchCount
		}
		hall.Capacity = hall.BenchCount * seats
	}
	hall.SeatsPerBench = seats

	if hall.BenchCount*hall.SeatsPerBench < hall.Capacity {
		return nil, appErrors.Clone(appErrors.ErrValidation, "benchCount x seatsPerBench must cover the hall capacity")
	}
	return hall, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
