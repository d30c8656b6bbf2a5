package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	"github.com/noah-isme/exam-seat-api/internal/models"
	"github.com/noah-isme/exam-seat-api/internal/service"
	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
	"github.com/noah-isme/exam-seat-api/pkg/response"
)

type examScheduler interface {
	CreateExam(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error)
	GetExam(ctx context.Context, id string) (*models.Exam, error)
	DeleteExam(ctx context.Context, id string) error
	ListEntries(ctx context.Context, examID string) ([]models.ExamScheduleDetail, error)
	AddEntry(ctx context.Context, examID string, req dto.AddExamEntryRequest) (*models.ExamSchedule, error)
	DeleteEntry(ctx context.Context, id string) error
	ClearEntries(ctx context.Context, examID string) (*dto.ClearEntriesResponse, error)
}

// ExamScheduleHandler exposes exam and timetable endpoints.
type ExamScheduleHandler struct {
	service examScheduler
}

// NewExamScheduleHandler constructs the handler.
func NewExamScheduleHandler(svc *service.ExamScheduleService) *ExamScheduleHandler {
	return &ExamScheduleHandler{service: svc}
}

// CreateExam godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamScheduleHandler) CreateExam(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam payload"))
		return
	}
	exam, err := h.service.CreateExam(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// GetExam godoc
// @Summary Get exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamScheduleHandler) GetExam(c *gin.Context) {
	exam, err := h.service.GetExam(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam)
}

// DeleteExam godoc
// @Summary Delete exam with its timetable and seat allocations
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamScheduleHandler) DeleteExam(c *gin.Context) {
	if err := h.service.DeleteExam(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEntries godoc
// @Summary List timetable entries of an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/entries [get]
func (h *ExamScheduleHandler) ListEntries(c *gin.Context) {
	entries, err := h.service.ListEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// AddEntry godoc
// @Summary Add a timetable entry
// @Description Drops the seat allocation of the entry's date.
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.AddExamEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Router /exams/{id}/entries [post]
func (h *ExamScheduleHandler) AddEntry(c *gin.Context) {
	var req dto.AddExamEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam entry payload"))
		return
	}
	entry, err := h.service.AddEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// ClearEntries godoc
// @Summary Remove every timetable entry and seat allocation of an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/entries [delete]
func (h *ExamScheduleHandler) ClearEntries(c *gin.Context) {
	result, err := h.service.ClearEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// DeleteEntry godoc
// @Summary Delete a timetable entry
// @Tags Exams
// @Param id path string true "Entry ID"
// @Success 204
// @Router /exam-entries/{id} [delete]
func (h *ExamScheduleHandler) DeleteEntry(c *gin.Context) {
	if err := h.service.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
