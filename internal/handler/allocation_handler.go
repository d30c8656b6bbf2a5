package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seat-api/internal/dto"
	internalmiddleware "github.com/noah-isme/exam-seat-api/internal/middleware"
	"github.com/noah-isme/exam-seat-api/internal/models"
	"github.com/noah-isme/exam-seat-api/internal/service"
	appErrors "github.com/noah-isme/exam-seat-api/pkg/errors"
	"github.com/noah-isme/exam-seat-api/pkg/export"
	"github.com/noah-isme/exam-seat-api/pkg/response"
)

type seatAllocator interface {
	Generate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.AllocationSummary, error)
	Regenerate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.AllocationSummary, error)
	EnqueueRegenerate(ctx context.Context, req dto.GenerateAllocationRequest) (*dto.RegenerateJobResponse, error)
	List(ctx context.Context, query dto.AllocationQuery) ([]models.SeatAllocationDetail, bool, error)
	Dates(ctx context.Context, examID string) ([]string, error)
	Capacity(ctx context.Context, query dto.AllocationQuery) (*dto.CapacityPlanResponse, error)
	Export(ctx context.Context, query dto.AllocationQuery) (*export.Document, error)
	ClearForDate(ctx context.Context, examID, date string) (*dto.ClearAllocationResponse, error)
	ClearForExam(ctx context.Context, examID string) (*dto.ClearAllocationResponse, error)
}

// AllocationHandler exposes seat allocation endpoints.
type AllocationHandler struct {
	service seatAllocator
}

// NewAllocationHandler constructs the handler.
func NewAllocationHandler(svc *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: svc}
}

// Generate godoc
// @Summary Generate seat allocation for an exam date
// @Description Places every eligible student into halls, replacing any previous allocation for the date.
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.GenerateAllocationRequest true "Exam and date"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /allocations/generate [post]
func (h *AllocationHandler) Generate(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	summary, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Regenerate godoc
// @Summary Regenerate seat allocation after timetable or roster changes
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.GenerateAllocationRequest true "Exam and date"
// @Success 200 {object} response.Envelope
// @Router /allocations/regenerate [post]
func (h *AllocationHandler) Regenerate(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	summary, err := h.service.Regenerate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// RegenerateAsync godoc
// @Summary Queue seat allocation regeneration
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.GenerateAllocationRequest true "Exam and date"
// @Success 202 {object} response.Envelope
// @Router /allocations/regenerate/async [post]
func (h *AllocationHandler) RegenerateAsync(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	job, err := h.service.EnqueueRegenerate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// List godoc
// @Summary List seat allocations for an exam date
// @Tags Allocations
// @Produce json
// @Param examId query string true "Exam ID"
// @Param date query string true "Exam date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /allocations [get]
func (h *AllocationHandler) List(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	rows, hit, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	internalmiddleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, rows, internalmiddleware.ExtractMeta(c))
}

// Dates godoc
// @Summary List exam dates that hold a seat allocation
// @Tags Allocations
// @Produce json
// @Param examId query string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /allocations/dates [get]
func (h *AllocationHandler) Dates(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	dates, err := h.service.Dates(c.Request.Context(), query.ExamID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates)
}

// Capacity godoc
// @Summary Compare eligible students with hall capacity
// @Tags Allocations
// @Produce json
// @Param examId query string true "Exam ID"
// @Param date query string true "Exam date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /allocations/capacity [get]
func (h *AllocationHandler) Capacity(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	plan, err := h.service.Capacity(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Export godoc
// @Summary Download the allocation listing as CSV
// @Tags Allocations
// @Produce text/csv
// @Param examId query string true "Exam ID"
// @Param date query string true "Exam date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /allocations/export [get]
func (h *AllocationHandler) Export(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	doc, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Body)
}

// Clear godoc
// @Summary Remove seat allocations
// @Description Clears one exam date when date is given, otherwise every date of the exam.
// @Tags Allocations
// @Produce json
// @Param examId query string true "Exam ID"
// @Param date query string false "Exam date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /allocations [delete]
func (h *AllocationHandler) Clear(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	var (
		result *dto.ClearAllocationResponse
		err    error
	)
	if query.Date != "" {
		result, err = h.service.ClearForDate(c.Request.Context(), query.ExamID, query.Date)
	} else {
		result, err = h.service.ClearForExam(c.Request.Context(), query.ExamID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func bindGenerate(c *gin.Context) (dto.GenerateAllocationRequest, bool) {
	var req dto.GenerateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return req, false
	}
	return req, true
}

func bindQuery(c *gin.Context) (dto.AllocationQuery, bool) {
	var query dto.AllocationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation query"))
		return query, false
	}
	if query.ExamID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "examId required"))
		return query, false
	}
	return query, true
}
