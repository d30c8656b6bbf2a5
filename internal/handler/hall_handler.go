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

type hallManager interface {
	List(ctx context.Context) ([]models.ExamHall, error)
	Get(ctx context.Context, id string) (*models.ExamHall, error)
	Create(ctx context.Context, req dto.CreateHallRequest) (*models.ExamHall, error)
	Delete(ctx context.Context, id string) error
}

// HallHandler exposes exam hall endpoints.
type HallHandler struct {
	service hallManager
}

// NewHallHandler constructs the handler.
func NewHallHandler(svc *service.HallService) *HallHandler {
	return &HallHandler{service: svc}
}

// List godoc
// @Summary List exam halls in allocation order
// @Tags Halls
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /halls [get]
func (h *HallHandler) List(c *gin.Context) {
	halls, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, halls)
}

// Get godoc
// @Summary Get exam hall
// @Tags Halls
// @Produce json
// @Param id path string true "Hall ID"
// @Success 200 {object} response.Envelope
// @Router /halls/{id} [get]
func (h *HallHandler) Get(c *gin.Context) {
	hall, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hall)
}

// Create godoc
// @Summary Register exam hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param payload body dto.CreateHallRequest true "Hall payload"
// @Success 201 {object} response.Envelope
// @Router /halls [post]
func (h *HallHandler) Create(c *gin.Context) {
	var req dto.CreateHallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam hall payload"))
		return
	}
	hall, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hall)
}

// Delete godoc
// @Summary Delete exam hall
// @Tags Halls
// @Param id path string true "Hall ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /halls/{id} [delete]
func (h *HallHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
