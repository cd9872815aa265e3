package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolforge/timetable-engine/internal/dto"
	"github.com/schoolforge/timetable-engine/internal/service"
	appErrors "github.com/schoolforge/timetable-engine/pkg/errors"
	"github.com/schoolforge/timetable-engine/pkg/response"
)

// GenerationHandler exposes the timetable generation endpoints.
type GenerationHandler struct {
	generation *service.GenerationService
}

// NewGenerationHandler constructs the handler.
func NewGenerationHandler(generation *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generation: generation}
}

// Submit godoc
// @Summary Queue a timetable generation run
// @Tags Generation
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Generation window"
// @Success 202 {object} response.Envelope
// @Router /api/v1/generate [post]
func (h *GenerationHandler) Submit(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	actorID := c.GetHeader("X-Actor-Id")
	if actorID == "" {
		actorID = "system"
	}
	result, err := h.generation.Submit(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Status godoc
// @Summary Poll the progress of a generation run
// @Tags Generation
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/generate/{id}/status [get]
func (h *GenerationHandler) Status(c *gin.Context) {
	status, err := h.generation.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Result godoc
// @Summary Fetch the placements and failures of a finished run
// @Tags Generation
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/generate/{id}/result [get]
func (h *GenerationHandler) Result(c *gin.Context) {
	result, err := h.generation.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Cancel godoc
// @Summary Cancel a queued or running generation run
// @Tags Generation
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} response.Envelope
// @Router /api/v1/generate/{id} [delete]
func (h *GenerationHandler) Cancel(c *gin.Context) {
	if !h.generation.Cancel(c.Param("id")) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "job not found or already finished"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"cancelled": true}, nil)
}
