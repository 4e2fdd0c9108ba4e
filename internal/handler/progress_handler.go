package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formatrack/engagement-api/internal/service"
	appErrors "github.com/formatrack/engagement-api/pkg/errors"
	"github.com/formatrack/engagement-api/pkg/response"
)

// ProgressHandler exposes trainee progress endpoints.
type ProgressHandler struct {
	progress *service.ProgressService
}

// NewProgressHandler constructs ProgressHandler.
func NewProgressHandler(progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// Link godoc
// @Summary Link a trainee to a program
// @Tags Progress
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Success 201 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/link [post]
func (h *ProgressHandler) Link(c *gin.Context) {
	tp, err := h.progress.Link(c.Request.Context(), c.Param("traineeId"), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tp)
}

// Get godoc
// @Summary Get the progress record for a trainee and program
// @Tags Progress
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/progress [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	tp, err := h.progress.Get(c.Request.Context(), c.Param("traineeId"), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tp, nil)
}

// UpdateModule godoc
// @Summary Update completion for one module
// @Tags Progress
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Param moduleId path string true "Module ID"
// @Param payload body service.ContentProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/modules/{moduleId} [put]
func (h *ProgressHandler) UpdateModule(c *gin.Context) {
	var req service.ContentProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tp, err := h.progress.UpdateModuleProgress(c.Request.Context(), c.Param("traineeId"), c.Param("programId"), c.Param("moduleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tp, nil)
}

// UpdateChapter godoc
// @Summary Update completion for one chapter
// @Tags Progress
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Param chapterId path string true "Chapter ID"
// @Param payload body service.ContentProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/chapters/{chapterId} [put]
func (h *ProgressHandler) UpdateChapter(c *gin.Context) {
	var req service.ContentProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tp, err := h.progress.UpdateChapterProgress(c.Request.Context(), c.Param("traineeId"), c.Param("programId"), c.Param("chapterId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tp, nil)
}

// RecordActivity godoc
// @Summary Record a learning activity event
// @Tags Progress
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Param payload body service.ActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/activity [post]
func (h *ProgressHandler) RecordActivity(c *gin.Context) {
	var req service.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tp, err := h.progress.RecordActivity(c.Request.Context(), c.Param("traineeId"), c.Param("programId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tp, nil)
}
