package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formatrack/engagement-api/internal/service"
	"github.com/formatrack/engagement-api/pkg/response"
)

// AssessmentHandler exposes engagement and dropout-risk endpoints.
type AssessmentHandler struct {
	assessments *service.AssessmentService
	bulk        *service.BulkService
}

// NewAssessmentHandler constructs AssessmentHandler.
func NewAssessmentHandler(assessments *service.AssessmentService, bulk *service.BulkService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, bulk: bulk}
}

// Get godoc
// @Summary Get the stored assessment for a trainee and program
// @Tags Assessments
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/assessment [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	resp, cached, err := h.assessments.Get(c.Request.Context(), c.Param("traineeId"), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, map[string]interface{}{"cached": cached})
}

// Recompute godoc
// @Summary Recompute the assessment for a trainee and program
// @Tags Assessments
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/assessment/recompute [post]
func (h *AssessmentHandler) Recompute(c *gin.Context) {
	resp, err := h.assessments.Assess(c.Request.Context(), c.Param("traineeId"), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// BulkRecompute godoc
// @Summary Schedule a program-wide assessment recompute
// @Tags Assessments
// @Produce json
// @Param programId path string true "Program ID"
// @Success 202 {object} response.Envelope
// @Router /programs/{programId}/assessments/recompute [post]
func (h *AssessmentHandler) BulkRecompute(c *gin.Context) {
	resp, err := h.bulk.Enqueue(c.Request.Context(), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}
