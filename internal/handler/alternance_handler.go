package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formatrack/engagement-api/internal/service"
	"github.com/formatrack/engagement-api/pkg/response"
)

// AlternanceHandler exposes the work-study evaluation endpoint.
type AlternanceHandler struct {
	alternance *service.AlternanceService
}

// NewAlternanceHandler constructs AlternanceHandler.
func NewAlternanceHandler(alternance *service.AlternanceService) *AlternanceHandler {
	return &AlternanceHandler{alternance: alternance}
}

// Evaluate godoc
// @Summary Evaluate the blended work-study standing for a trainee
// @Tags Alternance
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/alternance [post]
func (h *AlternanceHandler) Evaluate(c *gin.Context) {
	resp, err := h.alternance.Evaluate(c.Request.Context(), c.Param("traineeId"), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
