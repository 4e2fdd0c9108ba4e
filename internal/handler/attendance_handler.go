package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formatrack/engagement-api/internal/service"
	appErrors "github.com/formatrack/engagement-api/pkg/errors"
	"github.com/formatrack/engagement-api/pkg/response"
)

// AttendanceHandler exposes attendance fact endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// MarkPresent godoc
// @Summary Mark a trainee present for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param sessionId path string true "Session ID"
// @Param payload body service.MarkPresentRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/sessions/{sessionId}/present [post]
func (h *AttendanceHandler) MarkPresent(c *gin.Context) {
	var req service.MarkPresentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fact, err := h.attendance.MarkPresent(c.Request.Context(), c.Param("traineeId"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fact, nil)
}

// MarkAbsent godoc
// @Summary Mark a trainee absent for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param sessionId path string true "Session ID"
// @Param payload body service.MarkAbsentRequest true "Absence payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/sessions/{sessionId}/absent [post]
func (h *AttendanceHandler) MarkAbsent(c *gin.Context) {
	var req service.MarkAbsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fact, err := h.attendance.MarkAbsent(c.Request.Context(), c.Param("traineeId"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fact, nil)
}

// MarkLate godoc
// @Summary Mark a trainee late for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param sessionId path string true "Session ID"
// @Param payload body service.MarkLateRequest true "Lateness payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/sessions/{sessionId}/late [post]
func (h *AttendanceHandler) MarkLate(c *gin.Context) {
	var req service.MarkLateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fact, err := h.attendance.MarkLate(c.Request.Context(), c.Param("traineeId"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fact, nil)
}

// MarkPartial godoc
// @Summary Mark a partial attendance for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param sessionId path string true "Session ID"
// @Param payload body service.MarkPartialRequest true "Partial attendance payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/sessions/{sessionId}/partial [post]
func (h *AttendanceHandler) MarkPartial(c *gin.Context) {
	var req service.MarkPartialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fact, err := h.attendance.MarkPartial(c.Request.Context(), c.Param("traineeId"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fact, nil)
}

// RecordArrival godoc
// @Summary Record an arrival timestamp for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param sessionId path string true "Session ID"
// @Param payload body service.RecordTimeRequest true "Arrival payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/sessions/{sessionId}/arrival [post]
func (h *AttendanceHandler) RecordArrival(c *gin.Context) {
	var req service.RecordTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fact, err := h.attendance.RecordArrival(c.Request.Context(), c.Param("traineeId"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fact, nil)
}

// RecordDeparture godoc
// @Summary Record a departure timestamp for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param sessionId path string true "Session ID"
// @Param payload body service.RecordTimeRequest true "Departure payload"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/sessions/{sessionId}/departure [post]
func (h *AttendanceHandler) RecordDeparture(c *gin.Context) {
	var req service.RecordTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fact, err := h.attendance.RecordDeparture(c.Request.Context(), c.Param("traineeId"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fact, nil)
}

// Summary godoc
// @Summary Get the attendance summary for a trainee and program
// @Tags Attendance
// @Produce json
// @Param traineeId path string true "Trainee ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{traineeId}/programs/{programId}/attendance [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.attendance.Summary(c.Request.Context(), c.Param("traineeId"), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
