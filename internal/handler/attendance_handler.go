package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
	"github.com/noah-isme/coaching-admin-api/pkg/response"
)

type attendanceMarker interface {
	MarkStudents(ctx context.Context, req dto.MarkStudentAttendanceRequest, actorID string) (*models.BulkAttendanceResult, error)
	MarkStaff(ctx context.Context, req dto.MarkStaffAttendanceRequest) (*models.BulkAttendanceResult, error)
}

// AttendanceHandler records attendance marks.
type AttendanceHandler struct {
	service attendanceMarker
}

// NewAttendanceHandler constructs the attendance handler.
func NewAttendanceHandler(svc attendanceMarker) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// MarkStudents godoc
// @Summary Bulk mark student attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.MarkStudentAttendanceRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/students [post]
func (h *AttendanceHandler) MarkStudents(c *gin.Context) {
	var req dto.MarkStudentAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.service.MarkStudents(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MarkStaff godoc
// @Summary Bulk mark staff attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.MarkStaffAttendanceRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/staff [post]
func (h *AttendanceHandler) MarkStaff(c *gin.Context) {
	var req dto.MarkStaffAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.service.MarkStaff(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
