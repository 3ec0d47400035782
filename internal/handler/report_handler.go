package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/middleware"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	"github.com/noah-isme/coaching-admin-api/internal/service"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
	"github.com/noah-isme/coaching-admin-api/pkg/response"
)

type attendanceReports interface {
	Generate(ctx context.Context, scope models.ReportScope) (*models.AttendanceReport, bool, error)
}

type financeReports interface {
	Generate(ctx context.Context, scope models.ReportScope) (*models.FinanceReport, bool, error)
}

type studentReports interface {
	Generate(ctx context.Context, scope models.ReportScope) (*models.StudentReport, bool, error)
}

// ReportHandler serves the dashboard reports.
type ReportHandler struct {
	attendance attendanceReports
	finance    financeReports
	students   studentReports
}

// NewReportHandler constructs the report handler.
func NewReportHandler(attendance attendanceReports, finance financeReports, students studentReports) *ReportHandler {
	return &ReportHandler{attendance: attendance, finance: finance, students: students}
}

// Attendance godoc
// @Summary Attendance report
// @Tags Reports
// @Produce json
// @Param sessionId query string false "Session ID or ALL_SESSIONS"
// @Param classId query string false "Class ID or ALL_CLASSES"
// @Param batchId query string false "Batch ID or ALL_BATCHES"
// @Param sectionId query string false "Section ID or ALL_SECTIONS"
// @Param studentId query string false "Student ID or ALL_STUDENTS"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Param month query int false "Month (1-12)"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	if h.attendance == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.AttendanceReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	scope, err := service.NormalizeAttendanceQuery(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	report, cacheHit, err := h.attendance.Generate(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondReport(c, report, cacheHit, start)
}

// Finance godoc
// @Summary Finance report
// @Tags Reports
// @Produce json
// @Param sessionId query string false "Session ID or ALL_SESSIONS"
// @Param classId query string false "Class ID or ALL_CLASSES"
// @Param studentId query string false "Student ID or ALL_STUDENTS"
// @Param feeType query string false "ADMISSION, TUITION, EXAM, TRANSPORT, OTHER or ALL_FEE_TYPES"
// @Param paymentStatus query string false "APPROVED, PENDING, PARTIAL, OVERDUE or ALL_STATUSES"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Param month query int false "Month (1-12)"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/finance [get]
func (h *ReportHandler) Finance(c *gin.Context) {
	if h.finance == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.FinanceReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	scope, err := service.NormalizeFinanceQuery(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	report, cacheHit, err := h.finance.Generate(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondReport(c, report, cacheHit, start)
}

// Students godoc
// @Summary Student report
// @Tags Reports
// @Produce json
// @Param sessionId query string false "Session ID or ALL_SESSIONS"
// @Param classId query string false "Class ID or ALL_CLASSES"
// @Param batchId query string false "Batch ID or ALL_BATCHES"
// @Param sectionId query string false "Section ID or ALL_SECTIONS"
// @Param status query string false "ACTIVE, INACTIVE, GRADUATED, DROPPED, DISABLED or ALL_STATUSES"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/students [get]
func (h *ReportHandler) Students(c *gin.Context) {
	if h.students == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.StudentReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	scope, err := service.NormalizeStudentQuery(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	report, cacheHit, err := h.students.Generate(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondReport(c, report, cacheHit, start)
}

func respondReport(c *gin.Context, report interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, nil, meta)
}
