package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-admin-api/internal/middleware"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

type fakeAttendanceReports struct {
	report *models.AttendanceReport
	hit    bool
	err    error
	scope  models.ReportScope
	calls  int
}

func (f *fakeAttendanceReports) Generate(_ context.Context, scope models.ReportScope) (*models.AttendanceReport, bool, error) {
	f.calls++
	f.scope = scope
	return f.report, f.hit, f.err
}

type fakeFinanceReports struct {
	report *models.FinanceReport
	scope  models.ReportScope
}

func (f *fakeFinanceReports) Generate(_ context.Context, scope models.ReportScope) (*models.FinanceReport, bool, error) {
	f.scope = scope
	return f.report, false, nil
}

type fakeStudentReports struct {
	report *models.StudentReport
	scope  models.ReportScope
}

func (f *fakeStudentReports) Generate(_ context.Context, scope models.ReportScope) (*models.StudentReport, bool, error) {
	f.scope = scope
	return f.report, true, nil
}

type responseEnvelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func performRequest(t *testing.T, method, route, target string, handle gin.HandlerFunc, body string, headers map[string]string) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.Handle(method, route, handle)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope responseEnvelope
	if rec.Header().Get("Content-Type") != "" && rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func TestReportHandlerAttendance(t *testing.T) {
	svc := &fakeAttendanceReports{report: &models.AttendanceReport{
		StudentAttendances:  []models.StudentAttendanceRecord{},
		StaffAttendances:    []models.StaffAttendanceRecord{},
		DailyTrends:         []models.DailyAttendanceTrend{},
		ClassWiseAttendance: []models.ClassAttendance{},
		StudentSummary:      models.StudentAttendanceSummary{TotalRecords: 3, PresentCount: 2, AttendancePercentage: 67},
	}, hit: true}
	handler := NewReportHandler(svc, nil, nil)

	rec, envelope := performRequest(t, http.MethodGet, "/reports/attendance",
		"/reports/attendance?classId=c1&sessionId=ALL_SESSIONS&month=2&year=2024", handler.Attendance, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	summary := envelope.Data["studentSummary"].(map[string]interface{})
	assert.Equal(t, float64(67), summary["attendancePercentage"])
	assert.Equal(t, "c1", svc.scope.ClassID)
	assert.Empty(t, svc.scope.SessionID)
	require.NotNil(t, svc.scope.Period)
	assert.Equal(t, "2024-02-29", svc.scope.Period.To.Format(models.DateLayout))
}

func TestReportHandlerAttendanceRejectsInvalidFilters(t *testing.T) {
	svc := &fakeAttendanceReports{}
	handler := NewReportHandler(svc, nil, nil)

	rec, envelope := performRequest(t, http.MethodGet, "/reports/attendance",
		"/reports/attendance?month=13&year=2024", handler.Attendance, "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Zero(t, svc.calls)
}

func TestReportHandlerAttendanceFailure(t *testing.T) {
	svc := &fakeAttendanceReports{err: appErrors.DataAccess(errors.New("connection refused"))}
	handler := NewReportHandler(svc, nil, nil)

	rec, envelope := performRequest(t, http.MethodGet, "/reports/attendance", "/reports/attendance", handler.Attendance, "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "REPORT_FAILED", envelope.Error.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestReportHandlerFinanceAndStudents(t *testing.T) {
	finance := &fakeFinanceReports{report: &models.FinanceReport{}}
	students := &fakeStudentReports{report: &models.StudentReport{Summary: models.StudentSummary{Total: 4}}}
	handler := NewReportHandler(nil, finance, students)

	rec, envelope := performRequest(t, http.MethodGet, "/reports/finance",
		"/reports/finance?feeType=tuition&paymentStatus=ALL_STATUSES", handler.Finance, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.Equal(t, models.FeeTypeTuition, finance.scope.FeeType)
	assert.Empty(t, finance.scope.PaymentStatus)

	rec, _ = performRequest(t, http.MethodGet, "/reports/finance", "/reports/finance?feeType=ALL_CLASSES", handler.Finance, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope = performRequest(t, http.MethodGet, "/reports/students", "/reports/students?status=ACTIVE", handler.Students, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StudentStatusActive, students.scope.Status)
	assert.Equal(t, float64(4), envelope.Data["summary"].(map[string]interface{})["total"])

	rec, _ = performRequest(t, http.MethodGet, "/reports/attendance", "/reports/attendance", handler.Attendance, "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
