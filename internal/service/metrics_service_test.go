package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveDBQuery("report_finance", 4*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/reports/finance", 200, 10*time.Millisecond)
	m.ObserveReport(models.ReportTypeFinance, ReportOutcomeGenerated, 5*time.Millisecond)
	m.ObserveReport(models.ReportTypeFinance, ReportOutcomeFailed, time.Millisecond)
	m.ObserveReport(models.ReportTypeFinance, ReportOutcomeInvalid, 0)
	m.SetQueueDepthFunc(func() int { return 3 })

	snap := m.Snapshot()
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.DBQueryCount)
	assert.InDelta(t, 4.0, snap.AverageDBQueryDurationMs, 0.01)
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Equal(t, uint64(1), snap.ReportsGenerated)
	assert.Equal(t, uint64(1), snap.ReportFailures)
	assert.Equal(t, 3, snap.ExportQueueDepth)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveReport(models.ReportTypeAttendance, ReportOutcomeCached, time.Millisecond)
	m.ObserveExportJob(models.ReportTypeAttendance, models.ReportStatusFinished)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `reports_total{kind="attendance",outcome="cached"} 1`)
	assert.Contains(t, body, `export_jobs_total{status="FINISHED",type="attendance"} 1`)
	assert.Contains(t, body, "export_queue_depth 0")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveReport(models.ReportTypeStudents, ReportOutcomeGenerated, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
