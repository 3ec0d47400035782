package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	"github.com/noah-isme/coaching-admin-api/internal/repository"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
	"github.com/noah-isme/coaching-admin-api/pkg/jobs"
)

type reportRepoStub struct {
	mu        sync.Mutex
	jobs      map[string]*models.ReportJob
	cleared   []string
	updateErr error
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *reportRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get report job: %w", sql.ErrNoRows)
	}
	return job, nil
}

func (r *reportRepoStub) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultPath != nil {
		job.ResultPath = params.ResultPath
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *reportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var queued []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued || job.Status == models.ReportStatusProcessing {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *reportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var finished []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusFinished && job.ResultPath != nil && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			finished = append(finished, *job)
		}
	}
	return finished, nil
}

func (r *reportRepoStub) ClearResult(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, id)
	if job, ok := r.jobs[id]; ok {
		job.ResultPath = nil
	}
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newReportServiceForTest(t *testing.T) (*ReportService, *reportRepoStub, *queueStub, *ExportService) {
	t.Helper()
	repo := newReportRepoStub()
	queue := &queueStub{}
	exportSvc, _ := newExportServiceForTest(t, attendanceReporterStub{report: sampleAttendanceReport()})
	service := NewReportService(repo, queue, exportSvc, NewMetricsService(), zap.NewNop(), ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
	})
	return service, repo, queue, exportSvc
}

func TestReportServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:    models.ReportTypeFinance,
		Format:  models.ReportFormatCSV,
		Filters: map[string]string{"classId": "c1", "feeType": AllFeeTypes, "month": "2", "year": "2024"},
	}, "admin-1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)

	stored := repo.jobs[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "admin-1", stored.CreatedBy)
	assert.Equal(t, "c1", stored.Params.Scope.ClassID)
	assert.Empty(t, stored.Params.Scope.FeeType)
	assert.Equal(t, "2024-02-29", stored.Params.Scope.Period.To.Format(models.DateLayout))
}

func TestReportServiceCreateJobRejectsInvalidFilters(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type: models.ReportTypeStudents, Format: models.ReportFormatPDF, Filters: map[string]string{"dateFrom": "2024-01-01"},
	}, "admin")
	requireValidationField(t, err, "dateFrom")

	_, err = svc.CreateJob(context.Background(), dto.ExportRequest{Type: models.ReportTypeStudents, Format: "xlsx"}, "admin")
	requireValidationField(t, err, "format")

	assert.Empty(t, repo.jobs)
	assert.Empty(t, queue.jobs)
}

func TestReportServiceCreateJobMarksFailedWhenQueueFull(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	queue.err = jobs.ErrQueueFull

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Type: models.ReportTypeAttendance, Format: models.ReportFormatCSV}, "admin")
	require.Error(t, err)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestReportServiceCreateJobLogsFailedStatusUpdate(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := newReportRepoStub()
	repo.updateErr = errors.New("connection reset")
	queue := &queueStub{err: jobs.ErrQueueFull}
	exportSvc, _ := newExportServiceForTest(t, attendanceReporterStub{report: sampleAttendanceReport()})
	svc := NewReportService(repo, queue, exportSvc, nil, zap.New(core), ReportServiceConfig{ResultTTL: time.Hour})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Type: models.ReportTypeAttendance, Format: models.ReportFormatCSV}, "admin")
	require.Error(t, err)

	entries := logs.FilterMessage("failed to mark unqueued export job failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotEmpty(t, fields["job_id"])
	assert.Equal(t, "connection reset", fields["error"])
}

func TestReportServiceGetStatus(t *testing.T) {
	svc, repo, _, _ := newReportServiceForTest(t)
	path := "attendance_all.csv"
	repo.jobs["job-1"] = &models.ReportJob{
		ID:         "job-1",
		Type:       models.ReportTypeAttendance,
		Params:     models.ReportJobParams{Format: models.ReportFormatCSV},
		Status:     models.ReportStatusFinished,
		Progress:   100,
		ResultPath: &path,
		CreatedBy:  "admin",
	}

	resp, err := svc.GetStatus(context.Background(), "job-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, resp.Status)
	require.NotNil(t, resp.DownloadURL)
	assert.Contains(t, *resp.DownloadURL, "/api/v1/export/")
	require.NotNil(t, resp.ExpiresAt)

	_, err = svc.GetStatus(context.Background(), "job-1", "someone-else")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.GetStatus(context.Background(), "missing", "admin")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceResolveDownload(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-download",
		Type:      models.ReportTypeAttendance,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
		Status:    models.ReportStatusProcessing,
		CreatedBy: "admin",
	}
	repo.jobs[job.ID] = job
	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultPath = &result.RelativePath

	_, err = svc.ResolveDownload(context.Background(), result.Token)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	job.Status = models.ReportStatusFinished
	download, err := svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	assert.Equal(t, "text/csv", download.ContentType)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Daily Trend")

	_, err = svc.ResolveDownload(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	repo.jobs["a"] = &models.ReportJob{ID: "a", Type: models.ReportTypeStudents, Status: models.ReportStatusQueued}
	repo.jobs["b"] = &models.ReportJob{ID: "b", Type: models.ReportTypeStudents, Status: models.ReportStatusFinished}

	svc.RecoverPendingJobs(context.Background())

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "a", queue.jobs[0].ID)
}

func TestReportServiceCleanupExpired(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	job := &models.ReportJob{ID: "old", Type: models.ReportTypeAttendance, Params: models.ReportJobParams{Format: models.ReportFormatCSV}}
	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	finished := time.Now().Add(-2 * time.Hour)
	job.Status = models.ReportStatusFinished
	job.ResultPath = &result.RelativePath
	job.FinishedAt = &finished
	repo.jobs[job.ID] = job

	svc.cleanupExpired(context.Background())

	assert.Equal(t, []string{"old"}, repo.cleared)
	assert.Nil(t, repo.jobs["old"].ResultPath)
	_, err = exportSvc.Open(result.RelativePath)
	assert.Error(t, err)
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func queuedJob(id string) *models.ReportJob {
	return &models.ReportJob{
		ID:        id,
		Type:      models.ReportTypeFinance,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
		Status:    models.ReportStatusQueued,
		CreatedBy: "admin",
	}
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = queuedJob("job-1")
	metrics := NewMetricsService()
	worker := NewReportWorker(repo, exportStub{result: &ExportResult{RelativePath: "finance_all.csv"}}, metrics, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)
	job := repo.jobs["job-1"]
	assert.Equal(t, models.ReportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultPath)
	assert.Equal(t, "finance_all.csv", *job.ResultPath)
	assert.NotNil(t, job.FinishedAt)
}

func TestReportWorkerFailureRequeuesThenFails(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = queuedJob("job-1")
	worker := NewReportWorker(repo, exportStub{err: errors.New("boom")}, nil, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Type: string(models.ReportTypeFinance)})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusQueued, repo.jobs["job-1"].Status)
	assert.Equal(t, "boom", *repo.jobs["job-1"].ErrorMessage)

	worker.Fail(context.Background(), jobs.Job{ID: "job-1", Type: string(models.ReportTypeFinance)}, err)
	assert.Equal(t, models.ReportStatusFailed, repo.jobs["job-1"].Status)
	assert.NotNil(t, repo.jobs["job-1"].FinishedAt)
}
