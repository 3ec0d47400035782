package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

type fakeAttendanceMarker struct {
	students dto.MarkStudentAttendanceRequest
	staff    dto.MarkStaffAttendanceRequest
	actor    string
	err      error
}

func (f *fakeAttendanceMarker) MarkStudents(_ context.Context, req dto.MarkStudentAttendanceRequest, actorID string) (*models.BulkAttendanceResult, error) {
	f.students = req
	f.actor = actorID
	if f.err != nil {
		return nil, f.err
	}
	return &models.BulkAttendanceResult{Mode: models.BulkModeAtomic, Saved: len(req.Entries)}, nil
}

func (f *fakeAttendanceMarker) MarkStaff(_ context.Context, req dto.MarkStaffAttendanceRequest) (*models.BulkAttendanceResult, error) {
	f.staff = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BulkAttendanceResult{Mode: models.BulkModePartialOnError, Saved: len(req.Entries)}, nil
}

type fakeCollectionManager struct {
	created  dto.CreateCollectionRequest
	approved string
	actor    string
	err      error
}

func (f *fakeCollectionManager) Create(_ context.Context, req dto.CreateCollectionRequest, actorID string) (*models.Collection, error) {
	f.created = req
	f.actor = actorID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Collection{ID: "col-1", Amount: decimal.RequireFromString(req.Amount), Status: models.PaymentPending}, nil
}

func (f *fakeCollectionManager) Approve(_ context.Context, id, actorID string) (*models.Collection, error) {
	f.approved = id
	f.actor = actorID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Collection{ID: id, Status: models.PaymentApproved}, nil
}

func TestAttendanceHandlerMarkStudents(t *testing.T) {
	svc := &fakeAttendanceMarker{}
	handler := NewAttendanceHandler(svc)

	rec, envelope := performRequest(t, http.MethodPost, "/attendance/students", "/attendance/students", handler.MarkStudents,
		`{"subjectId":"math","date":"2024-01-15","entries":[{"studentId":"s1","status":"PRESENT"}]}`,
		map[string]string{ActorHeader: "teacher-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), envelope.Data["saved"])
	assert.Equal(t, "teacher-1", svc.actor)
	assert.Equal(t, "math", svc.students.SubjectID)
}

func TestAttendanceHandlerMarkStaffErrors(t *testing.T) {
	handler := NewAttendanceHandler(&fakeAttendanceMarker{err: appErrors.Clone(appErrors.ErrConflict, "duplicate teacher t1 in payload")})

	rec, _ := performRequest(t, http.MethodPost, "/attendance/staff", "/attendance/staff", handler.MarkStaff,
		`{"date":"2024-01-15","entries":[{"teacherId":"t1","status":"PRESENT"},{"teacherId":"t1","status":"LEAVE"}]}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = performRequest(t, http.MethodPost, "/attendance/staff", "/attendance/staff", handler.MarkStaff, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectionHandlerCreateAndApprove(t *testing.T) {
	svc := &fakeCollectionManager{}
	handler := NewCollectionHandler(svc)

	rec, envelope := performRequest(t, http.MethodPost, "/collections", "/collections", handler.Create,
		`{"studentId":"s1","feeMasterId":"fm-1","amount":"1500"}`, map[string]string{ActorHeader: "cashier"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "col-1", envelope.Data["id"])
	assert.Equal(t, "cashier", svc.actor)

	rec, envelope = performRequest(t, http.MethodPost, "/collections/:id/approve", "/collections/col-1/approve", handler.Approve, "",
		map[string]string{ActorHeader: "manager"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", envelope.Data["status"])
	assert.Equal(t, "col-1", svc.approved)
	assert.Equal(t, "manager", svc.actor)
}

func TestCollectionHandlerApproveErrors(t *testing.T) {
	handler := NewCollectionHandler(&fakeCollectionManager{err: appErrors.Clone(appErrors.ErrNotFound, "collection not found")})

	rec, envelope := performRequest(t, http.MethodPost, "/collections/:id/approve", "/collections/missing/approve", handler.Approve, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
