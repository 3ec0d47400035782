package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

type collectionWriterStub struct {
	feeMasters  map[string]*models.FeeMaster
	collections map[string]*models.Collection
	created     *models.Collection
}

func newCollectionWriterStub() *collectionWriterStub {
	return &collectionWriterStub{
		feeMasters:  map[string]*models.FeeMaster{"fm-1": {ID: "fm-1", Type: models.FeeTypeTuition}},
		collections: map[string]*models.Collection{},
	}
}

func (s *collectionWriterStub) GetFeeMaster(_ context.Context, id string) (*models.FeeMaster, error) {
	if fm, ok := s.feeMasters[id]; ok {
		return fm, nil
	}
	return nil, fmt.Errorf("get fee master: %w", sql.ErrNoRows)
}

func (s *collectionWriterStub) FindByID(_ context.Context, id string) (*models.Collection, error) {
	if col, ok := s.collections[id]; ok {
		return col, nil
	}
	return nil, fmt.Errorf("find collection: %w", sql.ErrNoRows)
}

func (s *collectionWriterStub) Create(_ context.Context, col *models.Collection) error {
	col.ID = "col-1"
	if col.Status == "" {
		col.Status = models.PaymentPending
	}
	s.created = col
	s.collections[col.ID] = col
	return nil
}

func (s *collectionWriterStub) Approve(_ context.Context, id, approvedBy string, at time.Time) (*models.Collection, error) {
	col, ok := s.collections[id]
	if !ok || col.Status == models.PaymentApproved {
		return nil, fmt.Errorf("approve collection: %w", sql.ErrNoRows)
	}
	col.Status = models.PaymentApproved
	col.ApprovedBy = &approvedBy
	col.ApprovedAt = &at
	return col, nil
}

func TestCollectionServiceCreate(t *testing.T) {
	repo := newCollectionWriterStub()
	cache := &invalidatorStub{}
	svc := NewCollectionService(repo, cache, nil, nil)

	col, err := svc.Create(context.Background(), dto.CreateCollectionRequest{
		StudentID:   "s1",
		FeeMasterID: "fm-1",
		Amount:      "1500.50",
		Method:      "CASH",
		CollectedAt: "2024-02-10",
	}, "cashier-1")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, col.Status)
	assert.Equal(t, "1500.5", col.Amount.String())
	assert.Equal(t, "CASH", *col.Method)
	assert.Equal(t, "cashier-1", *col.CollectedBy)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), col.CollectedAt)
	assert.Nil(t, col.ApprovedBy)
	assert.Equal(t, []models.ReportType{models.ReportTypeFinance}, cache.kinds)
}

func TestCollectionServiceCreateValidation(t *testing.T) {
	svc := NewCollectionService(newCollectionWriterStub(), nil, nil, nil)

	cases := map[string]dto.CreateCollectionRequest{
		"negative amount":   {StudentID: "s1", FeeMasterID: "fm-1", Amount: "-5"},
		"zero amount":       {StudentID: "s1", FeeMasterID: "fm-1", Amount: "0"},
		"unknown fee":       {StudentID: "s1", FeeMasterID: "fm-x", Amount: "10"},
		"bad status":        {StudentID: "s1", FeeMasterID: "fm-1", Amount: "10", Status: "REFUNDED"},
		"missing student":   {FeeMasterID: "fm-1", Amount: "10"},
		"bad collected day": {StudentID: "s1", FeeMasterID: "fm-1", Amount: "10", CollectedAt: "yesterday"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req, "")
			assert.True(t, errors.Is(err, appErrors.ErrValidation), "got %v", err)
		})
	}
}

func TestCollectionServiceApprove(t *testing.T) {
	repo := newCollectionWriterStub()
	repo.collections["col-9"] = &models.Collection{ID: "col-9", Status: models.PaymentPending}
	cache := &invalidatorStub{}
	svc := NewCollectionService(repo, cache, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }

	col, err := svc.Approve(context.Background(), "col-9", "manager")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, col.Status)
	assert.Equal(t, "manager", *col.ApprovedBy)
	assert.Len(t, cache.kinds, 1)

	_, err = svc.Approve(context.Background(), "col-9", "manager")
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Approve(context.Background(), "missing", "manager")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Len(t, cache.kinds, 1)
}
