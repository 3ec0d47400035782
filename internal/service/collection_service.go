package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

type collectionWriter interface {
	GetFeeMaster(ctx context.Context, id string) (*models.FeeMaster, error)
	FindByID(ctx context.Context, id string) (*models.Collection, error)
	Create(ctx context.Context, col *models.Collection) error
	Approve(ctx context.Context, id, approvedBy string, at time.Time) (*models.Collection, error)
}

// CollectionService records and approves fee collections.
type CollectionService struct {
	repo      collectionWriter
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCollectionService constructs the collection service.
func NewCollectionService(repo collectionWriter, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *CollectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Create records a collection against a fee master.
func (s *CollectionService) Create(ctx context.Context, req dto.CreateCollectionRequest, actorID string) (*models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, appErrors.Validation("amount", "amount must be a positive number")
	}

	if _, err := s.repo.GetFeeMaster(ctx, req.FeeMasterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("feeMasterId", "unknown fee master")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee master")
	}

	col := &models.Collection{
		StudentID:   req.StudentID,
		FeeMasterID: req.FeeMasterID,
		Amount:      amount,
		Status:      models.PaymentStatus(req.Status),
		Method:      optional(req.Method),
		Remarks:     optional(req.Remarks),
	}
	if req.CollectedAt != "" {
		at, err := time.ParseInLocation(models.DateLayout, req.CollectedAt, time.UTC)
		if err != nil {
			return nil, appErrors.Validation("collectedAt", "invalid date format, expected YYYY-MM-DD")
		}
		col.CollectedAt = at
	}
	if actorID != "" {
		col.CollectedBy = &actorID
	}
	if col.Status == models.PaymentApproved && actorID != "" {
		at := s.now().UTC()
		col.ApprovedBy = &actorID
		col.ApprovedAt = &at
	}

	if err := s.repo.Create(ctx, col); err != nil {
		if isForeignKeyViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown student")
		}
		s.logger.Error("failed to create collection", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create collection")
	}
	s.invalidate(ctx)
	return col, nil
}

// Approve moves a collection to APPROVED.
func (s *CollectionService) Approve(ctx context.Context, id, actorID string) (*models.Collection, error) {
	col, err := s.repo.Approve(ctx, id, actorID, s.now().UTC())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("failed to approve collection", zap.String("collection_id", id), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve collection")
		}
		if _, findErr := s.repo.FindByID(ctx, id); findErr != nil {
			if errors.Is(findErr, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "collection not found")
			}
			return nil, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "collection already approved")
	}
	s.invalidate(ctx)
	return col, nil
}

func (s *CollectionService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateReports(ctx, models.ReportTypeFinance)
	}
}
