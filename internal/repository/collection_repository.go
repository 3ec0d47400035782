package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

var collectionColumns = ScopeColumns{
	Session:       "s.session_id",
	Class:         "s.class_id",
	Batch:         "s.batch_id",
	Section:       "s.section_id",
	Student:       "col.student_id",
	FeeType:       "fm.type",
	PaymentStatus: "col.status",
	Date:          "col.collected_at",
}

const collectionSelect = `col.id, col.student_id, col.fee_master_id, col.amount, col.status, col.method, col.remarks,
col.collected_at, col.collected_by, col.approved_by, col.approved_at, col.created_at, col.updated_at`

// CollectionRepository reads and writes fee collections.
type CollectionRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewCollectionRepository constructs the repository. Report periods over collected_at are bounded by
// midnights in loc; nil means UTC.
func NewCollectionRepository(db *sqlx.DB, loc *time.Location) *CollectionRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &CollectionRepository{db: db, loc: loc}
}

// List returns collections inside the scope joined with student, class and fee master, newest first.
func (r *CollectionRepository) List(ctx context.Context, scope models.ReportScope) ([]models.CollectionRecord, error) {
	query, args, err := psql.
		Select(
			collectionSelect,
			"s.student_id AS student_code",
			"COALESCE(s.personal->>'nameEn', '') AS student_name",
			"NULLIF(s.guardian->'contact'->>'smsNo', '') AS student_phone",
			"s.class_id", "c.name AS class_name",
			"fm.name AS fee_name", "fm.type AS fee_type", "fm.due_date",
		).
		From("collections col").
		Join("students s ON s.id = col.student_id").
		Join("fee_masters fm ON fm.id = col.fee_master_id").
		LeftJoin("classes c ON c.id = s.class_id").
		Where(ScopePredicateIn(scope, collectionColumns, r.loc)).
		OrderBy("col.collected_at DESC", "col.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build collection query: %w", err)
	}

	var rows []models.CollectionRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return rows, nil
}

// GetFeeMaster returns a fee master by id.
func (r *CollectionRepository) GetFeeMaster(ctx context.Context, id string) (*models.FeeMaster, error) {
	const query = `SELECT id, session_id, class_id, name, type, amount, due_date, created_at FROM fee_masters WHERE id = $1`
	var fee models.FeeMaster
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, fmt.Errorf("get fee master: %w", err)
	}
	return &fee, nil
}

// FindByID returns a collection by id.
func (r *CollectionRepository) FindByID(ctx context.Context, id string) (*models.Collection, error) {
	query := `SELECT ` + collectionSelect + ` FROM collections col WHERE col.id = $1`
	var col models.Collection
	if err := r.db.GetContext(ctx, &col, query, id); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &col, nil
}

// Create inserts a collection row with generated defaults.
func (r *CollectionRepository) Create(ctx context.Context, col *models.Collection) error {
	now := time.Now().UTC()
	if col.ID == "" {
		col.ID = uuid.NewString()
	}
	if col.Status == "" {
		col.Status = models.PaymentPending
	}
	if col.CollectedAt.IsZero() {
		col.CollectedAt = now
	}
	col.CreatedAt = now
	col.UpdatedAt = now
	const query = `INSERT INTO collections (id, student_id, fee_master_id, amount, status, method, remarks, collected_at, collected_by, approved_by, approved_at, created_at, updated_at)
VALUES (:id, :student_id, :fee_master_id, :amount, :status, :method, :remarks, :collected_at, :collected_by, :approved_by, :approved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, col); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Approve marks a collection as approved. sql.ErrNoRows means it is missing or already approved.
func (r *CollectionRepository) Approve(ctx context.Context, id, approvedBy string, at time.Time) (*models.Collection, error) {
	query := `UPDATE collections col SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
WHERE col.id = $4 AND col.status <> $1
RETURNING ` + collectionSelect
	var col models.Collection
	if err := r.db.GetContext(ctx, &col, query, models.PaymentApproved, approvedBy, at, id); err != nil {
		return nil, fmt.Errorf("approve collection: %w", err)
	}
	return &col, nil
}
