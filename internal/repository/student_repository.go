package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/datatypes"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

var studentColumns = ScopeColumns{
	Session: "s.session_id",
	Class:   "s.class_id",
	Batch:   "s.batch_id",
	Section: "s.section_id",
	Student: "s.id",
	Status:  "s.status",
}

// StudentRepository reads the student directory.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students inside the scope ordered by student id. The personal
// sub-document is normalised before it leaves the repository.
func (r *StudentRepository) List(ctx context.Context, scope models.ReportScope) ([]models.StudentRecord, error) {
	query, args, err := psql.
		Select(
			"s.id", "s.student_id", "s.session_id", "s.class_id", "s.batch_id", "s.section_id", "s.status",
			"COALESCE(s.personal, '{}') AS personal",
			"COALESCE(s.guardian, '{}') AS guardian",
			"COALESCE(s.address, '{}') AS address",
			"s.created_at", "s.updated_at",
			"ses.name AS session_name", "c.name AS class_name", "b.name AS batch_name", "sec.name AS section_name",
		).
		From("students s").
		LeftJoin("academic_sessions ses ON ses.id = s.session_id").
		LeftJoin("classes c ON c.id = s.class_id").
		LeftJoin("batches b ON b.id = s.batch_id").
		LeftJoin("sections sec ON sec.id = s.section_id").
		Where(ScopePredicate(scope, studentColumns)).
		OrderBy("s.student_id ASC", "s.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build student query: %w", err)
	}

	var rows []models.StudentRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	for i := range rows {
		rows[i].Personal = datatypes.NewJSONType(rows[i].Personal.Data().Normalize())
	}
	return rows, nil
}
