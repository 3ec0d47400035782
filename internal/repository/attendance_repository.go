package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

var studentAttendanceColumns = ScopeColumns{
	Session: "s.session_id",
	Class:   "s.class_id",
	Batch:   "s.batch_id",
	Section: "s.section_id",
	Student: "sa.student_id",
	Date:    "sa.date",
}

var staffAttendanceColumns = ScopeColumns{Date: "ta.date"}

// AttendanceRepository reads and writes student and staff attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListStudentAttendance returns the student marks inside the scope, newest first.
func (r *AttendanceRepository) ListStudentAttendance(ctx context.Context, scope models.ReportScope) ([]models.StudentAttendanceRecord, error) {
	query, args, err := psql.
		Select(
			"sa.id", "sa.student_id", "sa.subject_id", "sa.date", "sa.status", "sa.remarks", "sa.marked_by",
			"sa.created_at", "sa.updated_at",
			"s.student_id AS student_code",
			"COALESCE(s.personal->>'nameEn', '') AS student_name",
			"s.class_id", "c.name AS class_name", "sub.name AS subject_name",
		).
		From("student_attendance sa").
		Join("students s ON s.id = sa.student_id").
		LeftJoin("classes c ON c.id = s.class_id").
		LeftJoin("subjects sub ON sub.id = sa.subject_id").
		Where(ScopePredicate(scope, studentAttendanceColumns)).
		OrderBy("sa.date DESC", "sa.updated_at DESC", "sa.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build student attendance query: %w", err)
	}

	var rows []models.StudentAttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return rows, nil
}

// ListStaffAttendance returns the staff marks inside the scope period, newest first.
func (r *AttendanceRepository) ListStaffAttendance(ctx context.Context, scope models.ReportScope) ([]models.StaffAttendanceRecord, error) {
	query, args, err := psql.
		Select(
			"ta.id", "ta.teacher_id", "ta.date", "ta.status", "ta.check_in", "ta.check_out", "ta.remarks",
			"ta.created_at", "ta.updated_at",
			"t.name AS teacher_name", "t.designation",
		).
		From("staff_attendance ta").
		Join("teachers t ON t.id = ta.teacher_id").
		Where(ScopePredicate(scope, staffAttendanceColumns)).
		OrderBy("ta.date DESC", "ta.updated_at DESC", "ta.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build staff attendance query: %w", err)
	}

	var rows []models.StaffAttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list staff attendance: %w", err)
	}
	return rows, nil
}

const upsertStudentAttendance = `INSERT INTO student_attendance (id, student_id, subject_id, date, status, remarks, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, subject_id, date)
DO UPDATE SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`

const upsertStaffAttendance = `INSERT INTO staff_attendance (id, teacher_id, date, status, check_in, check_out, remarks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (teacher_id, date)
DO UPDATE SET status = EXCLUDED.status, check_in = EXCLUDED.check_in, check_out = EXCLUDED.check_out, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`

// UpsertStudentMarks writes one mark per (student, subject, date). In atomic mode the first
// failure rolls back every row; otherwise failing rows are reported and the rest persist.
func (r *AttendanceRepository) UpsertStudentMarks(ctx context.Context, marks []models.StudentAttendance, atomic bool) ([]models.BulkFailure, error) {
	now := time.Now().UTC()
	args := make([][]interface{}, len(marks))
	for i := range marks {
		m := &marks[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
		args[i] = []interface{}{m.ID, m.StudentID, m.SubjectID, m.Date, m.Status, m.Remarks, m.MarkedBy, m.CreatedAt, m.UpdatedAt}
	}
	return r.bulkExec(ctx, "student attendance", upsertStudentAttendance, args, atomic)
}

// UpsertStaffMarks writes one mark per (teacher, date) with the same failure semantics as UpsertStudentMarks.
func (r *AttendanceRepository) UpsertStaffMarks(ctx context.Context, marks []models.StaffAttendance, atomic bool) ([]models.BulkFailure, error) {
	now := time.Now().UTC()
	args := make([][]interface{}, len(marks))
	for i := range marks {
		m := &marks[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
		args[i] = []interface{}{m.ID, m.TeacherID, m.Date, m.Status, m.CheckIn, m.CheckOut, m.Remarks, m.CreatedAt, m.UpdatedAt}
	}
	return r.bulkExec(ctx, "staff attendance", upsertStaffAttendance, args, atomic)
}

func (r *AttendanceRepository) bulkExec(ctx context.Context, label, query string, rows [][]interface{}, atomic bool) ([]models.BulkFailure, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if !atomic {
		failures := make([]models.BulkFailure, 0)
		for i, args := range rows {
			if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
				if ctx.Err() != nil {
					return failures, fmt.Errorf("upsert %s: %w", label, ctx.Err())
				}
				failures = append(failures, models.BulkFailure{Index: i, Reason: err.Error()})
			}
		}
		return failures, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk %s: %w", label, err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()
	for i, args := range rows {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return []models.BulkFailure{{Index: i, Reason: err.Error()}}, fmt.Errorf("upsert %s entry %d: %w", label, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk %s: %w", label, err)
	}
	commit = true
	return nil, nil
}
