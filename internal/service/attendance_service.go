package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

const foreignKeyViolation = "23503"

type attendanceWriter interface {
	UpsertStudentMarks(ctx context.Context, marks []models.StudentAttendance, atomic bool) ([]models.BulkFailure, error)
	UpsertStaffMarks(ctx context.Context, marks []models.StaffAttendance, atomic bool) ([]models.BulkFailure, error)
}

type reportInvalidator interface {
	InvalidateReports(ctx context.Context, kinds ...models.ReportType)
}

// AttendanceService records student and staff attendance marks.
type AttendanceService struct {
	repo      attendanceWriter
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceWriter, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// MarkStudents upserts one mark per student for a subject and day.
func (s *AttendanceService) MarkStudents(ctx context.Context, req dto.MarkStudentAttendanceRequest, actorID string) (*models.BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.ParseInLocation(models.DateLayout, req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Validation("date", "invalid date format, expected YYYY-MM-DD")
	}
	mode := bulkMode(req.Mode)

	var markedBy *string
	if actorID != "" {
		markedBy = &actorID
	}
	seen := make(map[string]struct{}, len(req.Entries))
	marks := make([]models.StudentAttendance, len(req.Entries))
	for i, entry := range req.Entries {
		if _, dup := seen[entry.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate student %s in payload", entry.StudentID))
		}
		seen[entry.StudentID] = struct{}{}
		marks[i] = models.StudentAttendance{
			StudentID: entry.StudentID,
			SubjectID: req.SubjectID,
			Date:      date,
			Status:    models.StudentAttendanceStatus(entry.Status),
			Remarks:   optional(entry.Remarks),
			MarkedBy:  markedBy,
		}
	}

	failures, err := s.repo.UpsertStudentMarks(ctx, marks, mode == models.BulkModeAtomic)
	if err != nil {
		return nil, s.writeError(err, "failed to mark student attendance", "unknown student or subject")
	}
	return s.bulkResult(ctx, mode, len(marks), failures), nil
}

// MarkStaff upserts one mark per teacher for a day.
func (s *AttendanceService) MarkStaff(ctx context.Context, req dto.MarkStaffAttendanceRequest) (*models.BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.ParseInLocation(models.DateLayout, req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Validation("date", "invalid date format, expected YYYY-MM-DD")
	}
	mode := bulkMode(req.Mode)

	seen := make(map[string]struct{}, len(req.Entries))
	marks := make([]models.StaffAttendance, len(req.Entries))
	for i, entry := range req.Entries {
		if _, dup := seen[entry.TeacherID]; dup {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate teacher %s in payload", entry.TeacherID))
		}
		seen[entry.TeacherID] = struct{}{}
		checkIn, err := clockOn(date, entry.CheckIn)
		if err != nil {
			return nil, appErrors.Validation("checkIn", "invalid time, expected HH:MM")
		}
		checkOut, err := clockOn(date, entry.CheckOut)
		if err != nil {
			return nil, appErrors.Validation("checkOut", "invalid time, expected HH:MM")
		}
		if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
			return nil, appErrors.Validation("checkOut", "checkOut must not be before checkIn")
		}
		marks[i] = models.StaffAttendance{
			TeacherID: entry.TeacherID,
			Date:      date,
			Status:    models.StaffAttendanceStatus(entry.Status),
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Remarks:   optional(entry.Remarks),
		}
	}

	failures, err := s.repo.UpsertStaffMarks(ctx, marks, mode == models.BulkModeAtomic)
	if err != nil {
		return nil, s.writeError(err, "failed to mark staff attendance", "unknown teacher")
	}
	return s.bulkResult(ctx, mode, len(marks), failures), nil
}

func (s *AttendanceService) bulkResult(ctx context.Context, mode models.BulkOperationMode, total int, failures []models.BulkFailure) *models.BulkAttendanceResult {
	result := &models.BulkAttendanceResult{Mode: mode, Saved: total - len(failures), Failed: len(failures)}
	if len(failures) > 0 {
		result.Failures = failures
	}
	if result.Saved > 0 && s.cache != nil {
		s.cache.InvalidateReports(ctx, models.ReportTypeAttendance)
	}
	return result
}

func (s *AttendanceService) writeError(err error, message, fkMessage string) error {
	if isForeignKeyViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fkMessage)
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

func bulkMode(mode models.BulkOperationMode) models.BulkOperationMode {
	if mode == models.BulkModePartialOnError {
		return mode
	}
	return models.BulkModeAtomic
}

func clockOn(date time.Time, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	clock, err := time.Parse("15:04", raw)
	if err != nil {
		return nil, err
	}
	at := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	return &at, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
