package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

// AttendanceReader fetches the attendance marks of a scope.
type AttendanceReader interface {
	ListStudentAttendance(ctx context.Context, scope models.ReportScope) ([]models.StudentAttendanceRecord, error)
	ListStaffAttendance(ctx context.Context, scope models.ReportScope) ([]models.StaffAttendanceRecord, error)
}

// AttendanceReportService builds attendance reports.
type AttendanceReportService struct {
	repo AttendanceReader
	reportGenerator
}

// NewAttendanceReportService constructs the service.
func NewAttendanceReportService(repo AttendanceReader, opts ReportOptions) *AttendanceReportService {
	return &AttendanceReportService{repo: repo, reportGenerator: newReportGenerator(opts)}
}

// Generate returns the attendance report of the scope. The boolean reports a cache hit.
func (s *AttendanceReportService) Generate(ctx context.Context, scope models.ReportScope) (*models.AttendanceReport, bool, error) {
	return generate(ctx, s.reportGenerator, models.ReportTypeAttendance, scope, func(ctx context.Context) (*models.AttendanceReport, error) {
		var (
			students []models.StudentAttendanceRecord
			staff    []models.StaffAttendanceRecord
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			start := time.Now()
			rows, err := s.repo.ListStudentAttendance(gctx, scope)
			if err != nil {
				return fmt.Errorf("fetch student attendance: %w", err)
			}
			s.observeQuery("report_attendance_students", start)
			students = rows
			return nil
		})
		g.Go(func() error {
			start := time.Now()
			rows, err := s.repo.ListStaffAttendance(gctx, scope)
			if err != nil {
				return fmt.Errorf("fetch staff attendance: %w", err)
			}
			s.observeQuery("report_attendance_staff", start)
			staff = rows
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		report := AggregateAttendance(students, staff)
		return &report, nil
	})
}

type studentMarkKey struct {
	student, subject, date string
}

type staffMarkKey struct {
	teacher, date string
}

// AggregateAttendance summarises student and staff marks. Marks with an unknown status are skipped and
// repeated marks for one (student, subject, date) or (teacher, date) collapse to the latest update.
func AggregateAttendance(students []models.StudentAttendanceRecord, staff []models.StaffAttendanceRecord) models.AttendanceReport {
	report := models.AttendanceReport{
		StudentAttendances:  make([]models.StudentAttendanceRecord, 0, len(students)),
		StaffAttendances:    make([]models.StaffAttendanceRecord, 0, len(staff)),
		DailyTrends:         make([]models.DailyAttendanceTrend, 0),
		ClassWiseAttendance: make([]models.ClassAttendance, 0),
	}

	studentIdx := make(map[studentMarkKey]int, len(students))
	for _, row := range students {
		if !row.Status.Valid() {
			report.SkippedRecords++
			continue
		}
		key := studentMarkKey{row.StudentID, row.SubjectID, row.Date.Format(models.DateLayout)}
		if i, seen := studentIdx[key]; seen {
			report.DuplicateMarks++
			if row.UpdatedAt.After(report.StudentAttendances[i].UpdatedAt) {
				report.StudentAttendances[i] = row
			}
			continue
		}
		studentIdx[key] = len(report.StudentAttendances)
		report.StudentAttendances = append(report.StudentAttendances, row)
	}

	staffIdx := make(map[staffMarkKey]int, len(staff))
	for _, row := range staff {
		if !row.Status.Valid() {
			report.SkippedRecords++
			continue
		}
		key := staffMarkKey{row.TeacherID, row.Date.Format(models.DateLayout)}
		if i, seen := staffIdx[key]; seen {
			report.DuplicateMarks++
			if row.UpdatedAt.After(report.StaffAttendances[i].UpdatedAt) {
				report.StaffAttendances[i] = row
			}
			continue
		}
		staffIdx[key] = len(report.StaffAttendances)
		report.StaffAttendances = append(report.StaffAttendances, row)
	}

	daily := make(map[string]*models.DailyAttendanceTrend)
	classes := make(map[string]*models.ClassAttendance)
	for _, row := range report.StudentAttendances {
		date := row.Date.Format(models.DateLayout)
		day, ok := daily[date]
		if !ok {
			day = &models.DailyAttendanceTrend{Date: date}
			daily[date] = day
		}
		className := models.GroupName(row.ClassName)
		class, ok := classes[className]
		if !ok {
			class = &models.ClassAttendance{ClassName: className}
			classes[className] = class
		}

		report.StudentSummary.TotalRecords++
		day.Total++
		class.Total++
		switch row.Status {
		case models.StudentAttendancePresent:
			report.StudentSummary.PresentCount++
			day.Present++
			class.Present++
		case models.StudentAttendanceAbsent:
			report.StudentSummary.AbsentCount++
			day.Absent++
			class.Absent++
		case models.StudentAttendanceLate:
			report.StudentSummary.LateCount++
			day.Late++
			class.Late++
		}
	}
	report.StudentSummary.AttendancePercentage = percentage(report.StudentSummary.PresentCount, report.StudentSummary.TotalRecords)

	for _, row := range report.StaffAttendances {
		report.StaffSummary.TotalRecords++
		switch row.Status {
		case models.StaffAttendancePresent:
			report.StaffSummary.PresentCount++
		case models.StaffAttendanceAbsent:
			report.StaffSummary.AbsentCount++
		case models.StaffAttendanceLeave:
			report.StaffSummary.LeaveCount++
		}
	}
	report.StaffSummary.AttendancePercentage = percentage(report.StaffSummary.PresentCount, report.StaffSummary.TotalRecords)

	for _, day := range daily {
		report.DailyTrends = append(report.DailyTrends, *day)
	}
	sort.Slice(report.DailyTrends, func(i, j int) bool {
		return report.DailyTrends[i].Date < report.DailyTrends[j].Date
	})

	for _, class := range classes {
		class.AttendancePercentage = percentage(class.Present, class.Total)
		report.ClassWiseAttendance = append(report.ClassWiseAttendance, *class)
	}
	sort.Slice(report.ClassWiseAttendance, func(i, j int) bool {
		return report.ClassWiseAttendance[i].ClassName < report.ClassWiseAttendance[j].ClassName
	})

	return report
}
