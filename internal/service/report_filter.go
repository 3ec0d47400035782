package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
)

const noneSentinel = "NONE"

// Field sentinels meaning "no constraint".
const (
	AllSessions = "ALL_SESSIONS"
	AllClasses  = "ALL_CLASSES"
	AllBatches  = "ALL_BATCHES"
	AllSections = "ALL_SECTIONS"
	AllStudents = "ALL_STUDENTS"
	AllStatuses = "ALL_STATUSES"
	AllFeeTypes = "ALL_FEE_TYPES"
)

// NormalizeAttendanceQuery converts attendance report filters into a scope.
func NormalizeAttendanceQuery(q dto.AttendanceReportQuery) (models.ReportScope, error) {
	scope, err := normalizeAcademic(q.AcademicScopeQuery)
	if err != nil {
		return models.ReportScope{}, err
	}
	if scope.StudentID, err = normalizeID("studentId", AllStudents, q.StudentID); err != nil {
		return models.ReportScope{}, err
	}
	if scope.Period, err = normalizePeriod(q.ReportPeriodQuery); err != nil {
		return models.ReportScope{}, err
	}
	return scope, nil
}

// NormalizeFinanceQuery converts finance report filters into a scope.
func NormalizeFinanceQuery(q dto.FinanceReportQuery) (models.ReportScope, error) {
	scope, err := normalizeAcademic(q.AcademicScopeQuery)
	if err != nil {
		return models.ReportScope{}, err
	}
	if scope.StudentID, err = normalizeID("studentId", AllStudents, q.StudentID); err != nil {
		return models.ReportScope{}, err
	}

	feeType, err := normalizeID("feeType", AllFeeTypes, q.FeeType)
	if err != nil {
		return models.ReportScope{}, err
	}
	if feeType != "" {
		scope.FeeType = models.FeeType(strings.ToUpper(feeType))
		if !scope.FeeType.Valid() {
			return models.ReportScope{}, appErrors.Validation("feeType", fmt.Sprintf("unsupported feeType %q", q.FeeType))
		}
	}

	status, err := normalizeID("paymentStatus", AllStatuses, q.PaymentStatus)
	if err != nil {
		return models.ReportScope{}, err
	}
	if status != "" {
		scope.PaymentStatus = models.PaymentStatus(strings.ToUpper(status))
		if !scope.PaymentStatus.Valid() {
			return models.ReportScope{}, appErrors.Validation("paymentStatus", fmt.Sprintf("unsupported paymentStatus %q", q.PaymentStatus))
		}
	}

	if scope.Period, err = normalizePeriod(q.ReportPeriodQuery); err != nil {
		return models.ReportScope{}, err
	}
	return scope, nil
}

// NormalizeStudentQuery converts student report filters into a scope.
func NormalizeStudentQuery(q dto.StudentReportQuery) (models.ReportScope, error) {
	scope, err := normalizeAcademic(q.AcademicScopeQuery)
	if err != nil {
		return models.ReportScope{}, err
	}
	status, err := normalizeID("status", AllStatuses, q.Status)
	if err != nil {
		return models.ReportScope{}, err
	}
	if status != "" {
		scope.Status = models.StudentStatus(strings.ToUpper(status))
		if !scope.Status.Valid() {
			return models.ReportScope{}, appErrors.Validation("status", fmt.Sprintf("unsupported status %q", q.Status))
		}
	}
	return scope, nil
}

var exportFilterKeys = map[models.ReportType][]string{
	models.ReportTypeAttendance: {"sessionId", "classId", "batchId", "sectionId", "studentId", "dateFrom", "dateTo", "month", "year"},
	models.ReportTypeFinance:    {"sessionId", "classId", "batchId", "sectionId", "studentId", "feeType", "paymentStatus", "dateFrom", "dateTo", "month", "year"},
	models.ReportTypeStudents:   {"sessionId", "classId", "batchId", "sectionId", "status"},
}

// NormalizeExportFilters validates the filter map of an export request for the given report kind.
func NormalizeExportFilters(kind models.ReportType, filters map[string]string) (models.ReportScope, error) {
	allowed, ok := exportFilterKeys[kind]
	if !ok {
		return models.ReportScope{}, appErrors.Validation("type", fmt.Sprintf("unsupported report type %q", kind))
	}
	known := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		known[key] = struct{}{}
	}
	unknown := make([]string, 0)
	for key := range filters {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return models.ReportScope{}, appErrors.Validation(unknown[0], fmt.Sprintf("unknown filter %q for %s report", unknown[0], kind))
	}

	academic := dto.AcademicScopeQuery{
		SessionID: filters["sessionId"],
		ClassID:   filters["classId"],
		BatchID:   filters["batchId"],
		SectionID: filters["sectionId"],
	}
	period := dto.ReportPeriodQuery{
		DateFrom: filters["dateFrom"],
		DateTo:   filters["dateTo"],
		Month:    filters["month"],
		Year:     filters["year"],
	}

	switch kind {
	case models.ReportTypeAttendance:
		return NormalizeAttendanceQuery(dto.AttendanceReportQuery{AcademicScopeQuery: academic, ReportPeriodQuery: period, StudentID: filters["studentId"]})
	case models.ReportTypeFinance:
		return NormalizeFinanceQuery(dto.FinanceReportQuery{
			AcademicScopeQuery: academic,
			ReportPeriodQuery:  period,
			StudentID:          filters["studentId"],
			FeeType:            filters["feeType"],
			PaymentStatus:      filters["paymentStatus"],
		})
	default:
		return NormalizeStudentQuery(dto.StudentReportQuery{AcademicScopeQuery: academic, Status: filters["status"]})
	}
}

func normalizeAcademic(q dto.AcademicScopeQuery) (models.ReportScope, error) {
	var (
		scope models.ReportScope
		err   error
	)
	if scope.SessionID, err = normalizeID("sessionId", AllSessions, q.SessionID); err != nil {
		return scope, err
	}
	if scope.ClassID, err = normalizeID("classId", AllClasses, q.ClassID); err != nil {
		return scope, err
	}
	if scope.BatchID, err = normalizeID("batchId", AllBatches, q.BatchID); err != nil {
		return scope, err
	}
	if scope.SectionID, err = normalizeID("sectionId", AllSections, q.SectionID); err != nil {
		return scope, err
	}
	return scope, nil
}

// normalizeID maps the sentinels of a field to "" and rejects sentinels that belong to other fields.
func normalizeID(field, sentinel, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch {
	case value == "", value == noneSentinel, value == sentinel:
		return "", nil
	case strings.HasPrefix(strings.ToUpper(value), "ALL_"):
		return "", appErrors.Validation(field, fmt.Sprintf("%s does not accept %q", field, value))
	}
	return value, nil
}

func normalizePeriod(q dto.ReportPeriodQuery) (*models.DateRange, error) {
	monthRange, err := monthPeriod(strings.TrimSpace(q.Month), strings.TrimSpace(q.Year))
	if err != nil {
		return nil, err
	}

	rawFrom, rawTo := strings.TrimSpace(q.DateFrom), strings.TrimSpace(q.DateTo)
	if rawFrom == "" && rawTo == "" {
		return monthRange, nil
	}

	explicit := &models.DateRange{}
	if rawFrom != "" {
		from, err := parseDate("dateFrom", rawFrom)
		if err != nil {
			return nil, err
		}
		explicit.From = &from
	}
	if rawTo != "" {
		to, err := parseDate("dateTo", rawTo)
		if err != nil {
			return nil, err
		}
		explicit.To = &to
	}
	if explicit.From != nil && explicit.To != nil && explicit.From.After(*explicit.To) {
		return nil, appErrors.Validation("dateFrom", "dateFrom must not be after dateTo")
	}
	return explicit, nil
}

func monthPeriod(rawMonth, rawYear string) (*models.DateRange, error) {
	if rawMonth == "" && rawYear == "" {
		return nil, nil
	}
	if rawMonth == "" {
		return nil, appErrors.Validation("month", "month is required when year is set")
	}
	if rawYear == "" {
		return nil, appErrors.Validation("year", "year is required when month is set")
	}

	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 1 || month > 12 {
		return nil, appErrors.Validation("month", "month must be between 1 and 12")
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 1 || year > 9999 {
		return nil, appErrors.Validation("year", "year must be numeric")
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return &models.DateRange{From: &from, To: &to}, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Validation(field, fmt.Sprintf("%s must use YYYY-MM-DD", field))
	}
	return t, nil
}
