package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-admin-api/internal/models"
	"github.com/noah-isme/coaching-admin-api/pkg/export"
	"github.com/noah-isme/coaching-admin-api/pkg/storage"
)

type attendanceReporter interface {
	Generate(ctx context.Context, scope models.ReportScope) (*models.AttendanceReport, bool, error)
}

type financeReporter interface {
	Generate(ctx context.Context, scope models.ReportScope) (*models.FinanceReport, bool, error)
}

type studentReporter interface {
	Generate(ctx context.Context, scope models.ReportScope) (*models.StudentReport, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(now time.Time, ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders generated reports and persists the files.
type ExportService struct {
	attendance attendanceReporter
	finance    financeReporter
	students   studentReporter
	storage    fileStorage
	renderers  map[models.ReportFormat]export.Renderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
	now        func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(attendance attendanceReporter, finance financeReporter, students studentReporter, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		attendance: attendance,
		finance:    finance,
		students:   students,
		storage:    files,
		renderers: map[models.ReportFormat]export.Renderer{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Generate builds the job's report, renders it in the requested format and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	doc, err := s.buildDocument(ctx, job.Type, job.Params.Scope)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", job.Params.Format, err)
	}

	relPath, err := s.storage.Save(s.buildFilename(job, renderer.Extension()), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("export stored", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.DownloadURL(token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Sign issues a fresh download token for a stored export.
func (s *ExportService) Sign(jobID, relPath string) (string, time.Time, error) {
	return s.signer.Generate(jobID, relPath)
}

// DownloadURL renders the public download path of a token.
func (s *ExportService) DownloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/%s", prefix, token)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// ContentType reports the MIME type of a format.
func (s *ExportService) ContentType(format models.ReportFormat) string {
	if renderer, ok := s.renderers[format]; ok {
		return renderer.ContentType()
	}
	return "application/octet-stream"
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(s.now(), ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	classPart := sanitizeFilename(job.Params.Scope.ClassID)
	return fmt.Sprintf("%s_%s_%s_%s.%s", strings.ToLower(string(job.Type)), classPart, timestamp, shortID(job.ID), ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (s *ExportService) buildDocument(ctx context.Context, kind models.ReportType, scope models.ReportScope) (export.Document, error) {
	switch kind {
	case models.ReportTypeAttendance:
		report, _, err := s.attendance.Generate(ctx, scope)
		if err != nil {
			return export.Document{}, err
		}
		return AttendanceDocument(report, scope), nil
	case models.ReportTypeFinance:
		report, _, err := s.finance.Generate(ctx, scope)
		if err != nil {
			return export.Document{}, err
		}
		return FinanceDocument(report, scope), nil
	case models.ReportTypeStudents:
		report, _, err := s.students.Generate(ctx, scope)
		if err != nil {
			return export.Document{}, err
		}
		return StudentDocument(report), nil
	default:
		return export.Document{}, fmt.Errorf("unsupported report type %s", kind)
	}
}

// AttendanceDocument lays out the attendance summary, daily trend and class breakdown.
func AttendanceDocument(report *models.AttendanceReport, scope models.ReportScope) export.Document {
	sum := report.StudentSummary
	staff := report.StaffSummary
	summary := export.Dataset{
		Headers: []string{"Group", "Total", "Present", "Absent", "Late", "Leave", "Attendance (%)"},
		Rows: []map[string]string{
			{
				"Group": "Students", "Total": itoa(sum.TotalRecords), "Present": itoa(sum.PresentCount),
				"Absent": itoa(sum.AbsentCount), "Late": itoa(sum.LateCount), "Leave": "",
				"Attendance (%)": itoa(sum.AttendancePercentage),
			},
			{
				"Group": "Staff", "Total": itoa(staff.TotalRecords), "Present": itoa(staff.PresentCount),
				"Absent": itoa(staff.AbsentCount), "Late": "", "Leave": itoa(staff.LeaveCount),
				"Attendance (%)": itoa(staff.AttendancePercentage),
			},
		},
	}

	daily := export.Dataset{Headers: []string{"Date", "Present", "Absent", "Late", "Total"}}
	for _, trend := range report.DailyTrends {
		daily.Rows = append(daily.Rows, map[string]string{
			"Date": trend.Date, "Present": itoa(trend.Present), "Absent": itoa(trend.Absent),
			"Late": itoa(trend.Late), "Total": itoa(trend.Total),
		})
	}

	classes := export.Dataset{Headers: []string{"Class", "Present", "Absent", "Late", "Total", "Attendance (%)"}}
	for _, class := range report.ClassWiseAttendance {
		classes.Rows = append(classes.Rows, map[string]string{
			"Class": class.ClassName, "Present": itoa(class.Present), "Absent": itoa(class.Absent),
			"Late": itoa(class.Late), "Total": itoa(class.Total), "Attendance (%)": itoa(class.AttendancePercentage),
		})
	}

	return export.Document{
		Title: "Attendance Report " + periodLabel(scope.Period),
		Sections: []export.Section{
			{Title: "Summary", Data: summary},
			{Title: "Daily Trend", Data: daily},
			{Title: "Class-wise Attendance", Data: classes},
		},
	}
}

// FinanceDocument lays out the collection summary, fee type split, class summary and defaulters.
func FinanceDocument(report *models.FinanceReport, scope models.ReportScope) export.Document {
	sum := report.Summary
	summary := export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			{"Metric": "Total Collection", "Value": sum.TotalCollection.StringFixed(2)},
			{"Metric": "Total Dues", "Value": sum.TotalDues.StringFixed(2)},
			{"Metric": "Total Expense", "Value": sum.TotalExpense.StringFixed(2)},
			{"Metric": "Net Profit", "Value": sum.NetProfit.StringFixed(2)},
			{"Metric": "Approved Collections", "Value": itoa(sum.ApprovedCount)},
			{"Metric": "Pending Collections", "Value": itoa(sum.PendingCount)},
		},
	}

	feeTypes := export.Dataset{Headers: []string{"Fee Type", "Amount", "Count", "Share (%)"}}
	for _, share := range report.FeeTypeDistribution {
		feeTypes.Rows = append(feeTypes.Rows, map[string]string{
			"Fee Type": string(share.FeeType), "Amount": share.Amount.StringFixed(2),
			"Count": itoa(share.Count), "Share (%)": itoa(share.Percentage),
		})
	}

	classes := export.Dataset{Headers: []string{"Class", "Collected", "Pending", "Collected (%)"}}
	for _, class := range report.ClassSummary {
		classes.Rows = append(classes.Rows, map[string]string{
			"Class": class.ClassName, "Collected": class.TotalCollection.StringFixed(2),
			"Pending": class.PendingDues.StringFixed(2), "Collected (%)": itoa(class.CollectionPercentage),
		})
	}

	defaulters := export.Dataset{Headers: []string{"Student ID", "Name", "Class", "Phone", "Due Amount", "Pending", "Oldest Due", "Days Overdue"}}
	for _, d := range report.Defaulters {
		oldest := ""
		if d.OldestDueDate != nil {
			oldest = *d.OldestDueDate
		}
		defaulters.Rows = append(defaulters.Rows, map[string]string{
			"Student ID": d.StudentCode, "Name": d.StudentName, "Class": d.ClassName, "Phone": d.Phone,
			"Due Amount": d.DueAmount.StringFixed(2), "Pending": itoa(d.PendingCount),
			"Oldest Due": oldest, "Days Overdue": itoa(d.DaysOverdue),
		})
	}

	return export.Document{
		Title: "Finance Report " + periodLabel(scope.Period),
		Sections: []export.Section{
			{Title: "Summary", Data: summary},
			{Title: "Fee Type Distribution", Data: feeTypes},
			{Title: "Class Summary", Data: classes},
			{Title: "Defaulters", Data: defaulters},
		},
	}
}

// StudentDocument lays out the roster and the guardian contact list.
func StudentDocument(report *models.StudentReport) export.Document {
	roster := export.Dataset{Headers: []string{"Student ID", "Name", "Class", "Gender", "Status", "Date of Birth"}}
	for _, st := range report.Students {
		personal := st.Personal.Data()
		roster.Rows = append(roster.Rows, map[string]string{
			"Student ID": st.StudentID, "Name": personal.NameEn, "Class": models.GroupName(st.ClassName),
			"Gender": string(personal.Gender), "Status": string(st.Status), "Date of Birth": personal.DOB,
		})
	}

	contacts := export.Dataset{Headers: []string{"Student ID", "Student", "Guardian", "Relationship", "Phone", "Email", "Address"}}
	for _, row := range report.GuardianContacts {
		contacts.Rows = append(contacts.Rows, map[string]string{
			"Student ID": row.StudentID, "Student": row.StudentName, "Guardian": row.GuardianName,
			"Relationship": row.Relationship, "Phone": row.Phone, "Email": row.Email, "Address": row.Address,
		})
	}

	sum := report.Summary
	summary := export.Dataset{
		Headers: []string{"Total", "Male", "Female", "Active", "Inactive", "Average Age"},
		Rows: []map[string]string{{
			"Total": itoa(sum.Total), "Male": itoa(sum.Male), "Female": itoa(sum.Female),
			"Active": itoa(sum.Active), "Inactive": itoa(sum.Inactive), "Average Age": itoa(sum.AverageAge),
		}},
	}

	return export.Document{
		Title: "Student Report",
		Sections: []export.Section{
			{Title: "Summary", Data: summary},
			{Title: "Students", Data: roster},
			{Title: "Guardian Contacts", Data: contacts},
		},
	}
}

func periodLabel(period *models.DateRange) string {
	if period == nil || (period.From == nil && period.To == nil) {
		return "(all dates)"
	}
	from, to := "start", "today"
	if period.From != nil {
		from = period.From.Format(models.DateLayout)
	}
	if period.To != nil {
		to = period.To.Format(models.DateLayout)
	}
	return fmt.Sprintf("(%s to %s)", from, to)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
