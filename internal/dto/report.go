package dto

import "github.com/noah-isme/coaching-admin-api/internal/models"

// ReportPeriodQuery carries the two date modes shared by dated reports.
type ReportPeriodQuery struct {
	DateFrom string `form:"dateFrom" json:"dateFrom,omitempty"`
	DateTo   string `form:"dateTo" json:"dateTo,omitempty"`
	Month    string `form:"month" json:"month,omitempty"`
	Year     string `form:"year" json:"year,omitempty"`
}

// AcademicScopeQuery carries the academic hierarchy filters.
type AcademicScopeQuery struct {
	SessionID string `form:"sessionId" json:"sessionId,omitempty"`
	ClassID   string `form:"classId" json:"classId,omitempty"`
	BatchID   string `form:"batchId" json:"batchId,omitempty"`
	SectionID string `form:"sectionId" json:"sectionId,omitempty"`
}

// AttendanceReportQuery captures GET /reports/attendance filters.
type AttendanceReportQuery struct {
	AcademicScopeQuery
	ReportPeriodQuery
	StudentID string `form:"studentId" json:"studentId,omitempty"`
}

// FinanceReportQuery captures GET /reports/finance filters.
type FinanceReportQuery struct {
	AcademicScopeQuery
	ReportPeriodQuery
	StudentID     string `form:"studentId" json:"studentId,omitempty"`
	FeeType       string `form:"feeType" json:"feeType,omitempty"`
	PaymentStatus string `form:"paymentStatus" json:"paymentStatus,omitempty"`
}

// StudentReportQuery captures GET /reports/students filters.
type StudentReportQuery struct {
	AcademicScopeQuery
	Status string `form:"status" json:"status,omitempty"`
}

// ExportRequest captures POST /reports/export payload. Filters use the query parameter names.
type ExportRequest struct {
	Type    models.ReportType   `json:"type" validate:"required,oneof=attendance finance students"`
	Format  models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Filters map[string]string   `json:"filters"`
}

// ReportJobResponse is returned after enqueueing an export.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes export job progress metadata.
type ReportStatusResponse struct {
	ID          string              `json:"id"`
	Type        models.ReportType   `json:"type"`
	Status      models.ReportStatus `json:"status"`
	Progress    int                 `json:"progress"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	ExpiresAt   *string             `json:"expiresAt,omitempty"`
	Error       *string             `json:"error,omitempty"`
}
