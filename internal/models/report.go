package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for report dates.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar range. A nil bound is open-ended.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ReportScope is a normalized report filter. Empty fields carry no constraint.
type ReportScope struct {
	SessionID     string        `json:"sessionId,omitempty"`
	ClassID       string        `json:"classId,omitempty"`
	BatchID       string        `json:"batchId,omitempty"`
	SectionID     string        `json:"sectionId,omitempty"`
	StudentID     string        `json:"studentId,omitempty"`
	Status        StudentStatus `json:"status,omitempty"`
	FeeType       FeeType       `json:"feeType,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	Period        *DateRange    `json:"period,omitempty"`
}

// Key renders the scope deterministically for cache keys and logs. Values are
// query-escaped so separators inside IDs cannot collide with other fields.
func (s ReportScope) Key() string {
	fields := [][2]string{
		{"session", s.SessionID},
		{"class", s.ClassID},
		{"batch", s.BatchID},
		{"section", s.SectionID},
		{"student", s.StudentID},
		{"status", string(s.Status)},
		{"fee", string(s.FeeType)},
		{"payment", string(s.PaymentStatus)},
	}
	if s.Period != nil {
		fields = append(fields, [2]string{"from", formatDate(s.Period.From)}, [2]string{"to", formatDate(s.Period.To)})
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f[0]+"="+url.QueryEscape(f[1]))
	}
	return strings.Join(parts, "|")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// StudentAttendanceSummary counts student marks.
type StudentAttendanceSummary struct {
	TotalRecords         int `json:"totalRecords"`
	PresentCount         int `json:"presentCount"`
	AbsentCount          int `json:"absentCount"`
	LateCount            int `json:"lateCount"`
	AttendancePercentage int `json:"attendancePercentage"`
}

// StaffAttendanceSummary counts staff marks.
type StaffAttendanceSummary struct {
	TotalRecords         int `json:"totalRecords"`
	PresentCount         int `json:"presentCount"`
	AbsentCount          int `json:"absentCount"`
	LeaveCount           int `json:"leaveCount"`
	AttendancePercentage int `json:"attendancePercentage"`
}

// DailyAttendanceTrend is the per-day student mark distribution.
type DailyAttendanceTrend struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
	Total   int    `json:"total"`
}

// ClassAttendance is the per-class student mark distribution.
type ClassAttendance struct {
	ClassName            string `json:"className"`
	Present              int    `json:"present"`
	Absent               int    `json:"absent"`
	Late                 int    `json:"late"`
	Total                int    `json:"total"`
	AttendancePercentage int    `json:"attendancePercentage"`
}

// AttendanceReport is the attendance report payload.
type AttendanceReport struct {
	StudentAttendances  []StudentAttendanceRecord `json:"studentAttendances"`
	StaffAttendances    []StaffAttendanceRecord   `json:"staffAttendances"`
	StudentSummary      StudentAttendanceSummary  `json:"studentSummary"`
	StaffSummary        StaffAttendanceSummary    `json:"staffSummary"`
	DailyTrends         []DailyAttendanceTrend    `json:"dailyTrends"`
	ClassWiseAttendance []ClassAttendance         `json:"classWiseAttendance"`
	DuplicateMarks      int                       `json:"duplicateMarks"`
	SkippedRecords      int                       `json:"skippedRecords"`
}

// FinanceSummary totals collections.
type FinanceSummary struct {
	TotalCollection decimal.Decimal `json:"totalCollection"`
	TotalDues       decimal.Decimal `json:"totalDues"`
	TotalExpense    decimal.Decimal `json:"totalExpense"`
	NetProfit       decimal.Decimal `json:"netProfit"`
	ApprovedCount   int             `json:"approvedCount"`
	PendingCount    int             `json:"pendingCount"`
}

// FeeTypeShare is one slice of the approved amount by fee type.
type FeeTypeShare struct {
	FeeType    FeeType         `json:"feeType"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage int             `json:"percentage"`
}

// ClassCollectionSummary is the per-class collection position.
type ClassCollectionSummary struct {
	ClassName            string          `json:"className"`
	TotalCollection      decimal.Decimal `json:"totalCollection"`
	PendingDues          decimal.Decimal `json:"pendingDues"`
	CollectionPercentage int             `json:"collectionPercentage"`
}

// Defaulter is a student with at least one pending collection.
type Defaulter struct {
	StudentID     string          `json:"studentId"`
	StudentCode   string          `json:"studentCode"`
	StudentName   string          `json:"studentName"`
	ClassName     string          `json:"className"`
	Phone         string          `json:"phone,omitempty"`
	DueAmount     decimal.Decimal `json:"dueAmount"`
	PendingCount  int             `json:"pendingCount"`
	OldestDueDate *string         `json:"oldestDueDate,omitempty"`
	DaysOverdue   int             `json:"daysOverdue"`
}

// FinanceReport is the finance report payload.
type FinanceReport struct {
	Records             []CollectionRecord       `json:"records"`
	Summary             FinanceSummary           `json:"summary"`
	FeeTypeDistribution []FeeTypeShare           `json:"feeTypeDistribution"`
	ClassSummary        []ClassCollectionSummary `json:"classSummary"`
	Defaulters          []Defaulter              `json:"defaulters"`
	SkippedRecords      int                      `json:"skippedRecords"`
}

// StudentSummary counts the student roster.
type StudentSummary struct {
	Total      int `json:"total"`
	Male       int `json:"male"`
	Female     int `json:"female"`
	Active     int `json:"active"`
	Inactive   int `json:"inactive"`
	AverageAge int `json:"averageAge"`
}

// ClassCount is the number of students in a class.
type ClassCount struct {
	ClassName string `json:"className"`
	Count     int    `json:"count"`
}

// ClassGender is the gender split of a class.
type ClassGender struct {
	ClassName string `json:"className"`
	Male      int    `json:"male"`
	Female    int    `json:"female"`
	Unknown   int    `json:"unknown"`
}

// GuardianContact relationships.
const (
	RelationshipFather = "Father"
	RelationshipMother = "Mother"
	RelationshipLocal  = "Local Guardian"
)

// GuardianContactRow is one guardian of one student for contact lists.
type GuardianContactRow struct {
	StudentID    string `json:"studentId"`
	StudentName  string `json:"studentName"`
	GuardianName string `json:"guardianName"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
}

// StudentReport is the student report payload.
type StudentReport struct {
	Students          []StudentRecord      `json:"students"`
	Summary           StudentSummary       `json:"summary"`
	ClassDistribution []ClassCount         `json:"classDistribution"`
	GenderByClass     []ClassGender        `json:"genderByClass"`
	GuardianContacts  []GuardianContactRow `json:"guardianContacts"`
}
