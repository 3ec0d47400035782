package dto

import "github.com/noah-isme/coaching-admin-api/internal/models"

// StudentAttendanceEntry is one mark inside a bulk request.
type StudentAttendanceEntry struct {
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=PRESENT ABSENT LATE"`
	Remarks   string `json:"remarks,omitempty" validate:"max=255"`
}

// MarkStudentAttendanceRequest captures POST /attendance/students.
type MarkStudentAttendanceRequest struct {
	SubjectID string                   `json:"subjectId" validate:"required"`
	Date      string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Mode      models.BulkOperationMode `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Entries   []StudentAttendanceEntry `json:"entries" validate:"required,min=1,max=500,dive"`
}

// StaffAttendanceEntry is one staff mark inside a bulk request.
type StaffAttendanceEntry struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=PRESENT ABSENT LEAVE"`
	CheckIn   string `json:"checkIn,omitempty" validate:"omitempty,datetime=15:04"`
	CheckOut  string `json:"checkOut,omitempty" validate:"omitempty,datetime=15:04"`
	Remarks   string `json:"remarks,omitempty" validate:"max=255"`
}

// MarkStaffAttendanceRequest captures POST /attendance/staff.
type MarkStaffAttendanceRequest struct {
	Date    string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Mode    models.BulkOperationMode `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Entries []StaffAttendanceEntry   `json:"entries" validate:"required,min=1,max=500,dive"`
}
