package models

import "time"

// StudentAttendanceStatus is the mark recorded for a student in one subject on one day.
type StudentAttendanceStatus string

const (
	StudentAttendancePresent StudentAttendanceStatus = "PRESENT"
	StudentAttendanceAbsent  StudentAttendanceStatus = "ABSENT"
	StudentAttendanceLate    StudentAttendanceStatus = "LATE"
)

// Valid returns true when the status is a supported value.
func (s StudentAttendanceStatus) Valid() bool {
	switch s {
	case StudentAttendancePresent, StudentAttendanceAbsent, StudentAttendanceLate:
		return true
	default:
		return false
	}
}

// StaffAttendanceStatus is the daily mark recorded for a teacher.
type StaffAttendanceStatus string

const (
	StaffAttendancePresent StaffAttendanceStatus = "PRESENT"
	StaffAttendanceAbsent  StaffAttendanceStatus = "ABSENT"
	StaffAttendanceLeave   StaffAttendanceStatus = "LEAVE"
)

// Valid returns true when the status is a supported value.
func (s StaffAttendanceStatus) Valid() bool {
	switch s {
	case StaffAttendancePresent, StaffAttendanceAbsent, StaffAttendanceLeave:
		return true
	default:
		return false
	}
}

// BulkOperationMode controls how bulk writes behave on errors.
type BulkOperationMode string

const (
	BulkModeAtomic         BulkOperationMode = "atomic"
	BulkModePartialOnError BulkOperationMode = "partialOnError"
)

// StudentAttendance is one mark per (student, subject, date).
type StudentAttendance struct {
	ID        string                  `db:"id" json:"id"`
	StudentID string                  `db:"student_id" json:"studentId"`
	SubjectID string                  `db:"subject_id" json:"subjectId"`
	Date      time.Time               `db:"date" json:"date"`
	Status    StudentAttendanceStatus `db:"status" json:"status"`
	Remarks   *string                 `db:"remarks" json:"remarks,omitempty"`
	MarkedBy  *string                 `db:"marked_by" json:"markedBy,omitempty"`
	CreatedAt time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time               `db:"updated_at" json:"updatedAt"`
}

// StudentAttendanceRecord extends the mark with student and class metadata.
type StudentAttendanceRecord struct {
	StudentAttendance
	StudentCode string  `db:"student_code" json:"studentCode"`
	StudentName string  `db:"student_name" json:"studentName"`
	ClassID     *string `db:"class_id" json:"classId,omitempty"`
	ClassName   *string `db:"class_name" json:"className,omitempty"`
	SubjectName *string `db:"subject_name" json:"subjectName,omitempty"`
}

// StaffAttendance is one mark per (teacher, date).
type StaffAttendance struct {
	ID        string                `db:"id" json:"id"`
	TeacherID string                `db:"teacher_id" json:"teacherId"`
	Date      time.Time             `db:"date" json:"date"`
	Status    StaffAttendanceStatus `db:"status" json:"status"`
	CheckIn   *time.Time            `db:"check_in" json:"checkIn,omitempty"`
	CheckOut  *time.Time            `db:"check_out" json:"checkOut,omitempty"`
	Remarks   *string               `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time             `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time             `db:"updated_at" json:"updatedAt"`
}

// StaffAttendanceRecord extends the mark with teacher metadata.
type StaffAttendanceRecord struct {
	StaffAttendance
	TeacherName string  `db:"teacher_name" json:"teacherName"`
	Designation *string `db:"designation" json:"designation,omitempty"`
}

// BulkAttendanceResult summarises a bulk marking request.
type BulkAttendanceResult struct {
	Mode     BulkOperationMode `json:"mode"`
	Saved    int               `json:"saved"`
	Failed   int               `json:"failed"`
	Failures []BulkFailure     `json:"failures,omitempty"`
}

// BulkFailure describes a rejected entry of a bulk request.
type BulkFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}
