package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// StudentStatus enumerates enrolment states.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusInactive  StudentStatus = "INACTIVE"
	StudentStatusGraduated StudentStatus = "GRADUATED"
	StudentStatusDropped   StudentStatus = "DROPPED"
	StudentStatusDisabled  StudentStatus = "DISABLED"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusGraduated, StudentStatusDropped, StudentStatusDisabled:
		return true
	default:
		return false
	}
}

// Gender is the canonical gender stored in the personal record.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = ""
)

// ParseGender canonicalises free-form gender values.
func ParseGender(raw string) Gender {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MALE", "M", "BOY":
		return GenderMale
	case "FEMALE", "F", "GIRL":
		return GenderFemale
	case "":
		return GenderUnknown
	default:
		return GenderOther
	}
}

// PersonalInfo is the student's personal sub-document.
type PersonalInfo struct {
	NameEn     string `json:"nameEn"`
	NameBn     string `json:"nameBn,omitempty"`
	DOB        string `json:"dob,omitempty"`
	Gender     Gender `json:"gender,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
}

var dobLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "02/01/2006"}

// BirthDate parses DOB, reporting false when it is absent or unreadable.
func (p PersonalInfo) BirthDate() (time.Time, bool) {
	raw := strings.TrimSpace(p.DOB)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize canonicalises gender and drops an unreadable DOB.
func (p PersonalInfo) Normalize() PersonalInfo {
	p.NameEn = strings.TrimSpace(p.NameEn)
	p.Gender = ParseGender(string(p.Gender))
	if dob, ok := p.BirthDate(); ok {
		p.DOB = dob.Format("2006-01-02")
	} else {
		p.DOB = ""
	}
	return p
}

// GuardianContact holds the primary reachability details.
type GuardianContact struct {
	SMSNo string `json:"smsNo,omitempty"`
	Email string `json:"email,omitempty"`
}

// LocalGuardian is an optional non-parent guardian.
type LocalGuardian struct {
	Name     string `json:"name,omitempty"`
	Relation string `json:"relation,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// GuardianInfo is the student's guardian sub-document.
type GuardianInfo struct {
	FatherName string          `json:"fatherName,omitempty"`
	MotherName string          `json:"motherName,omitempty"`
	Contact    GuardianContact `json:"contact"`
	Local      *LocalGuardian  `json:"localGuardian,omitempty"`
}

// AddressInfo is the student's present address.
type AddressInfo struct {
	Street     string `json:"street,omitempty"`
	Area       string `json:"area,omitempty"`
	District   string `json:"district,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Format renders the non-empty parts as a single line.
func (a AddressInfo) Format() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{a.Street, a.Area, a.District, a.PostalCode} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// Student represents a student enrolment with its JSON sub-documents.
type Student struct {
	ID        string                           `db:"id" json:"id"`
	StudentID string                           `db:"student_id" json:"studentId"`
	SessionID string                           `db:"session_id" json:"sessionId"`
	ClassID   string                           `db:"class_id" json:"classId"`
	BatchID   *string                          `db:"batch_id" json:"batchId,omitempty"`
	SectionID *string                          `db:"section_id" json:"sectionId,omitempty"`
	Status    StudentStatus                    `db:"status" json:"status"`
	Personal  datatypes.JSONType[PersonalInfo] `db:"personal" json:"personal"`
	Guardian  datatypes.JSONType[GuardianInfo] `db:"guardian" json:"guardian"`
	Address   datatypes.JSONType[AddressInfo]  `db:"address" json:"address"`
	CreatedAt time.Time                        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time                        `db:"updated_at" json:"updatedAt"`
}

// StudentRecord extends Student with resolved academic names.
type StudentRecord struct {
	Student
	SessionName *string `db:"session_name" json:"sessionName,omitempty"`
	ClassName   *string `db:"class_name" json:"className,omitempty"`
	BatchName   *string `db:"batch_name" json:"batchName,omitempty"`
	SectionName *string `db:"section_name" json:"sectionName,omitempty"`
}

// Name returns the English display name.
func (s Student) Name() string {
	return s.Personal.Data().NameEn
}
