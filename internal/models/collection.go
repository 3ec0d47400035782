package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType categorises fee masters.
type FeeType string

const (
	FeeTypeAdmission FeeType = "ADMISSION"
	FeeTypeTuition   FeeType = "TUITION"
	FeeTypeExam      FeeType = "EXAM"
	FeeTypeTransport FeeType = "TRANSPORT"
	FeeTypeOther     FeeType = "OTHER"
)

// Valid returns true when the fee type is a supported value.
func (t FeeType) Valid() bool {
	switch t {
	case FeeTypeAdmission, FeeTypeTuition, FeeTypeExam, FeeTypeTransport, FeeTypeOther:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks a collection through approval.
type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentOverdue  PaymentStatus = "OVERDUE"
)

// Valid returns true when the status is a supported value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentApproved, PaymentPending, PaymentPartial, PaymentOverdue:
		return true
	default:
		return false
	}
}

// FeeMaster defines a chargeable fee.
type FeeMaster struct {
	ID        string          `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"sessionId"`
	ClassID   *string         `db:"class_id" json:"classId,omitempty"`
	Name      string          `db:"name" json:"name"`
	Type      FeeType         `db:"type" json:"type"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	DueDate   *time.Time      `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Collection is a fee payment made by a student against a fee master.
type Collection struct {
	ID          string          `db:"id" json:"id"`
	StudentID   string          `db:"student_id" json:"studentId"`
	FeeMasterID string          `db:"fee_master_id" json:"feeMasterId"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      PaymentStatus   `db:"status" json:"status"`
	Method      *string         `db:"method" json:"method,omitempty"`
	Remarks     *string         `db:"remarks" json:"remarks,omitempty"`
	CollectedAt time.Time       `db:"collected_at" json:"collectedAt"`
	CollectedBy *string         `db:"collected_by" json:"collectedBy,omitempty"`
	ApprovedBy  *string         `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time      `db:"approved_at" json:"approvedAt,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// CollectionRecord joins a collection with its student, class and fee master.
type CollectionRecord struct {
	Collection
	StudentCode  string     `db:"student_code" json:"studentCode"`
	StudentName  string     `db:"student_name" json:"studentName"`
	StudentPhone *string    `db:"student_phone" json:"studentPhone,omitempty"`
	ClassID      *string    `db:"class_id" json:"classId,omitempty"`
	ClassName    *string    `db:"class_name" json:"className,omitempty"`
	FeeName      string     `db:"fee_name" json:"feeName"`
	FeeType      FeeType    `db:"fee_type" json:"feeType"`
	DueDate      *time.Time `db:"due_date" json:"dueDate,omitempty"`
}
