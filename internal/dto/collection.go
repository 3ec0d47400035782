package dto

// CreateCollectionRequest captures POST /collections.
type CreateCollectionRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	FeeMasterID string `json:"feeMasterId" validate:"required"`
	Amount      string `json:"amount" validate:"required,numeric"`
	Status      string `json:"status" validate:"omitempty,oneof=APPROVED PENDING PARTIAL OVERDUE"`
	Method      string `json:"method,omitempty" validate:"omitempty,oneof=CASH BANK MOBILE CARD"`
	Remarks     string `json:"remarks,omitempty" validate:"max=255"`
	CollectedAt string `json:"collectedAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
