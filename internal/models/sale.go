package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalPendingReview ApprovalStatus = "PENDING_REVIEW"
	ApprovalApproved      ApprovalStatus = "APPROVED"
	ApprovalRejected      ApprovalStatus = "REJECTED"
	ApprovalCompleted     ApprovalStatus = "COMPLETED"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Terminal reports whether the request can no longer be resolved
func (s RequestStatus) Terminal() bool {
	return s != RequestPending
}

// Sale is the single completed sale record of a property
type Sale struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PropertyID     uint            `gorm:"not null;uniqueIndex" json:"property_id"`
	DateSold       time.Time       `gorm:"type:date;not null" json:"date_sold"`
	FinalPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"final_price"`
	BuyerID        *uint           `gorm:"index" json:"buyer_id"`
	ApprovalStatus ApprovalStatus  `gorm:"size:20;not null;default:'COMPLETED'" json:"approval_status"`
	AdminNotes     string          `gorm:"type:text" json:"admin_notes"`
	Commissions    []Commission    `gorm:"constraint:OnDelete:CASCADE" json:"commissions,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Commission struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	AgentID   *uint           `gorm:"index" json:"agent_id"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:5.00" json:"commission_rate"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_calculated"`
	IsPaid    bool            `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt time.Time       `json:"created_at"`
}

// PendingSaleRequest holds a sale whose price needs an admin decision
type PendingSaleRequest struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PropertyID      uint            `gorm:"not null;index" json:"property_id"`
	FinalPrice      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"final_price"`
	ProposedBuyerID *uint           `json:"proposed_buyer_id"`
	ReasonForReview string          `gorm:"type:text;not null" json:"reason_for_review"`
	Status          RequestStatus   `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	AdminNotes      string          `gorm:"type:text" json:"admin_notes"`
	CreatedByID     uint            `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
