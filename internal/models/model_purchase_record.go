package models

import (
	"time"

	"github.com/opsfloor/licensehub/pkg/types"
)

// PurchaseRecord is one commercial transaction against a license. Records are
// append-only: a record whose effect must be undone is neutralized by a
// compensating reversal, never edited or deleted. Once PaymentStatus is PAID
// the remaining fields are frozen.
type PurchaseRecord struct {
	PurchaseID   int64              `gorm:"column:purchase_id;primary_key;autoIncrement" json:"purchase_id"`
	LicenseID    string             `gorm:"column:license_id;type:varchar(50);not null;index" json:"license_id"`
	PurchaseType types.PurchaseType `gorm:"column:purchase_type;type:varchar(20);not null" json:"purchase_type"`
	PurchaseDate time.Time          `gorm:"column:purchase_date;type:date;not null" json:"purchase_date"`

	OrderNumber    string              `gorm:"column:order_number;type:varchar(50)" json:"order_number"`
	ContractNumber string              `gorm:"column:contract_number;type:varchar(50)" json:"contract_number"`
	Amount         float64             `gorm:"column:amount;not null" json:"amount"`
	Currency       string              `gorm:"column:currency;type:varchar(3);default:'USD'" json:"currency"`
	PaymentStatus  types.PaymentStatus `gorm:"column:payment_status;type:varchar(20);default:'PENDING'" json:"payment_status"`
	PaymentDate    *time.Time          `gorm:"column:payment_date;type:date" json:"payment_date"`

	WorkspacesPurchased int `gorm:"column:workspaces_purchased;default:0" json:"workspaces_purchased"`
	UsersPurchased      int `gorm:"column:users_purchased;default:0" json:"users_purchased"`

	// PreviousExpiryDate snapshots the license expiry before a RENEWAL took
	// effect; it is what a reversal reverts to.
	PreviousExpiryDate *time.Time `gorm:"column:previous_expiry_date;type:date" json:"previous_expiry_date"`
	NewExpiryDate      *time.Time `gorm:"column:new_expiry_date;type:date" json:"new_expiry_date"`

	Notes     string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_records"
}

// Frozen reports whether the record refuses further mutation.
func (p *PurchaseRecord) Frozen() bool {
	return p.PaymentStatus == types.PaymentStatusPaid || p.PaymentStatus == types.PaymentStatusReversed
}
