package types

type PurchaseType string

const (
	PurchaseTypeNew       PurchaseType = "NEW"
	PurchaseTypeRenewal   PurchaseType = "RENEWAL"
	PurchaseTypeUpgrade   PurchaseType = "UPGRADE"
	PurchaseTypeExpansion PurchaseType = "EXPANSION"
)

func (t PurchaseType) Valid() bool {
	switch t {
	case PurchaseTypeNew, PurchaseTypeRenewal, PurchaseTypeUpgrade, PurchaseTypeExpansion:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	// PaymentStatusReversed marks a record neutralized by a compensating
	// reversal; the original row itself is never deleted.
	PaymentStatusReversed PaymentStatus = "REVERSED"
)
