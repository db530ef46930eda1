package models

import (
	"time"

	"github.com/opsfloor/licensehub/pkg/types"
	"gorm.io/datatypes"
)

// PurchaseOrder is an inbound order prior to license issuance. Status moves
// PENDING -> APPROVED|REJECTED; APPROVED orders are provisioned and advanced
// to COMPLETED in the same transaction. COMPLETED is terminal.
type PurchaseOrder struct {
	OrderID  int64  `gorm:"column:order_id;primary_key;autoIncrement" json:"order_id"`
	PONumber string `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex" json:"po_number"`

	// CustomerID is nil until the order is linked to (or provisions) a
	// customer record; CustomerName is stored redundantly for unresolved
	// orders.
	CustomerID    *int64 `gorm:"column:customer_id" json:"customer_id"`
	CustomerName  string `gorm:"column:customer_name;type:varchar(100);not null" json:"customer_name"`
	ContactPerson string `gorm:"column:contact_person;type:varchar(100)" json:"contact_person"`
	ContactEmail  string `gorm:"column:contact_email;type:varchar(100)" json:"contact_email"`
	ContactPhone  string `gorm:"column:contact_phone;type:varchar(20)" json:"contact_phone"`

	ProductName    string  `gorm:"column:product_name;type:varchar(100);not null" json:"product_name"`
	ProductVersion string  `gorm:"column:product_version;type:varchar(50)" json:"product_version"`
	LicenseType    string  `gorm:"column:license_type;type:varchar(50);not null" json:"license_type"`
	Quantity       int     `gorm:"column:quantity;default:1" json:"quantity"`
	Amount         float64 `gorm:"column:amount;not null" json:"amount"`
	Currency       string  `gorm:"column:currency;type:varchar(3);default:'USD'" json:"currency"`

	AuthorizedWorkspaces int `gorm:"column:authorized_workspaces;default:0" json:"authorized_workspaces"`
	AuthorizedUsers      int `gorm:"column:authorized_users;default:0" json:"authorized_users"`

	OrderDate   time.Time         `gorm:"column:order_date;type:date;not null" json:"order_date"`
	OrderStatus types.OrderStatus `gorm:"column:order_status;type:varchar(20);default:'PENDING'" json:"order_status"`
	ReviewNotes string            `gorm:"column:review_notes;type:text" json:"review_notes"`
	ReviewedBy  string            `gorm:"column:reviewed_by;type:varchar(100)" json:"reviewed_by"`
	ReviewedAt  *time.Time        `gorm:"column:reviewed_at" json:"reviewed_at"`

	ActivationMode types.ActivationMode `gorm:"column:activation_mode;type:varchar(10);default:'ONLINE'" json:"activation_mode"`
	ClusterID      *string              `gorm:"column:cluster_id;type:varchar(100)" json:"cluster_id"`

	// LicenseID is set exactly once, when approval provisions a license;
	// its presence guards against double provisioning.
	LicenseID *string `gorm:"column:license_id;type:varchar(50)" json:"license_id"`

	OrderSource   types.OrderSource `gorm:"column:order_source;type:varchar(10);default:'MANUAL'" json:"order_source"`
	SourceDetails datatypes.JSONMap `gorm:"column:source_details;type:jsonb" json:"source_details"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}
