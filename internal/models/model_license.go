package models

import (
	"time"

	"github.com/opsfloor/licensehub/pkg/types"
	"gorm.io/datatypes"
)

// ActivationChange is one entry of a license's activation history. ClusterID
// is set only when the target mode is OFFLINE; cluster binding has no meaning
// in ONLINE mode.
type ActivationChange struct {
	Timestamp time.Time            `json:"timestamp"`
	FromMode  types.ActivationMode `json:"from_mode"`
	ToMode    types.ActivationMode `json:"to_mode"`
	ClusterID *string              `json:"cluster_id"`
}

// License is the issued entitlement for one customer deployment.
// LicenseStatus stores the last observed state; use EffectiveStatus to derive
// the state at any given time instead of trusting the stored value.
type License struct {
	LicenseID      string `gorm:"column:license_id;type:varchar(50);primary_key" json:"license_id"`
	CustomerID     int64  `gorm:"column:customer_id;not null;index" json:"customer_id"`
	SalesRepID     *int64 `gorm:"column:sales_rep_id" json:"sales_rep_id"`
	ResellerID     *int64 `gorm:"column:reseller_id" json:"reseller_id"`
	ProductName    string `gorm:"column:product_name;type:varchar(100);not null" json:"product_name"`
	ProductVersion string `gorm:"column:product_version;type:varchar(50)" json:"product_version"`
	LicenseType    string `gorm:"column:license_type;type:varchar(50);not null" json:"license_type"`

	OrderDate  time.Time `gorm:"column:order_date;type:date;not null" json:"order_date"`
	StartDate  time.Time `gorm:"column:start_date;type:date;not null" json:"start_date"`
	ExpiryDate time.Time `gorm:"column:expiry_date;type:date;not null" json:"expiry_date"`

	AuthorizedWorkspaces int `gorm:"column:authorized_workspaces;default:0" json:"authorized_workspaces"`
	AuthorizedUsers      int `gorm:"column:authorized_users;default:0" json:"authorized_users"`
	// Usage telemetry reported by deployments; may exceed authorized
	// capacity, which is reported rather than blocked.
	ActualWorkspaces int `gorm:"column:actual_workspaces;default:0" json:"actual_workspaces"`
	ActualUsers      int `gorm:"column:actual_users;default:0" json:"actual_users"`

	DeploymentStatus types.DeploymentStatus `gorm:"column:deployment_status;type:varchar(20);default:'PLANNED'" json:"deployment_status"`
	DeploymentDate   *time.Time             `gorm:"column:deployment_date;type:date" json:"deployment_date"`
	LicenseStatus    types.LicenseStatus    `gorm:"column:license_status;type:varchar(20);default:'PENDING'" json:"license_status"`
	LastCheckDate    *time.Time             `gorm:"column:last_check_date;type:date" json:"last_check_date"`

	ActivationMode       types.ActivationMode                   `gorm:"column:activation_mode;type:varchar(10);not null;default:'ONLINE'" json:"activation_mode"`
	ClusterID            *string                                `gorm:"column:cluster_id;type:varchar(100)" json:"cluster_id"`
	OfflineCode          *string                                `gorm:"column:offline_code;type:text" json:"offline_code"`
	ActivationHistory    datatypes.JSONType[[]ActivationChange] `gorm:"column:activation_history;type:jsonb;default:'[]'" json:"activation_history"`
	LastActivationChange *time.Time                             `gorm:"column:last_activation_change" json:"last_activation_change"`

	Notes     string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (License) TableName() string {
	return "licenses"
}

// EffectiveStatus derives the license status as observed at now. The stored
// status lags behind the clock; ACTIVE/EXPIRED flip on the expiry date while
// PENDING and TERMINATED are never changed by time alone.
func (l *License) EffectiveStatus(now time.Time) types.LicenseStatus {
	switch l.LicenseStatus {
	case types.LicenseStatusActive:
		if dateBefore(l.ExpiryDate, now) {
			return types.LicenseStatusExpired
		}
	case types.LicenseStatusExpired:
		if !dateBefore(l.ExpiryDate, now) {
			return types.LicenseStatusActive
		}
	}
	return l.LicenseStatus
}

// dateBefore compares at day granularity; expiry dates are dates, not instants.
func dateBefore(d, now time.Time) bool {
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	dy, dm, dd := d.Date()
	dd0 := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())
	return dd0.Before(today)
}

// HistoryEntries returns the decoded activation history, oldest first.
func (l *License) HistoryEntries() []ActivationChange {
	return l.ActivationHistory.Data()
}

// AppendActivationChange records a mode or cluster change in the history.
func (l *License) AppendActivationChange(at time.Time, from, to types.ActivationMode, clusterID *string) {
	entry := ActivationChange{Timestamp: at, FromMode: from, ToMode: to}
	if to == types.ActivationModeOffline {
		entry.ClusterID = clusterID
	}
	l.ActivationHistory = datatypes.NewJSONType(append(l.HistoryEntries(), entry))
	l.LastActivationChange = &at
}
