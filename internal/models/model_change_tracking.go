package models

import "time"

// ChangeTracking is the append-only audit ledger: one row per changed field
// per mutation. Rows are never updated or deleted.
type ChangeTracking struct {
	ChangeID     int64     `gorm:"column:change_id;primary_key;autoIncrement" json:"change_id"`
	TrackedTable string    `gorm:"column:table_name;type:varchar(50);not null;index:idx_change_record,priority:1" json:"table_name"`
	RecordID     string    `gorm:"column:record_id;type:varchar(50);not null;index:idx_change_record,priority:2" json:"record_id"`
	FieldName    string    `gorm:"column:field_name;type:varchar(50);not null" json:"field_name"`
	OldValue     string    `gorm:"column:old_value;type:text" json:"old_value"`
	NewValue     string    `gorm:"column:new_value;type:text" json:"new_value"`
	ChangedBy    string    `gorm:"column:changed_by;type:varchar(100);not null" json:"changed_by"`
	ChangeReason string    `gorm:"column:change_reason;type:text" json:"change_reason"`
	ChangedAt    time.Time `gorm:"column:changed_at;autoCreateTime" json:"changed_at"`
}

func (ChangeTracking) TableName() string {
	return "change_tracking"
}
