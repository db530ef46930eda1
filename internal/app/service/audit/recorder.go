package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsfloor/licensehub/internal/models"
)

// FieldChange is one field-level diff to be written to the ledger.
type FieldChange struct {
	Field  string
	Old    string
	New    string
	Reason string
}

// Recorder appends ChangeTracking rows. Entries are written through the
// caller's transaction so the ledger commits or rolls back together with the
// mutation it describes.
type Recorder struct {
	log *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Recorder {
	return &Recorder{log: log}
}

// Record appends one ledger row per field change.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, tableName, recordID, changedBy string, changes []FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	rows := make([]*models.ChangeTracking, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, &models.ChangeTracking{
			TrackedTable: tableName,
			RecordID:     recordID,
			FieldName:    c.Field,
			OldValue:     c.Old,
			NewValue:     c.New,
			ChangedBy:    changedBy,
			ChangeReason: c.Reason,
		})
	}
	if err := tx.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("failed to append audit entries: %w", err)
	}
	return nil
}

// RecordSnapshot writes a single creation/deletion row whose value is a JSON
// snapshot of the record.
func (r *Recorder) RecordSnapshot(ctx context.Context, tx *gorm.DB, tableName, recordID, fieldName, changedBy, reason string, snapshot any) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize audit snapshot: %w", err)
	}
	row := &models.ChangeTracking{
		TrackedTable: tableName,
		RecordID:     recordID,
		FieldName:    fieldName,
		ChangedBy:    changedBy,
		ChangeReason: reason,
	}
	if fieldName == "deletion" {
		row.OldValue = string(raw)
	} else {
		row.NewValue = string(raw)
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to append audit snapshot: %w", err)
	}
	return nil
}
