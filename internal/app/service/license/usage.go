package license

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/opsfloor/licensehub/internal/app/service/audit"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/logctx"
	"github.com/opsfloor/licensehub/pkg/types"
)

// UsageUpdate carries reported usage telemetry. Nil fields are left alone.
type UsageUpdate struct {
	ActualWorkspaces *int `json:"actual_workspaces"`
	ActualUsers      *int `json:"actual_users"`
}

// applyUsage mutates lic and returns the audited diffs. Usage above the
// authorized capacity is recorded as-is: over-use is reported, not blocked.
func applyUsage(lic *models.License, upd *UsageUpdate) []audit.FieldChange {
	var changes []audit.FieldChange
	if upd.ActualWorkspaces != nil && *upd.ActualWorkspaces != lic.ActualWorkspaces {
		changes = append(changes, audit.FieldChange{
			Field:  "actual_workspaces",
			Old:    strconv.Itoa(lic.ActualWorkspaces),
			New:    strconv.Itoa(*upd.ActualWorkspaces),
			Reason: "License usage update: actual_workspaces",
		})
		lic.ActualWorkspaces = *upd.ActualWorkspaces
	}
	if upd.ActualUsers != nil && *upd.ActualUsers != lic.ActualUsers {
		changes = append(changes, audit.FieldChange{
			Field:  "actual_users",
			Old:    strconv.Itoa(lic.ActualUsers),
			New:    strconv.Itoa(*upd.ActualUsers),
			Reason: "License usage update: actual_users",
		})
		lic.ActualUsers = *upd.ActualUsers
	}
	return changes
}

// UpdateUsage records reported usage. last_check_date is refreshed on every
// call, even when nothing changed.
func (s *Service) UpdateUsage(ctx context.Context, licenseID string, upd *UsageUpdate, changedBy string) (*models.License, error) {
	var out *models.License
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.lockLicense(ctx, tx, licenseID)
		if err != nil {
			return err
		}

		now := time.Now()
		changes := applyUsage(lic, upd)
		lic.LastCheckDate = &now

		if c, flipped := correctStatus(lic, now, "License usage update"); flipped {
			changes = append(changes, c)
		}

		if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
			return fmt.Errorf("failed to update usage: %w", err)
		}
		if err := s.audit.Record(ctx, tx, auditTable, licenseID, changedBy, changes); err != nil {
			return err
		}
		out = lic
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("usage updated", "license_id", licenseID, "changed_by", changedBy)
	return out, nil
}

// UpdateDeploymentStatus tracks the deployment lifecycle on the license. A
// deployment reaching COMPLETED activates the license and stamps the
// deployment date.
func (s *Service) UpdateDeploymentStatus(ctx context.Context, licenseID string, status types.DeploymentStatus, completionDate *time.Time, changedBy string) (*models.License, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown deployment status %q", apperr.ErrValidation, status)
	}

	var out *models.License
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.lockLicense(ctx, tx, licenseID)
		if err != nil {
			return err
		}

		now := time.Now()
		var changes []audit.FieldChange
		if lic.DeploymentStatus != status {
			changes = append(changes, audit.FieldChange{
				Field:  "deployment_status",
				Old:    string(lic.DeploymentStatus),
				New:    string(status),
				Reason: "Deployment update: deployment_status",
			})
			lic.DeploymentStatus = status
		}

		if status == types.DeploymentStatusCompleted {
			when := now
			if completionDate != nil {
				when = *completionDate
			}
			lic.DeploymentDate = &when
			if lic.LicenseStatus == types.LicenseStatusPending {
				changes = append(changes, audit.FieldChange{
					Field:  "license_status",
					Old:    string(types.LicenseStatusPending),
					New:    string(types.LicenseStatusActive),
					Reason: "Deployment update: license_status",
				})
				lic.LicenseStatus = types.LicenseStatusActive
			}
		}

		if c, flipped := correctStatus(lic, now, "Deployment update"); flipped {
			changes = append(changes, c)
		}

		if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
			return fmt.Errorf("failed to update deployment status: %w", err)
		}
		if err := s.audit.Record(ctx, tx, auditTable, licenseID, changedBy, changes); err != nil {
			return err
		}
		out = lic
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("deployment status updated",
		"license_id", licenseID, "status", status, "changed_by", changedBy)
	return out, nil
}
