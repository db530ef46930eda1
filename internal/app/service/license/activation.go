package license

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/opsfloor/licensehub/internal/app/service/audit"
	"github.com/opsfloor/licensehub/internal/app/service/signing"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/logctx"
	"github.com/opsfloor/licensehub/pkg/types"
)

// ChangeActivationRequest asks to switch a license between ONLINE and OFFLINE.
type ChangeActivationRequest struct {
	ActivationMode types.ActivationMode `json:"activation_mode" binding:"required"`
	ClusterID      *string              `json:"cluster_id"`
	FromMode       types.ActivationMode `json:"from_mode"`
	Reason         string               `json:"reason"`
}

// ActivationInfo is the activation view of a license returned by the HTTP
// surface.
type ActivationInfo struct {
	LicenseID            string                    `json:"license_id"`
	ActivationMode       types.ActivationMode      `json:"activation_mode"`
	ClusterID            *string                   `json:"cluster_id"`
	OfflineCode          *string                   `json:"offline_code"`
	LastActivationChange *time.Time                `json:"last_activation_change"`
	ActivationHistory    []models.ActivationChange `json:"activation_history"`
	LicenseStatus        types.LicenseStatus       `json:"license_status"`
	ExpiryDate           time.Time                 `json:"expiry_date"`
	Message              string                    `json:"message,omitempty"`
}

func activationInfoOf(lic *models.License, now time.Time, message string) *ActivationInfo {
	return &ActivationInfo{
		LicenseID:            lic.LicenseID,
		ActivationMode:       lic.ActivationMode,
		ClusterID:            lic.ClusterID,
		OfflineCode:          lic.OfflineCode,
		LastActivationChange: lic.LastActivationChange,
		ActivationHistory:    lic.HistoryEntries(),
		LicenseStatus:        lic.EffectiveStatus(now),
		ExpiryDate:           lic.ExpiryDate,
		Message:              message,
	}
}

// applyActivationChange performs the mode transition on lic in memory. The
// offline code is generated before any field changes so a signing failure
// leaves the license untouched. Returns the audit changes, a user-facing
// message, and whether the request was a same-mode no-op.
func applyActivationChange(lic *models.License, req *ChangeActivationRequest, signer *signing.Signer, now time.Time) ([]audit.FieldChange, string, bool, error) {
	if !req.ActivationMode.Valid() {
		return nil, "", false, fmt.Errorf("%w: unknown activation mode %q", apperr.ErrValidation, req.ActivationMode)
	}

	if lic.ActivationMode == req.ActivationMode {
		msg := fmt.Sprintf("license is already in %s activation mode, nothing to change", req.ActivationMode)
		return nil, msg, true, nil
	}

	from := lic.ActivationMode
	var changes []audit.FieldChange

	switch req.ActivationMode {
	case types.ActivationModeOffline:
		if req.ClusterID == nil || *req.ClusterID == "" {
			return nil, "", false, fmt.Errorf("%w: cluster_id is required for offline activation", apperr.ErrValidation)
		}
		code, err := signer.GenerateOfflineCode(lic, *req.ClusterID)
		if err != nil {
			return nil, "", false, err
		}

		changes = append(changes,
			audit.FieldChange{Field: "activation_mode", Old: string(from), New: string(types.ActivationModeOffline), Reason: "Activation mode change: activation_mode"},
			audit.FieldChange{Field: "cluster_id", Old: strPtrValue(lic.ClusterID), New: *req.ClusterID, Reason: "Activation mode change: cluster_id"},
			audit.FieldChange{Field: "offline_code", Old: redactCode(lic.OfflineCode), New: "(generated)", Reason: "Activation mode change: offline_code"},
		)
		lic.ActivationMode = types.ActivationModeOffline
		lic.ClusterID = req.ClusterID
		lic.OfflineCode = &code
		lic.AppendActivationChange(now, from, types.ActivationModeOffline, req.ClusterID)

	case types.ActivationModeOnline:
		// Switching back invalidates the offline code; validation moves to
		// the external authority under the recorded reference. cluster_id
		// stays for historical reference.
		ref := signer.GenerateOnlineReference(lic)

		changes = append(changes,
			audit.FieldChange{Field: "activation_mode", Old: string(from), New: string(types.ActivationModeOnline), Reason: "Activation mode change: activation_mode"},
			audit.FieldChange{Field: "offline_code", Old: redactCode(lic.OfflineCode), New: "", Reason: "Activation mode change: offline_code"},
			audit.FieldChange{Field: "activation_reference", Old: "", New: ref, Reason: "Activation mode change: activation_reference"},
		)
		lic.ActivationMode = types.ActivationModeOnline
		lic.OfflineCode = nil
		lic.AppendActivationChange(now, from, types.ActivationModeOnline, nil)
	}

	msg := fmt.Sprintf("activation mode changed from %s to %s", from, req.ActivationMode)
	return changes, msg, false, nil
}

// ChangeActivation switches a license between online and offline activation.
// Same-mode requests are informational no-ops and do not grow the history.
func (s *Service) ChangeActivation(ctx context.Context, licenseID string, req *ChangeActivationRequest, changedBy string) (*ActivationInfo, error) {
	var info *ActivationInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.lockLicense(ctx, tx, licenseID)
		if err != nil {
			return err
		}

		now := time.Now()
		changes, msg, noop, err := applyActivationChange(lic, req, s.signer, now)
		if err != nil {
			return err
		}
		if noop {
			info = activationInfoOf(lic, now, msg)
			return nil
		}

		if c, flipped := correctStatus(lic, now, "Activation mode change"); flipped {
			changes = append(changes, c)
		}

		if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
			return fmt.Errorf("failed to persist activation change: %w", err)
		}
		if err := s.audit.Record(ctx, tx, auditTable, licenseID, changedBy, changes); err != nil {
			return err
		}

		info = activationInfoOf(lic, now, msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("activation change handled",
		"license_id", licenseID, "mode", req.ActivationMode, "changed_by", changedBy)
	return info, nil
}

// RegenerateOfflineCode re-signs a code for a license that is already
// OFFLINE, binding it to a new cluster. Recorded as an OFFLINE -> OFFLINE
// history entry: the cluster identity changed, not the mode.
func (s *Service) RegenerateOfflineCode(ctx context.Context, licenseID, clusterID, changedBy string) (*ActivationInfo, error) {
	if clusterID == "" {
		return nil, fmt.Errorf("%w: cluster_id is required", apperr.ErrValidation)
	}

	var info *ActivationInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.lockLicense(ctx, tx, licenseID)
		if err != nil {
			return err
		}
		if lic.ActivationMode != types.ActivationModeOffline {
			return fmt.Errorf("%w: offline code can only be regenerated for OFFLINE licenses", apperr.ErrValidation)
		}

		code, err := s.signer.GenerateOfflineCode(lic, clusterID)
		if err != nil {
			return err
		}

		now := time.Now()
		oldCluster := strPtrValue(lic.ClusterID)
		changes := []audit.FieldChange{
			{Field: "cluster_id", Old: oldCluster, New: clusterID, Reason: "Offline code regeneration: cluster_id"},
			{Field: "offline_code", Old: redactCode(lic.OfflineCode), New: "(regenerated)", Reason: "Offline code regeneration: offline_code"},
		}
		lic.ClusterID = &clusterID
		lic.OfflineCode = &code
		lic.AppendActivationChange(now, types.ActivationModeOffline, types.ActivationModeOffline, &clusterID)

		if c, flipped := correctStatus(lic, now, "Offline code regeneration"); flipped {
			changes = append(changes, c)
		}

		if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
			return fmt.Errorf("failed to persist regenerated code: %w", err)
		}
		if err := s.audit.Record(ctx, tx, auditTable, licenseID, changedBy, changes); err != nil {
			return err
		}

		msg := fmt.Sprintf("offline code regenerated, cluster changed from %s to %s", oldCluster, clusterID)
		info = activationInfoOf(lic, now, msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("offline code regenerated", "license_id", licenseID, "changed_by", changedBy)
	return info, nil
}

// GetActivationInfo returns the activation view of a license.
func (s *Service) GetActivationInfo(ctx context.Context, licenseID string) (*ActivationInfo, error) {
	lic, err := s.Get(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	return activationInfoOf(lic, time.Now(), ""), nil
}

// VerifyOfflineCode checks an offline code against a cluster. Verification
// detail stays in the logs; callers get a pass/fail with a generic reason.
func (s *Service) VerifyOfflineCode(ctx context.Context, code, clusterID string) (*signing.OfflinePayload, error) {
	payload, err := s.signer.VerifyOfflineCode(code, clusterID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("offline code verification failed", "cluster_id", clusterID, "err", err)
		return nil, fmt.Errorf("%w: invalid activation code", apperr.ErrIntegrity)
	}
	return payload, nil
}

func strPtrValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// redactCode keeps raw activation codes out of the audit ledger.
func redactCode(code *string) string {
	if code == nil || *code == "" {
		return ""
	}
	return "(redacted)"
}
