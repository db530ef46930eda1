package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsfloor/licensehub/internal/app/service/audit"
	"github.com/opsfloor/licensehub/internal/app/service/license"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	cfgpkg "github.com/opsfloor/licensehub/pkg/config"
	"github.com/opsfloor/licensehub/pkg/logctx"
	"github.com/opsfloor/licensehub/pkg/types"
)

const purchaseTable = "purchase_records"

// Service applies commercial transactions (renewals, expansions, upgrades)
// to licenses. Purchase records are append-only: undoing one means writing a
// compensating reversal, never editing or deleting the original row.
type Service struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	licenses *license.Service
	audit    *audit.Recorder
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, licenses *license.Service, rec *audit.Recorder) *Service {
	return &Service{cfg: cfg, log: log, db: db, licenses: licenses, audit: rec}
}

// ApplyPurchaseRequest describes one purchase against a license.
type ApplyPurchaseRequest struct {
	PurchaseType        types.PurchaseType  `json:"purchase_type" binding:"required"`
	PurchaseDate        *time.Time          `json:"purchase_date"`
	OrderNumber         string              `json:"order_number"`
	ContractNumber      string              `json:"contract_number"`
	Amount              float64             `json:"amount"`
	Currency            string              `json:"currency"`
	PaymentStatus       types.PaymentStatus `json:"payment_status"`
	WorkspacesPurchased int                 `json:"workspaces_purchased"`
	UsersPurchased      int                 `json:"users_purchased"`
	NewExpiryDate       *time.Time          `json:"new_expiry_date"`
	Notes               string              `json:"notes"`
}

// applyPurchaseEffect mutates lic according to the purchase type and fills
// the record's expiry snapshot fields. NEW and UPGRADE leave the license
// untouched; they exist for the commercial ledger only.
func applyPurchaseEffect(lic *models.License, rec *models.PurchaseRecord) ([]audit.FieldChange, error) {
	var changes []audit.FieldChange

	switch rec.PurchaseType {
	case types.PurchaseTypeNew, types.PurchaseTypeUpgrade:
		// record only

	case types.PurchaseTypeRenewal:
		if rec.NewExpiryDate == nil {
			return nil, fmt.Errorf("%w: new_expiry_date is required for a renewal", apperr.ErrValidation)
		}
		prev := lic.ExpiryDate
		rec.PreviousExpiryDate = &prev

		changes = append(changes, audit.FieldChange{
			Field: "expiry_date", Old: prev.Format("2006-01-02"), New: rec.NewExpiryDate.Format("2006-01-02"),
			Reason: "License renewal: expiry_date",
		})
		lic.ExpiryDate = *rec.NewExpiryDate

		// a renewal resets capacity to the renewed plan, it does not add
		if rec.WorkspacesPurchased > 0 && rec.WorkspacesPurchased != lic.AuthorizedWorkspaces {
			changes = append(changes, audit.FieldChange{
				Field: "authorized_workspaces", Old: fmt.Sprint(lic.AuthorizedWorkspaces), New: fmt.Sprint(rec.WorkspacesPurchased),
				Reason: "License renewal: authorized_workspaces",
			})
			lic.AuthorizedWorkspaces = rec.WorkspacesPurchased
		}
		if rec.UsersPurchased > 0 && rec.UsersPurchased != lic.AuthorizedUsers {
			changes = append(changes, audit.FieldChange{
				Field: "authorized_users", Old: fmt.Sprint(lic.AuthorizedUsers), New: fmt.Sprint(rec.UsersPurchased),
				Reason: "License renewal: authorized_users",
			})
			lic.AuthorizedUsers = rec.UsersPurchased
		}

		// a renewal always reactivates
		if lic.LicenseStatus != types.LicenseStatusActive {
			changes = append(changes, audit.FieldChange{
				Field: "license_status", Old: string(lic.LicenseStatus), New: string(types.LicenseStatusActive),
				Reason: "License renewal: license_status",
			})
			lic.LicenseStatus = types.LicenseStatusActive
		}

	case types.PurchaseTypeExpansion:
		if rec.WorkspacesPurchased > 0 {
			next := lic.AuthorizedWorkspaces + rec.WorkspacesPurchased
			changes = append(changes, audit.FieldChange{
				Field: "authorized_workspaces", Old: fmt.Sprint(lic.AuthorizedWorkspaces), New: fmt.Sprint(next),
				Reason: "License expansion: authorized_workspaces",
			})
			lic.AuthorizedWorkspaces = next
		}
		if rec.UsersPurchased > 0 {
			next := lic.AuthorizedUsers + rec.UsersPurchased
			changes = append(changes, audit.FieldChange{
				Field: "authorized_users", Old: fmt.Sprint(lic.AuthorizedUsers), New: fmt.Sprint(next),
				Reason: "License expansion: authorized_users",
			})
			lic.AuthorizedUsers = next
		}

	default:
		return nil, fmt.Errorf("%w: unknown purchase type %q", apperr.ErrValidation, rec.PurchaseType)
	}

	return changes, nil
}

// ApplyPurchase records a purchase and applies its effect to the license in
// one transaction.
func (s *Service) ApplyPurchase(ctx context.Context, licenseID string, req *ApplyPurchaseRequest, changedBy string) (*models.PurchaseRecord, error) {
	if !req.PurchaseType.Valid() {
		return nil, fmt.Errorf("%w: unknown purchase type %q", apperr.ErrValidation, req.PurchaseType)
	}

	rec := &models.PurchaseRecord{
		LicenseID:           licenseID,
		PurchaseType:        req.PurchaseType,
		PurchaseDate:        lo.FromPtrOr(req.PurchaseDate, time.Now()),
		OrderNumber:         req.OrderNumber,
		ContractNumber:      req.ContractNumber,
		Amount:              req.Amount,
		Currency:            lo.Ternary(req.Currency == "", "USD", req.Currency),
		PaymentStatus:       lo.Ternary(req.PaymentStatus == "", types.PaymentStatusPending, req.PaymentStatus),
		WorkspacesPurchased: req.WorkspacesPurchased,
		UsersPurchased:      req.UsersPurchased,
		NewExpiryDate:       req.NewExpiryDate,
		Notes:               req.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.licenses.LockForUpdate(ctx, tx, licenseID)
		if err != nil {
			return err
		}

		changes, err := applyPurchaseEffect(lic, rec)
		if err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create purchase record: %w", err)
		}
		if len(changes) > 0 {
			if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
				return fmt.Errorf("failed to apply purchase to license: %w", err)
			}
			if err := s.licenses.RecordChanges(ctx, tx, licenseID, changedBy, changes); err != nil {
				return err
			}
		}

		snapshot := map[string]any{
			"purchase_id":   rec.PurchaseID,
			"license_id":    licenseID,
			"purchase_type": rec.PurchaseType,
			"amount":        rec.Amount,
		}
		return s.audit.RecordSnapshot(ctx, tx, purchaseTable, fmt.Sprint(rec.PurchaseID), "creation", changedBy, "Purchase record creation", snapshot)
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("purchase applied",
		"license_id", licenseID, "purchase_id", rec.PurchaseID, "type", rec.PurchaseType, "changed_by", changedBy)
	return rec, nil
}

// Get loads one purchase record.
func (s *Service) Get(ctx context.Context, purchaseID int64) (*models.PurchaseRecord, error) {
	var rec models.PurchaseRecord
	if err := s.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purchase record %d", apperr.ErrNotFound, purchaseID)
		}
		return nil, fmt.Errorf("failed to load purchase record: %w", err)
	}
	return &rec, nil
}

// PaymentUpdate sets payment fields on a record that is not yet frozen.
type PaymentUpdate struct {
	PaymentStatus types.PaymentStatus `json:"payment_status" binding:"required"`
	PaymentDate   *time.Time          `json:"payment_date"`
	Notes         *string             `json:"notes"`
}

// UpdatePayment moves a record through the payment workflow. Records that
// reached PAID or REVERSED are frozen and refuse further edits; reversal is
// the only remaining way to act on them.
func (s *Service) UpdatePayment(ctx context.Context, purchaseID int64, upd *PaymentUpdate, changedBy string) (*models.PurchaseRecord, error) {
	if upd.PaymentStatus == types.PaymentStatusReversed {
		return nil, fmt.Errorf("%w: REVERSED is set by the reversal operation, not directly", apperr.ErrValidation)
	}

	var out *models.PurchaseRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.lockRecord(ctx, tx, purchaseID)
		if err != nil {
			return err
		}
		if rec.Frozen() {
			return fmt.Errorf("%w: purchase record %d is %s and cannot be edited", apperr.ErrConflict, purchaseID, rec.PaymentStatus)
		}

		var changes []audit.FieldChange
		if rec.PaymentStatus != upd.PaymentStatus {
			changes = append(changes, audit.FieldChange{
				Field: "payment_status", Old: string(rec.PaymentStatus), New: string(upd.PaymentStatus),
				Reason: "Purchase payment update: payment_status",
			})
			rec.PaymentStatus = upd.PaymentStatus
		}
		if upd.PaymentDate != nil {
			rec.PaymentDate = upd.PaymentDate
		}
		if upd.Notes != nil && *upd.Notes != rec.Notes {
			changes = append(changes, audit.FieldChange{
				Field: "notes", Old: rec.Notes, New: *upd.Notes,
				Reason: "Purchase payment update: notes",
			})
			rec.Notes = *upd.Notes
		}

		if err := tx.WithContext(ctx).Save(rec).Error; err != nil {
			return fmt.Errorf("failed to update purchase record: %w", err)
		}
		if err := s.audit.Record(ctx, tx, purchaseTable, fmt.Sprint(purchaseID), changedBy, changes); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("purchase payment updated",
		"purchase_id", purchaseID, "status", upd.PaymentStatus, "changed_by", changedBy)
	return out, nil
}

// manualReviewNote is appended to a license when a renewal reversal cannot
// determine the prior expiry date.
func manualReviewNote(purchaseID int64) string {
	return fmt.Sprintf("Renewal purchase #%d reversed without a recorded previous expiry date; expiry requires manual review.", purchaseID)
}

// applyReversal undoes the license-side effect of rec and returns the audit
// diffs plus an optional note to append to the license.
func applyReversal(lic *models.License, rec *models.PurchaseRecord) ([]audit.FieldChange, string) {
	var changes []audit.FieldChange
	var note string

	switch rec.PurchaseType {
	case types.PurchaseTypeExpansion:
		if rec.WorkspacesPurchased > 0 {
			next := lo.Max([]int{lic.AuthorizedWorkspaces - rec.WorkspacesPurchased, 0})
			changes = append(changes, audit.FieldChange{
				Field: "authorized_workspaces", Old: fmt.Sprint(lic.AuthorizedWorkspaces), New: fmt.Sprint(next),
				Reason: "Purchase reversal: authorized_workspaces",
			})
			lic.AuthorizedWorkspaces = next
		}
		if rec.UsersPurchased > 0 {
			next := lo.Max([]int{lic.AuthorizedUsers - rec.UsersPurchased, 0})
			changes = append(changes, audit.FieldChange{
				Field: "authorized_users", Old: fmt.Sprint(lic.AuthorizedUsers), New: fmt.Sprint(next),
				Reason: "Purchase reversal: authorized_users",
			})
			lic.AuthorizedUsers = next
		}

	case types.PurchaseTypeRenewal:
		if rec.PreviousExpiryDate != nil {
			changes = append(changes, audit.FieldChange{
				Field: "expiry_date", Old: lic.ExpiryDate.Format("2006-01-02"), New: rec.PreviousExpiryDate.Format("2006-01-02"),
				Reason: "Purchase reversal: expiry_date",
			})
			lic.ExpiryDate = *rec.PreviousExpiryDate
		} else {
			note = manualReviewNote(rec.PurchaseID)
			old := lic.Notes
			if lic.Notes == "" {
				lic.Notes = note
			} else {
				lic.Notes = lic.Notes + "\n" + note
			}
			changes = append(changes, audit.FieldChange{
				Field: "notes", Old: old, New: lic.Notes,
				Reason: "Purchase reversal: notes",
			})
		}
	}

	return changes, note
}

// Reverse neutralizes a purchase record with a compensating reversal: the
// record is marked REVERSED and the inverse effect is applied to the license.
// The original row is kept; nothing is deleted.
func (s *Service) Reverse(ctx context.Context, purchaseID int64, reason, changedBy string) (*models.PurchaseRecord, error) {
	var out *models.PurchaseRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.lockRecord(ctx, tx, purchaseID)
		if err != nil {
			return err
		}
		if rec.PaymentStatus == types.PaymentStatusReversed {
			return fmt.Errorf("%w: purchase record %d is already reversed", apperr.ErrConflict, purchaseID)
		}

		lic, err := s.licenses.LockForUpdate(ctx, tx, rec.LicenseID)
		if err != nil {
			return err
		}

		licChanges, _ := applyReversal(lic, rec)

		recChange := audit.FieldChange{
			Field: "payment_status", Old: string(rec.PaymentStatus), New: string(types.PaymentStatusReversed),
			Reason: lo.Ternary(reason == "", "Purchase reversal: payment_status", "Purchase reversal: "+reason),
		}
		rec.PaymentStatus = types.PaymentStatusReversed

		if err := tx.WithContext(ctx).Save(rec).Error; err != nil {
			return fmt.Errorf("failed to mark purchase reversed: %w", err)
		}
		if len(licChanges) > 0 {
			if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
				return fmt.Errorf("failed to revert license: %w", err)
			}
			if err := s.licenses.RecordChanges(ctx, tx, rec.LicenseID, changedBy, licChanges); err != nil {
				return err
			}
		}
		if err := s.audit.Record(ctx, tx, purchaseTable, fmt.Sprint(purchaseID), changedBy, []audit.FieldChange{recChange}); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("purchase reversed",
		"purchase_id", purchaseID, "changed_by", changedBy)
	return out, nil
}

func (s *Service) lockRecord(ctx context.Context, tx *gorm.DB, purchaseID int64) (*models.PurchaseRecord, error) {
	var rec models.PurchaseRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("purchase_id = ?", purchaseID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purchase record %d", apperr.ErrNotFound, purchaseID)
		}
		return nil, fmt.Errorf("failed to load purchase record: %w", err)
	}
	return &rec, nil
}
