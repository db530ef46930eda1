package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsfloor/licensehub/internal/app/service/audit"
	"github.com/opsfloor/licensehub/internal/app/service/signing"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	cfgpkg "github.com/opsfloor/licensehub/pkg/config"
	"github.com/opsfloor/licensehub/pkg/logctx"
	"github.com/opsfloor/licensehub/pkg/tool"
	"github.com/opsfloor/licensehub/pkg/types"
)

const auditTable = "licenses"

// Service owns the license state machine: status, deployment status and
// activation mode. Every mutation runs as one transaction holding a row lock
// on the license, with its audit entries committed alongside.
type Service struct {
	cfg    *cfgpkg.Config
	log    *zap.SugaredLogger
	db     *gorm.DB
	signer *signing.Signer
	audit  *audit.Recorder
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, signer *signing.Signer, rec *audit.Recorder) *Service {
	return &Service{cfg: cfg, log: log, db: db, signer: signer, audit: rec}
}

// CreateLicenseRequest carries the fields needed to issue a license.
type CreateLicenseRequest struct {
	CustomerID           int64                `json:"customer_id"`
	SalesRepID           *int64               `json:"sales_rep_id"`
	ResellerID           *int64               `json:"reseller_id"`
	ProductName          string               `json:"product_name" binding:"required"`
	ProductVersion       string               `json:"product_version"`
	LicenseType          string               `json:"license_type" binding:"required"`
	StartDate            time.Time            `json:"start_date"`
	ExpiryDate           time.Time            `json:"expiry_date"`
	AuthorizedWorkspaces int                  `json:"authorized_workspaces"`
	AuthorizedUsers      int                  `json:"authorized_users"`
	ActivationMode       types.ActivationMode `json:"activation_mode"`
	ClusterID            *string              `json:"cluster_id"`
	LicenseStatus        types.LicenseStatus  `json:"license_status"`
	Notes                string               `json:"notes"`
}

// GenerateLicenseID builds a human-readable id: type, issue date, random
// suffix, e.g. ENTERPRISE-20250610-A1B2C3.
func GenerateLicenseID(licenseType string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", licenseType, now.Format("20060102"), tool.RandomSuffix(6))
}

// Create issues a new license in its own transaction.
func (s *Service) Create(ctx context.Context, req *CreateLicenseRequest, changedBy string) (*models.License, error) {
	var lic *models.License
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lic, err = s.CreateInTx(ctx, tx, req, changedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lic, nil
}

// CreateInTx issues a license inside the caller's transaction. Order
// provisioning uses this so the order, customer and license commit together.
func (s *Service) CreateInTx(ctx context.Context, tx *gorm.DB, req *CreateLicenseRequest, changedBy string) (*models.License, error) {
	if req.LicenseType == "" || req.ProductName == "" {
		return nil, fmt.Errorf("%w: product_name and license_type are required", apperr.ErrValidation)
	}
	if req.StartDate.IsZero() || req.ExpiryDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date and expiry_date are required", apperr.ErrValidation)
	}
	if req.ExpiryDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: expiry_date must not precede start_date", apperr.ErrValidation)
	}

	now := time.Now()
	status := req.LicenseStatus
	if status == "" {
		status = types.LicenseStatusPending
	}
	mode := req.ActivationMode
	if mode == "" {
		mode = types.ActivationModeOnline
	}
	if mode == types.ActivationModeOffline && (req.ClusterID == nil || *req.ClusterID == "") {
		return nil, fmt.Errorf("%w: cluster_id is required for offline activation", apperr.ErrValidation)
	}

	lic := &models.License{
		LicenseID:            GenerateLicenseID(req.LicenseType, now),
		CustomerID:           req.CustomerID,
		SalesRepID:           req.SalesRepID,
		ResellerID:           req.ResellerID,
		ProductName:          req.ProductName,
		ProductVersion:       req.ProductVersion,
		LicenseType:          req.LicenseType,
		OrderDate:            now,
		StartDate:            req.StartDate,
		ExpiryDate:           req.ExpiryDate,
		AuthorizedWorkspaces: req.AuthorizedWorkspaces,
		AuthorizedUsers:      req.AuthorizedUsers,
		DeploymentStatus:     types.DeploymentStatusPlanned,
		LicenseStatus:        status,
		ActivationMode:       mode,
		ClusterID:            req.ClusterID,
		Notes:                req.Notes,
	}

	if mode == types.ActivationModeOffline {
		code, err := s.signer.GenerateOfflineCode(lic, *req.ClusterID)
		if err != nil {
			return nil, err
		}
		lic.OfflineCode = &code
	}

	if err := tx.WithContext(ctx).Create(lic).Error; err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	snapshot := map[string]any{
		"license_id":   lic.LicenseID,
		"customer_id":  lic.CustomerID,
		"license_type": lic.LicenseType,
		"created_at":   now.Format(time.RFC3339),
	}
	if err := s.audit.RecordSnapshot(ctx, tx, auditTable, lic.LicenseID, "creation", changedBy, "License creation", snapshot); err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("license created", "license_id", lic.LicenseID, "customer_id", lic.CustomerID)
	return lic, nil
}

// Get loads a license. The returned status is the effective one at call time;
// the stored row is not touched on reads.
func (s *Service) Get(ctx context.Context, licenseID string) (*models.License, error) {
	var lic models.License
	if err := s.db.WithContext(ctx).Where("license_id = ?", licenseID).First(&lic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license %s", apperr.ErrNotFound, licenseID)
		}
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	lic.LicenseStatus = lic.EffectiveStatus(time.Now())
	return &lic, nil
}

// Delete removes a license after writing a deletion snapshot to the ledger.
func (s *Service) Delete(ctx context.Context, licenseID, changedBy string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.lockLicense(ctx, tx, licenseID)
		if err != nil {
			return err
		}

		snapshot := map[string]any{
			"license_id":   lic.LicenseID,
			"customer_id":  lic.CustomerID,
			"license_type": lic.LicenseType,
			"created_at":   lic.CreatedAt.Format(time.RFC3339),
		}
		if err := s.audit.RecordSnapshot(ctx, tx, auditTable, licenseID, "deletion", changedBy, "License deletion", snapshot); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Delete(lic).Error; err != nil {
			return fmt.Errorf("failed to delete license: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("license deleted", "license_id", licenseID, "changed_by", changedBy)
		return nil
	})
}

// lockLicense loads a license row under FOR UPDATE so concurrent mutations of
// the same license serialize instead of racing last-write-wins.
func (s *Service) lockLicense(ctx context.Context, tx *gorm.DB, licenseID string) (*models.License, error) {
	var lic models.License
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("license_id = ?", licenseID).
		First(&lic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: license %s", apperr.ErrNotFound, licenseID)
		}
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	return &lic, nil
}

// LockForUpdate exposes the row-locked load to sibling services that mutate
// licenses inside their own transactions.
func (s *Service) LockForUpdate(ctx context.Context, tx *gorm.DB, licenseID string) (*models.License, error) {
	return s.lockLicense(ctx, tx, licenseID)
}

// RecordChanges writes license audit rows through the caller's transaction.
func (s *Service) RecordChanges(ctx context.Context, tx *gorm.DB, licenseID, changedBy string, changes []audit.FieldChange) error {
	return s.audit.Record(ctx, tx, auditTable, licenseID, changedBy, changes)
}
