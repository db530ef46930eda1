package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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

const auditTable = "purchase_orders"

// Service handles inbound purchase orders and their review workflow.
// Approval provisions a customer, a license and the initial purchase record
// in the same transaction that completes the order.
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

// CreateOrderRequest is an inbound order submission.
type CreateOrderRequest struct {
	PONumber      string `json:"po_number" binding:"required"`
	CustomerID    *int64 `json:"customer_id"`
	CustomerName  string `json:"customer_name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`

	ProductName    string  `json:"product_name" binding:"required"`
	ProductVersion string  `json:"product_version"`
	LicenseType    string  `json:"license_type" binding:"required"`
	Quantity       int     `json:"quantity"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`

	AuthorizedWorkspaces int `json:"authorized_workspaces"`
	AuthorizedUsers      int `json:"authorized_users"`

	OrderDate      *time.Time           `json:"order_date"`
	ActivationMode types.ActivationMode `json:"activation_mode"`
	ClusterID      *string              `json:"cluster_id"`

	SourceDetails map[string]any `json:"source_details"`
}

// Create records a new order in PENDING. A duplicate po_number is a
// conflict; a customer_id that resolves to nothing is a not-found.
func (s *Service) Create(ctx context.Context, req *CreateOrderRequest, source types.OrderSource, createdBy string) (*models.PurchaseOrder, error) {
	mode := req.ActivationMode
	if mode == "" {
		mode = types.ActivationModeOnline
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown activation mode %q", apperr.ErrValidation, mode)
	}
	if mode == types.ActivationModeOffline && (req.ClusterID == nil || *req.ClusterID == "") {
		return nil, fmt.Errorf("%w: cluster_id is required for offline activation", apperr.ErrValidation)
	}

	po := &models.PurchaseOrder{
		PONumber:             req.PONumber,
		CustomerID:           req.CustomerID,
		CustomerName:         req.CustomerName,
		ContactPerson:        req.ContactPerson,
		ContactEmail:         req.ContactEmail,
		ContactPhone:         req.ContactPhone,
		ProductName:          req.ProductName,
		ProductVersion:       req.ProductVersion,
		LicenseType:          req.LicenseType,
		Quantity:             lo.Ternary(req.Quantity <= 0, 1, req.Quantity),
		Amount:               req.Amount,
		Currency:             lo.Ternary(req.Currency == "", "USD", req.Currency),
		AuthorizedWorkspaces: req.AuthorizedWorkspaces,
		AuthorizedUsers:      req.AuthorizedUsers,
		OrderDate:            lo.FromPtrOr(req.OrderDate, time.Now()),
		OrderStatus:          types.OrderStatusPending,
		ActivationMode:       mode,
		ClusterID:            req.ClusterID,
		OrderSource:          source,
		SourceDetails:        datatypes.JSONMap(req.SourceDetails),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.CustomerID != nil {
			var cust models.Customer
			if err := tx.WithContext(ctx).Where("customer_id = ?", *req.CustomerID).First(&cust).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: customer %d", apperr.ErrNotFound, *req.CustomerID)
				}
				return fmt.Errorf("failed to resolve customer: %w", err)
			}
		}

		var existing models.PurchaseOrder
		err := tx.WithContext(ctx).Where("po_number = ?", req.PONumber).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: order with po_number %s already exists", apperr.ErrConflict, req.PONumber)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check po_number: %w", err)
		}

		if err := tx.WithContext(ctx).Create(po).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		snapshot := map[string]any{
			"order_id":  po.OrderID,
			"po_number": po.PONumber,
			"customer":  po.CustomerName,
			"source":    po.OrderSource,
		}
		return s.audit.RecordSnapshot(ctx, tx, auditTable, fmt.Sprint(po.OrderID), "creation", createdBy, "Order creation", snapshot)
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("order created",
		"order_id", po.OrderID, "po_number", po.PONumber, "source", source)
	return po, nil
}

// Get loads one order.
func (s *Service) Get(ctx context.Context, orderID int64) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &po, nil
}

// UpdateStatusRequest is a review decision on a pending order.
type UpdateStatusRequest struct {
	OrderStatus types.OrderStatus `json:"order_status" binding:"required"`
	ReviewNotes string            `json:"review_notes"`
}

// UpdateStatus applies a review decision. APPROVED provisions: the customer
// is resolved or created, a license is issued with the configured default
// term, the initial NEW purchase record is written and the order advances to
// COMPLETED, all in one transaction. COMPLETED orders refuse any further
// change. The license_id presence check keeps approval idempotent: one
// license per order.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, req *UpdateStatusRequest, changedBy string) (*models.PurchaseOrder, error) {
	if req.OrderStatus != types.OrderStatusApproved && req.OrderStatus != types.OrderStatusRejected {
		return nil, fmt.Errorf("%w: order status can only be set to APPROVED or REJECTED", apperr.ErrValidation)
	}

	var out *models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := reviewGuard(po); err != nil {
			return err
		}

		now := time.Now()
		changes, needsProvision := applyReview(po, req, changedBy, now)

		if needsProvision {
			licenseID, provChanges, err := s.provision(ctx, tx, po, now, changedBy)
			if err != nil {
				return err
			}
			po.LicenseID = &licenseID
			po.OrderStatus = types.OrderStatusCompleted
			changes = append(changes, provChanges...)
			changes = append(changes, audit.FieldChange{
				Field: "order_status", Old: string(types.OrderStatusApproved), New: string(types.OrderStatusCompleted),
				Reason: "Order provisioning: order_status",
			})
		}

		if err := tx.WithContext(ctx).Save(po).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if err := s.audit.Record(ctx, tx, auditTable, fmt.Sprint(orderID), changedBy, changes); err != nil {
			return err
		}
		out = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("order status updated",
		"order_id", orderID, "status", out.OrderStatus, "license_id", out.LicenseID, "changed_by", changedBy)
	return out, nil
}

// reviewGuard rejects decisions on orders that already left PENDING. Only
// pending orders accept a review; an approved order must not be flipped to
// rejected after its license exists.
func reviewGuard(po *models.PurchaseOrder) error {
	switch po.OrderStatus {
	case types.OrderStatusCompleted:
		return fmt.Errorf("%w: order %d is already completed", apperr.ErrConflict, po.OrderID)
	case types.OrderStatusApproved:
		return fmt.Errorf("%w: order %d is already approved", apperr.ErrConflict, po.OrderID)
	case types.OrderStatusRejected:
		return fmt.Errorf("%w: order %d was rejected", apperr.ErrConflict, po.OrderID)
	}
	return nil
}

// applyReview writes the decision onto the order and reports whether it
// still needs provisioning. An approved order that already carries a license
// is left alone, so a replayed approval cannot issue a second one.
func applyReview(po *models.PurchaseOrder, req *UpdateStatusRequest, changedBy string, now time.Time) ([]audit.FieldChange, bool) {
	changes := []audit.FieldChange{{
		Field: "order_status", Old: string(po.OrderStatus), New: string(req.OrderStatus),
		Reason: "Order review: order_status",
	}}
	po.OrderStatus = req.OrderStatus
	po.ReviewNotes = req.ReviewNotes
	po.ReviewedBy = changedBy
	po.ReviewedAt = &now
	return changes, req.OrderStatus == types.OrderStatusApproved && po.LicenseID == nil
}

// draftCustomer builds the customer record for an order that arrived without
// a resolved customer_id. Returns nil when the order already references one.
func draftCustomer(po *models.PurchaseOrder) *models.Customer {
	if po.CustomerID != nil {
		return nil
	}
	return &models.Customer{
		CustomerName:  po.CustomerName,
		ContactPerson: po.ContactPerson,
		ContactEmail:  po.ContactEmail,
		ContactPhone:  po.ContactPhone,
	}
}

// draftLicense builds the license issued for an approved order: active
// immediately, running for the configured default term.
func draftLicense(po *models.PurchaseOrder, now time.Time, termDays int) *license.CreateLicenseRequest {
	return &license.CreateLicenseRequest{
		CustomerID:           *po.CustomerID,
		ProductName:          po.ProductName,
		ProductVersion:       po.ProductVersion,
		LicenseType:          po.LicenseType,
		StartDate:            now,
		ExpiryDate:           now.AddDate(0, 0, termDays),
		AuthorizedWorkspaces: po.AuthorizedWorkspaces,
		AuthorizedUsers:      po.AuthorizedUsers,
		ActivationMode:       po.ActivationMode,
		ClusterID:            po.ClusterID,
		LicenseStatus:        types.LicenseStatusActive,
		Notes:                fmt.Sprintf("Auto-generated from PO #%s", po.PONumber),
	}
}

// draftInitialPurchase builds the NEW purchase record capturing the order's
// commercial terms against the issued license.
func draftInitialPurchase(po *models.PurchaseOrder, licenseID string, now time.Time) *models.PurchaseRecord {
	return &models.PurchaseRecord{
		LicenseID:           licenseID,
		PurchaseType:        types.PurchaseTypeNew,
		PurchaseDate:        now,
		OrderNumber:         po.PONumber,
		Amount:              po.Amount,
		Currency:            po.Currency,
		PaymentStatus:       types.PaymentStatusPending,
		WorkspacesPurchased: po.AuthorizedWorkspaces,
		UsersPurchased:      po.AuthorizedUsers,
	}
}

// provision turns an approved order into a customer (when unresolved), a
// license and its initial purchase record.
func (s *Service) provision(ctx context.Context, tx *gorm.DB, po *models.PurchaseOrder, now time.Time, changedBy string) (string, []audit.FieldChange, error) {
	var changes []audit.FieldChange

	if cust := draftCustomer(po); cust != nil {
		if err := tx.WithContext(ctx).Create(cust).Error; err != nil {
			return "", nil, fmt.Errorf("failed to create customer: %w", err)
		}
		po.CustomerID = &cust.CustomerID
		changes = append(changes, audit.FieldChange{
			Field: "customer_id", Old: "", New: fmt.Sprint(cust.CustomerID),
			Reason: "Order provisioning: customer_id",
		})
	}

	lic, err := s.licenses.CreateInTx(ctx, tx, draftLicense(po, now, s.cfg.License.DefaultTermDays), changedBy)
	if err != nil {
		return "", nil, err
	}

	if err := tx.WithContext(ctx).Create(draftInitialPurchase(po, lic.LicenseID, now)).Error; err != nil {
		return "", nil, fmt.Errorf("failed to create initial purchase record: %w", err)
	}

	changes = append(changes, audit.FieldChange{
		Field: "license_id", Old: "", New: lic.LicenseID,
		Reason: "Order provisioning: license_id",
	})
	return lic.LicenseID, changes, nil
}

func (s *Service) lockOrder(ctx context.Context, tx *gorm.DB, orderID int64) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &po, nil
}
