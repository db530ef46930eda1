package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/types"
)

func TestUpdateStatus_RejectsInvalidTarget(t *testing.T) {
	s := &Service{}
	for _, target := range []types.OrderStatus{types.OrderStatusPending, types.OrderStatusCompleted, "SHIPPED"} {
		_, err := s.UpdateStatus(context.Background(), 1, &UpdateStatusRequest{OrderStatus: target}, "admin")
		require.Error(t, err, string(target))
		assert.True(t, apperr.IsValidation(err))
	}
}

func TestCreate_OfflineRequiresClusterID(t *testing.T) {
	s := &Service{}
	_, err := s.Create(context.Background(), &CreateOrderRequest{
		PONumber:       "PO-2025-0001",
		CustomerName:   "Acme",
		ProductName:    "platform",
		LicenseType:    "ENTERPRISE",
		ActivationMode: types.ActivationModeOffline,
	}, types.OrderSourceAPI, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreate_RejectsUnknownActivationMode(t *testing.T) {
	s := &Service{}
	_, err := s.Create(context.Background(), &CreateOrderRequest{
		PONumber:       "PO-2025-0002",
		CustomerName:   "Acme",
		ProductName:    "platform",
		LicenseType:    "ENTERPRISE",
		ActivationMode: "HYBRID",
	}, types.OrderSourceAPI, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestReviewGuard(t *testing.T) {
	t.Run("pending accepts a decision", func(t *testing.T) {
		po := &models.PurchaseOrder{OrderID: 1, OrderStatus: types.OrderStatusPending}
		assert.NoError(t, reviewGuard(po))
	})

	t.Run("approved is terminal", func(t *testing.T) {
		po := &models.PurchaseOrder{OrderID: 1, OrderStatus: types.OrderStatusApproved}
		err := reviewGuard(po)
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("completed is terminal", func(t *testing.T) {
		po := &models.PurchaseOrder{OrderID: 1, OrderStatus: types.OrderStatusCompleted}
		err := reviewGuard(po)
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		po := &models.PurchaseOrder{OrderID: 1, OrderStatus: types.OrderStatusRejected}
		err := reviewGuard(po)
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
	})
}

func pendingOrder() *models.PurchaseOrder {
	cluster := "c1"
	return &models.PurchaseOrder{
		OrderID:              7,
		PONumber:             "PO-2025-0042",
		CustomerName:         "Acme",
		ContactPerson:        "Jo",
		ContactEmail:         "jo@acme.test",
		ProductName:          "platform",
		ProductVersion:       "2.1",
		LicenseType:          "ENTERPRISE",
		Quantity:             1,
		Amount:               12000,
		Currency:             "USD",
		AuthorizedWorkspaces: 5,
		AuthorizedUsers:      100,
		OrderStatus:          types.OrderStatusPending,
		ActivationMode:       types.ActivationModeOffline,
		ClusterID:            &cluster,
	}
}

func TestApplyReview(t *testing.T) {
	now := time.Now()

	t.Run("approval of a pending order needs provisioning", func(t *testing.T) {
		po := pendingOrder()
		changes, provision := applyReview(po, &UpdateStatusRequest{
			OrderStatus: types.OrderStatusApproved,
			ReviewNotes: "looks good",
		}, "ops", now)

		assert.True(t, provision)
		assert.Equal(t, types.OrderStatusApproved, po.OrderStatus)
		assert.Equal(t, "looks good", po.ReviewNotes)
		assert.Equal(t, "ops", po.ReviewedBy)
		require.NotNil(t, po.ReviewedAt)
		require.Len(t, changes, 1)
		assert.Equal(t, "order_status", changes[0].Field)
		assert.Equal(t, string(types.OrderStatusPending), changes[0].Old)
		assert.Equal(t, string(types.OrderStatusApproved), changes[0].New)
	})

	t.Run("approval with a license already issued does not re-provision", func(t *testing.T) {
		po := pendingOrder()
		licID := "ENTERPRISE-20250101-ABCDEF"
		po.LicenseID = &licID

		_, provision := applyReview(po, &UpdateStatusRequest{OrderStatus: types.OrderStatusApproved}, "ops", now)
		assert.False(t, provision)
	})

	t.Run("rejection never provisions", func(t *testing.T) {
		po := pendingOrder()
		_, provision := applyReview(po, &UpdateStatusRequest{OrderStatus: types.OrderStatusRejected}, "ops", now)
		assert.False(t, provision)
		assert.Equal(t, types.OrderStatusRejected, po.OrderStatus)
	})
}

func TestDraftCustomer(t *testing.T) {
	po := pendingOrder()
	cust := draftCustomer(po)
	require.NotNil(t, cust)
	assert.Equal(t, "Acme", cust.CustomerName)
	assert.Equal(t, "Jo", cust.ContactPerson)
	assert.Equal(t, "jo@acme.test", cust.ContactEmail)

	id := int64(99)
	po.CustomerID = &id
	assert.Nil(t, draftCustomer(po))
}

func TestDraftLicense(t *testing.T) {
	po := pendingOrder()
	id := int64(99)
	po.CustomerID = &id
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	req := draftLicense(po, now, 365)
	assert.Equal(t, int64(99), req.CustomerID)
	assert.Equal(t, types.LicenseStatusActive, req.LicenseStatus)
	assert.Equal(t, now, req.StartDate)
	assert.Equal(t, now.AddDate(0, 0, 365), req.ExpiryDate)
	assert.Equal(t, 5, req.AuthorizedWorkspaces)
	assert.Equal(t, 100, req.AuthorizedUsers)
	assert.Equal(t, types.ActivationModeOffline, req.ActivationMode)
	require.NotNil(t, req.ClusterID)
	assert.Equal(t, "c1", *req.ClusterID)
	assert.Equal(t, "Auto-generated from PO #PO-2025-0042", req.Notes)
}

func TestDraftInitialPurchase(t *testing.T) {
	po := pendingOrder()
	now := time.Now()

	rec := draftInitialPurchase(po, "ENTERPRISE-20250610-A1B2C3", now)
	assert.Equal(t, "ENTERPRISE-20250610-A1B2C3", rec.LicenseID)
	assert.Equal(t, types.PurchaseTypeNew, rec.PurchaseType)
	assert.Equal(t, types.PaymentStatusPending, rec.PaymentStatus)
	assert.Equal(t, "PO-2025-0042", rec.OrderNumber)
	assert.Equal(t, float64(12000), rec.Amount)
	assert.Equal(t, 5, rec.WorkspacesPurchased)
	assert.Equal(t, 100, rec.UsersPurchased)
}

func TestApprovalScenario(t *testing.T) {
	po := pendingOrder()
	now := time.Now()

	changes, provision := applyReview(po, &UpdateStatusRequest{OrderStatus: types.OrderStatusApproved}, "ops", now)
	require.True(t, provision)
	require.Len(t, changes, 1)

	cust := draftCustomer(po)
	require.NotNil(t, cust)
	cust.CustomerID = 42
	po.CustomerID = &cust.CustomerID

	req := draftLicense(po, now, 365)
	assert.Equal(t, types.LicenseStatusActive, req.LicenseStatus)

	licID := "ENTERPRISE-20250610-A1B2C3"
	po.LicenseID = &licID
	po.OrderStatus = types.OrderStatusCompleted

	// a second decision on the completed order is refused
	err := reviewGuard(po)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// and even a raw replayed approval cannot issue another license
	_, provision = applyReview(po, &UpdateStatusRequest{OrderStatus: types.OrderStatusApproved}, "ops", now)
	assert.False(t, provision)
}
