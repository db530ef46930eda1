package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/opsfloor/licensehub/internal/app/service/order"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/types"
)

type stubOrderMgr struct{}

func (s *stubOrderMgr) Create(_ context.Context, req *order.CreateOrderRequest, source types.OrderSource, _ string) (*models.PurchaseOrder, error) {
	if req.PONumber == "PO-DUP" {
		return nil, fmt.Errorf("%w: order with po_number %s already exists", apperr.ErrConflict, req.PONumber)
	}
	return &models.PurchaseOrder{
		OrderID:      42,
		PONumber:     req.PONumber,
		CustomerName: req.CustomerName,
		OrderStatus:  types.OrderStatusPending,
		OrderSource:  source,
	}, nil
}

func (s *stubOrderMgr) Get(_ context.Context, orderID int64) (*models.PurchaseOrder, error) {
	if orderID != 42 {
		return nil, fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
	}
	return &models.PurchaseOrder{OrderID: 42, PONumber: "PO-2025-0001", OrderStatus: types.OrderStatusPending}, nil
}

func (s *stubOrderMgr) UpdateStatus(_ context.Context, orderID int64, req *order.UpdateStatusRequest, _ string) (*models.PurchaseOrder, error) {
	if orderID == 99 {
		return nil, fmt.Errorf("%w: order %d is already completed", apperr.ErrConflict, orderID)
	}
	licID := "ENTERPRISE-20250101-ABCDEF"
	return &models.PurchaseOrder{
		OrderID:     orderID,
		PONumber:    "PO-2025-0001",
		OrderStatus: types.OrderStatusCompleted,
		LicenseID:   &licID,
	}, nil
}

func orderRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mgr := &stubOrderMgr{}
	RegisterOrderRoutes(r.Group("/api/v1"), mgr)
	RegisterPartnerOrderRoutes(r.Group("/api/partner/v1"), mgr)
	return r
}

func TestApiCreateOrder(t *testing.T) {
	r := orderRouter()

	body, _ := json.Marshal(map[string]any{
		"po_number":     "PO-2025-0001",
		"customer_name": "Acme",
		"product_name":  "platform",
		"license_type":  "ENTERPRISE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/partner/v1/orders/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "PO-2025-0001")
	require.Contains(t, w.Body.String(), "PARTNER")
}

func TestApiCreateOrder_DuplicatePOIs409(t *testing.T) {
	r := orderRouter()

	body, _ := json.Marshal(map[string]any{
		"po_number":     "PO-DUP",
		"customer_name": "Acme",
		"product_name":  "platform",
		"license_type":  "ENTERPRISE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/partner/v1/orders/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestApiCreateOrder_MissingFieldsIs400(t *testing.T) {
	r := orderRouter()

	body, _ := json.Marshal(map[string]any{"po_number": "PO-2025-0002"})
	req := httptest.NewRequest(http.MethodPost, "/api/partner/v1/orders/create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiUpdateOrderStatus_ApprovalCompletes(t *testing.T) {
	r := orderRouter()

	body, _ := json.Marshal(map[string]any{"order_status": "APPROVED"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/42/update-status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "COMPLETED")
	require.Contains(t, w.Body.String(), "ENTERPRISE-20250101-ABCDEF")
}

func TestApiUpdateOrderStatus_CompletedIs409(t *testing.T) {
	r := orderRouter()

	body, _ := json.Marshal(map[string]any{"order_status": "APPROVED"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/99/update-status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestApiGetOrder_BadIDIs400(t *testing.T) {
	r := orderRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-number", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
