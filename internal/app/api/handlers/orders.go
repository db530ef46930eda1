package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/opsfloor/licensehub/internal/app/api/middleware"
	"github.com/opsfloor/licensehub/internal/app/service/order"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/response"
	"github.com/opsfloor/licensehub/pkg/types"
)

// OrderManager is the purchase-order surface consumed by handlers.
type OrderManager interface {
	Create(ctx context.Context, req *order.CreateOrderRequest, source types.OrderSource, createdBy string) (*models.PurchaseOrder, error)
	Get(ctx context.Context, orderID int64) (*models.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, orderID int64, req *order.UpdateStatusRequest, changedBy string) (*models.PurchaseOrder, error)
}

// @Summary      Submit order
// @Description  Accepts an inbound purchase order from an authenticated partner.
// @Tags         Order
// @Accept       json
// @Produce      json
// @Param        request body order.CreateOrderRequest true "Order submission"
// @Success      200  {object}  handlers.RespOrder
// @Router       /api/partner/v1/orders/create [post]
func ApiCreateOrder(mgr OrderManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		partner := mw.Partner(c)
		if req.SourceDetails == nil {
			req.SourceDetails = map[string]any{}
		}
		req.SourceDetails["partner"] = partner

		po, err := mgr.Create(c.Request.Context(), &req, types.OrderSourcePartner, partner)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(po))
	}
}

// @Summary      Get order
// @Tags         Order
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200  {object}  handlers.RespOrder
// @Router       /api/v1/orders/{id} [get]
func ApiGetOrder(mgr OrderManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "order id must be an integer"))
			return
		}

		po, err := mgr.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(po))
	}
}

// @Summary      Review order
// @Description  Approves or rejects a pending order. Approval provisions the customer, license and initial purchase record, then completes the order.
// @Tags         Order
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body order.UpdateStatusRequest true "Review decision"
// @Success      200  {object}  handlers.RespOrder
// @Router       /api/v1/orders/{id}/update-status [post]
func ApiUpdateOrderStatus(mgr OrderManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "order id must be an integer"))
			return
		}

		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		po, err := mgr.UpdateStatus(c.Request.Context(), id, &req, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(po))
	}
}

// RegisterPartnerOrderRoutes mounts the partner-facing intake endpoint.
func RegisterPartnerOrderRoutes(r gin.IRouter, mgr OrderManager) {
	r.POST("/orders/create", ApiCreateOrder(mgr))
}

// RegisterOrderRoutes mounts the back-office order endpoints.
func RegisterOrderRoutes(r gin.IRouter, mgr OrderManager) {
	r.GET("/orders/:id", ApiGetOrder(mgr))
	r.POST("/orders/:id/update-status", ApiUpdateOrderStatus(mgr))
}
