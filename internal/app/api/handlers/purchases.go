package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/opsfloor/licensehub/internal/app/api/middleware"
	"github.com/opsfloor/licensehub/internal/app/service/purchase"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/response"
)

// PurchaseManager is the purchase ledger surface consumed by handlers.
type PurchaseManager interface {
	ApplyPurchase(ctx context.Context, licenseID string, req *purchase.ApplyPurchaseRequest, changedBy string) (*models.PurchaseRecord, error)
	Get(ctx context.Context, purchaseID int64) (*models.PurchaseRecord, error)
	UpdatePayment(ctx context.Context, purchaseID int64, upd *purchase.PaymentUpdate, changedBy string) (*models.PurchaseRecord, error)
	Reverse(ctx context.Context, purchaseID int64, reason, changedBy string) (*models.PurchaseRecord, error)
}

// @Summary      Apply purchase
// @Description  Records a purchase (NEW/RENEWAL/UPGRADE/EXPANSION) against a license and applies its effect.
// @Tags         Purchase
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body purchase.ApplyPurchaseRequest true "Purchase request"
// @Success      200  {object}  handlers.RespPurchaseRecord
// @Router       /api/v1/licenses/{id}/purchases [post]
func ApiApplyPurchase(mgr PurchaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req purchase.ApplyPurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		rec, err := mgr.ApplyPurchase(c.Request.Context(), c.Param("id"), &req, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

// @Summary      Get purchase record
// @Tags         Purchase
// @Produce      json
// @Param        id path int true "Purchase ID"
// @Success      200  {object}  handlers.RespPurchaseRecord
// @Router       /api/v1/purchases/{id} [get]
func ApiGetPurchase(mgr PurchaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "purchase id must be an integer"))
			return
		}

		rec, err := mgr.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

// @Summary      Update payment
// @Description  Moves a purchase record through the payment workflow. PAID and REVERSED records are frozen.
// @Tags         Purchase
// @Accept       json
// @Produce      json
// @Param        id path int true "Purchase ID"
// @Param        request body purchase.PaymentUpdate true "Payment update"
// @Success      200  {object}  handlers.RespPurchaseRecord
// @Router       /api/v1/purchases/{id}/payment [post]
func ApiUpdatePayment(mgr PurchaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "purchase id must be an integer"))
			return
		}

		var upd purchase.PaymentUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		rec, err := mgr.UpdatePayment(c.Request.Context(), id, &upd, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

type reversePurchaseRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Reverse purchase
// @Description  Neutralizes a purchase with a compensating reversal; the original record is kept.
// @Tags         Purchase
// @Accept       json
// @Produce      json
// @Param        id path int true "Purchase ID"
// @Param        request body handlers.reversePurchaseRequest false "Reversal reason"
// @Success      200  {object}  handlers.RespPurchaseRecord
// @Router       /api/v1/purchases/{id}/reverse [post]
func ApiReversePurchase(mgr PurchaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "purchase id must be an integer"))
			return
		}

		var req reversePurchaseRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
		}

		rec, err := mgr.Reverse(c.Request.Context(), id, req.Reason, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rec))
	}
}

func RegisterPurchaseRoutes(r gin.IRouter, mgr PurchaseManager) {
	r.POST("/licenses/:id/purchases", ApiApplyPurchase(mgr))
	r.GET("/purchases/:id", ApiGetPurchase(mgr))
	r.POST("/purchases/:id/payment", ApiUpdatePayment(mgr))
	r.POST("/purchases/:id/reverse", ApiReversePurchase(mgr))
}
