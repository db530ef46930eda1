package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/opsfloor/licensehub/internal/app/api/middleware"
	"github.com/opsfloor/licensehub/internal/app/service/license"
	"github.com/opsfloor/licensehub/internal/app/service/signing"
	"github.com/opsfloor/licensehub/pkg/response"
)

// ActivationManager is the activation surface consumed by handlers.
type ActivationManager interface {
	GetActivationInfo(ctx context.Context, licenseID string) (*license.ActivationInfo, error)
	ChangeActivation(ctx context.Context, licenseID string, req *license.ChangeActivationRequest, changedBy string) (*license.ActivationInfo, error)
	RegenerateOfflineCode(ctx context.Context, licenseID, clusterID, changedBy string) (*license.ActivationInfo, error)
	VerifyOfflineCode(ctx context.Context, code, clusterID string) (*signing.OfflinePayload, error)
}

// @Summary      Activation info
// @Description  Returns the activation view of a license, including its mode history.
// @Tags         Activation
// @Produce      json
// @Param        id path string true "License ID"
// @Success      200  {object}  handlers.RespActivationInfo
// @Router       /api/v1/licenses/{id}/activation-info [get]
func ApiGetActivationInfo(mgr ActivationManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := mgr.GetActivationInfo(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

// @Summary      Change activation mode
// @Description  Switches a license between ONLINE and OFFLINE activation. OFFLINE requires a cluster_id and issues a signed offline code.
// @Tags         Activation
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body license.ChangeActivationRequest true "Activation change request"
// @Success      200  {object}  handlers.RespActivationInfo
// @Router       /api/v1/licenses/{id}/change-activation [post]
func ApiChangeActivation(mgr ActivationManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req license.ChangeActivationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		info, err := mgr.ChangeActivation(c.Request.Context(), c.Param("id"), &req, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

type regenerateOfflineCodeRequest struct {
	ClusterID string `json:"cluster_id" binding:"required"`
	Reason    string `json:"reason"`
}

// @Summary      Regenerate offline code
// @Description  Issues a fresh offline code for a license already in OFFLINE mode, bound to the given cluster.
// @Tags         Activation
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body handlers.regenerateOfflineCodeRequest true "Regeneration request"
// @Success      200  {object}  handlers.RespActivationInfo
// @Router       /api/v1/licenses/{id}/regenerate-offline-code [post]
func ApiRegenerateOfflineCode(mgr ActivationManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req regenerateOfflineCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		info, err := mgr.RegenerateOfflineCode(c.Request.Context(), c.Param("id"), req.ClusterID, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

type verifyOfflineCodeRequest struct {
	Code      string `json:"code" binding:"required"`
	ClusterID string `json:"cluster_id" binding:"required"`
}

type verifyOfflineCodeResponse struct {
	Valid     bool   `json:"valid"`
	LicenseID string `json:"license_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// @Summary      Verify offline code
// @Description  Checks an offline activation code against a cluster. Failures report a single generic reason.
// @Tags         Activation
// @Accept       json
// @Produce      json
// @Param        request body handlers.verifyOfflineCodeRequest true "Verification request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/activation/verify-offline-code [post]
func ApiVerifyOfflineCode(mgr ActivationManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOfflineCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		payload, err := mgr.VerifyOfflineCode(c.Request.Context(), req.Code, req.ClusterID)
		if err != nil {
			// always the same discriminated failure shape, never the
			// specific check that tripped
			c.JSON(http.StatusOK, response.OKT(verifyOfflineCodeResponse{Valid: false, Reason: "invalid activation code"}))
			return
		}
		c.JSON(http.StatusOK, response.OKT(verifyOfflineCodeResponse{Valid: true, LicenseID: payload.LicenseID}))
	}
}

func RegisterActivationRoutes(r gin.IRouter, mgr ActivationManager) {
	r.GET("/licenses/:id/activation-info", ApiGetActivationInfo(mgr))
	r.POST("/licenses/:id/change-activation", ApiChangeActivation(mgr))
	r.POST("/licenses/:id/regenerate-offline-code", ApiRegenerateOfflineCode(mgr))
	r.POST("/activation/verify-offline-code", ApiVerifyOfflineCode(mgr))
}
