package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/opsfloor/licensehub/internal/app/api/middleware"
	"github.com/opsfloor/licensehub/internal/app/service/license"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/response"
	"github.com/opsfloor/licensehub/pkg/types"
)

// LicenseManager is the license lifecycle surface consumed by handlers.
type LicenseManager interface {
	Create(ctx context.Context, req *license.CreateLicenseRequest, changedBy string) (*models.License, error)
	Get(ctx context.Context, licenseID string) (*models.License, error)
	Update(ctx context.Context, licenseID string, patch *license.LicensePatch, changedBy string) (*models.License, error)
	Delete(ctx context.Context, licenseID, changedBy string) error
	UpdateUsage(ctx context.Context, licenseID string, upd *license.UsageUpdate, changedBy string) (*models.License, error)
	UpdateDeploymentStatus(ctx context.Context, licenseID string, status types.DeploymentStatus, completionDate *time.Time, changedBy string) (*models.License, error)
}

// @Summary      Create license
// @Description  Issues a new license for a customer.
// @Tags         License
// @Accept       json
// @Produce      json
// @Param        request body license.CreateLicenseRequest true "License creation request"
// @Success      200  {object}  handlers.RespLicense
// @Router       /api/v1/licenses [post]
func ApiCreateLicense(mgr LicenseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req license.CreateLicenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		lic, err := mgr.Create(c.Request.Context(), &req, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(lic))
	}
}

// @Summary      Get license
// @Description  Returns a license with its status evaluated against the current date.
// @Tags         License
// @Produce      json
// @Param        id path string true "License ID"
// @Success      200  {object}  handlers.RespLicense
// @Router       /api/v1/licenses/{id} [get]
func ApiGetLicense(mgr LicenseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		lic, err := mgr.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(lic))
	}
}

// @Summary      Update license
// @Description  Applies a partial update; every changed field is written to the audit ledger.
// @Tags         License
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body license.LicensePatch true "Fields to update"
// @Success      200  {object}  handlers.RespLicense
// @Router       /api/v1/licenses/{id} [patch]
func ApiUpdateLicense(mgr LicenseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch license.LicensePatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		lic, err := mgr.Update(c.Request.Context(), c.Param("id"), &patch, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(lic))
	}
}

// @Summary      Delete license
// @Description  Deletes a license after snapshotting it to the audit ledger.
// @Tags         License
// @Produce      json
// @Param        id path string true "License ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/licenses/{id} [delete]
func ApiDeleteLicense(mgr LicenseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.Delete(c.Request.Context(), c.Param("id"), mw.Actor(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"license_id": c.Param("id")}))
	}
}

// @Summary      Report usage
// @Description  Records actual workspace and user counts reported by a deployment.
// @Tags         License
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body license.UsageUpdate true "Reported usage"
// @Success      200  {object}  handlers.RespLicense
// @Router       /api/v1/licenses/{id}/usage [post]
func ApiUpdateUsage(mgr LicenseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd license.UsageUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		lic, err := mgr.UpdateUsage(c.Request.Context(), c.Param("id"), &upd, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(lic))
	}
}

type deploymentStatusRequest struct {
	DeploymentStatus types.DeploymentStatus `json:"deployment_status" binding:"required"`
	CompletionDate   *time.Time             `json:"completion_date"`
}

// @Summary      Update deployment status
// @Description  Tracks the deployment lifecycle; COMPLETED activates a pending license.
// @Tags         License
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body handlers.deploymentStatusRequest true "Deployment status"
// @Success      200  {object}  handlers.RespLicense
// @Router       /api/v1/licenses/{id}/deployment-status [post]
func ApiUpdateDeploymentStatus(mgr LicenseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deploymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		lic, err := mgr.UpdateDeploymentStatus(c.Request.Context(), c.Param("id"), req.DeploymentStatus, req.CompletionDate, mw.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(lic))
	}
}

func RegisterLicenseRoutes(r gin.IRouter, mgr LicenseManager) {
	r.POST("/licenses", ApiCreateLicense(mgr))
	r.GET("/licenses/:id", ApiGetLicense(mgr))
	r.PATCH("/licenses/:id", ApiUpdateLicense(mgr))
	r.DELETE("/licenses/:id", ApiDeleteLicense(mgr))
	r.POST("/licenses/:id/usage", ApiUpdateUsage(mgr))
	r.POST("/licenses/:id/deployment-status", ApiUpdateDeploymentStatus(mgr))
}
