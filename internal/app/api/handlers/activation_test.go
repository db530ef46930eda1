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

	"github.com/opsfloor/licensehub/internal/app/service/license"
	"github.com/opsfloor/licensehub/internal/app/service/signing"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/types"
)

type stubActivationMgr struct{}

func (s *stubActivationMgr) GetActivationInfo(_ context.Context, licenseID string) (*license.ActivationInfo, error) {
	if licenseID != "ENTERPRISE-20250101-ABCDEF" {
		return nil, fmt.Errorf("%w: license %s", apperr.ErrNotFound, licenseID)
	}
	return &license.ActivationInfo{
		LicenseID:      licenseID,
		ActivationMode: types.ActivationModeOnline,
		LicenseStatus:  types.LicenseStatusActive,
	}, nil
}

func (s *stubActivationMgr) ChangeActivation(_ context.Context, licenseID string, req *license.ChangeActivationRequest, _ string) (*license.ActivationInfo, error) {
	if req.ActivationMode == types.ActivationModeOffline && req.ClusterID == nil {
		return nil, fmt.Errorf("%w: cluster_id is required for offline activation", apperr.ErrValidation)
	}
	code := "payload.mac"
	return &license.ActivationInfo{
		LicenseID:      licenseID,
		ActivationMode: req.ActivationMode,
		ClusterID:      req.ClusterID,
		OfflineCode:    &code,
		Message:        "activation mode changed from ONLINE to OFFLINE",
	}, nil
}

func (s *stubActivationMgr) RegenerateOfflineCode(_ context.Context, licenseID, clusterID, _ string) (*license.ActivationInfo, error) {
	code := "regenerated.mac"
	return &license.ActivationInfo{
		LicenseID:      licenseID,
		ActivationMode: types.ActivationModeOffline,
		ClusterID:      &clusterID,
		OfflineCode:    &code,
	}, nil
}

func (s *stubActivationMgr) VerifyOfflineCode(_ context.Context, code, _ string) (*signing.OfflinePayload, error) {
	if code != "good.code" {
		return nil, fmt.Errorf("%w: invalid activation code", apperr.ErrIntegrity)
	}
	return &signing.OfflinePayload{LicenseID: "ENTERPRISE-20250101-ABCDEF"}, nil
}

func activationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterActivationRoutes(r.Group("/api/v1"), &stubActivationMgr{})
	return r
}

func TestApiGetActivationInfo(t *testing.T) {
	r := activationRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/licenses/ENTERPRISE-20250101-ABCDEF/activation-info", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "activation_mode")
}

func TestApiGetActivationInfo_UnknownLicense(t *testing.T) {
	r := activationRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/licenses/NOPE/activation-info", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiChangeActivation_Offline(t *testing.T) {
	r := activationRouter()

	body, _ := json.Marshal(map[string]any{"activation_mode": "OFFLINE", "cluster_id": "c1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/licenses/ENTERPRISE-20250101-ABCDEF/change-activation", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "offline_code")
	require.Contains(t, w.Body.String(), "message")
}

func TestApiChangeActivation_OfflineWithoutClusterIs400(t *testing.T) {
	r := activationRouter()

	body, _ := json.Marshal(map[string]any{"activation_mode": "OFFLINE"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/licenses/ENTERPRISE-20250101-ABCDEF/change-activation", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiVerifyOfflineCode_FailureIsGeneric(t *testing.T) {
	r := activationRouter()

	body, _ := json.Marshal(map[string]any{"code": "tampered.code", "cluster_id": "c1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/activation/verify-offline-code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"valid":false`)
	require.Contains(t, w.Body.String(), "invalid activation code")
	// no hint about which check tripped
	require.NotContains(t, w.Body.String(), "signature")
	require.NotContains(t, w.Body.String(), "cluster mismatch")
}

func TestApiVerifyOfflineCode_Success(t *testing.T) {
	r := activationRouter()

	body, _ := json.Marshal(map[string]any{"code": "good.code", "cluster_id": "c1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/activation/verify-offline-code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"valid":true`)
	require.Contains(t, w.Body.String(), "ENTERPRISE-20250101-ABCDEF")
}
