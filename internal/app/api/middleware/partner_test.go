package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/opsfloor/licensehub/pkg/config"
)

func partnerRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &cfgpkg.Config{Partner: cfgpkg.PartnerConfig{TokenSecret: secret}}
	r := gin.New()
	r.Use(PartnerAuthMiddleware(cfg))
	r.POST("/orders/create", func(c *gin.Context) {
		c.String(http.StatusOK, Partner(c))
	})
	return r
}

func signPartnerToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{Subject: subject})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestPartnerAuthMiddleware_NoTokenIs403(t *testing.T) {
	r := partnerRouter("shhh")

	req := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPartnerAuthMiddleware_WrongSecretIs403(t *testing.T) {
	r := partnerRouter("shhh")

	req := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	req.Header.Set("Authorization", "Bearer "+signPartnerToken(t, "other-secret", "partner-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPartnerAuthMiddleware_ValidTokenPasses(t *testing.T) {
	r := partnerRouter("shhh")

	req := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	req.Header.Set("Authorization", "Bearer "+signPartnerToken(t, "shhh", "partner-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "partner-1", w.Body.String())
}

func TestPartnerAuthMiddleware_EmptySecretRejectsEverything(t *testing.T) {
	r := partnerRouter("")

	// a token signed with the empty-string key must not authenticate
	req := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	req.Header.Set("Authorization", "Bearer "+signPartnerToken(t, "", "partner-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPartnerAuthMiddleware_MissingSubjectIs403(t *testing.T) {
	r := partnerRouter("shhh")

	req := httptest.NewRequest(http.MethodPost, "/orders/create", nil)
	req.Header.Set("Authorization", "Bearer "+signPartnerToken(t, "shhh", ""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}
