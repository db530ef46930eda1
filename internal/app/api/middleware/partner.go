package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	cfgpkg "github.com/opsfloor/licensehub/pkg/config"
	"github.com/opsfloor/licensehub/pkg/response"
)

// PartnerKey is the gin context key holding the authenticated partner id.
const PartnerKey = "partner"

// PartnerAuthMiddleware authenticates external partners submitting orders.
// Partners present "Authorization: Bearer <jwt>" signed HS256 with the
// shared partner secret; the subject claim identifies the partner.
func PartnerAuthMiddleware(cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An empty secret would let tokens signed with the empty-string key
		// through; refuse partner traffic until one is configured.
		if cfg.Partner.TokenSecret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "partner intake is not configured"))
			return
		}

		auth := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(auth, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "partner token required"))
			return
		}

		claims := jwt.StandardClaims{}
		token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(cfg.Partner.TokenSecret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "invalid partner token"))
			return
		}

		c.Set(PartnerKey, claims.Subject)
		c.Next()
	}
}

// Partner returns the partner id set by PartnerAuthMiddleware.
func Partner(c *gin.Context) string {
	if v, ok := c.Get(PartnerKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
