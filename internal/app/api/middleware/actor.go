package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsfloor/licensehub/pkg/response"
)

// ActorKey is the gin context key holding the authenticated actor name.
const ActorKey = "actor"

var privilegedRoles = map[string]struct{}{
	"admin":          {},
	"commercial_ops": {},
}

// RequireActorMiddleware gates privileged routes on the identity headers set
// by the auth gateway in front of this service. Requests without an X-Actor
// or with a role outside admin/commercial_ops are rejected with 403.
func RequireActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-Actor")
		role := c.GetHeader("X-Actor-Role")
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "actor identity required"))
			return
		}
		if _, ok := privilegedRoles[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "actor role lacks privilege"))
			return
		}
		c.Set(ActorKey, actor)
		c.Next()
	}
}

// Actor returns the actor name set by RequireActorMiddleware, or "system"
// on routes that do not carry one.
func Actor(c *gin.Context) string {
	if v, ok := c.Get(ActorKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "system"
}
