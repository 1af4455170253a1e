package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pannpos/internal/core/apperror"
	appctx "pannpos/internal/core/context"
)

// TokenValidator interface for token validation.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.ActorContext, error)
}

// Auth middleware validates bearer tokens issued to terminals and
// populates the actor context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("actor_id", actor.ActorID)
		c.Set("terminal", actor.Terminal)

		c.Next()
	}
}

// RequireActorType restricts a route to the given actor types.
func RequireActorType(types ...appctx.ActorType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if actor == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, t := range types {
			if actor.Type == t {
				c.Next()
				return
			}
		}
		_ = c.Error(
			apperror.NewForbidden("operation not allowed for this actor").
				WithDetail("actor_type", string(actor.Type)),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
