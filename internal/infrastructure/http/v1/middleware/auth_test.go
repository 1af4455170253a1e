package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pannpos/internal/core/apperror"
	appctx "pannpos/internal/core/context"
)

// actorInjector stands in for the Auth middleware in tests.
func actorInjector(actor *appctx.ActorContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor != nil {
			c.Request = c.Request.WithContext(appctx.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

func requireActorRouter(actor *appctx.ActorContext, allowed ...appctx.ActorType) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.POST("/guarded", actorInjector(actor), RequireActorType(allowed...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireActorType(t *testing.T) {
	tests := []struct {
		name       string
		actor      *appctx.ActorContext
		allowed    []appctx.ActorType
		wantStatus int
		wantCode   string
	}{
		{
			name:       "allowed type passes",
			actor:      &appctx.ActorContext{ActorID: "cashier-1", Type: appctx.ActorTypeCashier},
			allowed:    []appctx.ActorType{appctx.ActorTypeCashier},
			wantStatus: http.StatusOK,
		},
		{
			name:       "any of several types passes",
			actor:      appctx.SystemActor(),
			allowed:    []appctx.ActorType{appctx.ActorTypeCashier, appctx.ActorTypeSystem},
			wantStatus: http.StatusOK,
		},
		{
			name:       "disallowed type forbidden",
			actor:      &appctx.ActorContext{ActorID: "cust-1", Type: appctx.ActorTypeCustomer},
			allowed:    []appctx.ActorType{appctx.ActorTypeCashier},
			wantStatus: http.StatusForbidden,
			wantCode:   apperror.CodeForbidden,
		},
		{
			name:       "missing actor unauthorized",
			actor:      nil,
			allowed:    []appctx.ActorType{appctx.ActorTypeCashier},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperror.CodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := requireActorRouter(tt.actor, tt.allowed...)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
			}
		})
	}
}
