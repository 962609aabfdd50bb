package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/ids"
	"github.com/gin-gonic/gin"
)

// requestTimeout bounds the store work a single handler may do.
const requestTimeout = 3 * time.Second

func requestCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return config.WithTimeout(ctx.Request.Context(), requestTimeout)
}

// pathID parses a positive int64 path parameter. It writes a 404 when the
// value cannot name an entity.
func pathID(ctx *gin.Context, name, what string) (int64, bool) {
	id, ok := ids.Parse(ctx.Param(name))
	if !ok {
		RespondNotFound(ctx, what+" not found")
		return 0, false
	}
	return id, true
}

// actorID returns the authenticated user. Routes using it sit behind
// RequireAuth, so a miss means the router is miswired.
func actorID(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusBadRequest, "auth_error", "Token not found", nil)
		return 0, false
	}
	return id, true
}
