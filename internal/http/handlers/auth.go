package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (service.Session, error)
	Me(ctx context.Context, userID int64) (user.User, error)
	Logout(ctx context.Context, ident auth.Identity) error
}

type AuthHandler struct {
	svc  Authenticator
	prom *observability.Prom
}

func NewAuthHandler(svc Authenticator, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{svc: svc, prom: prom}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	u, err := h.svc.Register(cctx, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	session, err := h.svc.Login(cctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) && h.prom != nil {
			h.prom.AuthFailures.WithLabelValues("login").Inc()
		}
		RespondDomainError(ctx, h.prom, err, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	u, err := h.svc.Me(cctx, userID)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusBadRequest, "auth_error", "Token not found", nil)
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.svc.Logout(cctx, ident); err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not log out")
		return
	}

	ctx.Status(http.StatusNoContent)
}
