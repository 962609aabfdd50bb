package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/ids"
	"github.com/geocoder89/taskhub/internal/security"
)

type AuthService struct {
	store   Store
	jwt     *auth.Manager
	revoker auth.Revoker
	log     *slog.Logger
	now     func() time.Time
}

func NewAuthService(store Store, jwt *auth.Manager, revoker auth.Revoker, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{store: store, jwt: jwt, revoker: revoker, log: log, now: utcNow}
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      user.Summary `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	u := user.User{
		ID:           ids.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users().Create(ctx, u); err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the password and issues a bearer token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (Session, error) {
	u, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(req.Password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("looking up user: %w", err)
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("checking password: %w", err)
	}

	token, ident, err := s.jwt.Issue(u.ID, u.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issuing token: %w", err)
	}

	return Session{Token: token, ExpiresAt: ident.ExpiresAt, User: u.Summary()}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (user.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, ident auth.Identity) error {
	if ident.TokenID == "" {
		return auth.ErrTokenMalformed
	}
	if err := s.revoker.Revoke(ctx, ident.TokenID, ident.ExpiresAt); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	s.log.InfoContext(ctx, "user logged out", "user_id", ident.UserID)
	return nil
}

// DeleteUser removes a user. Memberships go with them and tasks assigned to
// them become unassigned.
func (s *AuthService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.store.Users().Delete(ctx, userID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}
