package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Service Suite")
}

var _ = BeforeSuite(func() {
	security.Cost = bcrypt.MinCost
})

// env bundles every service over one fresh in-memory store.
type env struct {
	ctx        context.Context
	store      *memory.Store
	auth       *service.AuthService
	workspaces *service.WorkspaceService
	members    *service.MembershipService
	boards     *service.BoardService
	tasks      *service.TaskService
}

func newEnv() *env {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	jwt := auth.NewManager("test-secret", time.Hour)

	return &env{
		ctx:        context.Background(),
		store:      store,
		auth:       service.NewAuthService(store, jwt, auth.NewMemoryRevoker(time.Hour), log),
		workspaces: service.NewWorkspaceService(store, log),
		members:    service.NewMembershipService(store, log),
		boards:     service.NewBoardService(store, log),
		tasks:      service.NewTaskService(store, log),
	}
}

func (e *env) user(name string) user.User {
	u, err := e.auth.Register(e.ctx, user.RegisterRequest{
		Username:  name,
		Email:     name + "@example.com",
		Password:  "supersecret",
		FirstName: name,
		LastName:  "Test",
	})
	Expect(err).NotTo(HaveOccurred())
	return u
}
