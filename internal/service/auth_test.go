package service_test

import (
	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/service"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AuthService", func() {
	var e *env

	BeforeEach(func() {
		e = newEnv()
	})

	It("never stores the plain password", func() {
		u := e.user("alice")
		Expect(u.PasswordHash).NotTo(BeEmpty())
		Expect(u.PasswordHash).NotTo(Equal("supersecret"))
	})

	It("rejects duplicate usernames and emails", func() {
		e.user("alice")

		_, err := e.auth.Register(e.ctx, user.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "supersecret"})
		Expect(err).To(MatchError(user.ErrUsernameTaken))

		_, err = e.auth.Register(e.ctx, user.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "supersecret"})
		Expect(err).To(MatchError(user.ErrEmailTaken))
	})

	It("issues a session on valid credentials only", func() {
		u := e.user("alice")

		s, err := e.auth.Login(e.ctx, user.LoginRequest{Username: "alice", Password: "supersecret"})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Token).NotTo(BeEmpty())
		Expect(s.User.ID).To(Equal(u.ID))

		_, err = e.auth.Login(e.ctx, user.LoginRequest{Username: "alice", Password: "nope"})
		Expect(err).To(MatchError(service.ErrInvalidCredentials))

		_, err = e.auth.Login(e.ctx, user.LoginRequest{Username: "ghost", Password: "nope"})
		Expect(err).To(MatchError(service.ErrInvalidCredentials))
	})

	It("rejects logout without a token id", func() {
		Expect(e.auth.Logout(e.ctx, auth.Identity{UserID: 1})).To(MatchError(auth.ErrTokenMalformed))
	})

	It("removes memberships, including ownership, when a user is deleted", func() {
		alice := e.user("alice")
		ws, err := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())

		Expect(e.auth.DeleteUser(e.ctx, alice.ID)).To(Succeed())

		_, err = e.members.RoleOf(e.ctx, alice.ID, ws.ID)
		Expect(err).To(MatchError(workspace.ErrNotMember))

		Expect(e.auth.DeleteUser(e.ctx, alice.ID)).To(MatchError(user.ErrNotFound))
	})
})
