package service_test

import (
	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/jobs"
	"github.com/geocoder89/taskhub/internal/service"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WorkspaceService", func() {
	var (
		e     *env
		alice user.User
		bob   user.User
	)

	BeforeEach(func() {
		e = newEnv()
		alice = e.user("alice")
		bob = e.user("bob")
	})

	It("makes the creator the single OWNER", func() {
		ws, err := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())
		Expect(ws.Role).To(Equal(workspace.RoleOwner))

		members, err := e.members.ListMembers(e.ctx, alice.ID, ws.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(members).To(HaveLen(1))
		Expect(members[0].ID).To(Equal(alice.ID))
		Expect(members[0].GroupRole.Role).To(Equal(workspace.RoleOwner))
	})

	It("runs the Eng example end to end", func() {
		ws, err := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())

		b, err := e.boards.Create(e.ctx, alice.ID, board.CreateRequest{Name: "Sprint", Workspace: ws.ID})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleMember)
		Expect(err).NotTo(HaveOccurred())

		members, err := e.members.ListMembers(e.ctx, alice.ID, ws.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(members).To(ContainElement(HaveField("Summary.ID", bob.ID)))

		err = e.workspaces.Delete(e.ctx, bob.ID, ws.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		Expect(e.workspaces.Delete(e.ctx, alice.ID, ws.ID)).To(Succeed())

		_, err = e.boards.Get(e.ctx, alice.ID, b.ID)
		Expect(err).To(MatchError(board.ErrNotFound))
	})

	It("forbids non-members from reading or renaming", func() {
		ws, err := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.workspaces.Get(e.ctx, bob.ID, ws.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.workspaces.Update(e.ctx, bob.ID, ws.ID, workspace.UpdateRequest{Name: "Mine"})
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.workspaces.Boards(e.ctx, bob.ID, ws.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))
	})

	It("lets any member rename", func() {
		ws, _ := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		_, err := e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleMember)
		Expect(err).NotTo(HaveOccurred())

		updated, err := e.workspaces.Update(e.ctx, bob.ID, ws.ID, workspace.UpdateRequest{Name: " Engineering "})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("Engineering"))
	})

	It("reports unknown workspaces as NotFound", func() {
		_, err := e.workspaces.Get(e.ctx, alice.ID, 424242)
		Expect(err).To(MatchError(workspace.ErrNotFound))
	})

	It("pages through every workspace oldest first", func() {
		for _, name := range []string{"a", "b", "c"} {
			_, err := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: name})
			Expect(err).NotTo(HaveOccurred())
		}

		page, err := e.workspaces.ListAll(e.ctx, workspace.ListFilter{Limit: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.HasMore).To(BeTrue())
		Expect(page.Items).To(HaveLen(2))

		last := page.Items[1]
		page, err = e.workspaces.ListAll(e.ctx, workspace.ListFilter{Limit: 2, AfterCreatedAt: last.CreatedAt, AfterID: last.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.HasMore).To(BeFalse())
		Expect(page.Items).To(HaveLen(1))
		Expect(page.Items[0].Name).To(Equal("c"))
	})

	It("lists only the caller's workspaces with their role", func() {
		mine, _ := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		_, _ = e.workspaces.Create(e.ctx, bob.ID, workspace.CreateRequest{Name: "Ops"})
		_, err := e.members.AddMember(e.ctx, alice.ID, mine.ID, "bob@example.com", workspace.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())

		list, err := e.workspaces.ListMine(e.ctx, bob.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))

		roles := map[string]workspace.Role{}
		for _, w := range list {
			roles[w.Name] = w.Role
		}
		Expect(roles).To(Equal(map[string]workspace.Role{"Eng": workspace.RoleAdmin, "Ops": workspace.RoleOwner}))
	})

	It("returns boards with their tasks", func() {
		ws, _ := e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		b, _ := e.boards.Create(e.ctx, alice.ID, board.CreateRequest{Name: "Sprint", Workspace: ws.ID})
		_, err := e.tasks.Create(e.ctx, alice.ID, b.ID, task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow})
		Expect(err).NotTo(HaveOccurred())

		boards, err := e.workspaces.Boards(e.ctx, alice.ID, ws.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(boards).To(HaveLen(1))
		Expect(boards[0].Workspace.ID).To(Equal(ws.ID))
		Expect(boards[0].Tasks).To(HaveLen(1))
	})
})

var _ = Describe("MembershipService", func() {
	var (
		e     *env
		alice user.User
		bob   user.User
		ws    workspace.WithRole
	)

	BeforeEach(func() {
		e = newEnv()
		alice = e.user("alice")
		bob = e.user("bob")

		var err error
		ws, err = e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a second membership for the same user", func() {
		_, err := e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleMember)
		Expect(err).NotTo(HaveOccurred())

		_, err = e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleAdmin)
		Expect(err).To(MatchError(workspace.ErrAlreadyMember))
	})

	It("never grants OWNER", func() {
		_, err := e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleOwner)
		Expect(err).To(MatchError(workspace.ErrInvalidRole))
	})

	It("checks ownership before the requested role", func() {
		_, err := e.members.AddMember(e.ctx, bob.ID, ws.ID, "carol@example.com", workspace.RoleOwner)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.members.AddMember(e.ctx, bob.ID, 987654, "carol@example.com", workspace.Role("KING"))
		Expect(err).To(MatchError(workspace.ErrNotFound))
	})

	It("reports unknown emails", func() {
		_, err := e.members.AddMember(e.ctx, alice.ID, ws.ID, "ghost@example.com", workspace.RoleMember)
		Expect(err).To(MatchError(service.ErrMemberUserNotFound))
		Expect(err).To(MatchError(user.ErrNotFound))
	})

	It("only lets the owner add or remove members", func() {
		_, err := e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		carol := e.user("carol")

		_, err = e.members.AddMember(e.ctx, bob.ID, ws.ID, "carol@example.com", workspace.RoleMember)
		Expect(err).To(MatchError(service.ErrOwnerRequired))

		err = e.members.RemoveMember(e.ctx, bob.ID, ws.ID, alice.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.members.AddMember(e.ctx, alice.ID, ws.ID, "carol@example.com", workspace.RoleMember)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.members.RemoveMember(e.ctx, alice.ID, ws.ID, carol.ID)).To(Succeed())
	})

	It("never removes the owner", func() {
		err := e.members.RemoveMember(e.ctx, alice.ID, ws.ID, alice.ID)
		Expect(err).To(MatchError(workspace.ErrOwnerSelfRemoval))

		role, err := e.members.RoleOf(e.ctx, alice.ID, ws.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(role).To(Equal(workspace.RoleOwner))
	})

	It("separates missing workspaces from missing memberships", func() {
		_, _, err := e.members.AssertMember(e.ctx, bob.ID, 987654)
		Expect(err).To(MatchError(workspace.ErrNotFound))

		_, _, err = e.members.AssertMember(e.ctx, bob.ID, ws.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.members.AssertOwner(e.ctx, alice.ID, ws.ID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports removal of a non-member", func() {
		err := e.members.RemoveMember(e.ctx, alice.ID, ws.ID, bob.ID)
		Expect(err).To(MatchError(service.ErrMemberNotInWorkspace))
	})

	It("enqueues one notification per added member", func() {
		_, err := e.members.AddMember(e.ctx, alice.ID, ws.ID, "bob@example.com", workspace.RoleMember)
		Expect(err).NotTo(HaveOccurred())

		queued := e.store.Queue().List()
		Expect(queued).To(HaveLen(1))
		Expect(queued[0].Type).To(Equal(jobs.TypeMemberAdded))
	})

	It("leaves no trace when a non-owner tries to add", func() {
		_, err := e.members.AddMember(e.ctx, bob.ID, ws.ID, "bob@example.com", workspace.RoleMember)
		Expect(err).To(HaveOccurred())

		_, err = e.members.RoleOf(e.ctx, bob.ID, ws.ID)
		Expect(err).To(MatchError(workspace.ErrNotMember))
		Expect(e.store.Queue().List()).To(BeEmpty())
	})
})
