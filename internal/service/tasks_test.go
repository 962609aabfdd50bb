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

func idOf(id int64) task.OptionalID {
	return task.OptionalID{Present: true, ID: &id}
}

var _ = Describe("TaskService", func() {
	var (
		e     *env
		alice user.User
		bob   user.User
		ws    workspace.WithRole
		b     service.BoardView
	)

	BeforeEach(func() {
		e = newEnv()
		alice = e.user("alice")
		bob = e.user("bob")

		var err error
		ws, err = e.workspaces.Create(e.ctx, alice.ID, workspace.CreateRequest{Name: "Eng"})
		Expect(err).NotTo(HaveOccurred())
		b, err = e.boards.Create(e.ctx, alice.ID, board.CreateRequest{Name: "Sprint", Workspace: ws.ID})
		Expect(err).NotTo(HaveOccurred())
	})

	create := func(req task.CreateRequest) service.TaskView {
		GinkgoHelper()
		t, err := e.tasks.Create(e.ctx, alice.ID, b.ID, req)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	It("defaults the status and nests the board", func() {
		t := create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityHigh})
		Expect(t.Status).To(Equal(task.StatusNotDone))
		Expect(t.AssignedTo).To(BeNil())
		Expect(t.Board.ID).To(Equal(b.ID))
		Expect(t.Board.Workspace.ID).To(Equal(ws.ID))
	})

	Describe("assignee", func() {
		var t service.TaskView

		BeforeEach(func() {
			t = create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow, AssignedToID: idOf(bob.ID)})
			Expect(t.AssignedTo).NotTo(BeNil())
			Expect(t.AssignedTo.ID).To(Equal(bob.ID))
		})

		It("is left alone when the field is omitted", func() {
			got, err := e.tasks.Update(e.ctx, alice.ID, b.ID, t.ID, task.UpdateRequest{Name: "Ship it", Description: "v2", Priority: task.PriorityMedium})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo).NotTo(BeNil())
			Expect(got.AssignedTo.ID).To(Equal(bob.ID))
			Expect(got.Name).To(Equal("Ship it"))
		})

		It("is cleared by an explicit empty value", func() {
			got, err := e.tasks.SetAssignee(e.ctx, alice.ID, b.ID, t.ID, task.OptionalID{Present: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo).To(BeNil())
		})

		It("must name an existing user", func() {
			_, err := e.tasks.SetAssignee(e.ctx, alice.ID, b.ID, t.ID, idOf(999))
			Expect(err).To(MatchError(service.ErrAssigneeNotFound))
		})

		It("is cleared when the user is deleted", func() {
			Expect(e.auth.DeleteUser(e.ctx, bob.ID)).To(Succeed())

			got, err := e.tasks.Get(e.ctx, alice.ID, b.ID, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AssignedTo).To(BeNil())
		})

		It("enqueues a notification only when it changes", func() {
			_, err := e.tasks.SetAssignee(e.ctx, alice.ID, b.ID, t.ID, idOf(bob.ID))
			Expect(err).NotTo(HaveOccurred())
			_, err = e.tasks.SetAssignee(e.ctx, alice.ID, b.ID, t.ID, idOf(alice.ID))
			Expect(err).NotTo(HaveOccurred())

			var assigned int
			for _, j := range e.store.Queue().List() {
				if j.Type == jobs.TypeTaskAssigned {
					assigned++
				}
			}
			Expect(assigned).To(Equal(2))
		})
	})

	It("rejects unknown statuses", func() {
		t := create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow})

		_, err := e.tasks.SetStatus(e.ctx, alice.ID, b.ID, t.ID, task.Status("finished"))
		Expect(err).To(MatchError(task.ErrInvalidStatus))

		got, err := e.tasks.SetStatus(e.ctx, alice.ID, b.ID, t.ID, task.StatusDone)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal(task.StatusDone))
	})

	It("forbids non-members but reports missing boards first", func() {
		t := create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow})

		_, err := e.tasks.Get(e.ctx, bob.ID, b.ID, t.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.tasks.Create(e.ctx, bob.ID, b.ID, task.CreateRequest{Name: "x", Description: "y", Priority: task.PriorityLow})
		Expect(err).To(MatchError(workspace.ErrForbidden))

		err = e.tasks.Delete(e.ctx, bob.ID, b.ID, t.ID)
		Expect(err).To(MatchError(workspace.ErrForbidden))

		_, err = e.tasks.Get(e.ctx, bob.ID, 5555, t.ID)
		Expect(err).To(MatchError(board.ErrNotFound))
	})

	It("finds tasks only within their board", func() {
		other, err := e.boards.Create(e.ctx, alice.ID, board.CreateRequest{Name: "Other", Workspace: ws.ID})
		Expect(err).NotTo(HaveOccurred())
		t := create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow})

		_, err = e.tasks.Get(e.ctx, alice.ID, other.ID, t.ID)
		Expect(err).To(MatchError(task.ErrNotFound))
	})

	It("cascades board deletes to tasks", func() {
		t := create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow})

		Expect(e.boards.Delete(e.ctx, alice.ID, b.ID)).To(Succeed())

		_, err := e.tasks.Get(e.ctx, alice.ID, b.ID, t.ID)
		Expect(err).To(MatchError(board.ErrNotFound))
	})

	Describe("Move", func() {
		var (
			t     service.TaskView
			later service.BoardView
			ops   service.BoardView
		)

		BeforeEach(func() {
			t = create(task.CreateRequest{Name: "Ship", Description: "v1", Priority: task.PriorityLow})

			var err error
			later, err = e.boards.Create(e.ctx, alice.ID, board.CreateRequest{Name: "Later", Workspace: ws.ID})
			Expect(err).NotTo(HaveOccurred())

			opsWS, err := e.workspaces.Create(e.ctx, bob.ID, workspace.CreateRequest{Name: "Ops"})
			Expect(err).NotTo(HaveOccurred())
			ops, err = e.boards.Create(e.ctx, bob.ID, board.CreateRequest{Name: "Pager", Workspace: opsWS.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("re-parents the task", func() {
			moved, err := e.tasks.Move(e.ctx, alice.ID, t.ID, task.MoveRequest{PrevBoard: b.ID, NewBoard: later.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.BoardID).To(Equal(later.ID))
			Expect(moved.Board.Name).To(Equal("Later"))

			_, err = e.tasks.Get(e.ctx, alice.ID, b.ID, t.ID)
			Expect(err).To(MatchError(task.ErrNotFound))
		})

		It("names which board is missing", func() {
			_, err := e.tasks.Move(e.ctx, alice.ID, t.ID, task.MoveRequest{PrevBoard: 1, NewBoard: later.ID})
			Expect(err).To(MatchError(service.ErrPreviousBoardNotFound))

			_, err = e.tasks.Move(e.ctx, alice.ID, t.ID, task.MoveRequest{PrevBoard: b.ID, NewBoard: 1})
			Expect(err).To(MatchError(service.ErrNewBoardNotFound))

			_, err = e.tasks.Move(e.ctx, alice.ID, t.ID, task.MoveRequest{PrevBoard: later.ID, NewBoard: b.ID})
			Expect(err).To(MatchError(task.ErrNotFound))
		})

		It("requires membership in both workspaces", func() {
			_, err := e.tasks.Move(e.ctx, alice.ID, t.ID, task.MoveRequest{PrevBoard: b.ID, NewBoard: ops.ID})
			Expect(err).To(MatchError(workspace.ErrForbidden))

			got, err := e.tasks.Get(e.ctx, alice.ID, b.ID, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.BoardID).To(Equal(b.ID))
		})
	})
})
