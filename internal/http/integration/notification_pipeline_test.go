package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/queue/worker"
)

type recordingNotifier struct {
	mu       sync.Mutex
	members  []notifications.MemberAddedInput
	assigned []notifications.TaskAssignedInput
}

func (r *recordingNotifier) NotifyMemberAdded(_ context.Context, in notifications.MemberAddedInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, in)
	return nil
}

func (r *recordingNotifier) NotifyTaskAssigned(_ context.Context, in notifications.TaskAssignedInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assigned = append(r.assigned, in)
	return nil
}

// drain runs the worker until the outbox is empty.
func drain(t *testing.T, app *testApp, n notifications.Notifier) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := worker.New(worker.Config{WorkerID: "test-worker"}, app.queue, n, log, app.prom, observability.NewJobStats())

	for i := 0; i < 100; i++ {
		claimed, err := w.ProcessOne(context.Background())
		if err != nil {
			t.Fatalf("ProcessOne: %v", err)
		}
		if !claimed {
			return
		}
	}
	t.Fatalf("outbox did not drain")
}

func TestNotifications_MemberAddedAndTaskAssigned(t *testing.T) {
	app := newTestApp(t)

	_, aTok := signUp(t, app, "alice")
	bob, _ := signUp(t, app, "bob")

	ws := createWorkspace(t, app, aTok, "Eng")
	board := createBoard(t, app, aTok, ws.ID, "Sprint")
	addMember(t, app, aTok, ws.ID, "bob@example.com", "MEMBER")

	tr := createTask(t, app, aTok, board.ID,
		`{"name":"Ship","description":"v1","priority":"high","assigned_to_id":`+strconv.FormatInt(bob.ID, 10)+`}`)

	// re-sending the same assignee is not a new assignment
	w := doRequest(app.router, http.MethodPut, taskPath(board.ID, tr.ID, "/assignee"),
		`{"assigned_to_id":`+strconv.FormatInt(bob.ID, 10)+`}`, aTok)
	mustStatus(t, w, http.StatusOK)

	rec := &recordingNotifier{}
	drain(t, app, rec)

	if len(rec.members) != 1 || rec.members[0].UserID != bob.ID || rec.members[0].WorkspaceName != "Eng" {
		t.Fatalf("unexpected member notifications: %+v", rec.members)
	}
	if len(rec.assigned) != 1 || rec.assigned[0].TaskID != tr.ID || rec.assigned[0].Email != "bob@example.com" {
		t.Fatalf("unexpected assignment notifications: %+v", rec.assigned)
	}
}
