package integration_test

import (
	"net/http"
	"strconv"
	"testing"
)

type workspaceResp struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type memberResp struct {
	ID        int64 `json:"id"`
	GroupRole struct {
		Role string `json:"role"`
	} `json:"groupRole"`
}

type boardResp struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Workspace workspaceResp `json:"workspace"`
	Tasks     []taskResp    `json:"tasks"`
}

func createWorkspace(t *testing.T, app *testApp, token, name string) workspaceResp {
	t.Helper()
	w := doRequest(app.router, http.MethodPost, "/workspaces", `{"name":"`+name+`"}`, token)
	mustStatus(t, w, http.StatusCreated)

	var ws workspaceResp
	mustReadJSON(t, w, &ws)
	return ws
}

func createBoard(t *testing.T, app *testApp, token string, workspaceID int64, name string) boardResp {
	t.Helper()
	body := `{"name":"` + name + `","workspace":` + strconv.FormatInt(workspaceID, 10) + `}`
	w := doRequest(app.router, http.MethodPost, "/boards", body, token)
	mustStatus(t, w, http.StatusCreated)

	var b boardResp
	mustReadJSON(t, w, &b)
	return b
}

func addMember(t *testing.T, app *testApp, token string, workspaceID int64, email, role string) {
	t.Helper()
	w := doRequest(app.router, http.MethodPost, idPath("/workspaces", workspaceID, "/members"),
		`{"email":"`+email+`","role":"`+role+`"}`, token)
	mustStatus(t, w, http.StatusCreated)
}

func TestWorkspaceLifecycle_OwnerMemberAndCascade(t *testing.T) {
	app := newTestApp(t)

	_, aTok := signUp(t, app, "alice")
	b, bTok := signUp(t, app, "bob")

	ws := createWorkspace(t, app, aTok, "Eng")
	if ws.Role != "OWNER" {
		t.Fatalf("creator should be OWNER, got %q", ws.Role)
	}

	board := createBoard(t, app, aTok, ws.ID, "Sprint 1")

	addMember(t, app, aTok, ws.ID, "bob@example.com", "MEMBER")

	w := doRequest(app.router, http.MethodGet, idPath("/workspaces", ws.ID, "/members"), "", aTok)
	mustStatus(t, w, http.StatusOK)

	var members struct {
		Items []memberResp `json:"items"`
	}
	mustReadJSON(t, w, &members)

	roles := map[int64]string{}
	for _, m := range members.Items {
		roles[m.ID] = m.GroupRole.Role
	}
	if roles[b.ID] != "MEMBER" || len(members.Items) != 2 {
		t.Fatalf("unexpected members: %+v", members.Items)
	}

	// bob can read but not delete
	w = doRequest(app.router, http.MethodGet, idPath("/boards", board.ID), "", bTok)
	mustStatus(t, w, http.StatusOK)

	w = doRequest(app.router, http.MethodDelete, idPath("/workspaces", ws.ID), "", bTok)
	mustError(t, w, http.StatusForbidden, "forbidden")

	w = doRequest(app.router, http.MethodDelete, idPath("/workspaces", ws.ID), "", aTok)
	mustStatus(t, w, http.StatusNoContent)

	w = doRequest(app.router, http.MethodGet, idPath("/boards", board.ID), "", aTok)
	mustError(t, w, http.StatusNotFound, "not_found")

	w = doRequest(app.router, http.MethodGet, idPath("/workspaces", ws.ID), "", aTok)
	mustError(t, w, http.StatusNotFound, "not_found")
}

func TestWorkspace_NonMemberIsForbidden(t *testing.T) {
	app := newTestApp(t)

	_, aTok := signUp(t, app, "alice")
	_, eTok := signUp(t, app, "eve")

	ws := createWorkspace(t, app, aTok, "Private")
	board := createBoard(t, app, aTok, ws.ID, "Roadmap")
	task := createTask(t, app, aTok, board.ID, `{"name":"Plan","description":"q3","priority":"low"}`)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, idPath("/workspaces", ws.ID), ""},
		{http.MethodPut, idPath("/workspaces", ws.ID), `{"name":"Mine"}`},
		{http.MethodGet, idPath("/workspaces", ws.ID, "/members"), ""},
		{http.MethodGet, idPath("/workspaces", ws.ID, "/boards"), ""},
		{http.MethodGet, idPath("/boards", board.ID), ""},
		{http.MethodPost, "/boards", `{"name":"x","workspace":` + strconv.FormatInt(ws.ID, 10) + `}`},
		{http.MethodPost, idPath("/boards", board.ID, "/tasks"), `{"name":"x","description":"y","priority":"low"}`},
		{http.MethodGet, idPath("/boards", board.ID, "/tasks/", strconv.FormatInt(task.ID, 10)), ""},
		{http.MethodDelete, idPath("/boards", board.ID, "/tasks/", strconv.FormatInt(task.ID, 10)), ""},
	} {
		w := doRequest(app.router, tc.method, tc.path, tc.body, eTok)
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d body=%s", tc.method, tc.path, w.Code, w.Body.String())
		}
	}

	// unknown ids are still NotFound
	w := doRequest(app.router, http.MethodGet, "/boards/999999", "", eTok)
	mustError(t, w, http.StatusNotFound, "not_found")
}

func TestMembership_Rules(t *testing.T) {
	app := newTestApp(t)

	a, aTok := signUp(t, app, "alice")
	b, bTok := signUp(t, app, "bob")

	ws := createWorkspace(t, app, aTok, "Eng")
	addMember(t, app, aTok, ws.ID, "bob@example.com", "ADMIN")

	// duplicate membership
	w := doRequest(app.router, http.MethodPost, idPath("/workspaces", ws.ID, "/members"),
		`{"email":"bob@example.com","role":"MEMBER"}`, aTok)
	mustError(t, w, http.StatusBadRequest, "conflict")

	// OWNER cannot be granted
	w = doRequest(app.router, http.MethodPost, idPath("/workspaces", ws.ID, "/members"),
		`{"email":"bob@example.com","role":"OWNER"}`, aTok)
	mustError(t, w, http.StatusBadRequest, "validation_error")

	// unknown email
	w = doRequest(app.router, http.MethodPost, idPath("/workspaces", ws.ID, "/members"),
		`{"email":"ghost@example.com","role":"MEMBER"}`, aTok)
	resp := mustError(t, w, http.StatusNotFound, "not_found")
	if resp.Error.Message != "User with this email does not exist" {
		t.Fatalf("unexpected message %q", resp.Error.Message)
	}

	// only the owner manages members, even an ADMIN may not
	w = doRequest(app.router, http.MethodDelete, idPath("/workspaces", ws.ID, "/members/", strconv.FormatInt(a.ID, 10)), "", bTok)
	mustError(t, w, http.StatusForbidden, "forbidden")

	// the owner can never remove themselves
	w = doRequest(app.router, http.MethodDelete, idPath("/workspaces", ws.ID, "/members/", strconv.FormatInt(a.ID, 10)), "", aTok)
	resp = mustError(t, w, http.StatusBadRequest, "invalid_operation")
	if resp.Error.Message != "Owner cannot remove themselves." {
		t.Fatalf("unexpected message %q", resp.Error.Message)
	}

	w = doRequest(app.router, http.MethodDelete, idPath("/workspaces", ws.ID, "/members/", strconv.FormatInt(b.ID, 10)), "", aTok)
	mustStatus(t, w, http.StatusNoContent)

	w = doRequest(app.router, http.MethodDelete, idPath("/workspaces", ws.ID, "/members/", strconv.FormatInt(b.ID, 10)), "", aTok)
	mustError(t, w, http.StatusNotFound, "not_found")

	// removed members lose access
	w = doRequest(app.router, http.MethodGet, idPath("/workspaces", ws.ID), "", bTok)
	mustError(t, w, http.StatusForbidden, "forbidden")
}

func TestWorkspace_ListingAndPagination(t *testing.T) {
	app := newTestApp(t)

	_, aTok := signUp(t, app, "alice")
	_, bTok := signUp(t, app, "bob")

	for _, name := range []string{"one", "two", "three"} {
		createWorkspace(t, app, aTok, name)
	}

	type page struct {
		Items      []workspaceResp `json:"items"`
		HasMore    bool            `json:"has_more"`
		NextCursor *string         `json:"next_cursor"`
	}

	// every authenticated user sees every workspace
	w := doRequest(app.router, http.MethodGet, "/workspaces?limit=2", "", bTok)
	mustStatus(t, w, http.StatusOK)

	var p1 page
	mustReadJSON(t, w, &p1)
	if len(p1.Items) != 2 || !p1.HasMore || p1.NextCursor == nil {
		t.Fatalf("unexpected first page: %+v", p1)
	}

	w = doRequest(app.router, http.MethodGet, "/workspaces?limit=2&cursor="+*p1.NextCursor, "", bTok)
	mustStatus(t, w, http.StatusOK)

	var p2 page
	mustReadJSON(t, w, &p2)
	if len(p2.Items) != 1 || p2.HasMore || p2.NextCursor != nil {
		t.Fatalf("unexpected second page: %+v", p2)
	}
	if p2.Items[0].Name != "three" {
		t.Fatalf("expected oldest-first order, got %+v", p2.Items)
	}

	w = doRequest(app.router, http.MethodGet, "/workspaces?cursor=garbage", "", bTok)
	mustError(t, w, http.StatusBadRequest, "validation_error")

	w = doRequest(app.router, http.MethodGet, "/workspaces?limit=0", "", bTok)
	mustError(t, w, http.StatusBadRequest, "validation_error")

	// bob belongs to none of them
	w = doRequest(app.router, http.MethodGet, "/me/workspaces", "", bTok)
	mustStatus(t, w, http.StatusOK)

	var mine struct {
		Count int `json:"count"`
	}
	mustReadJSON(t, w, &mine)
	if mine.Count != 0 {
		t.Fatalf("expected no workspaces for bob, got %d", mine.Count)
	}
}

func TestWorkspace_GetSupportsETag(t *testing.T) {
	app := newTestApp(t)

	_, aTok := signUp(t, app, "alice")
	ws := createWorkspace(t, app, aTok, "Eng")

	w := doRequest(app.router, http.MethodGet, idPath("/workspaces", ws.ID), "", aTok)
	mustStatus(t, w, http.StatusOK)

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	req := newRequest(http.MethodGet, idPath("/workspaces", ws.ID), "", aTok)
	req.Header.Set("If-None-Match", etag)
	w = serve(app.router, req)
	mustStatus(t, w, http.StatusNotModified)

	w = doRequest(app.router, http.MethodPut, idPath("/workspaces", ws.ID), `{"name":"Engineering"}`, aTok)
	mustStatus(t, w, http.StatusOK)

	req = newRequest(http.MethodGet, idPath("/workspaces", ws.ID), "", aTok)
	req.Header.Set("If-None-Match", etag)
	w = serve(app.router, req)
	mustStatus(t, w, http.StatusOK)
}

func TestRouter_MethodNotAllowedAndUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	w := doRequest(app.router, http.MethodPatch, "/workspaces", `{}`, "")
	mustError(t, w, http.StatusMethodNotAllowed, "method_not_allowed")

	w = doRequest(app.router, http.MethodGet, "/nope", "", "")
	mustError(t, w, http.StatusNotFound, "not_found")

	w = doRequest(app.router, http.MethodGet, "/healthz", "", "")
	mustStatus(t, w, http.StatusOK)

	w = doRequest(app.router, http.MethodGet, "/readyz", "", "")
	mustStatus(t, w, http.StatusOK)

	w = doRequest(app.router, http.MethodGet, "/metrics", "", "")
	mustStatus(t, w, http.StatusOK)
}

func TestBoard_ETagFollowsNestedTasks(t *testing.T) {
	app := newTestApp(t)

	_, tok := signUp(t, app, "alice")
	ws := createWorkspace(t, app, tok, "Eng")
	board := createBoard(t, app, tok, ws.ID, "Sprint")

	w := doRequest(app.router, http.MethodGet, idPath("/boards", board.ID), "", tok)
	mustStatus(t, w, http.StatusOK)
	etag := w.Header().Get("ETag")

	createTask(t, app, tok, board.ID, `{"name":"Ship","description":"v1","priority":"low"}`)

	req := newRequest(http.MethodGet, idPath("/boards", board.ID), "", tok)
	req.Header.Set("If-None-Match", etag)
	w = serve(app.router, req)
	mustStatus(t, w, http.StatusOK)

	if w.Header().Get("ETag") == etag {
		t.Fatalf("adding a task must change the board ETag")
	}
}
