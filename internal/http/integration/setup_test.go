package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	apphttp "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/queue/worker"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	security.Cost = bcrypt.MinCost
}

type testApp struct {
	router http.Handler
	jwt    *auth.Manager
	prom   *observability.Prom
	queue  worker.Queue
}

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTTTLHours:        1,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:       1 << 20,
		LoginRateLimit:     1000,
	}
}

// newTestApp builds the full API. It uses Postgres when TEST_DB_DSN is set
// and the in-memory store otherwise.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	app := &testApp{prom: prom}

	var store service.Store
	var ping func(ctx context.Context) error

	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		pool, err := db.NewPool(dsn)
		if err != nil {
			t.Fatalf("Failed to create pgx pool: %v", err)
		}
		t.Cleanup(pool.Close)

		if err := db.Migrate(context.Background(), pool); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		_, err = pool.Exec(context.Background(), `TRUNCATE jobs, tasks, boards, memberships, workspaces, users CASCADE`)
		if err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}

		pg := postgres.NewStore(pool, prom)
		store, ping, app.queue = pg, pg.Ping, pg.Queue()
	} else {
		mem := memory.NewStore()
		store, ping, app.queue = mem, mem.Ping, mem.Queue()
	}

	app.jwt = auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	revoker := auth.NewMemoryRevoker(cfg.JWTTTL())

	router, err := apphttp.NewRouter(apphttp.Deps{
		Config:      cfg,
		Log:         logger,
		Prom:        prom,
		Gatherer:    reg,
		Auth:        middlewares.NewAuthMiddleware(app.jwt, revoker, prom),
		AuthService: service.NewAuthService(store, app.jwt, revoker, logger),
		Workspaces:  service.NewWorkspaceService(store, logger),
		Members:     service.NewMembershipService(store, logger),
		Boards:      service.NewBoardService(store, logger),
		Tasks:       service.NewTaskService(store, logger),
		Ping:        ping,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	app.router = router

	return app
}

func newRequest(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	return serve(router, newRequest(method, path, body, token))
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, w.Code, w.Body.String())
	}
}

type errorResponse struct {
	Error struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		RequestID string          `json:"requestId"`
		Details   json.RawMessage `json:"details"`
	} `json:"error"`
}

func mustError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorResponse {
	t.Helper()
	mustStatus(t, w, status)

	var resp errorResponse
	mustReadJSON(t, w, &resp)
	if resp.Error.Code != code {
		t.Fatalf("expected error code %q, got %q body=%s", code, resp.Error.Code, w.Body.String())
	}
	return resp
}

type userResp struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type sessionResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userResp  `json:"user"`
}

// signUp registers a user and logs them in.
func signUp(t *testing.T, app *testApp, username string) (userResp, string) {
	t.Helper()

	body := `{"username":"` + username + `","email":"` + username + `@example.com","password":"supersecret","first_name":"` + username + `","last_name":"Test"}`
	w := doRequest(app.router, http.MethodPost, "/auth/register", body, "")
	mustStatus(t, w, http.StatusCreated)

	var u userResp
	mustReadJSON(t, w, &u)

	w = doRequest(app.router, http.MethodPost, "/auth/login", `{"username":"`+username+`","password":"supersecret"}`, "")
	mustStatus(t, w, http.StatusOK)

	var s sessionResp
	mustReadJSON(t, w, &s)
	if s.Token == "" {
		t.Fatalf("expected token in login response")
	}
	return u, s.Token
}

func idPath(prefix string, id int64, suffix ...string) string {
	p := prefix + "/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		p += s
	}
	return p
}
