package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tokamak-network/pages-deployer/internal/config"
	"github.com/tokamak-network/pages-deployer/pkg/api/servers"
	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/inmemory"
	"github.com/tokamak-network/pages-deployer/pkg/metrics"
	"github.com/tokamak-network/pages-deployer/pkg/services"
	"github.com/tokamak-network/pages-deployer/pkg/taskmanager"
)

const testSecret = "top-secret"

type captureNotifier struct {
	mu       sync.Mutex
	payloads []any
}

func (n *captureNotifier) Notify(_ context.Context, _ string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
	return nil
}

type testEnv struct {
	server   *servers.Server
	host     *inmemory.Host
	store    *inmemory.Store
	tasks    *taskmanager.TaskManager
	notifier *captureNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Secret = testSecret
	cfg.HostBackend = config.HostBackendMemory

	env := &testEnv{
		host:     inmemory.NewHost("octo"),
		store:    inmemory.NewStore(),
		tasks:    taskmanager.NewTaskManager(2, 10),
		notifier: &captureNotifier{},
	}
	env.tasks.Start()
	t.Cleanup(func() { _ = env.tasks.Stop(context.Background()) })

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	svc := services.NewDeploymentService(
		services.DeploymentServiceConfig{Secret: cfg.Secret, NotifyOnFailure: true},
		env.host, env.store, env.store, env.notifier, env.tasks, m,
	)
	env.server = servers.NewServer(cfg, svc, env.tasks, m, registry,
		servers.HostInfo{Backend: cfg.HostBackend, Connected: true, User: "octo"}, true)
	SetupRoutes(env.server)
	return env
}

func (e *testEnv) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.tasks.Stop(ctx); err != nil {
		t.Fatalf("workers did not drain: %v", err)
	}
}

func validBody() map[string]any {
	return map[string]any{
		"email":          "student@example.com",
		"secret":         testSecret,
		"task":           "sum-of-sales-1",
		"round":          1,
		"nonce":          "nonce-42",
		"brief":          "Publish a page with the sum of sales",
		"checks":         []string{"Repo has MIT license"},
		"attachments":    []map[string]string{{"name": "data.csv", "url": "data:text/csv;base64,cHJvZHVjdCxzYWxlcwpBLDEwMApCLDE1MA=="}},
		"evaluation_url": "https://eval.example/notify",
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return out
}

func TestDeployRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	body := validBody()
	delete(body, "nonce")
	delete(body, "email")
	delete(body, "checks")

	rec := env.do(http.MethodPost, "/api/deploy", mustJSON(t, body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["status"] != "error" || resp["message"] != "Missing required fields: [email, nonce]" {
		t.Fatalf("unexpected body %v", resp)
	}
	missing, _ := resp["missing_fields"].([]any)
	if len(missing) != 2 || missing[0] != "email" || missing[1] != "nonce" {
		t.Fatalf("unexpected missing_fields %v", resp["missing_fields"])
	}

	env.drain(t)
	if len(env.host.Repositories()) != 0 {
		t.Fatalf("no repository should be created")
	}
}

func TestDeployValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body []byte
		want string
	}{
		{name: "empty body", body: nil, want: "No JSON data received"},
		{name: "empty object", body: []byte(`{}`), want: "No JSON data received"},
		{name: "array", body: []byte(`[1]`), want: "Invalid JSON: request body must be a JSON object"},
		{name: "bad round", body: func() []byte {
			b := validBody()
			b["round"] = 3
			return mustJSON(t, b)
		}(), want: "Invalid round 3: must be 1 or 2"},
		{name: "round as string", body: func() []byte {
			b := validBody()
			b["round"] = "1"
			return mustJSON(t, b)
		}(), want: "Invalid type for field round: expected int"},
		{name: "relative evaluation url", body: func() []byte {
			b := validBody()
			b["evaluation_url"] = "/notify"
			return mustJSON(t, b)
		}(), want: "Invalid evaluation_url: must be an absolute http(s) URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/v1/deployments", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if msg := decode(t, rec)["message"]; msg != tt.want {
				t.Fatalf("expected message %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestDeployRejectsInvalidSecret(t *testing.T) {
	env := newTestEnv(t)
	body := validBody()
	body["secret"] = "guess"

	rec := env.do(http.MethodPost, "/api/deploy", mustJSON(t, body))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decode(t, rec)["message"]; msg != "Invalid secret" {
		t.Fatalf("unexpected message %q", msg)
	}

	env.drain(t)
	if len(env.host.Repositories()) != 0 || len(env.notifier.payloads) != 0 {
		t.Fatalf("invalid secret must not create repositories or notify")
	}
}

func TestDeployAcceptsAndRunsInBackground(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/deploy", mustJSON(t, validBody()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["status"] != "accepted" || resp["message"] != "Deployment process started" ||
		resp["task"] != "sum-of-sales-1" || resp["round"] != float64(1) {
		t.Fatalf("unexpected body %v", resp)
	}
	id, _ := resp["deployment_id"].(string)

	env.drain(t)

	repos := env.host.Repositories()
	if len(repos) != 1 {
		t.Fatalf("expected one repository, got %v", repos)
	}
	if got := env.host.Files(repos[0]).String("data.csv"); got != "product,sales\nA,100\nB,150" {
		t.Fatalf("data.csv differs from attachment: %q", got)
	}
	if len(env.notifier.payloads) != 1 {
		t.Fatalf("expected one notification, got %d", len(env.notifier.payloads))
	}
	result := env.notifier.payloads[0].(*entities.DeploymentResult)
	if result.Nonce != "nonce-42" || result.Email != "student@example.com" {
		t.Fatalf("payload does not echo request: %+v", result)
	}

	rec = env.do(http.MethodGet, "/api/v1/deployments/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected deployment record, got %d", rec.Code)
	}
	if status := decode(t, rec)["status"]; status != string(entities.DeploymentStatusSucceeded) {
		t.Fatalf("unexpected deployment status %v", status)
	}

	rec = env.do(http.MethodGet, "/api/v1/tasks/sum-of-sales-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected task record, got %d", rec.Code)
	}
	task := decode(t, rec)
	files, _ := task["files"].([]any)
	if task["repo_name"] != repos[0] || len(files) == 0 || files[0] != "LICENSE" {
		t.Fatalf("unexpected task record %v", task)
	}

	rec = env.do(http.MethodGet, "/api/v1/tasks/sum-of-sales-1/deployments", nil)
	var list []map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("expected one deployment in task history, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeployWhileShuttingDown(t *testing.T) {
	env := newTestEnv(t)
	env.drain(t)

	rec := env.do(http.MethodPost, "/api/deploy", mustJSON(t, validBody()))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLookupsNotFound(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(http.MethodGet, "/api/v1/deployments/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/v1/deployments/8d1c7f5e-4b7a-4a57-9a53-3c2d6a1f0e11", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/v1/tasks/unknown", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", rec.Code)
	}
}

func TestHealthDebugAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := env.do(http.MethodGet, path, nil)
		resp := decode(t, rec)
		if rec.Code != http.StatusOK || resp["status"] != "healthy" || resp["version"] != "2.1" {
			t.Fatalf("%s: unexpected response %d %v", path, rec.Code, resp)
		}
	}

	rec := env.do(http.MethodGet, "/debug", nil)
	if strings.Contains(rec.Body.String(), testSecret) {
		t.Fatalf("debug endpoint leaked the secret")
	}
	resp := decode(t, rec)
	if resp["secret_configured"] != true || resp["github_user"] != "octo" {
		t.Fatalf("unexpected debug body %v", resp)
	}

	rec = env.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "pages_deployer_api_http_requests_total") {
		t.Fatalf("metrics endpoint missing request counter:\n%s", rec.Body.String())
	}
}
