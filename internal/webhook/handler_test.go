package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gogit "github.com/go-git/go-git/v5"

	"autoremedy/internal/classifier"
	"autoremedy/internal/model"
	"autoremedy/internal/patcher"
	"autoremedy/internal/planner"
	"autoremedy/internal/publisher"
	"autoremedy/internal/remediation"
	"autoremedy/internal/webhook"
	"autoremedy/pkg/git"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Info(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Warn(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Error(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Panic(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...interface{})  {}

type mockRemediationUC struct {
	mu      sync.Mutex
	events  []model.WebhookEvent
	outcome remediation.Outcome
	block   chan struct{}
	ctxErr  error
}

func (m *mockRemediationUC) Process(ctx context.Context, event model.WebhookEvent) remediation.Outcome {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	m.ctxErr = ctx.Err()
	out := m.outcome
	out.EventID = event.ID
	return out
}

func (m *mockRemediationUC) calls() []model.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WebhookEvent(nil), m.events...)
}

const testSecret = "test-secret"

func newRouter(uc remediation.UseCase, cfg webhook.SecurityConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = 6000
	}
	h := webhook.NewHandler(uc, cfg, &mockLogger{})
	r := gin.New()
	r.POST("/github-webhook", h.HandleGitHubWebhook)
	r.POST("/netlify-webhook", h.HandleNetlifyWebhook)
	return r
}

func githubRequest(event, delivery string, body []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/github-webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-GitHub-Delivery", delivery)
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return body
}

const failedRun = `{"action":"completed","workflow_run":{"id":99,"name":"pages","status":"completed","conclusion":"failure","html_url":"https://github.com/acme/site/actions/runs/99"},"repository":{"full_name":"acme/site"}}`

// ── GitHub ─────────────────────────────────────────────────────────────────

func TestGitHubWebhookInvalidSignature(t *testing.T) {
	uc := &mockRemediationUC{}
	r := newRouter(uc, webhook.SecurityConfig{})

	for name, sig := range map[string]string{
		"missing": "",
		"wrong":   webhook.Sign([]byte(failedRun), "other-secret"),
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, githubRequest("workflow_run", "d-"+name, []byte(failedRun), sig))

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if decode(t, w)["error"] != "invalid signature" {
				t.Errorf("unexpected body: %s", w.Body.String())
			}
		})
	}
	if len(uc.calls()) != 0 {
		t.Errorf("pipeline must not run for rejected requests")
	}
}

func TestGitHubWebhookWorkflowRunFailure(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{State: model.StateDone, Message: "added csv"}}
	r := newRouter(uc, webhook.SecurityConfig{})

	body := []byte(failedRun)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, githubRequest("workflow_run", "d-1", body, webhook.Sign(body, testSecret)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["status"] != "processed" || resp["message"] != "added csv" || resp["state"] != "Done" {
		t.Errorf("unexpected body: %v", resp)
	}

	calls := uc.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one pipeline run, got %d", len(calls))
	}
	ev := calls[0]
	if ev.ID == "" || ev.DeliveryID != "d-1" || ev.LogRef == nil || ev.LogRef.RunID != 99 || ev.LogRef.Repository != "acme/site" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if resp["event_id"] != ev.ID {
		t.Errorf("response event id %v does not match %s", resp["event_id"], ev.ID)
	}
}

func TestGitHubWebhookIgnoredEvents(t *testing.T) {
	uc := &mockRemediationUC{}
	r := newRouter(uc, webhook.SecurityConfig{})

	tests := []struct {
		name  string
		event string
		body  string
	}{
		{"success run", "workflow_run", `{"action":"completed","workflow_run":{"id":1,"conclusion":"success"},"repository":{"full_name":"acme/site"}}`},
		{"in progress run", "workflow_run", `{"action":"in_progress","workflow_run":{"id":1},"repository":{"full_name":"acme/site"}}`},
		{"passing check", "check_run", `{"action":"completed","check_run":{"conclusion":"success"}}`},
		{"ping", "ping", `{"zen":"Keep it logically awesome."}`},
		{"push", "push", `{"ref":"refs/heads/main"}`},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := []byte(tc.body)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, githubRequest(tc.event, "ign-"+string(rune('a'+i)), body, webhook.Sign(body, testSecret)))

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if decode(t, w)["status"] != "processed" {
				t.Errorf("unexpected body: %s", w.Body.String())
			}
		})
	}
	if len(uc.calls()) != 0 {
		t.Errorf("ignored events must not enter the pipeline")
	}
}

func TestGitHubWebhookCheckRun(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{State: model.StateDone}}
	r := newRouter(uc, webhook.SecurityConfig{})

	body := []byte(`{"action":"completed","check_run":{"conclusion":"failure","output":{"title":"build","summary":"cannot load such file -- csv (LoadError)"}},"repository":{"full_name":"acme/site"}}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, githubRequest("check_run", "cr-1", body, webhook.Sign(body, testSecret)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	calls := uc.calls()
	if len(calls) != 1 || !strings.Contains(calls[0].ErrorText, "cannot load such file -- csv") {
		t.Errorf("unexpected events: %+v", calls)
	}
}

func TestGitHubWebhookMalformed(t *testing.T) {
	uc := &mockRemediationUC{}
	r := newRouter(uc, webhook.SecurityConfig{})

	for _, body := range []string{`{not json`, `{"action":"completed","workflow_run":{"conclusion":"failure"}}`} {
		b := []byte(body)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, githubRequest("workflow_run", "", b, webhook.Sign(b, testSecret)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %q, got %d", body, w.Code)
		}
	}
}

func TestGitHubWebhookDuplicateDelivery(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{State: model.StateDone}}
	r := newRouter(uc, webhook.SecurityConfig{})
	body := []byte(failedRun)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, githubRequest("workflow_run", "same-delivery", body, webhook.Sign(body, testSecret)))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if i == 1 && decode(t, w)["duplicate"] != true {
			t.Errorf("expected duplicate flag, got %s", w.Body.String())
		}
	}
	if n := len(uc.calls()); n != 1 {
		t.Errorf("expected one pipeline run, got %d", n)
	}
}

func TestGitHubWebhookRedeliveryAfterFailure(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{
		State:   model.StateFailed,
		Reason:  model.ReasonPublishUnreachable,
		Message: "remote unreachable",
	}}
	r := newRouter(uc, webhook.SecurityConfig{})
	body := []byte(failedRun)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, githubRequest("workflow_run", "retry-me", body, webhook.Sign(body, testSecret)))
		resp := decode(t, w)
		if resp["status"] != "failed" || resp["reason"] != "PublishUnreachable" {
			t.Errorf("delivery %d: expected failed outcome, got %v", i+1, resp)
		}
		if resp["duplicate"] == true {
			t.Errorf("delivery %d: failed delivery must not be reported as duplicate", i+1)
		}
	}
	if n := len(uc.calls()); n != 2 {
		t.Errorf("expected the redelivery to run the pipeline again, got %d runs", n)
	}

	// once it succeeds the id is remembered
	uc.mu.Lock()
	uc.outcome = remediation.Outcome{State: model.StateDone}
	uc.mu.Unlock()
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, githubRequest("workflow_run", "retry-me", body, webhook.Sign(body, testSecret)))
		if i == 1 && decode(t, w)["duplicate"] != true {
			t.Errorf("expected duplicate after a successful run, got %s", w.Body.String())
		}
	}
	if n := len(uc.calls()); n != 3 {
		t.Errorf("expected 3 pipeline runs in total, got %d", n)
	}
}

func TestGitHubWebhookFailedOutcome(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{
		State:   model.StateFailed,
		Reason:  model.ReasonPublishConflict,
		Message: "remote moved",
	}}
	r := newRouter(uc, webhook.SecurityConfig{})
	body := []byte(failedRun)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, githubRequest("workflow_run", "f-1", body, webhook.Sign(body, testSecret)))

	resp := decode(t, w)
	if resp["status"] != "failed" || resp["reason"] != "PublishConflict" || resp["message"] != "remote moved" {
		t.Errorf("unexpected body: %v", resp)
	}
}

func TestGitHubWebhookRateLimit(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{State: model.StateDone}}
	r := newRouter(uc, webhook.SecurityConfig{RateLimitPerMin: 1})
	body := []byte(`{"zen":"hi"}`)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, githubRequest("ping", "", body, webhook.Sign(body, testSecret)))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [200 429], got %v", codes)
	}
}

func TestGitHubWebhookIPAllowList(t *testing.T) {
	uc := &mockRemediationUC{}
	r := newRouter(uc, webhook.SecurityConfig{AllowedIPs: []string{"10.1.0.0/16"}})
	body := []byte(`{"zen":"hi"}`)

	req := githubRequest("ping", "", body, webhook.Sign(body, testSecret))
	req.RemoteAddr = "203.0.113.9:4431"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	req = githubRequest("ping", "", body, webhook.Sign(body, testSecret))
	req.RemoteAddr = "10.1.2.3:4431"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestClientDisconnectDoesNotCancelPipeline(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{State: model.StateDone}, block: make(chan struct{})}
	r := newRouter(uc, webhook.SecurityConfig{})
	body := []byte(failedRun)

	ctx, cancel := context.WithCancel(context.Background())
	req := githubRequest("workflow_run", "dc-1", body, webhook.Sign(body, testSecret)).WithContext(ctx)
	w := httptest.NewRecorder()

	served := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(served)
	}()

	cancel()
	<-served
	close(uc.block)

	deadline := time.After(2 * time.Second)
	for len(uc.calls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("pipeline did not finish after client disconnect")
		case <-time.After(5 * time.Millisecond):
		}
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.ctxErr != nil {
		t.Errorf("pipeline context was cancelled: %v", uc.ctxErr)
	}
}

// ── Netlify ────────────────────────────────────────────────────────────────

func netlifyRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/netlify-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNetlifyWebhookValidation(t *testing.T) {
	uc := &mockRemediationUC{outcome: remediation.Outcome{State: model.StateDone}}
	r := newRouter(uc, webhook.SecurityConfig{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing error_message", `{"state":"error","name":"docs","url":"https://docs.example.com"}`, http.StatusBadRequest},
		{"missing name", `{"state":"error","error_message":"x","url":"https://docs.example.com"}`, http.StatusBadRequest},
		{"not json", `state=error`, http.StatusBadRequest},
		{"error state with null error_message", `{"state":"error","error_message":null,"name":"docs","url":"https://docs.example.com"}`, http.StatusBadRequest},
		{"error state with blank error_message", `{"state":"error","error_message":"  ","name":"docs","url":"https://docs.example.com"}`, http.StatusBadRequest},
		{"missing state", `{"error_message":"x","name":"docs","url":"https://docs.example.com"}`, http.StatusBadRequest},
		{"ready state with null error_message", `{"state":"ready","error_message":null,"name":"docs","url":"https://docs.example.com"}`, http.StatusOK},
		{"building state without error_message", `{"state":"building","name":"docs","url":"https://docs.example.com"}`, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, netlifyRequest(tc.body))
			if w.Code != tc.code {
				t.Errorf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
		})
	}
	if len(uc.calls()) != 0 {
		t.Errorf("invalid or non-error deploys must not enter the pipeline")
	}
}

type acceptPush struct{}

func (acceptPush) Run(ctx context.Context, cmd git.Command) ([]byte, error) { return nil, nil }

func TestNetlifyEndToEnd(t *testing.T) {
	dir := t.TempDir()
	raw, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	gemfile := filepath.Join(dir, "Gemfile")
	initial := "source \"https://rubygems.org\"\ngem \"jekyll\", \"~> 4.3.0\"\n"
	if err := os.WriteFile(gemfile, []byte(initial), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &mockLogger{}
	repo, err := git.Open(l, git.Config{RepoPath: dir, AuthorName: "bot", AuthorEmail: "bot@example.com"}, acceptPush{})
	if err != nil {
		t.Fatal(err)
	}
	uc := remediation.New(l, remediation.Deps{
		Classifier: classifier.New(classifier.DefaultTable()),
		Planner:    planner.New(nil),
		Patcher:    patcher.New(l),
		Publisher:  publisher.New(l, repo, publisher.Options{PushAttempts: 2}),
	}, remediation.Options{RepoPath: dir, Manifest: "Gemfile", Timeout: 5 * time.Second})
	r := newRouter(uc, webhook.SecurityConfig{})

	body := `{"id":"dep-1","state":"error","name":"docs","url":"https://docs.example.com","error_message":"Error: cannot load such file -- ostruct (LoadError)"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, netlifyRequest(body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["status"] != "processed" || resp["state"] != "Done" {
		t.Fatalf("unexpected body: %v", resp)
	}

	content, err := os.ReadFile(gemfile)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(content), `gem "ostruct"`); n != 1 {
		t.Errorf("expected exactly one ostruct declaration, got %d:\n%s", n, content)
	}
	added := len(strings.Split(strings.TrimSpace(string(content)), "\n")) - len(strings.Split(strings.TrimSpace(initial), "\n"))
	if added != 3 {
		t.Errorf("expected marker section with one declaration (3 lines), got %d new lines", added)
	}

	head, err := raw.Head()
	if err != nil {
		t.Fatal(err)
	}
	commit, err := raw.CommitObject(head.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(commit.Message, "ostruct") {
		t.Errorf("commit message does not reference ostruct: %q", commit.Message)
	}
	if resp["commit_hash"] != head.Hash().String() {
		t.Errorf("response commit %v does not match HEAD %s", resp["commit_hash"], head.Hash())
	}
}
