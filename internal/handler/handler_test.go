//go:build unit

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"garage-site/internal/auth"
	"garage-site/internal/cache"
	"garage-site/internal/config"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"garage-site/internal/generator"
	"garage-site/internal/logger"
	"garage-site/internal/media"
	"garage-site/internal/middleware"
	"garage-site/internal/respond"
	"garage-site/internal/scheduler"
	"garage-site/internal/service"
	"garage-site/internal/session"
	"garage-site/internal/view"
	"garage-site/web"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

const testToken = "test-admin-token"

// mockGenerator is a mock implementation of the generator.Generator interface.
type mockGenerator struct {
	fail   map[string]bool
	topics []string
}

func (m *mockGenerator) Generate(ctx context.Context, topic string, opts data.GeneratorOptions) (*data.Post, error) {
	m.topics = append(m.topics, topic)
	if m.fail[topic] {
		return nil, errs.ExternalService("gemini", errors.New("quota exceeded"))
	}
	return &data.Post{
		Title:    "About " + topic,
		Content:  "Everything you need to know about " + topic + ".",
		Author:   "AI",
		Category: "Maintenance",
		Status:   data.StatusDraft,
	}, nil
}

type testApp struct {
	Router   *chi.Mux
	Store    *data.Store
	Services Services
	Gen      *mockGenerator
	MediaDir string
}

// setupTest initializes a full application stack for testing.
func setupTest(t *testing.T) *testApp {
	t.Helper()
	log := logger.Nop()

	store, err := data.NewStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	c := cache.New(config.CacheConfig{})
	t.Cleanup(func() { c.Close() })

	mediaDir := filepath.Join(t.TempDir(), "uploads")
	storage, err := media.NewLocal(mediaDir, "/media/")
	if err != nil {
		t.Fatalf("Failed to create media storage: %v", err)
	}

	deps := service.Deps{Store: store, Cache: c, Media: storage, Log: log}
	svc := Services{
		Posts:      service.NewPostService(deps, nil),
		Catalog:    service.NewServiceCatalog(deps),
		Gallery:    service.NewGallery(deps),
		Slider:     service.NewSlider(deps),
		Categories: service.NewCategories(deps),
		Messages:   service.NewMessages(deps),
	}

	genCfg := config.GeneratorConfig{}
	gen := &mockGenerator{fail: map[string]bool{}}
	settings := generator.NewSettings(store, genCfg)
	sched := scheduler.New(store, svc.Posts, gen, settings, genCfg, log)

	sm, closeSessions, err := session.New(config.SessionConfig{Store: "memory", Lifetime: 1}, false)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}
	t.Cleanup(func() { closeSessions() })

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		t.Fatalf("Failed to create enforcer: %v", err)
	}
	auth.SeedDefaultPolicies(enforcer, log)
	tokens := auth.NewTokenChecker(testToken)

	views, err := view.New(web.TemplateFS, "Test Garage")
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		t.Fatal(err)
	}

	res := respond.NewResponder(log)
	site := NewSiteHandler(svc, views, log)
	router := NewRouter(RouterDeps{
		Site:           site,
		Admin:          NewAdminHandler(site, sched, sm, tokens),
		SEO:            NewSeoHandler(svc.Posts, "https://garage.test", log),
		Cron:           NewCronHandler(sched, res),
		Generator:      NewGeneratorHandler(gen, settings, svc.Posts, res),
		Upload:         NewUploadHandler(storage, res),
		Services:       svc,
		Responder:      res,
		Authorizer:     middleware.Authorizer(enforcer, sm, tokens, log),
		Errors:         middleware.Error(log, views),
		Sessions:       sm,
		StaticFS:       static,
		MediaDir:       mediaDir,
		MediaPrefix:    "/media/",
		AllowedOrigins: []string{"*"},
	})

	return &testApp{Router: router, Store: store, Services: svc, Gen: gen, MediaDir: mediaDir}
}

// envelope mirrors respond.Envelope with raw data for decoding in tests.
type envelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Message    string              `json:"message"`
	Error      string              `json:"error"`
	Field      string              `json:"field"`
	Pagination *service.Pagination `json:"pagination"`
}

// do sends a request through the router. A non-empty token is sent as a
// bearer token; a string body is sent as JSON.
func (a *testApp) do(t *testing.T, method, target, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v\n%s", err, rr.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v\n%s", err, env.Data)
	}
}

// loginCookie logs in through the form and returns the session cookie.
func (a *testApp) loginCookie(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader("token="+testToken))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "garage_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}
