//go:build unit

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"garage-site/internal/auth"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"garage-site/internal/session"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockSession is a mock implementation of the session.Manager interface.
type mockSession struct {
	admin bool
}

func (m *mockSession) LoadAndSave(next http.Handler) http.Handler           { return next }
func (m *mockSession) Put(ctx context.Context, key string, val interface{}) {}
func (m *mockSession) GetBool(ctx context.Context, key string) bool {
	return key == session.AdminKey && m.admin
}
func (m *mockSession) GetString(ctx context.Context, key string) string { return "" }
func (m *mockSession) PopString(ctx context.Context, key string) string { return "" }
func (m *mockSession) RenewToken(ctx context.Context) error             { return nil }
func (m *mockSession) Destroy(ctx context.Context) error                { return nil }
func (m *mockSession) Remove(ctx context.Context, key string)           {}

func TestAuthorizer(t *testing.T) {
	e, err := auth.NewEnforcer()
	if err != nil {
		t.Fatal(err)
	}
	auth.SeedDefaultPolicies(e, logger.Nop())
	tokens := auth.NewTokenChecker("secret")

	testCases := []struct {
		name         string
		method       string
		path         string
		bearer       string
		sessionAdmin bool
		wantStatus   int
		wantLocation string
		wantSubject  string
		wantVia      string
	}{
		{"anonymous reads home", "GET", "/", "", false, http.StatusOK, "", auth.Anonymous, ""},
		{"anonymous reads api", "GET", "/api/blog", "", false, http.StatusOK, "", auth.Anonymous, ""},
		{"anonymous writes api", "POST", "/api/blog", "", false, http.StatusUnauthorized, "", "", ""},
		{"anonymous opens dashboard", "GET", "/admin", "", false, http.StatusSeeOther, LoginPath, "", ""},
		{"anonymous logs out", "POST", "/admin/logout", "", false, http.StatusUnauthorized, "", "", ""},
		{"wrong token is anonymous", "DELETE", "/api/blog", "guess", true, http.StatusUnauthorized, "", "", ""},
		{"token admin", "DELETE", "/api/blog", "secret", false, http.StatusOK, "", auth.Admin, "token"},
		{"session admin", "PUT", "/api/services", "", true, http.StatusOK, "", auth.Admin, "session"},
		{"session admin dashboard", "GET", "/admin", "", true, http.StatusOK, "", auth.Admin, "session"},
		{"admin without permission", "DELETE", "/", "secret", false, http.StatusForbidden, "", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got *UserInfo
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetUserInfo(r.Context())
			})
			h := Authorizer(e, &mockSession{admin: tc.sessionAdmin}, tokens, logger.Nop())(next)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantLocation != "" && rr.Header().Get("Location") != tc.wantLocation {
				t.Errorf("expected redirect to %s, got %s", tc.wantLocation, rr.Header().Get("Location"))
			}
			if tc.wantSubject == "" {
				if got != nil {
					t.Error("handler must not run for a denied request")
				}
				return
			}
			if got == nil || got.Subject != tc.wantSubject || got.Via != tc.wantVia {
				t.Errorf("expected subject %s via %q, got %+v", tc.wantSubject, tc.wantVia, got)
			}
		})
	}
}

func TestAuthorizer_APIDenialIsEnvelope(t *testing.T) {
	e, err := auth.NewEnforcer()
	if err != nil {
		t.Fatal(err)
	}
	auth.SeedDefaultPolicies(e, logger.Nop())
	h := Authorizer(e, &mockSession{}, auth.NewTokenChecker("secret"), logger.Nop())(http.NotFoundHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/cron", nil))

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON body: %v", err)
	}
	if body.Success || body.Error != "authentication required" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if GetUserInfo(ctx).Subject != auth.Anonymous || IsAdmin(ctx) {
		t.Error("an empty context must be anonymous")
	}
	ctx = SetUserInfo(ctx, &UserInfo{Subject: auth.Admin, Via: "token"})
	if !IsAdmin(ctx) {
		t.Error("expected admin")
	}
}

// mockRenderer is a mock implementation of the PageRenderer interface.
type mockRenderer struct {
	name string
	data map[string]interface{}
}

func (m *mockRenderer) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	m.name, m.data = name, data
	_, err := fmt.Fprintf(w, "%v", data["StatusText"])
	return err
}

func TestErrorMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		handler    AppHandler
		wantStatus int
		wantText   string
	}{
		{
			name:       "no error",
			handler:    func(w http.ResponseWriter, r *http.Request) *AppError { w.Write([]byte("ok")); return nil },
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) *AppError {
				return &AppError{Error: errors.New("missing"), Message: "Post not found", Code: http.StatusNotFound}
			},
			wantStatus: http.StatusNotFound,
			wantText:   "Post not found",
		},
		{
			name: "code from taxonomy",
			handler: func(w http.ResponseWriter, r *http.Request) *AppError {
				return NewAppError(errs.Validation("bad"), "")
			},
			wantStatus: http.StatusBadRequest,
			wantText:   "Bad Request",
		},
		{
			name: "missing code",
			handler: func(w http.ResponseWriter, r *http.Request) *AppError {
				return &AppError{Error: errors.New("boom")}
			},
			wantStatus: http.StatusInternalServerError,
			wantText:   "Internal Server Error",
		},
		{
			name:       "panic",
			handler:    func(w http.ResponseWriter, r *http.Request) *AppError { panic("boom") },
			wantStatus: http.StatusInternalServerError,
			wantText:   "Internal Server Error",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			view := &mockRenderer{}
			h := Error(logger.Nop(), view)(tc.handler)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantText == "" {
				if view.name != "" {
					t.Errorf("expected no error page, got %s", view.name)
				}
				return
			}
			if view.name != "error.html" || view.data["StatusCode"] != tc.wantStatus {
				t.Errorf("unexpected render %s %+v", view.name, view.data)
			}
			if rr.Body.String() != tc.wantText {
				t.Errorf("expected %q, got %q", tc.wantText, rr.Body.String())
			}
		})
	}
}
