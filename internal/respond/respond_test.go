//go:build unit

package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{"validation", errs.Validation("payload must be a JSON object"), http.StatusBadRequest, "payload must be a JSON object", ""},
		{"missing field", errs.MissingField("title"), http.StatusBadRequest, "title is required", "title"},
		{"unauthorized", errs.Unauthorized("authentication required"), http.StatusUnauthorized, "authentication required", ""},
		{"forbidden", errs.Forbidden("forbidden"), http.StatusForbidden, "forbidden", ""},
		{"not found", errs.NotFound("post", 7), http.StatusNotFound, "post 7 not found", ""},
		{"storage", errs.Storage("write", "posts", errors.New("disk full")), http.StatusInternalServerError, "failed to write posts", ""},
		{"external", errs.ExternalService("gemini", errors.New("quota")), http.StatusBadGateway, "gemini request failed", ""},
		{"wrapped", fmt.Errorf("saving: %w", errs.MissingField("name")), http.StatusBadRequest, "name is required", "name"},
		{"unknown", errors.New("secret detail"), http.StatusInternalServerError, "an unexpected error occurred", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewResponder(logger.Nop()).WriteError(rr, tc.err)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("unexpected content type %q", ct)
			}
			var env Envelope
			if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if env.Success || env.Error != tc.wantError || env.Message != tc.wantError || env.Field != tc.wantField {
				t.Errorf("unexpected envelope %+v", env)
			}
			if strings.Contains(rr.Body.String(), "disk full") || strings.Contains(rr.Body.String(), "secret detail") {
				t.Error("cause leaked to the client")
			}
		})
	}
}

func TestSuccessResponses(t *testing.T) {
	res := NewResponder(logger.Nop())

	testCases := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantKeys   []string
		absentKeys []string
	}{
		{
			name:       "ok without pagination",
			write:      func(w http.ResponseWriter) { res.OK(w, []int{1}, nil) },
			wantStatus: http.StatusOK,
			wantKeys:   []string{"success", "data"},
			absentKeys: []string{"pagination", "error", "message"},
		},
		{
			name:       "ok with pagination",
			write:      func(w http.ResponseWriter) { res.OK(w, []int{}, map[string]int{"page": 1}) },
			wantStatus: http.StatusOK,
			wantKeys:   []string{"success", "data", "pagination"},
		},
		{
			name:       "created",
			write:      func(w http.ResponseWriter) { res.Created(w, map[string]int{"id": 1}, "created") },
			wantStatus: http.StatusCreated,
			wantKeys:   []string{"success", "data", "message"},
		},
		{
			name:       "message",
			write:      func(w http.ResponseWriter) { res.Message(w, "deleted") },
			wantStatus: http.StatusOK,
			wantKeys:   []string{"success", "message"},
			absentKeys: []string{"data"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.write(rr)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			var body map[string]json.RawMessage
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			for _, k := range tc.wantKeys {
				if _, ok := body[k]; !ok {
					t.Errorf("expected key %q in %s", k, rr.Body.String())
				}
			}
			for _, k := range tc.absentKeys {
				if _, ok := body[k]; ok {
					t.Errorf("unexpected key %q in %s", k, rr.Body.String())
				}
			}
			if string(body["success"]) != "true" {
				t.Errorf("expected success, got %s", body["success"])
			}
		})
	}
}
