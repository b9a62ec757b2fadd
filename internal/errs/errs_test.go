//go:build unit

package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
)

func TestTaxonomy(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		is         func(error) bool
	}{
		{"unauthorized", Unauthorized("bad token"), http.StatusUnauthorized, IsUnauthorized},
		{"missing field", MissingField("title"), http.StatusBadRequest, IsValidation},
		{"invalid field", InvalidField("type", "must be blog or news"), http.StatusBadRequest, IsValidation},
		{"not found", NotFound("post", 7), http.StatusNotFound, IsNotFound},
		{"storage", Storage("write", "services", fs.ErrPermission), http.StatusInternalServerError, IsStorage},
		{"external", ExternalService("gemini", errors.New("quota")), http.StatusBadGateway, IsExternalService},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusCode(tc.err); got != tc.wantStatus {
				t.Errorf("want status %d; got %d", tc.wantStatus, got)
			}
			if !tc.is(tc.err) {
				t.Errorf("expected %v to match its sentinel", tc.err)
			}
			// Wrapping must not hide the kind.
			wrapped := fmt.Errorf("handler: %w", tc.err)
			if !tc.is(wrapped) {
				t.Errorf("expected wrapped %v to match its sentinel", wrapped)
			}
		})
	}
}

func TestStorageKeepsCause(t *testing.T) {
	err := Storage("read", "categories", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected cause to be reachable through errors.Is")
	}
}

func TestFrom_UnknownIsInternal(t *testing.T) {
	apiErr := From(errors.New("boom"))
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("want status 500; got %d", apiErr.StatusCode)
	}
	if !errors.Is(apiErr, ErrInternal) {
		t.Error("expected unknown error to be classified as internal")
	}
}
