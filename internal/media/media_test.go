//go:build unit

package media

import (
	"context"
	"errors"
	"garage-site/internal/errs"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestLocal_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/media")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	url, err := l.Save(context.Background(), "photo.JPG", "image/jpeg", strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/media/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("unexpected url %q", url)
	}

	stored := filepath.Join(dir, strings.TrimPrefix(url, "/media/"))
	content, err := os.ReadFile(stored)
	if err != nil || string(content) != "jpeg bytes" {
		t.Fatalf("expected stored file with content, got %q, %v", content, err)
	}

	if err := l.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}

	// Deleting again, or deleting a URL the backend does not own, is a no-op.
	if err := l.Delete(context.Background(), url); err != nil {
		t.Errorf("expected second delete to succeed, got %v", err)
	}
	if err := l.Delete(context.Background(), "/static/img/blog/brakes.jpg"); err != nil {
		t.Errorf("expected foreign url to be ignored, got %v", err)
	}
}

func TestLocal_DeleteStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	l, err := NewLocal(dir, "/media/")
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(root, "secret.json")
	if err := os.WriteFile(outside, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := l.Delete(context.Background(), "/media/../secret.json"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("expected file outside the media dir to survive")
	}
}

func TestObjectName_RejectsNonImages(t *testing.T) {
	testCases := []struct {
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{"image/png", ".png", false},
		{"image/jpeg; charset=binary", ".jpg", false},
		{"IMAGE/WEBP", ".webp", false},
		{"text/html", "", true},
		{"application/octet-stream", "", true},
		{"", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.contentType, func(t *testing.T) {
			name, err := objectName(tc.contentType)
			if tc.wantErr {
				if !errs.IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasSuffix(name, tc.wantExt) {
				t.Errorf("expected extension %s, got %s", tc.wantExt, name)
			}
		})
	}
}

// mockObjectAPI is a mock implementation of the objectAPI interface.
type mockObjectAPI struct {
	errToReturn error
	putKeys     []string
	putBodies   []string
	deletedKeys []string
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	body, _ := io.ReadAll(params.Body)
	m.putKeys = append(m.putKeys, *params.Key)
	m.putBodies = append(m.putBodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	m.deletedKeys = append(m.deletedKeys, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3_SaveAndDelete(t *testing.T) {
	api := &mockObjectAPI{}
	store := newS3WithClient(api, "garage", "https://cdn.example.com")

	url, err := store.Save(context.Background(), "a.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(api.putKeys) != 1 || url != "https://cdn.example.com/"+api.putKeys[0] {
		t.Fatalf("url %q does not match stored key %v", url, api.putKeys)
	}
	if api.putBodies[0] != "png" {
		t.Errorf("unexpected body %q", api.putBodies[0])
	}

	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(api.deletedKeys) != 1 || api.deletedKeys[0] != api.putKeys[0] {
		t.Errorf("expected %v deleted, got %v", api.putKeys, api.deletedKeys)
	}

	if err := store.Delete(context.Background(), "/static/img/x.jpg"); err != nil || len(api.deletedKeys) != 1 {
		t.Error("expected foreign url to be ignored")
	}
}

func TestS3_ErrorsAreExternal(t *testing.T) {
	store := newS3WithClient(&mockObjectAPI{errToReturn: errors.New("connection reset")}, "garage", "https://cdn.example.com")

	_, err := store.Save(context.Background(), "a.png", "image/png", strings.NewReader("png"))
	if !errs.IsExternalService(err) {
		t.Errorf("expected external service error, got %v", err)
	}
}
