package media

import (
	"context"
	"errors"
	"fmt"
	"garage-site/internal/errs"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local keeps uploads in a directory served by the site itself.
type Local struct {
	dir    string
	prefix string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/media/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Local{dir: dir, prefix: urlPrefix}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	objName, err := objectName(contentType)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(l.dir, objName), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", errs.Storage("write", "media", err)
	}
	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadSize)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errs.Storage("write", "media", err)
	}
	if err := f.Close(); err != nil {
		return "", errs.Storage("write", "media", err)
	}
	return l.prefix + objName, nil
}

func (l *Local) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, l.prefix) {
		return nil
	}
	// path.Base drops any directory components smuggled into the URL.
	name := path.Base(strings.TrimPrefix(url, l.prefix))
	if name == "." || name == "/" || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Storage("delete", "media", err)
	}
	return nil
}
