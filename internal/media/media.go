package media

import (
	"context"
	"fmt"
	"garage-site/internal/config"
	"garage-site/internal/errs"
	"io"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize caps a single uploaded image.
const MaxUploadSize = 10 << 20

// Storage saves uploaded images and removes them again.
type Storage interface {
	// Save stores the content and returns the public URL it is served at.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes the object behind url. URLs the storage does not own are
	// ignored.
	Delete(ctx context.Context, url string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// New builds the storage backend selected in cfg.
func New(ctx context.Context, cfg config.MediaConfig) (Storage, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocal(cfg.Dir, cfg.URLPrefix)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

// objectName returns a collision-free name for an upload, keeping only the
// extension implied by the content type.
func objectName(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := imageExtensions[ct]
	if !ok {
		return "", errs.InvalidField("file", fmt.Sprintf("unsupported content type %q", contentType))
	}
	return uuid.NewString() + ext, nil
}
