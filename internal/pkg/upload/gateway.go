package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/orderhub/orderhub-api/internal/pkg/storage"
)

// ErrUploadFailed is returned when the storage backend rejects or times out
var ErrUploadFailed = errors.New("upload failed")

// Result describes a stored file
type Result struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Gateway stores uploaded files and returns their public URL.
// Calls are bounded by a timeout; a timeout is reported as ErrUploadFailed.
type Gateway struct {
	storage storage.Storage
	timeout time.Duration
}

// NewGateway creates an upload gateway on top of a storage backend
func NewGateway(st storage.Storage, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gateway{storage: st, timeout: timeout}
}

// Upload stores the file under the given category and returns its URL.
// The reader is consumed whether the upload succeeds or fails.
func (g *Gateway) Upload(ctx context.Context, category, filename string, reader io.Reader, contentType string) (*Result, error) {
	key := fmt.Sprintf("%s/%s%s", category, uuid.New().String(), sanitizeExt(filename))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.storage.Put(ctx, key, reader, contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("upload gateway put failed")
		return nil, ErrUploadFailed
	}

	url := g.storage.GetURL(key)
	if url == "" {
		return nil, ErrUploadFailed
	}

	return &Result{Key: key, URL: url}, nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf":
		return ext
	default:
		return ""
	}
}
