// Package artifacts keeps a durable copy of every capture outside the
// in-memory cache. Writes are best effort from the caller's point of view.
package artifacts

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/filex"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// Store saves one artifact and returns where it ended up.
type Store interface {
	Save(ctx context.Context, photo *models.CapturedPhoto) (string, error)
}

// LocalStore writes photo_<unix-ms>.<ext> files into a directory.
type LocalStore struct {
	dir string
	now func() time.Time
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir, now: time.Now}
}

func (s *LocalStore) Save(ctx context.Context, photo *models.CapturedPhoto) (string, error) {
	name := fmt.Sprintf("photo_%d%s", s.now().UnixMilli(), Extension(photo.MimeType))

	path, err := filex.WriteFile(s.dir, name, photo.Bytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrArtifactWrite, err)
	}
	return path, nil
}

// NopStore discards artifacts.
type NopStore struct{}

func (NopStore) Save(context.Context, *models.CapturedPhoto) (string, error) { return "", nil }

// Extension returns a file extension for mimeType, ".jpg" when unknown.
func Extension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "", "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}
