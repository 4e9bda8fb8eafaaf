package artifacts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcam/internal/common"
	sc "github.com/dmitrijs2005/gophcam/internal/server/config"
)

// New returns the Store selected by c.ArtifactBackend.
func New(ctx context.Context, c *sc.Config) (Store, error) {
	switch c.ArtifactBackend {
	case sc.ArtifactLocal:
		return NewLocalStore(c.PhotosDir), nil
	case sc.ArtifactS3:
		return NewS3StoreFromConfig(ctx, c)
	case sc.ArtifactNone:
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown artifact backend %q", common.ErrInvalidConfig, c.ArtifactBackend)
	}
}
