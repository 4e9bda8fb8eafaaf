// Package device describes what the core needs from a connected device.
// The transport behind these interfaces lives outside this module.
package device

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// Display shows short-lived messages on the device.
type Display interface {
	ShowTextWall(ctx context.Context, text string, duration time.Duration) error
}

// Camera captures one photo. Its own timeout and failure policy apply.
type Camera interface {
	RequestPhoto(ctx context.Context) (*models.PhotoData, error)
}

// Device is a connected device's display and camera.
type Device interface {
	Display
	Camera
}
