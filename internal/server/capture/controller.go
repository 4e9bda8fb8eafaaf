// Package capture turns a button press into capture, cache and upload.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/artifacts"
	"github.com/dmitrijs2005/gophcam/internal/server/device"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
	"github.com/google/uuid"
)

// Messages shown on the device.
const (
	MsgCapturing    = "Taking photo..."
	MsgCaptureError = "Error taking photo"

	capturingDuration = 2 * time.Second
	errorDuration     = 3 * time.Second
)

// PhotoWriter caches the latest photo per user.
type PhotoWriter interface {
	Put(userID string, photo *models.CapturedPhoto)
}

// Uploader forwards a cached photo to the backend.
type Uploader interface {
	Submit(ctx context.Context, userID string, photo *models.CapturedPhoto, display device.Display) error
}

type Controller struct {
	photos    PhotoWriter
	artifacts artifacts.Store
	uploader  Uploader
	logger    logging.Logger
	now       func() time.Time
}

func NewController(photos PhotoWriter, store artifacts.Store, uploader Uploader, logger logging.Logger) *Controller {
	if store == nil {
		store = artifacts.NopStore{}
	}
	return &Controller{
		photos:    photos,
		artifacts: store,
		uploader:  uploader,
		logger:    logger.With("module", "capture"),
		now:       time.Now,
	}
}

// OnButtonPress handles one press from dev on behalf of userID. Only short
// presses capture. Two presses for the same user are not serialised.
//
// The returned error wraps common.ErrCapture or common.ErrUpload; it has
// already been logged and shown on the device.
func (c *Controller) OnButtonPress(ctx context.Context, dev device.Device, userID string, press models.ButtonPress) error {
	log := c.logger.With("user_id", userID)
	log.Info(ctx, "Button pressed", "button_id", press.ButtonID, "press_type", press.PressType)

	if press.PressType != models.PressShort {
		return nil
	}

	c.show(ctx, log, dev, MsgCapturing, capturingDuration)

	data, err := dev.RequestPhoto(ctx)
	if err == nil && data == nil {
		err = fmt.Errorf("camera returned no photo")
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", common.ErrCapture, err)
		log.Error(ctx, "Error taking photo", "error", err)
		c.show(ctx, log, dev, MsgCaptureError, errorDuration)
		return err
	}

	photo := models.NewCapturedPhoto(data, userID)
	if photo.RequestID == "" {
		photo.RequestID = uuid.NewString()
	}
	if photo.CapturedAt.IsZero() {
		photo.CapturedAt = c.now()
	}
	log = log.With("request_id", photo.RequestID)
	log.Info(ctx, "Photo taken", "timestamp", photo.CapturedAt, "size", photo.SizeBytes)

	if loc, err := c.artifacts.Save(ctx, photo); err != nil {
		log.Warn(ctx, "Photo copy not saved", "error", err)
	} else if loc != "" {
		log.Info(ctx, "Photo saved", "location", loc)
	}

	c.photos.Put(userID, photo)
	log.Info(ctx, "Photo cached", "timestamp", photo.CapturedAt)

	return c.uploader.Submit(ctx, userID, photo, dev)
}

func (c *Controller) show(ctx context.Context, log logging.Logger, d device.Display, text string, dur time.Duration) {
	if err := d.ShowTextWall(ctx, text, dur); err != nil {
		log.Warn(ctx, "display update failed", "text", text, "error", err)
	}
}
