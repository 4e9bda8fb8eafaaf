// Package upload forwards captured photos to the processing backend.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/netx"
	"github.com/dmitrijs2005/gophcam/internal/server/device"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// FormField is the multipart field the backend reads the photo from.
const FormField = "file"

// Messages shown on the device.
const (
	MsgProcessing = "Processing photo..."
	MsgStarted    = "Photo processing started!"
	MsgFailed     = "Error processing photo"

	messageDuration = 3 * time.Second
)

// TaskRecorder stores the task id the backend assigned to a user's upload.
type TaskRecorder interface {
	Put(userID, taskID string)
}

// Pipeline posts one photo per call. There is no retry and no queue:
// a failed upload is dropped and the next capture is the only recovery.
type Pipeline struct {
	client  *http.Client
	url     string
	timeout time.Duration
	tasks   TaskRecorder
	logger  logging.Logger
	now     func() time.Time
}

func NewPipeline(client *http.Client, url string, timeout time.Duration, tasks TaskRecorder, logger logging.Logger) *Pipeline {
	if client == nil {
		client = &http.Client{}
	}
	return &Pipeline{
		client:  client,
		url:     url,
		timeout: timeout,
		tasks:   tasks,
		logger:  logger.With("module", "upload"),
		now:     time.Now,
	}
}

// Submit uploads photo for userID and reports the outcome on display.
// On success the task id is recorded; on any failure nothing is recorded
// and the returned error wraps common.ErrUpload.
func (p *Pipeline) Submit(ctx context.Context, userID string, photo *models.CapturedPhoto, display device.Display) error {
	log := p.logger.With("user_id", userID, "request_id", photo.RequestID)

	show(ctx, log, display, MsgProcessing)

	taskID, err := p.post(ctx, photo)
	if err != nil {
		log.Error(ctx, "Error processing photo", "error", err)
		show(ctx, log, display, MsgFailed)
		return err
	}

	p.tasks.Put(userID, taskID)
	log.Info(ctx, "Photo processing started", "task_id", taskID)
	show(ctx, log, display, MsgStarted)

	return nil
}

func (p *Pipeline) post(ctx context.Context, photo *models.CapturedPhoto) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	filename := fmt.Sprintf("photo_%d.jpg", p.now().UnixMilli())

	resp, err := netx.PostMultipart(ctx, p.client, p.url, FormField, filename, photo.MimeType, photo.Bytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpload, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: backend returned %d", common.ErrUpload, resp.StatusCode)
	}

	var body models.UploadResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("%w: invalid response from backend: %v", common.ErrUpload, err)
	}
	if body.TaskID == "" {
		return "", fmt.Errorf("%w: invalid response from backend: missing task_id", common.ErrUpload)
	}

	return body.TaskID, nil
}

func show(ctx context.Context, log logging.Logger, display device.Display, text string) {
	if display == nil {
		return
	}
	if err := display.ShowTextWall(ctx, text, messageDuration); err != nil {
		log.Warn(ctx, "display update failed", "text", text, "error", err)
	}
}
