// Package devicetest provides an in-memory device for tests.
package devicetest

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// Message is one ShowTextWall call.
type Message struct {
	Text     string
	Duration time.Duration
}

// Fake returns queued photos (or Err) from RequestPhoto and records every
// message shown on it. It is safe for concurrent use.
type Fake struct {
	mu       sync.Mutex
	photos   []*models.PhotoData
	messages []Message
	requests int
	closed   bool

	// Err, when set, is returned by RequestPhoto.
	Err error
	// DisplayErr, when set, is returned by ShowTextWall.
	DisplayErr error
	// Block, when set, makes RequestPhoto wait until it is closed.
	Block chan struct{}
}

func New(photos ...*models.PhotoData) *Fake {
	return &Fake{photos: photos}
}

func (f *Fake) Queue(p *models.PhotoData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, p)
}

func (f *Fake) RequestPhoto(ctx context.Context) (*models.PhotoData, error) {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.photos) == 0 {
		return nil, nil
	}
	p := f.photos[0]
	f.photos = f.photos[1:]
	return p, nil
}

func (f *Fake) ShowTextWall(ctx context.Context, text string, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, Message{Text: text, Duration: d})
	return f.DisplayErr
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Texts returns the text of every message shown so far.
func (f *Fake) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.Text
	}
	return out
}

func (f *Fake) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...)
}

func (f *Fake) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Photo builds a PhotoData with sensible defaults.
func Photo(requestID string, ts time.Time, data []byte) *models.PhotoData {
	return &models.PhotoData{
		RequestID: requestID,
		Buffer:    data,
		Timestamp: ts,
		MimeType:  "image/jpeg",
		Filename:  requestID + ".jpg",
		Size:      len(data),
	}
}
