package models

import "time"

// PhotoData is what the device camera primitive returns for one capture.
type PhotoData struct {
	RequestID string
	Buffer    []byte
	Timestamp time.Time
	MimeType  string
	Filename  string
	Size      int
}

// CapturedPhoto is the cached copy of a user's latest capture.
// It is never mutated after creation; a newer capture replaces it.
type CapturedPhoto struct {
	RequestID  string
	Bytes      []byte
	CapturedAt time.Time
	OwnerID    string
	MimeType   string
	Filename   string
	SizeBytes  int
}

// NewCapturedPhoto copies p into a CapturedPhoto owned by ownerID.
func NewCapturedPhoto(p *PhotoData, ownerID string) *CapturedPhoto {
	buf := make([]byte, len(p.Buffer))
	copy(buf, p.Buffer)

	size := p.Size
	if size == 0 {
		size = len(buf)
	}

	return &CapturedPhoto{
		RequestID:  p.RequestID,
		Bytes:      buf,
		CapturedAt: p.Timestamp,
		OwnerID:    ownerID,
		MimeType:   p.MimeType,
		Filename:   p.Filename,
		SizeBytes:  size,
	}
}

// ProcessingTask points at backend-side work started for a user.
type ProcessingTask struct {
	TaskID  string
	OwnerID string
}
