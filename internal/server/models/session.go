package models

// PressType distinguishes the kinds of hardware button presses.
type PressType string

const (
	PressShort PressType = "short"
	PressLong  PressType = "long"
)

// ButtonPress is a single hardware button event.
type ButtonPress struct {
	ButtonID  string    `json:"buttonId"`
	PressType PressType `json:"pressType"`
}

// Webhook request types sent by the device platform.
const (
	WebhookSessionRequest = "session_request"
	WebhookStopRequest    = "stop_request"
)

type WebhookRequest struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Reason    string `json:"reason,omitempty"`
}

type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
