package models

// StatusResponse is served by GET /api/processing-status.
// Absent values are encoded as JSON null.
type StatusResponse struct {
	HasPhoto       bool    `json:"hasPhoto"`
	TaskID         *string `json:"taskId"`
	PhotoTimestamp *int64  `json:"photoTimestamp"`
}

// HealthResponse is served by GET /.
type HealthResponse struct {
	Message    string `json:"message"`
	Status     string `json:"status"`
	Version    string `json:"version"`
	BackendURL string `json:"backend_url"`
	Port       int    `json:"port"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UploadResponse is the backend's acknowledgement of an upload.
type UploadResponse struct {
	TaskID string `json:"task_id"`
}
