package httpapi

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/auth"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
	"github.com/dmitrijs2005/gophcam/internal/server/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	AppName    = "MentraOS Photo Taker App"
	AppVersion = "1.0.0"
)

// PhotoReader looks up the latest photo of a user.
type PhotoReader interface {
	Get(userID string) (*models.CapturedPhoto, bool)
}

// TaskReader looks up the latest backend task of a user.
type TaskReader interface {
	Get(userID string) (*models.ProcessingTask, bool)
}

// Sessions is the part of the session manager driven by the webhook.
type Sessions interface {
	Start(ctx context.Context, sessionID, userID string) (*session.Session, error)
	Stop(ctx context.Context, sessionID, reason string) error
}

type Handlers struct {
	photos     PhotoReader
	tasks      TaskReader
	sessions   Sessions
	apiKey     string
	backendURL string
	port       int
	logger     logging.Logger
}

type Options struct {
	Photos     PhotoReader
	Tasks      TaskReader
	Sessions   Sessions
	APIKey     string
	BackendURL string
	Port       int
	Logger     logging.Logger
}

func NewHandlers(o Options) *Handlers {
	logger := o.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{
		photos:     o.Photos,
		tasks:      o.Tasks,
		sessions:   o.Sessions,
		apiKey:     o.APIKey,
		backendURL: o.BackendURL,
		port:       o.Port,
		logger:     logger.With("module", "httpapi"),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(h.logger, w, r, http.StatusOK, models.HealthResponse{
		Message:    AppName,
		Status:     "running",
		Version:    AppVersion,
		BackendURL: h.backendURL,
		Port:       h.port,
	})
}

func (h *Handlers) Webview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "photo-viewer.html", nil); err != nil {
		h.logger.Error(r.Context(), "render webview", "error", err)
	}
}

// WebviewUnauthorized renders the HTML notice shown outside the device app.
func (h *Handlers) WebviewUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug(r.Context(), "webview unauthenticated", "error", err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	if err := templates.ExecuteTemplate(w, "unauthorized.html", nil); err != nil {
		h.logger.Error(r.Context(), "render unauthorized notice", "error", err)
	}
}

// APIUnauthorized answers a protected API call that carried no identity.
func (h *Handlers) APIUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug(r.Context(), "api unauthenticated", "path", r.URL.Path, "error", err)
	errorResponse(h.logger, w, r, http.StatusUnauthorized, "Not authenticated")
}

func (h *Handlers) ProcessingStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var resp models.StatusResponse
	if p, ok := h.photos.Get(userID); ok {
		ts := p.CapturedAt.UnixMilli()
		resp.HasPhoto = true
		resp.PhotoTimestamp = &ts
	}
	if t, ok := h.tasks.Get(userID); ok {
		id := t.TaskID
		resp.TaskID = &id
	}

	jsonResponse(h.logger, w, r, http.StatusOK, resp)
}

func (h *Handlers) Photo(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	requestID := r.PathValue("requestId")

	p, ok := h.photos.Get(userID)
	if !ok {
		h.notFound(w, r, userID, requestID, "no photo captured")
		return
	}
	if p.RequestID != requestID {
		h.notFound(w, r, userID, requestID, "photo has been superseded")
		return
	}

	w.Header().Set("Content-Type", p.MimeType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(p.Bytes); err != nil {
		h.logger.Warn(r.Context(), "write photo", "user_id", userID, "error", err)
	}
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request, userID, requestID, reason string) {
	err := fmt.Errorf("%w: %s", common.ErrNotFound, reason)
	h.logger.Info(r.Context(), "Photo not found", "user_id", userID, "request_id", requestID, "error", err)
	errorResponse(h.logger, w, r, http.StatusNotFound, "Photo not found: "+reason)
}

// Webhook receives session lifecycle events from the device platform.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(common.APIKeyHeaderName)
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) != 1 {
		errorResponse(h.logger, w, r, http.StatusUnauthorized, "invalid API key")
		return
	}

	var req models.WebhookRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		errorResponse(h.logger, w, r, http.StatusBadRequest, "sessionId is required")
		return
	}

	// The session outlives the webhook request.
	ctx := context.WithoutCancel(r.Context())

	var err error
	switch req.Type {
	case models.WebhookSessionRequest:
		if req.UserID == "" {
			errorResponse(h.logger, w, r, http.StatusBadRequest, "userId is required")
			return
		}
		_, err = h.sessions.Start(ctx, req.SessionID, req.UserID)
	case models.WebhookStopRequest:
		err = h.sessions.Stop(ctx, req.SessionID, req.Reason)
	default:
		errorResponse(h.logger, w, r, http.StatusBadRequest, "unknown webhook type")
		return
	}

	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError && !errors.Is(err, common.ErrNoTransport) {
			h.logger.Error(r.Context(), "webhook failed", "type", req.Type, "session_id", req.SessionID, "error", err)
		}
		errorResponse(h.logger, w, r, code, err.Error())
		return
	}

	jsonResponse(h.logger, w, r, http.StatusOK, models.WebhookResponse{Status: "success"})
}
