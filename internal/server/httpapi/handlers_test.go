package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/auth"
	"github.com/dmitrijs2005/gophcam/internal/server/capture"
	"github.com/dmitrijs2005/gophcam/internal/server/device"
	"github.com/dmitrijs2005/gophcam/internal/server/device/devicetest"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
	"github.com/dmitrijs2005/gophcam/internal/server/photos"
	"github.com/dmitrijs2005/gophcam/internal/server/session"
	"github.com/dmitrijs2005/gophcam/internal/server/tasks"
	"github.com/dmitrijs2005/gophcam/internal/server/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testAPIKey = "api-key"
)

type env struct {
	photos   *photos.Store
	tasks    *tasks.Registry
	sessions *session.Manager
	devices  map[string]*devicetest.Fake
	handler  http.Handler
}

func newEnv(t *testing.T, backend http.HandlerFunc) *env {
	t.Helper()

	e := &env{
		photos:  photos.NewStore(),
		tasks:   tasks.NewRegistry(),
		devices: map[string]*devicetest.Fake{},
	}

	url := "http://127.0.0.1:1/photos/upload"
	if backend != nil {
		srv := httptest.NewServer(backend)
		t.Cleanup(srv.Close)
		url = srv.URL + "/photos/upload"
	}

	pipeline := upload.NewPipeline(nil, url, 2*time.Second, e.tasks, logging.Nop())
	ctrl := capture.NewController(e.photos, nil, pipeline, logging.Nop())
	connector := session.ConnectorFunc(func(ctx context.Context, sessionID, userID string) (device.Device, error) {
		d, ok := e.devices[sessionID]
		if !ok {
			return nil, common.ErrNoTransport
		}
		return d, nil
	})
	e.sessions = session.NewManager(connector, ctrl.OnButtonPress, logging.Nop())

	h := NewHandlers(Options{
		Photos:     e.photos,
		Tasks:      e.tasks,
		Sessions:   e.sessions,
		APIKey:     testAPIKey,
		BackendURL: "http://localhost:8000",
		Port:       3000,
	})
	e.handler = NewRouter(h, auth.NewJWTResolver(testSecret), logging.Nop())
	return e
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, userID string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// capture starts a session for userID, presses the button once and waits
// for the capture and upload to finish.
func (e *env) capture(t *testing.T, userID string, photo *models.PhotoData) {
	t.Helper()
	sid := "session-" + userID
	if _, ok := e.devices[sid]; !ok {
		e.devices[sid] = devicetest.New()
		_, err := e.sessions.Start(context.Background(), sid, userID)
		require.NoError(t, err)
	}
	e.devices[sid].Queue(photo)
	require.NoError(t, e.sessions.HandleButtonPress(sid, models.ButtonPress{ButtonID: "main", PressType: models.PressShort}))
	e.sessions.Wait()
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) models.StatusResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var s models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func backendReturning(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"MentraOS Photo Taker App","status":"running","version":"1.0.0","backend_url":"http://localhost:8000","port":3000}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_NoCapture(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/processing-status", "alice", nil)
	assert.JSONEq(t, `{"hasPhoto":false,"taskId":null,"photoTimestamp":null}`, rec.Body.String())
}

func TestStatus_UploadSucceeds(t *testing.T) {
	e := newEnv(t, backendReturning(http.StatusOK, `{"task_id":"abc123"}`))
	ts := time.UnixMilli(1_700_000_000_000)

	e.capture(t, "alice", devicetest.Photo("r1", ts, []byte("jpeg")))

	s := decodeStatus(t, e.do(t, http.MethodGet, "/api/processing-status", "alice", nil))
	assert.True(t, s.HasPhoto)
	require.NotNil(t, s.TaskID)
	assert.Equal(t, "abc123", *s.TaskID)
	require.NotNil(t, s.PhotoTimestamp)
	assert.Equal(t, ts.UnixMilli(), *s.PhotoTimestamp)
}

func TestStatus_UploadFails(t *testing.T) {
	e := newEnv(t, backendReturning(http.StatusInternalServerError, `oops`))
	ts := time.UnixMilli(1_700_000_000_000)

	e.capture(t, "alice", devicetest.Photo("r1", ts, []byte("jpeg")))

	s := decodeStatus(t, e.do(t, http.MethodGet, "/api/processing-status", "alice", nil))
	assert.True(t, s.HasPhoto)
	assert.Nil(t, s.TaskID)
	require.NotNil(t, s.PhotoTimestamp)
	assert.Equal(t, ts.UnixMilli(), *s.PhotoTimestamp)
	assert.Contains(t, e.devices["session-alice"].Texts(), upload.MsgFailed)
}

func TestPhoto(t *testing.T) {
	e := newEnv(t, backendReturning(http.StatusOK, `{"task_id":"t1"}`))

	rec := e.do(t, http.MethodGet, "/api/photo/r1", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no photo captured")

	e.capture(t, "alice", devicetest.Photo("r1", time.UnixMilli(1), []byte("first")))

	rec = e.do(t, http.MethodGet, "/api/photo/r1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "first", rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/photo/other", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "superseded")
}

func TestPhoto_SecondCaptureSupersedes(t *testing.T) {
	var n atomic.Int32
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"task_id":"task-%d"}`, n.Add(1))
	})

	e.capture(t, "alice", devicetest.Photo("r1", time.UnixMilli(1), []byte("first")))
	e.capture(t, "alice", devicetest.Photo("r2", time.UnixMilli(2), []byte("second")))

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/photo/r1", "alice", nil).Code)
	rec := e.do(t, http.MethodGet, "/api/photo/r2", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second", rec.Body.String())

	s := decodeStatus(t, e.do(t, http.MethodGet, "/api/processing-status", "alice", nil))
	require.NotNil(t, s.TaskID)
	assert.Equal(t, "task-2", *s.TaskID)
	assert.Equal(t, int64(2), *s.PhotoTimestamp)
}

func TestCrossUserIsolation(t *testing.T) {
	e := newEnv(t, backendReturning(http.StatusOK, `{"task_id":"abc123"}`))

	e.capture(t, "alice", devicetest.Photo("r1", time.UnixMilli(1), []byte("alice's")))

	rec := e.do(t, http.MethodGet, "/api/processing-status", "bob", nil)
	assert.JSONEq(t, `{"hasPhoto":false,"taskId":null,"photoTimestamp":null}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/photo/r1", "bob", nil).Code)
}

// panicReader fails the test if an unauthenticated request reaches a store.
type panicReader struct{ t *testing.T }

func (p panicReader) Get(string) (*models.CapturedPhoto, bool) {
	p.t.Fatal("photo store touched")
	return nil, false
}

type panicTasks struct{ t *testing.T }

func (p panicTasks) Get(string) (*models.ProcessingTask, bool) {
	p.t.Fatal("task registry touched")
	return nil, false
}

func TestUnauthenticated(t *testing.T) {
	h := NewHandlers(Options{Photos: panicReader{t}, Tasks: panicTasks{t}})
	router := NewRouter(h, auth.NewJWTResolver(testSecret), logging.Nop())

	badToken, err := auth.GenerateToken("alice", []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("alice", []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	for _, path := range []string{"/api/processing-status", "/api/photo/r1"} {
		for name, authz := range map[string]string{"none": "", "bad signature": "Bearer " + badToken, "expired": "Bearer " + expired} {
			t.Run(path+"/"+name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				if authz != "" {
					req.Header.Set("Authorization", authz)
				}
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)

				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Contains(t, rec.Body.String(), "Not authenticated")
			})
		}
	}
}

func TestWebview(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/webview", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Please open this page from the MentraOS app")

	req := httptest.NewRequest(http.MethodGet, "/webview?token="+token(t, "alice"), nil)
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/processing-status")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, common.TokenCookieName, cookies[0].Name)

	// The cookie alone authenticates the follow-up poll.
	req = httptest.NewRequest(http.MethodGet, "/api/processing-status", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func postWebhook(e *env, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if key != "" {
		req.Header.Set(common.APIKeyHeaderName, key)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	e := newEnv(t, nil)
	e.devices["s1"] = devicetest.New()

	assert.Equal(t, http.StatusUnauthorized, postWebhook(e, "", `{}`).Code)
	assert.Equal(t, http.StatusUnauthorized, postWebhook(e, "wrong", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postWebhook(e, testAPIKey, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postWebhook(e, testAPIKey, `{"type":"session_request","sessionId":"s1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postWebhook(e, testAPIKey, `{"type":"other","sessionId":"s1"}`).Code)

	rec := postWebhook(e, testAPIKey, `{"type":"session_request","sessionId":"s1","userId":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	assert.Equal(t, 1, e.sessions.Len())

	rec = postWebhook(e, testAPIKey, `{"type":"stop_request","sessionId":"s1","userId":"alice","reason":"user closed app"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, e.sessions.Len())
	assert.True(t, e.devices["s1"].Closed())

	assert.Equal(t, http.StatusNotFound, postWebhook(e, testAPIKey, `{"type":"stop_request","sessionId":"s1"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, postWebhook(e, testAPIKey, `{"type":"session_request","sessionId":"s9","userId":"bob"}`).Code)
}
