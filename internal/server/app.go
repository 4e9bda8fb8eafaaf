// Package server wires configuration, stores, the capture pipeline and the
// HTTP surface together and runs them until the process is signalled.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/artifacts"
	"github.com/dmitrijs2005/gophcam/internal/server/auth"
	"github.com/dmitrijs2005/gophcam/internal/server/capture"
	"github.com/dmitrijs2005/gophcam/internal/server/config"
	"github.com/dmitrijs2005/gophcam/internal/server/httpapi"
	"github.com/dmitrijs2005/gophcam/internal/server/photos"
	"github.com/dmitrijs2005/gophcam/internal/server/session"
	"github.com/dmitrijs2005/gophcam/internal/server/tasks"
	"github.com/dmitrijs2005/gophcam/internal/server/upload"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	photos   *photos.Store
	tasks    *tasks.Registry
	sessions *session.Manager
	server   *httpapi.Server
}

// NewApp builds the application. A nil connector leaves the service
// without a device transport; sessions then fail to start.
func NewApp(ctx context.Context, c *config.Config, connector session.Connector) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	store, err := artifacts.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("artifact store init error: %w", err)
	}

	ps := photos.NewStore()
	ts := tasks.NewRegistry()

	pipeline := upload.NewPipeline(&http.Client{}, c.UploadURL(), c.UploadTimeout, ts, logger)
	ctrl := capture.NewController(ps, store, pipeline, logger)
	sessions := session.NewManager(connector, ctrl.OnButtonPress, logger)

	h := httpapi.NewHandlers(httpapi.Options{
		Photos:     ps,
		Tasks:      ts,
		Sessions:   sessions,
		APIKey:     c.APIKey,
		BackendURL: c.BackendURL,
		Port:       c.Port,
		Logger:     logger,
	})
	router := httpapi.NewRouter(h, auth.NewJWTResolver(c.AuthSecret), logger)
	addr := net.JoinHostPort("", strconv.Itoa(c.Port))

	return &App{
		config:   c,
		logger:   logger.With("module", "app"),
		photos:   ps,
		tasks:    ts,
		sessions: sessions,
		server:   httpapi.NewServer(addr, router, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops every session and waits for in-flight presses.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"package", app.config.PackageName,
		"port", app.config.Port,
		"backend_url", app.config.BackendURL,
		"artifacts", app.config.ArtifactBackend,
	)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)

	shutdownCtx := context.WithoutCancel(ctx)
	app.sessions.StopAll(shutdownCtx, "shutdown")
	app.sessions.Wait()

	app.logger.Info(shutdownCtx, "App stopped")
	return err
}
