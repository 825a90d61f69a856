package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"smarthome-sim/internal/engine"
	"smarthome-sim/internal/web/api"
	"smarthome-sim/internal/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebServer struct {
	router *gin.Engine
	logger *zap.Logger

	mu     sync.Mutex
	server *http.Server
	cancel context.CancelFunc
}

// NewWebServer builds the panel API around eng. metricsHandler is mounted on
// /metrics when non-nil.
func NewWebServer(eng *engine.Engine, metricsHandler http.Handler, logger *zap.Logger) *WebServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("web")

	router := gin.New()
	middlewareManager := middleware.NewMiddlewareManager(eng, logger)
	router.Use(gin.Recovery(), middlewareManager.RequestLogger(), middlewareManager.InjectEngine())

	router.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		if !middleware.Engine(c).Running() {
			status = "stopped"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	apiGroup := router.Group("/api")
	api.RegisterDeviceRoutes(apiGroup)
	api.RegisterSensorRoutes(apiGroup)
	api.RegisterAutomationRoutes(apiGroup, logger)
	api.RegisterThemeRoutes(apiGroup)
	api.RegisterEventRoutes(router, logger)

	return &WebServer{router: router, logger: logger}
}

// Handler exposes the router, mainly for tests
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start serves on addr until Shutdown. It returns nil after a clean shutdown.
func (ws *WebServer) Start(addr string) error {
	// request contexts end on Shutdown so websocket feeds close too
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           ws.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	ws.mu.Lock()
	ws.server, ws.cancel = srv, cancel
	ws.mu.Unlock()

	ws.logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.mu.Lock()
	srv, cancel := ws.server, ws.cancel
	ws.mu.Unlock()

	if srv == nil {
		return nil
	}
	cancel()
	return srv.Shutdown(ctx)
}
