package middleware

import (
	"time"

	"smarthome-sim/internal/engine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MiddlewareManager struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewMiddlewareManager(eng *engine.Engine, logger *zap.Logger) *MiddlewareManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MiddlewareManager{
		engine: eng,
		logger: logger.Named("http"),
	}
}

// InjectEngine binds the engine to every request context
func (m *MiddlewareManager) InjectEngine() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(engine.WithContext(c.Request.Context(), m.engine))
		c.Next()
	}
}

// RequestLogger logs one line per request
func (m *MiddlewareManager) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			m.logger.Error("request", fields...)
			return
		}
		m.logger.Debug("request", fields...)
	}
}

// Engine returns the engine bound to the request. A handler reached without
// InjectEngine panics, which the recovery middleware turns into a 500.
func Engine(c *gin.Context) *engine.Engine {
	return engine.MustFromContext(c.Request.Context())
}
