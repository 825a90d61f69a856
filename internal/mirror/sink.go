package mirror

import (
	"context"
	"errors"

	"smarthome-sim/internal/models"
)

// ErrSinkUnavailable is returned when a sink's circuit breaker is open
var ErrSinkUnavailable = errors.New("mirror sink unavailable")

// Sink receives engine state for an outbound mirror. Implementations must be
// safe to call from a single dispatcher goroutine; they are never called
// concurrently.
type Sink interface {
	Name() string
	PublishSensors(ctx context.Context, sensors []models.Sensor) error
	PublishDevices(ctx context.Context, devices []models.Device) error
	PublishHistory(ctx context.Context, point models.HistoryPoint) error
}
