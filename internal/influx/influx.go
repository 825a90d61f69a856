package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

const pingTimeout = 5 * time.Second

// ErrUnhealthy is returned when the server answers the ping but reports itself unhealthy
var ErrUnhealthy = errors.New("influxdb server not healthy")

// NewInfluxClient creates an InfluxDB v2 client and verifies connectivity
func NewInfluxClient(ctx context.Context, url, token string) (influxdb2.Client, error) {
	client := influxdb2.NewClient(url, token)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb ping %s: %w", url, err)
	}
	if !healthy {
		client.Close()
		return nil, ErrUnhealthy
	}
	return client, nil
}
