package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"smarthome-sim/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultStreamMaxLen bounds every mirrored stream
const DefaultStreamMaxLen = 100

// Redis key layout
const (
	SensorStreamPrefix = "stream:sensor:"
	DeviceStreamPrefix = "stream:device:"
	DeviceKeyPrefix    = "device:"
	HistoryStream      = "stream:history"
)

// RedisSink appends readings to per-entity streams and keeps the latest
// device state under device:<id>
type RedisSink struct {
	client *redis.Client
	maxLen int64
}

// NewRedisSink creates a Redis mirror. maxLen <= 0 selects DefaultStreamMaxLen.
func NewRedisSink(client *redis.Client, maxLen int64) *RedisSink {
	if maxLen <= 0 {
		maxLen = DefaultStreamMaxLen
	}
	return &RedisSink{client: client, maxLen: maxLen}
}

func (r *RedisSink) Name() string { return "redis" }

func (r *RedisSink) PublishSensors(ctx context.Context, sensors []models.Sensor) error {
	pipe := r.client.Pipeline()
	for _, s := range sensors {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: SensorStreamPrefix + s.ID,
			MaxLen: r.maxLen,
			Values: map[string]interface{}{
				"type":  string(s.Type),
				"value": strconv.FormatFloat(s.Value, 'f', -1, 64),
				"unit":  s.Unit,
				"trend": string(s.Trend),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish sensors: %w", err)
	}
	return nil
}

func (r *RedisSink) PublishDevices(ctx context.Context, devices []models.Device) error {
	pipe := r.client.Pipeline()
	for _, d := range devices {
		state, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal device %s: %w", d.ID, err)
		}
		pipe.Set(ctx, DeviceKeyPrefix+d.ID, state, 0)
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: DeviceStreamPrefix + d.ID,
			MaxLen: r.maxLen,
			Values: map[string]interface{}{
				"isOn":  strconv.FormatBool(d.IsOn),
				"value": strconv.FormatFloat(d.Value, 'f', -1, 64),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish devices: %w", err)
	}
	return nil
}

func (r *RedisSink) PublishHistory(ctx context.Context, point models.HistoryPoint) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: HistoryStream,
		MaxLen: r.maxLen,
		Values: map[string]interface{}{
			"time":        point.Time,
			"temperature": strconv.FormatFloat(point.Temperature, 'f', -1, 64),
			"humidity":    strconv.FormatFloat(point.Humidity, 'f', -1, 64),
			"light":       strconv.FormatFloat(point.Light, 'f', -1, 64),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis publish history: %w", err)
	}
	return nil
}
