package mirror

import (
	"context"
	"fmt"
	"time"

	"smarthome-sim/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Influx measurements
const (
	EnvironmentMeasurement = "environment"
	SensorMeasurement      = "sensor"
	DeviceMeasurement      = "device"
)

// InfluxSink writes history points and readings as InfluxDB points
type InfluxSink struct {
	writeAPI api.WriteAPIBlocking
	now      func() time.Time
}

// NewInfluxSink creates an InfluxDB mirror writing to org/bucket
func NewInfluxSink(client influxdb2.Client, org, bucket string) *InfluxSink {
	return &InfluxSink{
		writeAPI: client.WriteAPIBlocking(org, bucket),
		now:      time.Now,
	}
}

func (i *InfluxSink) Name() string { return "influx" }

func (i *InfluxSink) PublishSensors(ctx context.Context, sensors []models.Sensor) error {
	ts := i.now()
	points := make([]*write.Point, 0, len(sensors))
	for _, s := range sensors {
		points = append(points, influxdb2.NewPoint(SensorMeasurement,
			map[string]string{"sensor_id": s.ID, "type": string(s.Type)},
			map[string]interface{}{"value": s.Value, "trend": string(s.Trend)},
			ts))
	}
	return i.write(ctx, points...)
}

func (i *InfluxSink) PublishDevices(ctx context.Context, devices []models.Device) error {
	ts := i.now()
	points := make([]*write.Point, 0, len(devices))
	for _, d := range devices {
		points = append(points, influxdb2.NewPoint(DeviceMeasurement,
			map[string]string{"device_id": d.ID, "type": string(d.Type), "room": d.Room},
			map[string]interface{}{"is_on": d.IsOn, "value": d.Value},
			ts))
	}
	return i.write(ctx, points...)
}

func (i *InfluxSink) PublishHistory(ctx context.Context, point models.HistoryPoint) error {
	p := influxdb2.NewPoint(EnvironmentMeasurement,
		nil,
		map[string]interface{}{
			"temperature": point.Temperature,
			"humidity":    point.Humidity,
			"light":       point.Light,
		},
		i.now())
	return i.write(ctx, p)
}

func (i *InfluxSink) write(ctx context.Context, points ...*write.Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := i.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}
