package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"smarthome-sim/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Topic layout
const (
	SensorTopicFormat = "sensors/%s/state"
	DeviceTopicFormat = "devices/%s/state"
	HistoryTopic      = "environment/history"
)

// MQTTSink publishes retained JSON state messages
type MQTTSink struct {
	client mqtt.Client
	qos    byte
}

// NewMQTTSink creates an MQTT mirror publishing at the given QoS
func NewMQTTSink(client mqtt.Client, qos byte) *MQTTSink {
	return &MQTTSink{client: client, qos: qos}
}

func (m *MQTTSink) Name() string { return "mqtt" }

func (m *MQTTSink) PublishSensors(ctx context.Context, sensors []models.Sensor) error {
	for _, s := range sensors {
		if err := m.publish(ctx, fmt.Sprintf(SensorTopicFormat, s.ID), true, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MQTTSink) PublishDevices(ctx context.Context, devices []models.Device) error {
	for _, d := range devices {
		if err := m.publish(ctx, fmt.Sprintf(DeviceTopicFormat, d.ID), true, d); err != nil {
			return err
		}
	}
	return nil
}

func (m *MQTTSink) PublishHistory(ctx context.Context, point models.HistoryPoint) error {
	return m.publish(ctx, HistoryTopic, false, point)
}

func (m *MQTTSink) publish(ctx context.Context, topic string, retained bool, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	token := m.client.Publish(topic, m.qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}
