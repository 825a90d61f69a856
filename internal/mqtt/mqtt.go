package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectMaxElapsed = 10 * time.Second
	connectMaxRetries = 5
)

// NewMQTTClient connects to broker with exponential backoff. The client is
// disconnected when ctx is done.
func NewMQTTClient(ctx context.Context, broker, clientID string, logger *zap.Logger) (mqtt.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mqtt")

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("connection lost", zap.Error(err))
		})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectMaxElapsed

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Warn("connect failed", zap.String("broker", broker), zap.Error(token.Error()))
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, connectMaxRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}

	logger.Info("connected", zap.String("broker", broker), zap.String("client_id", clientID))

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
		logger.Info("disconnected")
	}()
	return client, nil
}
