package main

import (
	"context"

	"smarthome-sim/internal/config"
	"smarthome-sim/internal/influx"
	"smarthome-sim/internal/mirror"
	"smarthome-sim/internal/mqtt"
	"smarthome-sim/internal/redis"

	"go.uber.org/zap"
)

// connectSinks builds the mirrors that are configured. A mirror whose
// backend cannot be reached is skipped; the panel runs without it.
func connectSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) []mirror.Sink {
	var sinks []mirror.Sink

	if cfg.Redis.Addr != "" {
		client, err := redis.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Warn("redis mirror disabled", zap.Error(err))
		} else {
			sinks = append(sinks, mirror.NewRedisSink(client, cfg.Redis.StreamMaxLen))
			go func() {
				<-ctx.Done()
				client.Close()
			}()
		}
	}

	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewMQTTClient(ctx, cfg.MQTT.Broker, cfg.MQTT.ClientID, logger)
		if err != nil {
			logger.Warn("mqtt mirror disabled", zap.Error(err))
		} else {
			sinks = append(sinks, mirror.NewMQTTSink(client, 1))
		}
	}

	if cfg.Influx.URL != "" {
		client, err := influx.NewInfluxClient(ctx, cfg.Influx.URL, cfg.Influx.Token)
		if err != nil {
			logger.Warn("influx mirror disabled", zap.Error(err))
		} else {
			sinks = append(sinks, mirror.NewInfluxSink(client, cfg.Influx.Org, cfg.Influx.Bucket))
			go func() {
				<-ctx.Done()
				client.Close()
			}()
		}
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("mirrors configured", zap.Strings("sinks", names))
	return sinks
}
