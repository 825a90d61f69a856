package automation

import (
	"smarthome-sim/internal/store"

	"go.uber.org/zap"
)

// ExecuteActions applies commands to the store and returns the number of
// devices that actually changed. A command for a device that already
// matches is skipped by the store itself.
func ExecuteActions(st *store.Store, cmds []Command, logger *zap.Logger, onFire func(Command)) int {
	applied := 0
	for _, cmd := range cmds {
		if !st.SetDevicePower(cmd.DeviceID, cmd.TurnOn, cmd.RuleName) {
			logger.Debug("action skipped, device already in state",
				zap.String("rule_id", cmd.RuleID), zap.String("device_id", cmd.DeviceID))
			continue
		}
		applied++
		logger.Info("rule fired",
			zap.String("rule_id", cmd.RuleID),
			zap.String("rule", cmd.RuleName),
			zap.String("sensor_id", cmd.SensorID),
			zap.Float64("sensor_value", cmd.SensorValue),
			zap.String("device_id", cmd.DeviceID),
			zap.Bool("turn_on", cmd.TurnOn))
		if onFire != nil {
			onFire(cmd)
		}
	}
	return applied
}
