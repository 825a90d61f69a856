package automation

import (
	"smarthome-sim/internal/models"
)

// Command is a device state change requested by a fired rule
type Command struct {
	RuleID      string
	RuleName    string
	SensorID    string
	SensorValue float64
	DeviceID    string
	TurnOn      bool
}

// Evaluate runs one pass of every active rule against the current sensor
// readings. A command is emitted only when the rule condition holds, the
// target device exists and it is not already in the desired state.
// Dangling sensor or device references never fire.
//
// Device state is read once per pass: two active rules on the same device
// with opposing actions can both fire in one pass, and the later one wins.
func Evaluate(sensors []models.Sensor, rules []models.AutomationRule, devices []models.Device) []Command {
	var cmds []Command
	for _, sensor := range sensors {
		for _, rule := range rules {
			if !rule.Active || rule.SensorID != sensor.ID {
				continue
			}
			if !rule.Matches(sensor.Value) {
				continue
			}
			device, ok := findDevice(devices, rule.ActionDeviceID)
			if !ok {
				continue
			}
			want := rule.ActionType.WantsOn()
			if device.IsOn == want {
				continue
			}
			cmds = append(cmds, Command{
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				SensorID:    sensor.ID,
				SensorValue: sensor.Value,
				DeviceID:    device.ID,
				TurnOn:      want,
			})
		}
	}
	return cmds
}

func findDevice(devices []models.Device, id string) (models.Device, bool) {
	for _, d := range devices {
		if d.ID == id {
			return d, true
		}
	}
	return models.Device{}, false
}
