package models

// DeviceType identifies the kind of controllable device
type DeviceType string

const (
	DeviceLight   DeviceType = "light"
	DeviceFan     DeviceType = "fan"
	DeviceClimate DeviceType = "ac"
	DeviceLock    DeviceType = "lock"
)

// ControlKind describes how the panel adjusts a device's value
type ControlKind string

const (
	ControlSlider ControlKind = "slider" // 0-100 range
	ControlStep   ControlKind = "step"   // +/- 1 increments, unclamped
	ControlNone   ControlKind = "none"
)

// ControlKind returns the value control the panel offers for this type
func (t DeviceType) ControlKind() ControlKind {
	switch t {
	case DeviceLight, DeviceFan:
		return ControlSlider
	case DeviceClimate:
		return ControlStep
	}
	return ControlNone
}

// Device represents a simulated controllable device
type Device struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     DeviceType `json:"type"`
	IsOn     bool       `json:"isOn"`
	Value    float64    `json:"value"` // brightness, fan speed or target temperature
	Room     string     `json:"room"`
	IsOnline bool       `json:"isOnline"`
}

// StatusLabel renders the on/off state the way the panel shows it
func (d Device) StatusLabel() string {
	if d.Type == DeviceLock {
		if d.IsOn {
			return "LOCKED"
		}
		return "UNLOCKED"
	}
	if d.IsOn {
		return "ON"
	}
	return "OFF"
}

// SensorType identifies the measured quantity
type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorHumidity    SensorType = "humidity"
	SensorLight       SensorType = "light"
)

// Trend is derived from the sign of the last change
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TrendOf maps a change to its trend
func TrendOf(change float64) Trend {
	switch {
	case change > 0:
		return TrendUp
	case change < 0:
		return TrendDown
	}
	return TrendStable
}

// Sensor represents a simulated read-only measurement source
type Sensor struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Type  SensorType `json:"type"`
	Value float64    `json:"value"`
	Unit  string     `json:"unit"`
	Trend Trend      `json:"trend"`
}

// HistoryPoint is one time-stamped sample of every tracked series
type HistoryPoint struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Light       float64 `json:"light"`
}

// Theme is the panel display theme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggled returns the opposite theme
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ActivityKind classifies activity log entries
type ActivityKind string

const (
	ActivityDeviceToggled ActivityKind = "device_toggled"
	ActivityDeviceValue   ActivityKind = "device_value"
	ActivityAutomation    ActivityKind = "automation"
	ActivityRuleAdded     ActivityKind = "rule_added"
	ActivityRuleDeleted   ActivityKind = "rule_deleted"
	ActivityRuleToggled   ActivityKind = "rule_toggled"
)

// Activity is one entry of the recent activity log
type Activity struct {
	Time    string       `json:"time"`
	Kind    ActivityKind `json:"kind"`
	Subject string       `json:"subject"` // device or rule name
	Detail  string       `json:"detail"`
}
