package models

// SeedDevices returns the fixed initial device set
func SeedDevices() []Device {
	return []Device{
		{ID: "d1", Name: "Living Room Lights", Type: DeviceLight, IsOn: true, Value: 80, Room: "Living Room", IsOnline: true},
		{ID: "d2", Name: "Kitchen Fan", Type: DeviceFan, IsOn: false, Value: 2, Room: "Kitchen", IsOnline: true},
		{ID: "d3", Name: "Master Bedroom AC", Type: DeviceClimate, IsOn: true, Value: 22, Room: "Bedroom", IsOnline: true},
		{ID: "d4", Name: "Front Door Lock", Type: DeviceLock, IsOn: true, Value: 0, Room: "Entrance", IsOnline: true},
		{ID: "d5", Name: "Office Lights", Type: DeviceLight, IsOn: false, Value: 50, Room: "Office", IsOnline: false},
	}
}

// SeedSensors returns the fixed initial sensor set
func SeedSensors() []Sensor {
	return []Sensor{
		{ID: "s1", Name: "Main Thermostat", Type: SensorTemperature, Value: 24, Unit: "°C", Trend: TrendStable},
		{ID: "s2", Name: "Living Room Humidity", Type: SensorHumidity, Value: 45, Unit: "%", Trend: TrendStable},
		{ID: "s3", Name: "Outdoor LDR", Type: SensorLight, Value: 850, Unit: "lux", Trend: TrendStable},
	}
}

// SeedRules returns the example rule installed at startup
func SeedRules() []AutomationRule {
	return []AutomationRule{
		{
			ID:             "a1",
			Name:           "Night Mode",
			SensorID:       "s3",
			Condition:      ConditionLessThan,
			Threshold:      100,
			ActionDeviceID: "d1",
			ActionType:     ActionTurnOn,
			Active:         true,
		},
	}
}

// DefaultHistoryPoint seeds the history walk when the buffer is empty
func DefaultHistoryPoint() HistoryPoint {
	return HistoryPoint{Temperature: 24, Humidity: 45, Light: 850}
}
