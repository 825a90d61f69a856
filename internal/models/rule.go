package models

import (
	"errors"
	"fmt"
)

// ErrInvalidRule is returned when a rule is missing required fields
var ErrInvalidRule = errors.New("invalid automation rule")

// Condition compares a sensor value against a threshold
type Condition string

const (
	ConditionGreaterThan Condition = "gt"
	ConditionLessThan    Condition = "lt"
)

// Symbol returns the comparison operator as shown to users
func (c Condition) Symbol() string {
	if c == ConditionGreaterThan {
		return ">"
	}
	return "<"
}

// ActionType is the desired device state when a rule fires
type ActionType string

const (
	ActionTurnOn  ActionType = "turnOn"
	ActionTurnOff ActionType = "turnOff"
)

// WantsOn reports the on/off state the action drives a device to
func (a ActionType) WantsOn() bool {
	return a == ActionTurnOn
}

// AutomationRule binds a sensor condition to a device action
type AutomationRule struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SensorID       string     `json:"sensorId"`
	Condition      Condition  `json:"condition"`
	Threshold      float64    `json:"threshold"`
	ActionDeviceID string     `json:"actionDeviceId"`
	ActionType     ActionType `json:"actionType"`
	Active         bool       `json:"active"`
}

// Matches evaluates the rule condition against a sensor reading
func (r AutomationRule) Matches(value float64) bool {
	switch r.Condition {
	case ConditionGreaterThan:
		return value > r.Threshold
	case ConditionLessThan:
		return value < r.Threshold
	}
	return false
}

// Validate checks that every required field is present
func (r AutomationRule) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRule)
	case r.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidRule)
	case r.SensorID == "":
		return fmt.Errorf("%w: missing sensor", ErrInvalidRule)
	case r.ActionDeviceID == "":
		return fmt.Errorf("%w: missing device", ErrInvalidRule)
	}
	if r.Condition != ConditionGreaterThan && r.Condition != ConditionLessThan {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidRule, r.Condition)
	}
	if r.ActionType != ActionTurnOn && r.ActionType != ActionTurnOff {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidRule, r.ActionType)
	}
	return nil
}

// NewRuleDraft returns a rule pre-filled with the builder defaults
func NewRuleDraft() AutomationRule {
	return AutomationRule{
		Condition:  ConditionLessThan,
		Threshold:  20,
		ActionType: ActionTurnOn,
		Active:     true,
	}
}

// Describe renders "If <sensor> < T -> Turn On <device>", tolerating dangling references
func Describe(r AutomationRule, sensors []Sensor, devices []Device) string {
	sensorName := "Unknown Sensor"
	for _, s := range sensors {
		if s.ID == r.SensorID {
			sensorName = s.Name
			break
		}
	}
	deviceName := "Unknown Device"
	for _, d := range devices {
		if d.ID == r.ActionDeviceID {
			deviceName = d.Name
			break
		}
	}
	action := "Turn Off"
	if r.ActionType.WantsOn() {
		action = "Turn On"
	}
	return fmt.Sprintf("If %s %s %g -> %s %s", sensorName, r.Condition.Symbol(), r.Threshold, action, deviceName)
}
