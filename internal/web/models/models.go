package models

import (
	"smarthome-sim/internal/models"
)

type SetValueRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

// AddRuleRequest carries a new rule. Omitted fields take the rule builder
// defaults; required fields are checked by rule validation.
type AddRuleRequest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	SensorID       string   `json:"sensorId"`
	Condition      string   `json:"condition" binding:"omitempty,oneof=gt lt"`
	Threshold      *float64 `json:"threshold"`
	ActionDeviceID string   `json:"actionDeviceId"`
	ActionType     string   `json:"actionType" binding:"omitempty,oneof=turnOn turnOff"`
	Active         *bool    `json:"active"`
}

// ToRule applies the request on top of a fresh rule draft
func (r AddRuleRequest) ToRule() models.AutomationRule {
	rule := models.NewRuleDraft()
	rule.ID = r.ID
	rule.Name = r.Name
	rule.SensorID = r.SensorID
	rule.ActionDeviceID = r.ActionDeviceID
	if r.Condition != "" {
		rule.Condition = models.Condition(r.Condition)
	}
	if r.Threshold != nil {
		rule.Threshold = *r.Threshold
	}
	if r.ActionType != "" {
		rule.ActionType = models.ActionType(r.ActionType)
	}
	if r.Active != nil {
		rule.Active = *r.Active
	}
	return rule
}

// RuleView is a rule as listed to the panel
type RuleView struct {
	models.AutomationRule
	Description string `json:"description"`
}

// DeviceView adds the presentation hints of a device
type DeviceView struct {
	models.Device
	Control models.ControlKind `json:"control"`
	Status  string             `json:"status"`
}

func NewDeviceView(d models.Device) DeviceView {
	return DeviceView{Device: d, Control: d.Type.ControlKind(), Status: d.StatusLabel()}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
