package store

import (
	"fmt"
	"sync"
	"time"

	"smarthome-sim/internal/models"
	"smarthome-sim/internal/utils"

	"go.uber.org/zap"
)

// Change is a bitmask of collections touched by a mutation
type Change uint8

const (
	ChangeDevices Change = 1 << iota
	ChangeSensors
	ChangeHistory
	ChangeRules
	ChangeTheme
	ChangeActivity
)

// Has reports whether any of the given kinds are set
func (c Change) Has(kinds Change) bool {
	return c&kinds != 0
}

func (c Change) String() string {
	names := []struct {
		kind Change
		name string
	}{
		{ChangeDevices, "devices"},
		{ChangeSensors, "sensors"},
		{ChangeHistory, "history"},
		{ChangeRules, "rules"},
		{ChangeTheme, "theme"},
		{ChangeActivity, "activity"},
	}
	out := ""
	for _, n := range names {
		if c.Has(n.kind) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Versions holds one counter per collection; a counter moves exactly when
// that collection is replaced
type Versions struct {
	Devices  uint64 `json:"devices"`
	Sensors  uint64 `json:"sensors"`
	History  uint64 `json:"history"`
	Rules    uint64 `json:"rules"`
	Theme    uint64 `json:"theme"`
	Activity uint64 `json:"activity"`
}

// Snapshot is an immutable view of the store. Its slices are shared with the
// store and with other snapshots and must not be modified.
type Snapshot struct {
	Version  uint64                  `json:"version"`
	Versions Versions                `json:"versions"`
	Devices  []models.Device         `json:"devices"`
	Sensors  []models.Sensor         `json:"sensors"`
	History  []models.HistoryPoint   `json:"history"`
	Rules    []models.AutomationRule `json:"automations"`
	Theme    models.Theme            `json:"theme"`
	Activity []models.Activity       `json:"activity"`
}

// Options configures a Store
type Options struct {
	Devices          []models.Device
	Sensors          []models.Sensor
	Rules            []models.AutomationRule
	Theme            models.Theme
	HistoryCapacity  int
	ActivityCapacity int
	Clock            func() time.Time
}

// SeedOptions returns options holding the fixed startup data
func SeedOptions() Options {
	return Options{
		Devices: models.SeedDevices(),
		Sensors: models.SeedSensors(),
		Rules:   models.SeedRules(),
		Theme:   models.ThemeDark,
	}
}

// Store is the single authoritative holder of engine state. Every mutation
// replaces the affected collection with a fresh slice so observers can detect
// change by identity or by version.
type Store struct {
	mu          sync.RWMutex
	snap        Snapshot
	historyCap  int
	activityCap int
	now         func() time.Time
	subs        map[*Subscription]struct{}
	logger      *zap.Logger
}

// New creates a store from the given options
func New(opts Options, logger *zap.Logger) *Store {
	if opts.HistoryCapacity <= 0 {
		opts.HistoryCapacity = utils.HistoryCapacity
	}
	if opts.ActivityCapacity <= 0 {
		opts.ActivityCapacity = utils.ActivityCapacity
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Theme == "" {
		opts.Theme = models.ThemeDark
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		snap: Snapshot{
			Devices:  append([]models.Device(nil), opts.Devices...),
			Sensors:  append([]models.Sensor(nil), opts.Sensors...),
			History:  []models.HistoryPoint{},
			Rules:    append([]models.AutomationRule(nil), opts.Rules...),
			Theme:    opts.Theme,
			Activity: []models.Activity{},
		},
		historyCap:  opts.HistoryCapacity,
		activityCap: opts.ActivityCapacity,
		now:         opts.Clock,
		subs:        make(map[*Subscription]struct{}),
		logger:      logger.Named("store"),
	}
}

// NewSeeded creates a store holding the fixed startup data
func NewSeeded(logger *zap.Logger) *Store {
	return New(SeedOptions(), logger)
}

// HistoryCapacity returns the history ring size
func (s *Store) HistoryCapacity() int {
	return s.historyCap
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Devices returns the current device collection
func (s *Store) Devices() []models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Devices
}

// Sensors returns the current sensor collection
func (s *Store) Sensors() []models.Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Sensors
}

// History returns history points ordered oldest to newest
func (s *Store) History() []models.HistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.History
}

// Rules returns the current automation rules
func (s *Store) Rules() []models.AutomationRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Rules
}

// Theme returns the display theme
func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Theme
}

// Activity returns the recent activity log, oldest first
func (s *Store) Activity() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Activity
}

// Device looks up a device by id
func (s *Store) Device(id string) (models.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfDevice(s.snap.Devices, id)
	if i < 0 {
		return models.Device{}, false
	}
	return s.snap.Devices[i], true
}

// ToggleDevice flips the on/off state of a device. Unknown ids are ignored.
func (s *Store) ToggleDevice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfDevice(s.snap.Devices, id)
	if i < 0 {
		s.logger.Debug("toggle ignored, device not found", zap.String("device_id", id))
		return false
	}
	devices := cloneSlice(s.snap.Devices)
	devices[i].IsOn = !devices[i].IsOn
	s.snap.Devices = devices
	s.recordLocked(models.ActivityDeviceToggled, devices[i].Name, "Turned "+devices[i].StatusLabel())
	s.commitLocked(ChangeDevices | ChangeActivity)
	return true
}

// SetDeviceValue replaces a device's numeric value without range checks.
// Unknown ids are ignored.
func (s *Store) SetDeviceValue(id string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfDevice(s.snap.Devices, id)
	if i < 0 {
		s.logger.Debug("set value ignored, device not found", zap.String("device_id", id))
		return false
	}
	devices := cloneSlice(s.snap.Devices)
	devices[i].Value = value
	s.snap.Devices = devices
	s.recordLocked(models.ActivityDeviceValue, devices[i].Name, fmt.Sprintf("Set to %g", value))
	s.commitLocked(ChangeDevices | ChangeActivity)
	return true
}

// SetDevicePower drives a device to the desired on/off state. It returns
// false without mutating anything when the device is unknown or already in
// that state.
func (s *Store) SetDevicePower(id string, on bool, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfDevice(s.snap.Devices, id)
	if i < 0 || s.snap.Devices[i].IsOn == on {
		return false
	}
	devices := cloneSlice(s.snap.Devices)
	devices[i].IsOn = on
	s.snap.Devices = devices
	detail := "Turned " + devices[i].StatusLabel()
	if reason != "" {
		detail += " by " + reason
	}
	s.recordLocked(models.ActivityAutomation, devices[i].Name, detail)
	s.commitLocked(ChangeDevices | ChangeActivity)
	return true
}

// AddRule appends a fully formed rule. Invalid rules are rejected with
// models.ErrInvalidRule and leave the store unchanged.
func (s *Store) AddRule(rule models.AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOfRule(s.snap.Rules, rule.ID) >= 0 {
		return fmt.Errorf("%w: duplicate id %s", models.ErrInvalidRule, rule.ID)
	}
	rules := make([]models.AutomationRule, 0, len(s.snap.Rules)+1)
	rules = append(rules, s.snap.Rules...)
	rules = append(rules, rule)
	s.snap.Rules = rules
	s.recordLocked(models.ActivityRuleAdded, rule.Name, models.Describe(rule, s.snap.Sensors, s.snap.Devices))
	s.commitLocked(ChangeRules | ChangeActivity)
	return nil
}

// DeleteRule removes a rule by id. Unknown ids are ignored.
func (s *Store) DeleteRule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfRule(s.snap.Rules, id)
	if i < 0 {
		s.logger.Debug("delete ignored, rule not found", zap.String("rule_id", id))
		return false
	}
	removed := s.snap.Rules[i]
	rules := make([]models.AutomationRule, 0, len(s.snap.Rules)-1)
	rules = append(rules, s.snap.Rules[:i]...)
	rules = append(rules, s.snap.Rules[i+1:]...)
	s.snap.Rules = rules
	s.recordLocked(models.ActivityRuleDeleted, removed.Name, "Deleted")
	s.commitLocked(ChangeRules | ChangeActivity)
	return true
}

// ToggleRuleActive flips a rule's active flag. Unknown ids are ignored.
func (s *Store) ToggleRuleActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfRule(s.snap.Rules, id)
	if i < 0 {
		s.logger.Debug("toggle ignored, rule not found", zap.String("rule_id", id))
		return false
	}
	rules := cloneSlice(s.snap.Rules)
	rules[i].Active = !rules[i].Active
	s.snap.Rules = rules
	detail := "Disabled"
	if rules[i].Active {
		detail = "Enabled"
	}
	s.recordLocked(models.ActivityRuleToggled, rules[i].Name, detail)
	s.commitLocked(ChangeRules | ChangeActivity)
	return true
}

// ToggleTheme switches between dark and light and returns the new theme
func (s *Store) ToggleTheme() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Theme = s.snap.Theme.Toggled()
	s.commitLocked(ChangeTheme)
	return s.snap.Theme
}

// ApplyTick replaces the sensor collection and appends a history point in
// one step, evicting the oldest points beyond capacity
func (s *Store) ApplyTick(sensors []models.Sensor, point models.HistoryPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Sensors = append([]models.Sensor(nil), sensors...)
	s.snap.History = appendBounded(s.snap.History, point, s.historyCap)
	s.commitLocked(ChangeSensors | ChangeHistory)
}

// SetSensorValue overrides a single sensor reading. It exists for manual
// overrides and tests; the ticker uses ApplyTick.
func (s *Store) SetSensorValue(id string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snap.Sensors {
		if s.snap.Sensors[i].ID != id {
			continue
		}
		sensors := cloneSlice(s.snap.Sensors)
		sensors[i].Trend = models.TrendOf(value - sensors[i].Value)
		sensors[i].Value = value
		s.snap.Sensors = sensors
		s.commitLocked(ChangeSensors)
		return true
	}
	return false
}

func (s *Store) recordLocked(kind models.ActivityKind, subject, detail string) {
	entry := models.Activity{
		Time:    utils.ClockString(s.now()),
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
	}
	s.snap.Activity = appendBounded(s.snap.Activity, entry, s.activityCap)
}

func (s *Store) commitLocked(change Change) {
	s.snap.Version++
	v := s.snap.Version
	if change.Has(ChangeDevices) {
		s.snap.Versions.Devices = v
	}
	if change.Has(ChangeSensors) {
		s.snap.Versions.Sensors = v
	}
	if change.Has(ChangeHistory) {
		s.snap.Versions.History = v
	}
	if change.Has(ChangeRules) {
		s.snap.Versions.Rules = v
	}
	if change.Has(ChangeTheme) {
		s.snap.Versions.Theme = v
	}
	if change.Has(ChangeActivity) {
		s.snap.Versions.Activity = v
	}
	for sub := range s.subs {
		sub.signal(change)
	}
}

func appendBounded[T any](items []T, item T, limit int) []T {
	start := 0
	if len(items)+1 > limit {
		start = len(items) + 1 - limit
	}
	out := make([]T, 0, len(items)+1-start)
	out = append(out, items[start:]...)
	return append(out, item)
}

func cloneSlice[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func indexOfDevice(devices []models.Device, id string) int {
	for i := range devices {
		if devices[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfRule(rules []models.AutomationRule, id string) int {
	for i := range rules {
		if rules[i].ID == id {
			return i
		}
	}
	return -1
}
