package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smarthome-sim/internal/engine"
	"smarthome-sim/internal/metrics"
	"smarthome-sim/internal/models"
	"smarthome-sim/internal/web/api"
	webModels "smarthome-sim/internal/web/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*engine.Engine, http.Handler) {
	t.Helper()
	m := metrics.New(false)
	eng := engine.New(engine.Options{Seed: 3, Metrics: m}, zap.NewNop())
	t.Cleanup(eng.Stop)
	return eng, NewWebServer(eng, m.Handler(), zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestDevices(t *testing.T) {
	eng, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	devices := decode[[]webModels.DeviceView](t, rec)
	require.Len(t, devices, 5)
	assert.Equal(t, models.ControlSlider, devices[0].Control)
	assert.Equal(t, "LOCKED", devices[3].Status)

	rec = do(t, h, http.MethodPost, "/api/devices/d2/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[webModels.DeviceView](t, rec).IsOn)

	rec = do(t, h, http.MethodPost, "/api/devices/ghost/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/devices/d3/value", `{"value": 31}`)
	require.Equal(t, http.StatusOK, rec.Code)
	d, _ := eng.Device("d3")
	assert.Equal(t, 31.0, d.Value)

	rec = do(t, h, http.MethodPut, "/api/devices/d3/value", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/devices/ghost/value", `{"value": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSensorsAndHistory(t *testing.T) {
	eng, h := newTestServer(t)
	eng.Step()
	eng.Step()

	rec := do(t, h, http.MethodGet, "/api/sensors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Sensor](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.HistoryPoint](t, rec), 2)
}

func TestAutomations(t *testing.T) {
	eng, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/automations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[[]webModels.RuleView](t, rec)
	require.Len(t, rules, 1)
	assert.Equal(t, "If Outdoor LDR < 100 -> Turn On Living Room Lights", rules[0].Description)

	rec = do(t, h, http.MethodPost, "/api/automations",
		`{"name":"Fan when humid","sensorId":"s2","condition":"gt","threshold":70,"actionDeviceId":"d2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[webModels.RuleView](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.ActionTurnOn, created.ActionType, "builder default")
	assert.True(t, created.Active)
	assert.Len(t, eng.Rules(), 2)

	rec = do(t, h, http.MethodPost, "/api/automations/"+created.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.AutomationRule](t, rec).Active)

	rec = do(t, h, http.MethodDelete, "/api/automations/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/automations/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/automations/"+created.ID+"/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, eng.Rules(), 1)
}

func TestAddAutomation_Rejected(t *testing.T) {
	eng, h := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty name", `{"name":"","sensorId":"s1","actionDeviceId":"d1"}`, http.StatusUnprocessableEntity},
		{"missing device", `{"name":"x","sensorId":"s1"}`, http.StatusUnprocessableEntity},
		{"bad condition", `{"name":"x","sensorId":"s1","actionDeviceId":"d1","condition":"eq"}`, http.StatusBadRequest},
		{"bad json", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/automations", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Len(t, eng.Rules(), 1)
		})
	}
}

func TestThemeAndActivity(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/theme", "")
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/theme/toggle", "")
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	do(t, h, http.MethodPost, "/api/devices/d1/toggle", "")
	rec = do(t, h, http.MethodGet, "/api/activity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	activity := decode[[]models.Activity](t, rec)
	require.Len(t, activity, 1)
	assert.Equal(t, "Living Room Lights", activity[0].Subject)
}

func TestOpsEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status":"stopped"}`, rec.Body.String())

	do(t, h, http.MethodPost, "/api/theme/toggle", "")
	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `smarthome_intents_total{intent="toggle_theme"} 1`)
}

func TestEventFeed(t *testing.T) {
	eng, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first api.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	assert.Len(t, first.State.Devices, 5)

	eng.ToggleTheme()

	var next api.Event
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "change", next.Type)
	assert.Equal(t, "theme", next.Changed)
	assert.Equal(t, models.ThemeLight, next.State.Theme)
}
