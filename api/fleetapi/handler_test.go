package fleetapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mineguard/core/fleet"
	"github.com/kilianp07/mineguard/core/model"
	"github.com/kilianp07/mineguard/infra/logger"
)

func seededStore() *fleet.Store {
	s := fleet.NewStore()
	s.SetConnected(true)
	s.ApplyTelemetry(model.TelemetryRecord{
		VehicleID: "LV-301", Timestamp: 2000, VehicleType: model.VehicleLightVehicle, CycleState: model.CycleHauling,
		Telemetry: model.Telemetry{Speed: 45, FuelLevel: 90},
	})
	s.ApplyTelemetry(model.TelemetryRecord{
		VehicleID: "HT-101", Timestamp: 2001, VehicleType: model.VehicleHaulTruck, CycleState: model.CycleLoading,
		Telemetry: model.Telemetry{FuelLevel: 70, Payload: 120},
	})
	s.ApplyAlerts([]model.CollisionAlert{{VehicleID1: "HT-101", VehicleID2: "LV-301", Priority: model.PriorityLow, Timestamp: 1}})
	s.ApplyAlerts([]model.CollisionAlert{
		{VehicleID1: "HT-101", VehicleID2: "LV-301", Priority: model.PriorityHigh, AlertType: model.AlertCrossing, Timestamp: 2},
		{VehicleID1: "HT-101", VehicleID2: "EX-201", Priority: model.PriorityCritical, Timestamp: 3},
	})
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestVehicles(t *testing.T) {
	h := NewRouter(seededStore())
	rr := get(t, h, "/api/vehicles")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "HT-101", out[0]["id"])
	assert.Equal(t, "HaulTruck", out[0]["vehicleTypeName"])
	assert.Equal(t, "LOADING", out[0]["cycleStateName"])
	assert.Equal(t, true, out[0]["online"])
	assert.Contains(t, out[1]["telemetry"], "fuelLevel")
}

func TestVehiclesEmptyIsArray(t *testing.T) {
	h := NewRouter(fleet.NewStore())
	for _, path := range []string{"/api/vehicles", "/api/alerts", "/api/alerts/history"} {
		rr := get(t, h, path)
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, `[]`, rr.Body.String(), path)
	}
}

func TestVehicleByID(t *testing.T) {
	h := NewRouter(seededStore())
	rr := get(t, h, "/api/vehicles/LV-301")
	require.Equal(t, http.StatusOK, rr.Code)
	var v model.Vehicle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, "LV-301", v.ID)
	assert.Equal(t, 45.0, v.Telemetry.Speed)

	rr = get(t, h, "/api/vehicles/XX-999")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Vehicle 'XX-999' not found"}`, rr.Body.String())
}

func TestAlerts(t *testing.T) {
	h := NewRouter(seededStore())

	var active []map[string]any
	require.NoError(t, json.Unmarshal(get(t, h, "/api/alerts").Body.Bytes(), &active))
	require.Len(t, active, 2)
	assert.Equal(t, "HIGH", active[0]["priorityName"])
	assert.Equal(t, "CROSSING", active[0]["alertTypeName"])
	assert.Equal(t, "HT-101", active[0]["vehicleId1"])

	var hist []model.CollisionAlert
	require.NoError(t, json.Unmarshal(get(t, h, "/api/alerts/history").Body.Bytes(), &hist))
	require.Len(t, hist, 3)
	assert.Equal(t, int64(1), hist[0].Timestamp)

	require.NoError(t, json.Unmarshal(get(t, h, "/api/alerts/history?limit=2").Body.Bytes(), &hist))
	require.Len(t, hist, 2)
	assert.Equal(t, int64(2), hist[0].Timestamp)

	require.NoError(t, json.Unmarshal(get(t, h, "/api/alerts/history?limit=10").Body.Bytes(), &hist))
	assert.Len(t, hist, 3)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/alerts/history?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/alerts/history?limit=-1").Code)
}

func TestStatusAndStats(t *testing.T) {
	h := NewRouter(seededStore())

	var st model.SystemStatus
	require.NoError(t, json.Unmarshal(get(t, h, "/api/status").Body.Bytes(), &st))
	assert.True(t, st.SimulatorConnected)
	assert.Equal(t, 2, st.TotalVehicles)
	assert.Equal(t, 2, st.OnlineVehicles)
	assert.Equal(t, 2, st.ActiveAlerts)
	assert.Equal(t, 3, st.TotalAlertsReceived)
	assert.Equal(t, int64(2001), st.LastTelemetryTimestamp)

	var stats fleet.Stats
	require.NoError(t, json.Unmarshal(get(t, h, "/api/fleet/stats").Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Vehicles)
	assert.Equal(t, 120.0, stats.TotalPayload)
	assert.Equal(t, 1, stats.AlertsByPriority["CRITICAL"])

	rr := get(t, h, "/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewRouter(seededStore())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/vehicles", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandlerCORSAndStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>MineGuard</h1>"), 0o600))
	h := Handler(seededStore(), Options{StaticDir: dir, Logger: logger.NopLogger{}})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = get(t, h, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "MineGuard")
}

type panicReader struct{ fleet.Reader }

func (panicReader) Status() model.SystemStatus { panic("boom") }

func TestHandlerRecoversPanics(t *testing.T) {
	h := Handler(panicReader{fleet.NewStore()}, Options{Logger: logger.NopLogger{}})
	rr := get(t, h, "/api/status")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServeListenerShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	log := &captureLogger{}
	go func() { done <- ServeListener(ctx, ln, NewRouter(seededStore()), log) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Contains(t, log.infos(), "serving api on "+ln.Addr().String())
}

type captureLogger struct {
	logger.NopLogger
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) Infof(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *captureLogger) infos() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}
