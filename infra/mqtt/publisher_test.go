package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mineguard/core/fleet"
	"github.com/kilianp07/mineguard/core/model"
	coremqtt "github.com/kilianp07/mineguard/core/mqtt"
	"github.com/kilianp07/mineguard/internal/eventbus"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connected   bool
}

func (m *mockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockClient) Connect() paho.Token {
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	return &dummyToken{}
}

func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
}

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b []byte
	switch v := payload.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	}
	m.published = append(m.published, published{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

func (m *mockClient) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.published))
	for i, p := range m.published {
		out[i] = p.topic
	}
	return out
}

func (m *mockClient) reset() {
	m.mu.Lock()
	m.published = nil
	m.mu.Unlock()
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func newTestPublisher(t *testing.T, mc *mockClient, cfg Config) *AlertPublisher {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = orig })
	if cfg.Broker == "" {
		cfg.Broker = "tcp://localhost:1883"
	}
	p, err := NewAlertPublisher(cfg)
	require.NoError(t, err)
	return p
}

func TestHandleBatchApplied(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{TopicPrefix: "pit", QoS: 1})
	tp := coremqtt.NewTopics("pit")

	a := model.CollisionAlert{VehicleID1: "HT-101", VehicleID2: "LV-301", Priority: model.PriorityHigh, AlertType: model.AlertCrossing}
	b := model.CollisionAlert{VehicleID1: "HT-102", VehicleID2: "HT-103", Priority: model.PriorityLow, AlertType: model.AlertTailgating}
	c := model.CollisionAlert{VehicleID1: "EX-201", VehicleID2: "HT-101", Priority: model.PriorityCritical}

	require.NoError(t, p.Handle(fleet.BatchApplied{Alerts: []model.CollisionAlert{a, b}, Status: model.SystemStatus{ActiveAlerts: 2}}))
	assert.Equal(t, []string{tp.NewAlerts, tp.NewAlerts, tp.ActiveAlerts, tp.Status}, mc.topics())

	var active []map[string]any
	require.NoError(t, json.Unmarshal(mc.published[2].payload, &active))
	require.Len(t, active, 2)
	assert.Equal(t, "CROSSING", active[0]["alertTypeName"])
	assert.True(t, mc.published[2].retained)
	assert.False(t, mc.published[0].retained)
	assert.Equal(t, byte(1), mc.published[0].qos)

	// Same pair in the other order is not new.
	mc.reset()
	swapped := b
	swapped.VehicleID1, swapped.VehicleID2 = b.VehicleID2, b.VehicleID1
	require.NoError(t, p.Handle(fleet.BatchApplied{Alerts: []model.CollisionAlert{swapped, c}}))
	assert.Equal(t, []string{tp.NewAlerts, tp.ActiveAlerts, tp.Status}, mc.topics())
	var fresh model.CollisionAlert
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &fresh))
	assert.Equal(t, "EX-201", fresh.VehicleID1)

	// Telemetry only batch leaves the active topic alone.
	mc.reset()
	require.NoError(t, p.Handle(fleet.BatchApplied{VehicleIDs: []string{"HT-101"}}))
	assert.Equal(t, []string{tp.Status}, mc.topics())

	// An emptied active set is published as an empty list.
	mc.reset()
	require.NoError(t, p.Handle(fleet.BatchApplied{Alerts: []model.CollisionAlert{}}))
	assert.Equal(t, []string{tp.ActiveAlerts, tp.Status}, mc.topics())
	assert.JSONEq(t, `[]`, string(mc.published[0].payload))
}

func TestHandleConnectionChanged(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{})
	at := time.UnixMilli(1_700_000_000_123)
	require.NoError(t, p.Handle(fleet.ConnectionChanged{Connected: true, At: at}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "mineguard/producer", mc.published[0].topic)
	assert.JSONEq(t, `{"connected":true,"at":1700000000123}`, string(mc.published[0].payload))
}

func TestPublishRetry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	p := newTestPublisher(t, mc, Config{MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, p.Handle(fleet.ConnectionChanged{Connected: false}))
	assert.Len(t, mc.published, 2)

	mc = &mockClient{publishErrs: []error{errors.New("a"), errors.New("b")}}
	p = newTestPublisher(t, mc, Config{MaxRetries: 1, BackoffMS: 1})
	err := p.Handle(fleet.ConnectionChanged{Connected: false})
	assert.ErrorIs(t, err, coremqtt.ErrPublishFailed)
}

func TestRunForwardsBusEvents(t *testing.T) {
	mc := &mockClient{}
	p := newTestPublisher(t, mc, Config{})
	bus := eventbus.New[fleet.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, bus) }()

	store := fleet.NewStore(fleet.WithEvents(bus))
	require.Eventually(t, func() bool {
		store.SetConnected(!store.Connected())
		return len(mc.topics()) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	p.Close()
	assert.False(t, mc.IsConnected())
	topics := mc.topics()
	assert.Equal(t, "mineguard/online", topics[len(topics)-1])
}

func TestKeyOfUnordered(t *testing.T) {
	a := model.CollisionAlert{VehicleID1: "x", VehicleID2: "y", AlertType: model.AlertApproach}
	b := model.CollisionAlert{VehicleID1: "y", VehicleID2: "x", AlertType: model.AlertApproach}
	assert.Equal(t, keyOf(a), keyOf(b))
	b.AlertType = model.AlertCrossing
	assert.NotEqual(t, keyOf(a), keyOf(b))
}
