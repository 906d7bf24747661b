package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/mineguard/core/fleet"
	"github.com/kilianp07/mineguard/core/model"
	coremqtt "github.com/kilianp07/mineguard/core/mqtt"
	"github.com/kilianp07/mineguard/infra/logger"
	"github.com/kilianp07/mineguard/internal/eventbus"
)

const connectTimeout = 10 * time.Second

// AlertPublisher republishes store events to an MQTT broker.
type AlertPublisher struct {
	cli        pahoClient
	topics     coremqtt.Topics
	qos        byte
	maxRetries int
	backoff    time.Duration
	log        logger.Logger

	// prev is the last active set seen; only Run touches it.
	prev map[alertKey]struct{}
}

// ProducerState is the payload of the producer topic.
type ProducerState struct {
	Connected bool  `json:"connected"`
	At        int64 `json:"at"`
}

// NewAlertPublisher connects to the broker described by cfg.
func NewAlertPublisher(cfg Config) (*AlertPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt-publisher")
	p := &AlertPublisher{
		topics:     coremqtt.NewTopics(cfg.TopicPrefix),
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
		prev:       map[alertKey]struct{}{},
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		c.Publish(p.topics.Online, p.qos, true, "online")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Warnf("broker %s not reachable yet, retrying in background", cfg.Broker)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	p.cli = c
	return p, nil
}

// Run forwards bus events until ctx is canceled or the bus is closed.
// Publish failures are logged and never stop the loop.
func (p *AlertPublisher) Run(ctx context.Context, bus *eventbus.Bus[fleet.Event]) error {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			if err := p.Handle(ev); err != nil {
				p.log.Warnf("%v", err)
			}
		}
	}
}

// Handle publishes the messages derived from one store event.
func (p *AlertPublisher) Handle(ev fleet.Event) error {
	switch e := ev.(type) {
	case fleet.BatchApplied:
		if e.Alerts != nil {
			if err := p.publishAlerts(e.Alerts); err != nil {
				return err
			}
		}
		return p.publishJSON(p.topics.Status, true, e.Status)
	case fleet.ConnectionChanged:
		return p.publishJSON(p.topics.Producer, true, ProducerState{Connected: e.Connected, At: e.At.UnixMilli()})
	}
	return nil
}

func (p *AlertPublisher) publishAlerts(active []model.CollisionAlert) error {
	next := make(map[alertKey]struct{}, len(active))
	for _, a := range active {
		k := keyOf(a)
		next[k] = struct{}{}
		if _, seen := p.prev[k]; seen {
			continue
		}
		if err := p.publishJSON(p.topics.NewAlerts, false, a); err != nil {
			return err
		}
	}
	p.prev = next
	return p.publishJSON(p.topics.ActiveAlerts, true, active)
}

func (p *AlertPublisher) publishJSON(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, retained, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			return nil
		}
		p.log.Errorf("publish %s attempt %d failed: %v", topic, attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("%w: %s: %w", coremqtt.ErrPublishFailed, topic, publishErr)
}

// Close marks the service offline and disconnects.
func (p *AlertPublisher) Close() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	p.cli.Publish(p.topics.Online, p.qos, true, "offline").WaitTimeout(time.Second)
	p.cli.Disconnect(250)
}

// alertKey identifies an alert across batches. The vehicle pair is
// unordered.
type alertKey struct {
	a, b      string
	alertType model.AlertType
}

func keyOf(a model.CollisionAlert) alertKey {
	v1, v2 := a.VehicleID1, a.VehicleID2
	if v2 < v1 {
		v1, v2 = v2, v1
	}
	return alertKey{a: v1, b: v2, alertType: a.AlertType}
}
