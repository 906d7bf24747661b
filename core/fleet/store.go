package fleet

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/mineguard/core/model"
)

// Reader is the read-only contract consumed by the query API, the metrics
// collector and the publishers.
type Reader interface {
	AllVehicles() []model.Vehicle
	VehicleByID(id string) (model.Vehicle, bool)
	ActiveAlerts() []model.CollisionAlert
	AlertHistory() []model.CollisionAlert
	Status() model.SystemStatus
	Stats() Stats
}

// Writer is the mutation contract used by the ingestion handlers.
type Writer interface {
	ApplyTelemetry(rec model.TelemetryRecord)
	ApplyAlerts(alerts []model.CollisionAlert)
	ApplyBatch(records []model.TelemetryRecord, alerts []model.CollisionAlert)
	SetConnected(connected bool)
}

// Publisher receives store events. *eventbus.Bus[Event] satisfies it.
type Publisher interface {
	Publish(Event)
}

type vehicleEntry struct {
	vehicle    model.Vehicle
	receivedAt time.Time
}

// Store is the authoritative in-memory fleet state.
//
// Writers are serialised by mu, one batch at a time. The active alert set
// is an immutable slice published through an atomic pointer, so a reader
// sees either the previous set or the next one and never a partial refill.
type Store struct {
	mu            sync.RWMutex
	vehicles      map[string]vehicleEntry
	history       []model.CollisionAlert
	lastTelemetry int64

	active    atomic.Pointer[[]model.CollisionAlert]
	connected atomic.Bool

	start        time.Time
	now          func() time.Time
	offlineAfter time.Duration
	events       Publisher
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOfflineAfter marks a vehicle offline when no record for it arrived in
// the last d. Zero disables staleness tracking and vehicles stay online.
func WithOfflineAfter(d time.Duration) Option {
	return func(s *Store) { s.offlineAfter = d }
}

// WithEvents publishes BatchApplied and ConnectionChanged events to p.
func WithEvents(p Publisher) Option {
	return func(s *Store) { s.events = p }
}

// NewStore returns an empty store. Uptime is measured from this call.
func NewStore(opts ...Option) *Store {
	s := &Store{
		vehicles: make(map[string]vehicleEntry),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	empty := []model.CollisionAlert{}
	s.active.Store(&empty)
	s.start = s.now()
	return s
}

// ApplyTelemetry replaces the state of the vehicle named by rec.
func (s *Store) ApplyTelemetry(rec model.TelemetryRecord) {
	s.ApplyBatch([]model.TelemetryRecord{rec}, nil)
}

// ApplyAlerts replaces the active set with alerts, even when empty, and
// appends them to the history.
func (s *Store) ApplyAlerts(alerts []model.CollisionAlert) {
	if alerts == nil {
		alerts = []model.CollisionAlert{}
	}
	s.ApplyBatch(nil, alerts)
}

// ApplyBatch applies records in order and then replaces the active alerts,
// all inside one critical section. A nil alerts slice leaves the active set
// untouched; use an empty slice to clear it.
func (s *Store) ApplyBatch(records []model.TelemetryRecord, alerts []model.CollisionAlert) {
	now := s.now()
	ids := make([]string, 0, len(records))
	var active []model.CollisionAlert
	s.mu.Lock()
	for _, rec := range records {
		s.vehicles[rec.VehicleID] = vehicleEntry{vehicle: model.VehicleFromRecord(rec), receivedAt: now}
		s.lastTelemetry = rec.Timestamp
		ids = append(ids, rec.VehicleID)
	}
	if alerts != nil {
		active = s.swapAlerts(alerts)
	}
	var status model.SystemStatus
	if s.events != nil {
		status = Aggregate(s.snapshotLocked(now), s.start, now)
	}
	s.mu.Unlock()

	if s.events != nil && (len(ids) > 0 || alerts != nil) {
		ev := BatchApplied{VehicleIDs: ids, Status: status, At: now}
		if active != nil {
			ev.Alerts = append([]model.CollisionAlert(nil), active...)
		}
		s.events.Publish(ev)
	}
}

// swapAlerts must be called with mu held for writing. The returned slice is
// the new active set and must not be modified.
func (s *Store) swapAlerts(alerts []model.CollisionAlert) []model.CollisionAlert {
	next := make([]model.CollisionAlert, len(alerts))
	copy(next, alerts)
	s.history = append(s.history, next...)
	s.active.Store(&next)
	return next
}

// SetConnected records whether the producer is connected.
func (s *Store) SetConnected(connected bool) {
	if s.connected.Swap(connected) == connected {
		return
	}
	if s.events != nil {
		s.events.Publish(ConnectionChanged{Connected: connected, At: s.now()})
	}
}

// Connected reports the producer connected flag.
func (s *Store) Connected() bool { return s.connected.Load() }

// AllVehicles returns every known vehicle ordered by ID.
func (s *Store) AllVehicles() []model.Vehicle {
	now := s.now()
	s.mu.RLock()
	out := make([]model.Vehicle, 0, len(s.vehicles))
	for _, e := range s.vehicles {
		out = append(out, s.view(e, now))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VehicleByID returns the vehicle with the given ID and whether it exists.
func (s *Store) VehicleByID(id string) (model.Vehicle, bool) {
	now := s.now()
	s.mu.RLock()
	e, ok := s.vehicles[id]
	s.mu.RUnlock()
	if !ok {
		return model.Vehicle{}, false
	}
	return s.view(e, now), true
}

// ActiveAlerts returns the alert set of the most recently applied batch.
// It does not take the store lock.
func (s *Store) ActiveAlerts() []model.CollisionAlert {
	cur := *s.active.Load()
	out := make([]model.CollisionAlert, len(cur))
	copy(out, cur)
	return out
}

// AlertHistory returns every alert ever applied, oldest first.
func (s *Store) AlertHistory() []model.CollisionAlert {
	s.mu.RLock()
	out := make([]model.CollisionAlert, len(s.history))
	copy(out, s.history)
	s.mu.RUnlock()
	return out
}

// Status returns the current status projection.
func (s *Store) Status() model.SystemStatus {
	now := s.now()
	s.mu.RLock()
	snap := s.snapshotLocked(now)
	s.mu.RUnlock()
	return Aggregate(snap, s.start, now)
}

// Stats returns descriptive statistics over the current fleet.
func (s *Store) Stats() Stats {
	return ComputeStats(s.AllVehicles(), s.ActiveAlerts())
}

// snapshotLocked must be called with mu held.
func (s *Store) snapshotLocked(now time.Time) Snapshot {
	vehicles := make([]model.Vehicle, 0, len(s.vehicles))
	for _, e := range s.vehicles {
		vehicles = append(vehicles, s.view(e, now))
	}
	return Snapshot{
		Connected:              s.connected.Load(),
		Vehicles:               vehicles,
		ActiveAlerts:           len(*s.active.Load()),
		AlertsReceived:         len(s.history),
		LastTelemetryTimestamp: s.lastTelemetry,
	}
}

func (s *Store) view(e vehicleEntry, now time.Time) model.Vehicle {
	v := e.vehicle
	if s.offlineAfter > 0 {
		v.Online = now.Sub(e.receivedAt) <= s.offlineAfter
	}
	return v
}
