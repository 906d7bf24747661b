package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/mineguard/core/fleet"
	"github.com/kilianp07/mineguard/core/model"
)

// FleetCollector exposes the live fleet state as Prometheus gauges. Values
// are read from the store at scrape time, so nothing is cached between
// scrapes.
type FleetCollector struct {
	store   fleet.Reader
	dropped func() uint64

	connected      *prometheus.Desc
	vehicles       *prometheus.Desc
	online         *prometheus.Desc
	activeAlerts   *prometheus.Desc
	alertsReceived *prometheus.Desc
	uptime         *prometheus.Desc
	lastTelemetry  *prometheus.Desc
	speed          *prometheus.Desc
	fuel           *prometheus.Desc
	payload        *prometheus.Desc
	eventDrops     *prometheus.Desc
}

// CollectorOption configures a FleetCollector.
type CollectorOption func(*FleetCollector)

// WithEventDrops exports f as mineguard_eventbus_dropped_total: fleet events
// a slow subscriber (sinks, MQTT publisher) never received.
func WithEventDrops(f func() uint64) CollectorOption {
	return func(c *FleetCollector) { c.dropped = f }
}

// NewFleetCollector returns a collector reading from store.
func NewFleetCollector(store fleet.Reader, opts ...CollectorOption) *FleetCollector {
	fq := func(name string) string { return prometheus.BuildFQName(namespace, "fleet", name) }
	vehicleLabels := []string{"vehicle_id", "vehicle_type"}
	c := &FleetCollector{
		store:          store,
		connected:      prometheus.NewDesc(fq("producer_connected"), "Whether the telemetry producer is connected", nil, nil),
		vehicles:       prometheus.NewDesc(fq("vehicles"), "Vehicles known to the store", nil, nil),
		online:         prometheus.NewDesc(fq("vehicles_online"), "Vehicles currently considered online", nil, nil),
		activeAlerts:   prometheus.NewDesc(fq("active_alerts"), "Active collision alerts by priority", []string{"priority"}, nil),
		alertsReceived: prometheus.NewDesc(fq("alerts_received_total"), "Collision alerts received since start", nil, nil),
		uptime:         prometheus.NewDesc(fq("uptime_seconds"), "Seconds since the store was created", nil, nil),
		lastTelemetry:  prometheus.NewDesc(fq("last_telemetry_timestamp_seconds"), "Producer timestamp of the last telemetry record", nil, nil),
		speed:          prometheus.NewDesc(fq("vehicle_speed_kmh"), "Last reported vehicle speed", vehicleLabels, nil),
		fuel:           prometheus.NewDesc(fq("vehicle_fuel_percent"), "Last reported vehicle fuel level", vehicleLabels, nil),
		payload:        prometheus.NewDesc(fq("vehicle_payload_tonnes"), "Last reported vehicle payload", vehicleLabels, nil),
		eventDrops:     prometheus.NewDesc(prometheus.BuildFQName(namespace, "eventbus", "dropped_total"), "Fleet events not delivered to a full subscriber", nil, nil),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *FleetCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.connected, c.vehicles, c.online, c.activeAlerts, c.alertsReceived,
		c.uptime, c.lastTelemetry, c.speed, c.fuel, c.payload,
	} {
		ch <- d
	}
	if c.dropped != nil {
		ch <- c.eventDrops
	}
}

// Collect implements prometheus.Collector.
func (c *FleetCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.store.Status()
	connected := 0.0
	if st.SimulatorConnected {
		connected = 1
	}
	ch <- prometheus.MustNewConstMetric(c.connected, prometheus.GaugeValue, connected)
	ch <- prometheus.MustNewConstMetric(c.vehicles, prometheus.GaugeValue, float64(st.TotalVehicles))
	ch <- prometheus.MustNewConstMetric(c.online, prometheus.GaugeValue, float64(st.OnlineVehicles))
	ch <- prometheus.MustNewConstMetric(c.alertsReceived, prometheus.CounterValue, float64(st.TotalAlertsReceived))
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, float64(st.UptimeSeconds))
	ch <- prometheus.MustNewConstMetric(c.lastTelemetry, prometheus.GaugeValue, float64(st.LastTelemetryTimestamp)/1000)
	if c.dropped != nil {
		ch <- prometheus.MustNewConstMetric(c.eventDrops, prometheus.CounterValue, float64(c.dropped()))
	}

	byPriority := map[model.AlertPriority]int{}
	for _, a := range c.store.ActiveAlerts() {
		byPriority[a.Priority]++
	}
	for p := model.PriorityLow; p <= model.PriorityCritical; p++ {
		ch <- prometheus.MustNewConstMetric(c.activeAlerts, prometheus.GaugeValue, float64(byPriority[p]), p.String())
	}

	for _, v := range c.store.AllVehicles() {
		labels := []string{v.ID, v.VehicleType.String()}
		ch <- prometheus.MustNewConstMetric(c.speed, prometheus.GaugeValue, v.Telemetry.Speed, labels...)
		ch <- prometheus.MustNewConstMetric(c.fuel, prometheus.GaugeValue, v.Telemetry.FuelLevel, labels...)
		ch <- prometheus.MustNewConstMetric(c.payload, prometheus.GaugeValue, v.Telemetry.Payload, labels...)
	}
}
