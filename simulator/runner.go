package simulator

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/kilianp07/mineguard/core/protocol"
	"github.com/kilianp07/mineguard/infra/logger"
)

const (
	// DefaultInterval is the simulation tick.
	DefaultInterval = time.Second
	// DefaultTarget is the ingest server address.
	DefaultTarget = "localhost:5000"
	// reconnectEvery is the number of ticks between reconnect attempts.
	reconnectEvery = 5
)

// Options configures a Runner.
type Options struct {
	// Target is the ingest server address. Ignored in local mode.
	Target string
	// Local prints the fleet to Out instead of sending it.
	Local    bool
	Interval time.Duration
	// Ticks stops the run after that many ticks. Zero runs until canceled.
	Ticks int
	// ClearScreen redraws the local view in place.
	ClearScreen bool
	Out         io.Writer
	Logger      logger.Logger
}

// Runner ties the fleet, the detector and the client together at a fixed
// tick rate.
type Runner struct {
	opts     Options
	fleet    *Fleet
	detector *Detector
	client   *Client
	now      func() time.Time
	log      logger.Logger

	ticks  int
	misses int
	sent   int
}

// NewRunner returns a Runner over the default fleet.
func NewRunner(opts Options) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Target == "" {
		opts.Target = DefaultTarget
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("simulator")
	}
	r := &Runner{
		opts:     opts,
		fleet:    NewFleet(),
		detector: NewDetector(),
		now:      time.Now,
		log:      opts.Logger,
	}
	if !opts.Local {
		r.client = NewClient(opts.Target)
	}
	return r
}

// Fleet returns the simulated fleet.
func (r *Runner) Fleet() *Fleet { return r.fleet }

// Sent returns the number of batches written to the server.
func (r *Runner) Sent() int { return r.sent }

// Run ticks until ctx is canceled or Options.Ticks is reached.
func (r *Runner) Run(ctx context.Context) error {
	if r.client != nil {
		r.log.Infof("connecting to %s", r.client.Addr())
		if err := r.client.Connect(ctx); err != nil {
			r.log.Warnf("%v, retrying every %d ticks", err, reconnectEvery)
		}
		defer r.client.Close()
	} else {
		r.log.Infof("running in local mode")
	}

	t := time.NewTicker(r.opts.Interval)
	defer t.Stop()
	for {
		r.Step(ctx)
		if r.opts.Ticks > 0 && r.ticks >= r.opts.Ticks {
			break
		}
		select {
		case <-ctx.Done():
			r.log.Infof("stopping after %d ticks", r.ticks)
			return nil
		case <-t.C:
		}
	}
	r.log.Infof("stopping after %d ticks", r.ticks)
	return nil
}

// Step advances the simulation by one tick and emits the resulting batch.
func (r *Runner) Step(ctx context.Context) protocol.Batch {
	r.fleet.Update(r.opts.Interval.Seconds())
	batch := protocol.Batch{
		Type:      protocol.BatchType,
		Telemetry: r.fleet.Telemetry(r.now().UnixMilli()),
		Alerts:    r.detector.CheckAll(r.fleet.Vehicles()),
	}
	r.ticks++

	if r.client == nil {
		if err := Render(r.opts.Out, batch, r.opts.ClearScreen); err != nil {
			r.log.Warnf("render: %v", err)
		}
		return batch
	}
	r.send(ctx, batch)
	return batch
}

func (r *Runner) send(ctx context.Context, batch protocol.Batch) {
	if !r.client.Connected() {
		r.misses++
		if r.misses < reconnectEvery {
			return
		}
		r.misses = 0
		r.log.Infof("attempting reconnection to %s", r.client.Addr())
		if err := r.client.Reconnect(ctx); err != nil {
			r.log.Warnf("%v", err)
			return
		}
		r.log.Infof("connected to %s", r.client.Addr())
	}
	if err := r.client.Send(batch); err != nil {
		r.log.Errorf("send failed at tick %d: %v", r.ticks, err)
		return
	}
	r.sent++
}
