package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/mineguard/infra/logger"
	"github.com/kilianp07/mineguard/simulator"
)

var simOpts struct {
	target   string
	local    bool
	interval time.Duration
	ticks    int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the mine fleet simulator",
	Long: `Simulate a small open-pit fleet and stream telemetry and collision
alerts to a MineGuard server, or print them with --local.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simOpts.target, "target", simulator.DefaultTarget, "ingest server address")
	f.BoolVar(&simOpts.local, "local", false, "print to the console instead of sending")
	f.DurationVar(&simOpts.interval, "interval", simulator.DefaultInterval, "simulation tick")
	f.IntVar(&simOpts.ticks, "ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := simulator.NewRunner(simulator.Options{
		Target:      simOpts.target,
		Local:       simOpts.local,
		Interval:    simOpts.interval,
		Ticks:       simOpts.ticks,
		ClearScreen: simOpts.local,
		Out:         cmd.OutOrStdout(),
		Logger:      logger.New("simulator"),
	})
	return r.Run(ctx)
}
