package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kilianp07/mineguard/core/model"
)

var apiURL string

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Query a running MineGuard server",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List known vehicles",
	RunE:  runFleetLs,
}

var fleetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and active alerts",
	RunE:  runFleetStatus,
}

func init() {
	fleetCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:5100", "read API base URL")
	fleetCmd.AddCommand(fleetLsCmd, fleetStatusCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	var vehicles []model.Vehicle
	if err := getJSON(cmd.Context(), "/api/vehicles", &vehicles); err != nil {
		return err
	}
	table := uitable.New()
	table.AddRow("ID", "TYPE", "STATE", "SPEED", "FUEL", "PAYLOAD", "ONLINE", "LAST UPDATE")
	for _, v := range vehicles {
		table.AddRow(
			v.ID,
			v.VehicleType.String(),
			v.CycleState.String(),
			fmt.Sprintf("%.1f km/h", v.Telemetry.Speed),
			fmt.Sprintf("%.1f%%", v.Telemetry.FuelLevel),
			fmt.Sprintf("%.1ft", v.Telemetry.Payload),
			v.Online,
			time.UnixMilli(v.LastUpdate).UTC().Format(time.RFC3339),
		)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), table)
	return err
}

func runFleetStatus(cmd *cobra.Command, args []string) error {
	var status model.SystemStatus
	if err := getJSON(cmd.Context(), "/api/status", &status); err != nil {
		return err
	}
	var alerts []model.CollisionAlert
	if err := getJSON(cmd.Context(), "/api/alerts", &alerts); err != nil {
		return err
	}

	summary := uitable.New()
	summary.AddRow("Producer connected:", status.SimulatorConnected)
	summary.AddRow("Vehicles:", fmt.Sprintf("%d (%d online)", status.TotalVehicles, status.OnlineVehicles))
	summary.AddRow("Active alerts:", status.ActiveAlerts)
	summary.AddRow("Alerts received:", status.TotalAlertsReceived)
	summary.AddRow("Uptime:", (time.Duration(status.UptimeSeconds) * time.Second).String())
	if status.LastTelemetryTimestamp > 0 {
		summary.AddRow("Last telemetry:", time.UnixMilli(status.LastTelemetryTimestamp).UTC().Format(time.RFC3339))
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, summary); err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}
	table := uitable.New()
	table.AddRow("VEHICLES", "PRIORITY", "TYPE", "TTI", "DISTANCE")
	for _, a := range alerts {
		table.AddRow(
			a.VehicleID1+" <-> "+a.VehicleID2,
			a.Priority.String(),
			a.AlertType.String(),
			fmt.Sprintf("%.1fs", a.TimeToImpact),
			fmt.Sprintf("%.1fm", a.Distance),
		)
	}
	_, err := fmt.Fprintf(out, "\n%s\n", table)
	return err
}

func getJSON(ctx context.Context, path string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	url := strings.TrimRight(apiURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: %s: %s", url, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
