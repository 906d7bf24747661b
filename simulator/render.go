package simulator

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"

	"github.com/kilianp07/mineguard/core/protocol"
)

const clearScreen = "\033[2J\033[H"

// Render writes the vehicles and alerts of b as two tables.
func Render(w io.Writer, b protocol.Batch, clear bool) error {
	vehicles := uitable.New()
	vehicles.MaxColWidth = 14
	vehicles.AddRow("ID", "TYPE", "STATE", "LAT", "LON", "ALT", "SPEED", "HEADING", "FUEL", "PAYLOAD", "RPM")
	for _, r := range b.Telemetry {
		vehicles.AddRow(
			r.VehicleID,
			r.VehicleType.String(),
			r.CycleState.String(),
			fmt.Sprintf("%.6f", r.Position.Latitude),
			fmt.Sprintf("%.6f", r.Position.Longitude),
			fmt.Sprintf("%.1fm", r.Position.Altitude),
			fmt.Sprintf("%.1f km/h", r.Telemetry.Speed),
			fmt.Sprintf("%.1f°", r.Telemetry.Heading),
			fmt.Sprintf("%.1f%%", r.Telemetry.FuelLevel),
			fmt.Sprintf("%.1ft", r.Telemetry.Payload),
			fmt.Sprintf("%.0f", r.Telemetry.EngineRPM),
		)
	}

	out := ""
	if clear {
		out = clearScreen
	}
	out += "MINEGUARD SIMULATOR - LOCAL MODE\n\n" + vehicles.String() + "\n\n"
	if len(b.Alerts) == 0 {
		out += "No active alerts\n"
	} else {
		alerts := uitable.New()
		alerts.AddRow("VEHICLES", "PRIORITY", "TYPE", "TTI", "DISTANCE")
		for _, a := range b.Alerts {
			alerts.AddRow(
				a.VehicleID1+" <-> "+a.VehicleID2,
				a.Priority.String(),
				a.AlertType.String(),
				fmt.Sprintf("%.1fs", a.TimeToImpact),
				fmt.Sprintf("%.1fm", a.Distance),
			)
		}
		out += "COLLISION ALERTS\n" + alerts.String() + "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}
