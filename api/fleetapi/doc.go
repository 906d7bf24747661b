// Package fleetapi exposes the fleet store over a read-only JSON HTTP API
// consumed by the operator dashboard and the fleet CLI commands.
package fleetapi
