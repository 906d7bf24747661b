// Package simulator drives a small open-pit mine fleet through its
// load/haul/dump cycle, predicts collisions between vehicles and streams
// the result to the ingest server as length-prefixed batches.
package simulator
