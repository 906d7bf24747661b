// Package ingest accepts the producer's TCP connection and feeds every
// length-prefixed batch it sends into the fleet store.
//
// At most one producer is served at a time. The connection handler reads
// frames strictly in arrival order, skips batches that fail to decode and
// closes the connection on a framing violation. Store mutations happen only
// through fleet.Writer, so handlers share no other state.
package ingest
