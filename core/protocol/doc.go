// Package protocol implements the producer wire format: a stream of frames,
// each a 4 byte big-endian length followed by that many bytes of UTF-8 JSON
// describing one batch of telemetry records and collision alerts.
//
// Three failure classes are distinguished with errors.Is:
//
//   - ErrStreamClosed: the peer went away before a frame completed.
//   - ErrFrameLength: the length prefix is outside [1, MaxFrameLength].
//   - ErrMalformedBatch: the frame was read but its JSON does not decode.
package protocol
