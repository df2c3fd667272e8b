// Package bridge relays telemetry datagrams from a local UDP endpoint to an
// MQTT broker. Frames are opaque bytes end to end: the bridge never parses
// MAVLink, it only wraps each datagram in a small JSON envelope.
//
// Ownership boundary:
// - UDP ingest and the bounded drop-oldest queue
// - rate-limited MQTT publishing
package bridge
