// Package stack describes the flight-stack services px4ctl manages and
// orchestrates their launches.
//
// Ownership boundary:
// - service catalog shape (commands, jars, readiness)
// - executable and jar discovery
// - concurrent bring-up and status snapshots
package stack
