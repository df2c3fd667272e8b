// Package launcher starts background processes and polls an observable
// readiness condition until it holds, the deadline passes, or the caller
// cancels. A launcher never stops, signals, or restarts a process it started.
//
// Ownership boundary:
// - spawn preflight (command, working directory, log file)
// - readiness poll loop and outcome taxonomy
package launcher
