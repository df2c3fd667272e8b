// Package tools provides host-command helpers shared by the stack modules.
//
// Ownership boundary:
// - command execution abstraction
// - toolchain availability probes
package tools
