package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Console styles live in the CLI layer only; library packages never color
// their output.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type ui struct {
	out io.Writer
	err io.Writer
}

func newUI() *ui {
	return &ui{out: os.Stdout, err: os.Stderr}
}

func (u *ui) Success(msg string) {
	fmt.Fprintln(u.out, successStyle.Render("✓ "+msg))
}

func (u *ui) Failure(msg string) {
	fmt.Fprintln(u.err, errorStyle.Render("✗ "+msg))
}

func (u *ui) Warn(msg string) {
	fmt.Fprintln(u.out, warnStyle.Render("⚠ "+msg))
}

func (u *ui) Subtle(msg string) {
	fmt.Fprintln(u.out, subtleStyle.Render(msg))
}

func (u *ui) KeyValue(key, value string) {
	fmt.Fprintf(u.out, "  %s: %s\n", subtleStyle.Render(key), value)
}

func (u *ui) Println(msg string) {
	fmt.Fprintln(u.out, msg)
}
