package cmd

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatStatusWithColor(t *testing.T) {
	// Disable color so plain strings come back regardless of TTY.
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	for _, status := range []string{"completed", "running", "pending", "failed", "unknown"} {
		got := formatStatusWithColor(status)
		if !strings.Contains(got, status) {
			t.Errorf("formatted status lost its text: %q", got)
		}
	}
}

func TestFormatSeverityWithColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	for _, severity := range []string{"critical", "high", "medium", "low", "info"} {
		got := formatSeverityWithColor(severity)
		if !strings.Contains(got, severity) {
			t.Errorf("formatted severity lost its text: %q", got)
		}
	}
}
