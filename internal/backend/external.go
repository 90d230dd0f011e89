package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/bughunter/bughunter/internal/domain/scan"
)

// ExternalToolConfig describes an out-of-process scanning tool. The
// tool receives the target URL as its final argument and must print a
// JSON array of findings on stdout.
type ExternalToolConfig struct {
	Name           string
	Command        string
	Args           []string
	Env            map[string]string
	TimeoutSeconds int
}

// externalFinding is the wire format external tools emit.
type externalFinding struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Details     string  `json:"details,omitempty"`
	CVSSScore   float64 `json:"cvss_score,omitempty"`
}

// ExternalToolAdapter invokes an external scanning binary and parses
// its output into findings. Any parse failure is returned as a backend
// error, never a crash of the orchestrator.
type ExternalToolAdapter struct {
	name    string
	command string
	args    []string
	env     map[string]string
	timeout time.Duration
}

// NewExternalToolAdapter creates an adapter from config.
func NewExternalToolAdapter(cfg ExternalToolConfig) *ExternalToolAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	name := cfg.Name
	if name == "" {
		name = "external"
	}
	return &ExternalToolAdapter{
		name:    name,
		command: cfg.Command,
		args:    cfg.Args,
		env:     cfg.Env,
		timeout: timeout,
	}
}

// Name returns the backend identifier.
func (e *ExternalToolAdapter) Name() string {
	return e.name
}

// Probe runs the external tool against the target.
func (e *ExternalToolAdapter) Probe(ctx context.Context, target scan.Target) ([]scan.Finding, error) {
	if e.command == "" {
		return nil, fmt.Errorf("external tool %s: command not configured", e.name)
	}

	toolCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append([]string{}, e.args...)
	args = append(args, target.URL())

	cmd := exec.CommandContext(toolCtx, e.command, args...)
	cmd.Env = os.Environ()
	for k, v := range e.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("external tool %s: %s", e.name, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("external tool %s: %w", e.name, err)
	}

	var raw []externalFinding
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("external tool %s: invalid output: %w", e.name, err)
	}

	findings := make([]scan.Finding, 0, len(raw))
	now := time.Now().UTC()
	for _, r := range raw {
		severity := scan.Severity(r.Severity)
		if !severity.IsValid() {
			severity = scan.SeverityInfo
		}
		var details []string
		if r.Details != "" {
			details = []string{r.Details}
		}
		findings = append(findings, scan.Finding{
			Type:          r.Type,
			Target:        target.URL(),
			Severity:      severity,
			Description:   r.Description,
			Details:       details,
			SourceBackend: e.name,
			CVSSScore:     r.CVSSScore,
			DiscoveredAt:  now,
		})
	}

	return findings, nil
}
