package scan

import "time"

// Severity classifies the impact of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Rank returns a numeric rank for ordering findings.
// Critical=5, High=4, Medium=3, Low=2, Info=1, unknown=0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}

// Finding represents a single detected or candidate issue emitted by a
// backend or by the content matcher.
type Finding struct {
	Type          string    `json:"type"`
	Target        string    `json:"target"`
	Severity      Severity  `json:"severity"`
	Description   string    `json:"description"`
	Details       []string  `json:"details,omitempty"`
	SourceBackend string    `json:"source_backend"`
	TemplateID    string    `json:"template_id,omitempty"`
	Confidence    float64   `json:"confidence,omitempty"`
	Verified      bool      `json:"verified"`
	FalsePositive bool      `json:"false_positive"`
	CVSSScore     float64   `json:"cvss_score,omitempty"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}

// DedupKey identifies duplicate findings across backends: two findings
// collide when they share type, target and template ID (or, absent a
// template, the backend that produced them).
func (f Finding) DedupKey() string {
	source := f.TemplateID
	if source == "" {
		source = f.SourceBackend
	}
	return f.Type + "|" + f.Target + "|" + source
}
