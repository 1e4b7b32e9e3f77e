package output

import (
	"time"

	"github.com/thirukguru/aws-auditor/model"
)

const (
	// FormatTable renders findings as colorized terminal tables.
	FormatTable = "table"
	// FormatJSON renders findings as a machine-readable JSON report.
	FormatJSON = "json"
)

// RenderInput carries everything a renderer needs to present one audit run.
type RenderInput struct {
	AccountID string
	Partition string
	Regions   []string
	Findings  []model.Finding
	Duration  time.Duration
	Version   string
}

// Report is the JSON document emitted for FormatJSON.
type Report struct {
	AccountID   string          `json:"account_id"`
	Partition   string          `json:"partition"`
	Regions     []string        `json:"regions,omitempty"`
	GeneratedAt string          `json:"generated_at"`
	Version     string          `json:"version"`
	DurationSec float64         `json:"duration_seconds"`
	Summary     Summary         `json:"summary"`
	Findings    []model.Finding `json:"findings"`
}

// Summary holds per-severity finding counts for one audit run.
type Summary struct {
	TotalFindings int `json:"total_findings"`
	Critical      int `json:"critical"`
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Low           int `json:"low"`
}
