// Package output renders audit findings as terminal tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/thirukguru/aws-auditor/model"
)

// Service renders the result of an audit run.
type Service interface {
	Render(input RenderInput) error
}

type service struct {
	format string
	out    io.Writer
}

// NewService creates a renderer for the given output format.
func NewService(format string, out io.Writer) Service {
	return &service{
		format: format,
		out:    out,
	}
}

func (s *service) Render(input RenderInput) error {
	if s.format == FormatJSON {
		return s.renderJSON(input)
	}

	s.renderTable(input)

	return nil
}

func (s *service) renderJSON(input RenderInput) error {
	report := BuildReport(input, time.Now().UTC().Format(time.RFC3339))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	fmt.Fprintln(s.out, string(data))

	return nil
}

// BuildReport builds the JSON report document for one audit run.
func BuildReport(input RenderInput, generatedAt string) Report {
	findings := input.Findings
	if findings == nil {
		findings = []model.Finding{}
	}

	return Report{
		AccountID:   input.AccountID,
		Partition:   input.Partition,
		Regions:     input.Regions,
		GeneratedAt: generatedAt,
		Version:     input.Version,
		DurationSec: input.Duration.Seconds(),
		Summary:     Summarize(input.Findings),
		Findings:    findings,
	}
}

// Summarize counts findings per severity.
func Summarize(findings []model.Finding) Summary {
	summary := Summary{TotalFindings: len(findings)}

	for _, f := range findings {
		switch f.Severity {
		case "CRITICAL":
			summary.Critical++
		case "HIGH":
			summary.High++
		case "MEDIUM":
			summary.Medium++
		case "LOW":
			summary.Low++
		}
	}

	return summary
}

func (s *service) renderTable(input RenderInput) {
	summary := Summarize(input.Findings)

	fmt.Fprintf(s.out, "\n🔒 Audit of account %s", input.AccountID)

	if len(input.Regions) > 0 {
		fmt.Fprintf(s.out, " (%s)", strings.Join(input.Regions, ", "))
	}

	fmt.Fprintln(s.out)

	if summary.TotalFindings == 0 {
		fmt.Fprintln(s.out, text.FgGreen.Sprint("   ✅ No findings"))
		fmt.Fprintf(s.out, "\nCompleted in %s\n", input.Duration.Round(time.Millisecond))

		return
	}

	fmt.Fprintf(s.out, "   ")

	if summary.Critical > 0 {
		fmt.Fprintf(s.out, "%s ", text.FgRed.Sprintf("🔴 %d Critical", summary.Critical))
	}

	if summary.High > 0 {
		fmt.Fprintf(s.out, "%s ", text.FgHiRed.Sprintf("🟠 %d High", summary.High))
	}

	if summary.Medium > 0 {
		fmt.Fprintf(s.out, "%s ", text.FgYellow.Sprintf("🟡 %d Medium", summary.Medium))
	}

	if summary.Low > 0 {
		fmt.Fprintf(s.out, "%s ", text.FgCyan.Sprintf("🔵 %d Low", summary.Low))
	}

	fmt.Fprintln(s.out)

	for _, svc := range serviceOrder(input.Findings) {
		s.drawServiceTable(svc, filterByService(input.Findings, svc))
	}

	fmt.Fprintf(s.out, "\nCompleted in %s\n", input.Duration.Round(time.Millisecond))
}

func (s *service) drawServiceTable(svc string, findings []model.Finding) {
	fmt.Fprintln(s.out, "\n"+text.FgHiWhite.Sprintf("📋 %s", strings.ToUpper(svc)))

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.AppendHeader(table.Row{"Severity", "Check", "Region", "Resource", "Description", "Recommendation"})

	for _, f := range findings {
		resource := f.ResourceID
		if resource == "" {
			resource = f.ResourceARN
		}

		t.AppendRow(table.Row{
			formatSeverity(f.Severity),
			f.Check,
			f.Region,
			truncate(resource, 40),
			truncate(f.Description, 50),
			truncate(f.Recommendation, 40),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// serviceOrder returns the distinct services with findings, alphabetically.
func serviceOrder(findings []model.Finding) []string {
	seen := make(map[string]bool)

	var services []string

	for _, f := range findings {
		if !seen[f.Service] {
			seen[f.Service] = true

			services = append(services, f.Service)
		}
	}

	sort.Strings(services)

	return services
}

func filterByService(findings []model.Finding, svc string) []model.Finding {
	var matched []model.Finding

	for _, f := range findings {
		if f.Service == svc {
			matched = append(matched, f)
		}
	}

	return matched
}

func formatSeverity(severity string) string {
	switch severity {
	case "CRITICAL":
		return text.FgRed.Sprint("🔴 CRITICAL")
	case "HIGH":
		return text.FgHiRed.Sprint("🟠 HIGH")
	case "MEDIUM":
		return text.FgYellow.Sprint("🟡 MEDIUM")
	case "LOW":
		return text.FgCyan.Sprint("🔵 LOW")
	default:
		return severity
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	return string(runes[:maxLen-3]) + "..."
}
