// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/ironcore-dev/oom-southbound/internal/scenario"
	"github.com/ironcore-dev/oom-southbound/internal/sysinfo"
)

// Format selects the encoding of a Report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves an output format by name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Report is a scenario result together with the host it ran on.
type Report struct {
	Host   sysinfo.Host     `json:"host" yaml:"host"`
	Counts scenario.Counts  `json:"counts" yaml:"counts"`
	Result *scenario.Result `json:"result" yaml:"result"`
}

// New creates a Report of result.
func New(host sysinfo.Host, result *scenario.Result) Report {
	return Report{
		Host:   host,
		Counts: result.Counts(),
		Result: result,
	}
}

// Write encodes the report in the given format. Color only applies to text.
func Write(w io.Writer, r Report, format Format, color bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, r, newStyles(color))
	}
	return fmt.Errorf("unknown output format %q", format)
}

type styles struct {
	color  bool
	header lipgloss.Style
	status map[scenario.Status]lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(color bool) styles {
	return styles{
		color:  color,
		header: lipgloss.NewStyle().Bold(true),
		status: map[scenario.Status]lipgloss.Style{
			scenario.StatusPassed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5faf5f")),
			scenario.StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#d75f5f")).Bold(true),
			scenario.StatusErrored: lipgloss.NewStyle().Foreground(lipgloss.Color("#d7875f")).Bold(true),
			scenario.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#585858")),
		},
		dim: lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a")),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

func writeText(w io.Writer, r Report, s styles) error {
	var b strings.Builder
	res := r.Result
	fmt.Fprintln(&b, s.render(s.header, fmt.Sprintf("Scenario %s", res.Scenario)))
	fmt.Fprintln(&b, s.render(s.dim, fmt.Sprintf("run %s on %s", res.ID, r.Host)))

	for _, step := range res.Steps {
		fmt.Fprintln(&b)
		tag := fmt.Sprintf("[%-7s]", step.Status)
		fmt.Fprintf(&b, "%s %s\n", s.render(s.status[step.Status], tag), s.render(s.header, step.Name))
		for _, line := range step.Lines {
			fmt.Fprintln(&b, line)
		}
		for _, c := range step.Checks {
			if c.Passed {
				continue
			}
			fmt.Fprintf(&b, "  check %s: expected %s, got %s\n", c.Name, c.Expected, c.Actual)
		}
		if step.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", step.Error)
		}
	}

	fmt.Fprintln(&b)
	summary := fmt.Sprintf("%d passed, %d failed, %d errored, %d skipped in %s",
		r.Counts.Passed, r.Counts.Failed, r.Counts.Errored, r.Counts.Skipped, res.Duration.Round(time.Microsecond))
	fmt.Fprintln(&b, s.render(s.header, summary))
	if res.Aborted {
		fmt.Fprintln(&b, s.render(s.status[scenario.StatusFailed], "run aborted"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
