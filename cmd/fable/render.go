package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-fable/pkg/codec"
	"github.com/dd0wney/cluso-fable/pkg/constraints"
	"github.com/dd0wney/cluso-fable/pkg/engine"
	"github.com/dd0wney/cluso-fable/pkg/metrics"
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func renderReport(r *constraints.Report) string {
	var b strings.Builder

	if r.IsValid {
		b.WriteString(successStyle.Render("✓ pipeline is valid") + "\n")
	} else {
		b.WriteString(errorStyle.Render("✗ pipeline is invalid") + "\n")
	}

	for _, msg := range r.GlobalErrors {
		fmt.Fprintf(&b, "  %s %s\n", errorStyle.Render("•"), msg)
	}

	ids := make([]string, 0, len(r.BlockStates))
	for id, state := range r.BlockStates {
		if state.HasErrors {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		b.WriteString("\n" + titleStyle.Render(id) + "\n")
		for _, msg := range r.BlockStates[id].Errors {
			fmt.Fprintf(&b, "  %s %s\n", errorStyle.Render("•"), msg)
		}
	}

	if n := len(r.ViolationsBySeverity(constraints.Warning)); n > 0 {
		b.WriteString("\n" + warnStyle.Render(fmt.Sprintf("%d warning(s)", n)) + "\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d source factories available", len(r.PossibleSources))) + "\n")
	return b.String()
}

func renderStats(blocks int, r engine.ShareResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Share token") + "\n")
	fmt.Fprintf(&b, "  blocks:      %d\n", blocks)
	fmt.Fprintf(&b, "  canonical:   %d bytes\n", r.Stats.OriginalSize)
	fmt.Fprintf(&b, "  token:       %d chars\n", r.Stats.CompressedSize)
	fmt.Fprintf(&b, "  ratio:       %.3f\n", r.Stats.Ratio)

	limit := fmt.Sprintf("  limit:       %d chars", codec.MaxTokenLength)
	if r.TooLarge {
		b.WriteString(warnStyle.Render(limit+" (exceeded)") + "\n")
	} else {
		b.WriteString(limit + "\n")
	}
	return b.String()
}

func renderCatalogue(entries []pipeline.Entry) string {
	var b strings.Builder

	width := 0
	for _, e := range entries {
		width = max(width, len(e.ID.String()))
	}

	for _, e := range entries {
		line := fmt.Sprintf("%-*s  %-9s  %s", width, e.ID.String(), e.Factory.Kind, e.Factory.Title)
		if len(e.Factory.Inputs) > 0 {
			line += dimStyle.Render(" [" + strings.Join(e.Factory.Inputs, ", ") + "]")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func renderMetrics(samples []metrics.Sample) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Metrics") + "\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(s.Name), formatValue(s.Value))
	}
	return b.String()
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4f", v)
}
