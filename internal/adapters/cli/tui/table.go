package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/devbush/batchinfer/internal/domain"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(labelStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return dimCellStyle
			}
			return cellStyle
		})
}

// RenderHistory renders past runs as a table
func RenderHistory(runs []domain.Snapshot) string {
	if len(runs) == 0 {
		return labelStyle.Render("No runs recorded yet.")
	}

	t := newTable("Run", "When", "Status", "Dataset", "Rows", "OK", "Failed", "Avg", "Runtime")
	for _, r := range runs {
		id := r.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		t.Row(
			id,
			FormatWhen(r.Timestamp),
			string(r.Status),
			r.DatasetType,
			FormatCount(r.RowsSeen),
			FormatCount(r.Processed),
			FormatCount(r.Failed),
			fmt.Sprintf("%.4f", r.AvgScore),
			FormatRuntime(r.RuntimeS),
		)
	}
	return t.String()
}

// RenderSummary renders a group summary as a table, showing at most limit groups
func RenderSummary(report domain.GroupReport, limit int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s by %s", report.DatasetType, report.GroupCol)))
	b.WriteString("\n")

	groups := report.Groups
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	t := newTable("Group", "Total", "Positive", "Negative", "Avg score")
	for _, g := range groups {
		t.Row(g.Group, FormatCount(g.Total), FormatCount(g.Positive), FormatCount(g.Negative), fmt.Sprintf("%.6f", g.AvgScore))
	}
	b.WriteString(t.String())

	if hidden := len(report.Groups) - len(groups); hidden > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("… %d more groups", hidden)))
	}
	return b.String()
}

// RenderRunResult renders the end-of-run report printed by the run command
func RenderRunResult(snap domain.Snapshot, outputs map[string]string) string {
	var b strings.Builder
	status := StatusStyle(snap.Status).Render(string(snap.Status))
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Run"), status)

	field := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), valueStyle.Render(value))
	}
	field("Run ID", snap.RunID)
	field("Rows", FormatCount(snap.RowsSeen))
	field("Processed", FormatCount(snap.Processed))
	field("Failed", FormatCount(snap.Failed))
	if snap.Skipped+snap.Invalid > 0 {
		field("Dropped", fmt.Sprintf("%s empty, %s without text", FormatCount(snap.Skipped), FormatCount(snap.Invalid)))
	}
	field("Sentiment", fmt.Sprintf("%s positive / %s negative / %s neutral",
		FormatCount(snap.Positive), FormatCount(snap.Negative), FormatCount(snap.Neutral)))
	field("Avg score", fmt.Sprintf("%.6f", snap.AvgScore))
	field("Runtime", fmt.Sprintf("%s (%s)", FormatRuntime(snap.RuntimeS), FormatRate(snap.Processed+snap.Failed, snap.RuntimeS)))

	for _, msg := range snap.ErrorSamples {
		fmt.Fprintf(&b, "  %s %s\n", errStyle.Render("✗"), msg)
	}

	if len(outputs) > 0 {
		b.WriteString("\n")
		for _, label := range []string{"Output", "Live", "History", "Summary"} {
			if path, ok := outputs[label]; ok {
				field(label, path)
			}
		}
	}
	return b.String()
}
