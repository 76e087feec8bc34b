package monitor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportFormat represents the output format for reports
type ReportFormat string

const (
	ReportFormatJSON     ReportFormat = "json"
	ReportFormatText     ReportFormat = "text"
	ReportFormatMarkdown ReportFormat = "markdown"
)

// FormatReport renders a session snapshot
func FormatReport(snapshot *Snapshot, format ReportFormat) (string, error) {
	switch format {
	case ReportFormatJSON:
		return formatJSON(snapshot)
	case ReportFormatText, "":
		return formatText(snapshot), nil
	case ReportFormatMarkdown, "md":
		return formatMarkdown(snapshot), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(snapshot *Snapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatText(snapshot *Snapshot) string {
	var sb strings.Builder

	sb.WriteString("PcapView Session Report\n")
	sb.WriteString("=======================\n\n")

	fmt.Fprintf(&sb, "Started: %s\n", snapshot.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Duration: %s\n", snapshot.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Captures analyzed: %d (%d bytes uploaded)\n\n", snapshot.Captures, snapshot.BytesUploaded)

	sb.WriteString("Operations:\n")
	for _, op := range snapshot.Operations {
		if op.Count == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %-9s count=%d failed=%d avg=%s min=%s max=%s\n",
			op.Operation, op.Count, op.ErrorCount,
			formatDuration(op.AvgTime), formatDuration(op.MinTime), formatDuration(op.MaxTime))
	}

	return sb.String()
}

func formatMarkdown(snapshot *Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# PcapView Session Report\n\n")
	fmt.Fprintf(&sb, "**Started:** %s  \n", snapshot.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "**Duration:** %s  \n", snapshot.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "**Captures analyzed:** %d (%d bytes uploaded)\n\n", snapshot.Captures, snapshot.BytesUploaded)

	sb.WriteString("| Operation | Count | Failed | Avg | Min | Max |\n")
	sb.WriteString("|-----------|-------|--------|-----|-----|-----|\n")
	for _, op := range snapshot.Operations {
		fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s | %s |\n",
			op.Operation, op.Count, op.ErrorCount,
			formatDuration(op.AvgTime), formatDuration(op.MinTime), formatDuration(op.MaxTime))
	}

	return sb.String()
}

func formatDuration(nanos int64) string {
	d := time.Duration(nanos)
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
}
