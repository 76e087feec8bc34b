package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/presenter"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	messages config.MessageConfig
	now      func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(messages config.MessageConfig) Formatter {
	return &markdownFormatter{messages: messages, now: time.Now}
}

func (f *markdownFormatter) Format(frame presenter.Frame) ([]byte, error) {
	if !frame.Visible {
		return nil, nil
	}

	var b strings.Builder

	// Header with generation timestamp
	b.WriteString("# PCAP Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))
	if frame.Result != nil && frame.Result.RequestID() != "" {
		fmt.Fprintf(&b, "Request ID: `%s`\n\n", Sanitize(frame.Result.RequestID()))
	}

	switch frame.State {
	case presenter.StateLoading:
		fmt.Fprintf(&b, "_%s_\n", Sanitize(frame.Message))
	case presenter.StateError:
		b.WriteString("## Error\n\n")
		b.WriteString("```\n" + Sanitize(frame.Message) + "\n```\n")
	case presenter.StateSuccess:
		if frame.Detail {
			return f.withDetail(&b, frame)
		}
		return f.withSummary(&b, frame)
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) withSummary(b *strings.Builder, frame presenter.Frame) ([]byte, error) {
	summary := summaryOf(frame)

	b.WriteString("## Table of Contents\n")
	b.WriteString("- [Summary](#summary)\n")
	b.WriteString("- [Unique IPs](#unique-ips)\n\n")

	b.WriteString("## Summary\n\n")
	body, err := indentJSON(summary.Summary)
	if err != nil {
		return nil, err
	}
	b.WriteString("```json\n")
	b.Write(body)
	b.WriteString("\n```\n\n")

	b.WriteString("## Unique IPs\n\n")
	b.WriteString("| Direction | Address |\n")
	b.WriteString("|-----------|---------|\n")
	for _, addr := range summary.UniqueIPs.Sources {
		fmt.Fprintf(b, "| Source | %s |\n", Sanitize(addr))
	}
	for _, addr := range summary.UniqueIPs.Destinations {
		fmt.Fprintf(b, "| Destination | %s |\n", Sanitize(addr))
	}
	fmt.Fprintf(b, "\n%s sources, %s destinations\n",
		formatNumber(len(summary.UniqueIPs.Sources)),
		formatNumber(len(summary.UniqueIPs.Destinations)))

	return []byte(b.String()), nil
}

func (f *markdownFormatter) withDetail(b *strings.Builder, frame presenter.Frame) ([]byte, error) {
	fmt.Fprintf(b, "## %s\n\n", f.messages.DetailLabel)

	body, err := indentJSON(rawOf(frame))
	if err != nil {
		return nil, err
	}
	b.WriteString("```json\n")
	b.Write(body)
	b.WriteString("\n```\n")

	return []byte(b.String()), nil
}
