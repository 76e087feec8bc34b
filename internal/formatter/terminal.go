package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/emoji"
	"github.com/yildizm/PcapView/internal/presenter"
)

// terminalFormatter formats frames as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts     *termfmt.TerminalOptions
	messages config.MessageConfig
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool, messages config.MessageConfig) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts, messages: messages}
}

func (f *terminalFormatter) Format(frame presenter.Frame) ([]byte, error) {
	if !frame.Visible {
		return nil, nil
	}

	var b strings.Builder

	switch frame.State {
	case presenter.StateLoading:
		f.writeLoading(&b, frame)
	case presenter.StateError:
		f.writeError(&b, frame)
	case presenter.StateSuccess:
		f.writeHeader(&b)
		if frame.Detail {
			if err := f.writeDetail(&b, frame); err != nil {
				return nil, err
			}
		} else {
			if err := f.writeSummary(&b, frame); err != nil {
				return nil, err
			}
		}
	}

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeLoading(b *strings.Builder, frame presenter.Frame) {
	symbol := f.symbol("info", "[..]")
	fmt.Fprintf(b, "%s %s\n", symbol, Sanitize(frame.Message))
	if frame.Note != "" {
		b.WriteString("└─ " + Sanitize(frame.Note) + "\n")
	}
}

// writeError prints the message as plain text with control characters escaped
func (f *terminalFormatter) writeError(b *strings.Builder, frame presenter.Frame) {
	symbol := f.symbol("error", "[ERR]")
	fmt.Fprintf(b, "%s %s\n", symbol, Sanitize(frame.Message))
}

// writeSummary writes the summary field and the unique endpoint sets with tree-style formatting
func (f *terminalFormatter) writeSummary(b *strings.Builder, frame presenter.Frame) error {
	summary := summaryOf(frame)

	symbol := f.symbol("summary", "[SUM]")
	b.WriteString(symbol + " Summary\n")
	body, err := indentJSON(summary.Summary)
	if err != nil {
		return err
	}
	b.Write(body)
	b.WriteString("\n\n")

	symbol = f.symbol("statistics", "[IPS]")
	b.WriteString(symbol + " Unique IPs\n")

	items := []termfmt.TreeItem{
		f.addressItem("Sources", summary.UniqueIPs.Sources, false),
		f.addressItem("Destinations", summary.UniqueIPs.Destinations, true),
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")

	hint := f.symbol("help", "[?]")
	fmt.Fprintf(b, "\n%s Press tab for the %s\n", hint, strings.ToLower(f.messages.DetailLabel))
	return nil
}

func (f *terminalFormatter) addressItem(label string, addrs []string, last bool) termfmt.TreeItem {
	children := make([]termfmt.TreeItem, 0, len(addrs))
	for i, addr := range addrs {
		children = append(children, termfmt.TreeItem{Label: Sanitize(addr), Last: i == len(addrs)-1})
	}
	return termfmt.TreeItem{
		Label:    label,
		Value:    formatNumber(len(addrs)),
		Children: children,
		Last:     last,
	}
}

// writeDetail writes the full response, pretty-printed with its key order intact
func (f *terminalFormatter) writeDetail(b *strings.Builder, frame presenter.Frame) error {
	symbol := f.symbol("target", "[>]")
	fmt.Fprintf(b, "%s %s\n", symbol, f.messages.DetailLabel)
	b.WriteString(strings.Repeat("─", 50) + "\n")

	body, err := indentJSON(rawOf(frame))
	if err != nil {
		return err
	}
	b.Write(body)
	b.WriteString("\n")
	return nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "PCAP Analysis Results"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) symbol(key, fallback string) string {
	symbol := termfmt.GetEmoji(key, f.opts)
	if symbol == "" {
		return fallback
	}
	return symbol
}
