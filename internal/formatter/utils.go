package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yildizm/PcapView/internal/presenter"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// Sanitize replaces control characters other than newline with their
// quoted escapes so server text cannot drive the terminal
func Sanitize(s string) string {
	clean := true
	for _, r := range s {
		if r != '\n' && (unicode.IsControl(r) || r == utf8.RuneError) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case unicode.IsControl(r):
			q := strconv.QuoteRune(r)
			b.WriteString(q[1 : len(q)-1])
		default:
			// invalid bytes decode to RuneError and are written as U+FFFD
			b.WriteRune(r)
		}
	}
	return b.String()
}

// indentJSON pretty-prints raw JSON without reordering keys
func indentJSON(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("null"), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	return out.Bytes(), nil
}

// summaryOf returns the frame's summary, projecting the result when needed
func summaryOf(frame presenter.Frame) presenter.Summary {
	if frame.Summary != nil {
		return *frame.Summary
	}
	return presenter.Summarize(frame.Result)
}

// rawOf returns the verbatim result body
func rawOf(frame presenter.Frame) json.RawMessage {
	if frame.Result == nil {
		return nil
	}
	return frame.Result.Raw()
}
