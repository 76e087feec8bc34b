package formatter

import (
	"fmt"

	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/presenter"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(frame presenter.Frame) ([]byte, error)
}

// New returns the formatter for format ("text", "json" or "markdown")
func New(format string, color bool, messages config.MessageConfig) (Formatter, error) {
	switch format {
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(messages), nil
	case "text", "terminal", "":
		return NewTerminal(color, messages), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
