package formatter

import (
	"encoding/json"

	"github.com/yildizm/PcapView/internal/presenter"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// StatusOutput is written for frames that carry no analysis
type StatusOutput struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Format writes the summary projection, or the raw response in detail mode.
// Loading and error frames become a StatusOutput.
func (f *jsonFormatter) Format(frame presenter.Frame) ([]byte, error) {
	if !frame.Visible {
		return nil, nil
	}

	if frame.State != presenter.StateSuccess {
		return json.MarshalIndent(&StatusOutput{
			State:   frame.State.String(),
			Message: frame.Message,
			Note:    frame.Note,
		}, "", "  ")
	}

	if frame.Detail {
		return indentJSON(rawOf(frame))
	}

	summary := summaryOf(frame)
	return json.MarshalIndent(&summary, "", "  ")
}
