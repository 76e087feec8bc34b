package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/intake"
	"github.com/yildizm/PcapView/internal/presenter"
)

// Submitter sends a validated capture for analysis
type Submitter interface {
	Submit(ctx context.Context, file *intake.SelectedFile) (*client.Result, error)
}

// DropSource reports files dropped into a watched directory
type DropSource interface {
	Drops() <-chan string
	Errors() <-chan error
}

// submitResultMsg carries the outcome of one upload cycle
type submitResultMsg struct {
	token  presenter.Token
	result *client.Result
	err    error
}

// headerInfoMsg carries the capture header preview for one upload cycle
type headerInfoMsg struct {
	token presenter.Token
	info  *intake.HeaderInfo
}

type fileDroppedMsg struct {
	path string
}

type dropErrorMsg struct {
	err error
}

// dropClosedMsg is sent once the drop source stops delivering
type dropClosedMsg struct{}

// submitCommand uploads file and reports back with the cycle's token
func submitCommand(ctx context.Context, submitter Submitter, token presenter.Token, file *intake.SelectedFile) tea.Cmd {
	return func() tea.Msg {
		result, err := submitter.Submit(ctx, file)
		return submitResultMsg{token: token, result: result, err: err}
	}
}

// inspectCommand reads the capture header while the upload runs
func inspectCommand(token presenter.Token, file *intake.SelectedFile) tea.Cmd {
	return func() tea.Msg {
		info, err := intake.Inspect(file)
		if err != nil {
			return nil
		}
		return headerInfoMsg{token: token, info: info}
	}
}

// waitForDrop blocks until the drop source reports something
func waitForDrop(source DropSource) tea.Cmd {
	return func() tea.Msg {
		select {
		case path, ok := <-source.Drops():
			if !ok {
				return dropClosedMsg{}
			}
			return fileDroppedMsg{path: path}
		case err, ok := <-source.Errors():
			if !ok {
				return dropClosedMsg{}
			}
			return dropErrorMsg{err: err}
		}
	}
}
