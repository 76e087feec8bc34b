package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/intake"
	"github.com/yildizm/PcapView/internal/presenter"
)

type fakeSubmitter struct {
	mu     sync.Mutex
	calls  []string
	result *client.Result
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, file *intake.SelectedFile) (*client.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, file.Name())
	return f.result, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDrops struct {
	drops  chan string
	errors chan error
}

func (f *fakeDrops) Drops() <-chan string { return f.drops }
func (f *fakeDrops) Errors() <-chan error { return f.errors }

func newTestModel(t *testing.T, submitter Submitter) *Model {
	t.Helper()
	m := NewModel(Options{Config: config.DefaultConfig(), Submitter: submitter})
	t.Cleanup(m.cancel)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func writeCapture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("capture bytes"), 0o600); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}
	return path
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// collect runs cmd and every command it batches, returning the messages
// the upload produced. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	switch msg.(type) {
	case submitResultMsg, headerInfoMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func submitPath(m *Model, path string) []tea.Msg {
	m.picker.SetValue(path)
	_, cmd := m.Update(key("enter"))
	return collect(cmd)
}

func mustResult(t *testing.T, body string) *client.Result {
	t.Helper()
	r, err := client.NewResult([]byte(body))
	if err != nil {
		t.Fatalf("NewResult failed: %v", err)
	}
	return r
}

func TestModel_SubmitSuccess(t *testing.T) {
	submitter := &fakeSubmitter{result: mustResult(t, `{"summary": {"packet_count": 1}, "packets": [{"source_ip": "10.0.0.1", "destination_ip": "10.0.0.2"}]}`)}
	m := newTestModel(t, submitter)

	msgs := submitPath(m, writeCapture(t, "capture.pcap"))

	if m.frame.State != presenter.StateLoading || !m.frame.Visible {
		t.Fatalf("Expected visible loading panel, got %+v", m.frame)
	}
	if m.picker.Value() != "" {
		t.Error("Picker should be cleared after a selection")
	}
	if submitter.count() != 1 || len(msgs) != 1 {
		t.Fatalf("Expected one upload, got %d calls and %d messages", submitter.count(), len(msgs))
	}

	m.Update(msgs[0])

	if m.frame.State != presenter.StateSuccess {
		t.Fatalf("Expected success, got %s", m.frame.State)
	}
	if m.frame.Summary == nil || len(m.frame.Summary.UniqueIPs.Sources) != 1 {
		t.Errorf("Unexpected summary %+v", m.frame.Summary)
	}
}

func TestModel_ValidationErrorShownWithoutUpload(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want string
	}{
		{name: "wrong extension", path: func(t *testing.T) string { return writeCapture(t, "notes.txt") }, want: "Please select a PCAP file"},
		{name: "nothing selected", path: func(*testing.T) string { return "" }, want: "Please select a file"},
		{name: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "gone.pcap") }, want: "Please select a file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &fakeSubmitter{}
			m := newTestModel(t, submitter)

			submitPath(m, tt.path(t))

			if m.frame.State != presenter.StateError || !m.frame.Visible {
				t.Fatalf("Expected visible error panel, got %+v", m.frame)
			}
			if m.frame.Message != tt.want {
				t.Errorf("Message = %q, want %q", m.frame.Message, tt.want)
			}
			if submitter.count() != 0 {
				t.Error("Invalid selections must not be uploaded")
			}
		})
	}
}

func TestModel_BackendErrorShown(t *testing.T) {
	submitter := &fakeSubmitter{err: &client.AnalysisError{Kind: client.RequestFailed, Message: "corrupt capture"}}
	m := newTestModel(t, submitter)

	for _, msg := range submitPath(m, writeCapture(t, "capture.pcap")) {
		m.Update(msg)
	}

	if m.frame.State != presenter.StateError || m.frame.Message != "corrupt capture" {
		t.Errorf("Unexpected frame %+v", m.frame)
	}
}

func TestModel_EnterOutsidePickerKeepsResult(t *testing.T) {
	submitter := &fakeSubmitter{result: mustResult(t, `{"summary": {"packet_count": 1}}`)}
	m := newTestModel(t, submitter)
	for _, msg := range submitPath(m, writeCapture(t, "capture.pcap")) {
		m.Update(msg)
	}
	if m.picker.Focused() || m.frame.State != presenter.StateSuccess {
		t.Fatalf("Expected a success panel with the picker blurred, got %+v", m.frame)
	}

	_, cmd := m.Update(key("enter"))

	if cmd != nil {
		t.Error("Enter outside the picker should not start anything")
	}
	if m.frame.State != presenter.StateSuccess || !m.frame.Visible {
		t.Errorf("Enter outside the picker must keep the result, got %s %q", m.frame.State, m.frame.Message)
	}
	if submitter.count() != 1 {
		t.Errorf("Expected one upload, got %d", submitter.count())
	}
}

func TestView_ErrorEscapesControlCharacters(t *testing.T) {
	SetColorDisabled(true)
	defer SetColorDisabled(false)

	submitter := &fakeSubmitter{err: &client.AnalysisError{Kind: client.RequestFailed, Message: "bad\x1b]0;pwned\x07\x1b[2J"}}
	m := newTestModel(t, submitter)
	for _, msg := range submitPath(m, writeCapture(t, "capture.pcap")) {
		m.Update(msg)
	}

	view := m.View()
	if strings.Contains(view, "\x1b[2J") || strings.Contains(view, "\x07") {
		t.Errorf("View carries raw control sequences: %q", view)
	}
	if !strings.Contains(view, `bad\x1b]0;pwned\a\x1b[2J`) {
		t.Errorf("View should show the escaped message:\n%s", view)
	}
}

func TestModel_SelectionsIgnoredWhileLoading(t *testing.T) {
	submitter := &fakeSubmitter{result: mustResult(t, `{}`)}
	m := newTestModel(t, submitter)
	m.drops = &fakeDrops{drops: make(chan string), errors: make(chan error)}

	path := writeCapture(t, "capture.pcap")
	submitPath(m, path)
	token := m.frame.Token

	_, _ = m.Update(fileDroppedMsg{path: path})
	_, _ = m.Update(key("enter"))

	if m.frame.Token != token || m.frame.State != presenter.StateLoading {
		t.Errorf("A second selection must not start a new cycle: %+v", m.frame)
	}
	if submitter.count() != 1 {
		t.Errorf("Expected one upload, got %d", submitter.count())
	}
}

func TestModel_DropStartsUpload(t *testing.T) {
	submitter := &fakeSubmitter{result: mustResult(t, `{}`)}
	m := newTestModel(t, submitter)
	m.drops = &fakeDrops{drops: make(chan string), errors: make(chan error)}

	_, cmd := m.Update(fileDroppedMsg{path: writeCapture(t, "dropped.pcap")})
	if cmd == nil {
		t.Fatal("Expected commands for the upload and the next drop")
	}
	if m.frame.State != presenter.StateLoading {
		t.Errorf("Expected loading, got %s", m.frame.State)
	}
}

func TestModel_CloseDiscardsLateResponse(t *testing.T) {
	submitter := &fakeSubmitter{result: mustResult(t, `{}`)}
	m := newTestModel(t, submitter)

	msgs := submitPath(m, writeCapture(t, "capture.pcap"))
	m.Update(key("esc"))

	if m.frame.Visible {
		t.Fatal("Esc should close the panel")
	}

	for _, msg := range msgs {
		m.Update(msg)
	}
	if m.frame.Visible || m.frame.State != presenter.StateIdle {
		t.Errorf("Late response must not reopen the panel: %+v", m.frame)
	}
}

func TestModel_ToggleDetail(t *testing.T) {
	submitter := &fakeSubmitter{result: mustResult(t, `{"summary": 1}`)}
	m := newTestModel(t, submitter)
	for _, msg := range submitPath(m, writeCapture(t, "capture.pcap")) {
		m.Update(msg)
	}

	m.Update(key("tab"))
	if !m.frame.Detail {
		t.Error("Tab should switch to detail view")
	}
	m.Update(key("d"))
	if m.frame.Detail {
		t.Error("d should switch back to summary view")
	}
}

func TestModel_QuitOnlyOutsidePicker(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})

	m.Update(key("q"))
	if m.quitting || m.picker.Value() != "q" {
		t.Fatalf("q should be typed into the focused picker, got %q", m.picker.Value())
	}

	m.Update(key("esc"))
	_, cmd := m.Update(key("q"))
	if !m.quitting || cmd == nil {
		t.Error("q should quit once the picker is not focused")
	}
	if m.ctx.Err() == nil {
		t.Error("Quitting should cancel in-flight uploads")
	}
}

func TestModel_ResetClearsPanel(t *testing.T) {
	m := newTestModel(t, &fakeSubmitter{})
	submitPath(m, "")

	m.Update(key("ctrl+r"))

	if m.frame.Visible || m.frame.Message != "" {
		t.Errorf("Reset should drop the panel, got %+v", m.frame)
	}
	if !m.picker.Focused() {
		t.Error("Reset should focus the picker")
	}
}

func TestModel_NoSubmitter(t *testing.T) {
	m := newTestModel(t, nil)
	submitPath(m, writeCapture(t, "capture.pcap"))

	if m.frame.State != presenter.StateError {
		t.Errorf("Expected error without a backend, got %s", m.frame.State)
	}
}

func TestWaitForDrop(t *testing.T) {
	source := &fakeDrops{drops: make(chan string, 1), errors: make(chan error, 1)}

	source.drops <- "/tmp/a.pcap"
	if msg, ok := waitForDrop(source)().(fileDroppedMsg); !ok || msg.path != "/tmp/a.pcap" {
		t.Errorf("Expected drop message, got %#v", msg)
	}

	source.errors <- errors.New("overflow")
	if _, ok := waitForDrop(source)().(dropErrorMsg); !ok {
		t.Error("Expected drop error message")
	}

	close(source.drops)
	if _, ok := waitForDrop(source)().(dropClosedMsg); !ok {
		t.Error("Expected closed message")
	}
}

func TestView(t *testing.T) {
	SetColorDisabled(true)
	defer SetColorDisabled(false)

	m := newTestModel(t, &fakeSubmitter{})
	submitPath(m, writeCapture(t, "notes.txt"))

	view := m.View()
	for _, want := range []string{"PcapView", "Please select a PCAP file"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}

func TestSetThemeByName(t *testing.T) {
	defer SetThemeByName("default")

	for _, name := range GetAvailableThemes() {
		if !SetThemeByName(name) {
			t.Errorf("Theme %s should exist", name)
		}
		if GetTheme().Name != name {
			t.Errorf("Expected active theme %s, got %s", name, GetTheme().Name)
		}
	}
	if SetThemeByName("neon") {
		t.Error("Unknown theme should be rejected")
	}
}
