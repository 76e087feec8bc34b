package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/emoji"
	"github.com/yildizm/PcapView/internal/formatter"
	"github.com/yildizm/PcapView/internal/intake"
	"github.com/yildizm/PcapView/internal/logger"
	"github.com/yildizm/PcapView/internal/presenter"
)

// Options configures the TUI
type Options struct {
	Config    *config.Config
	Submitter Submitter
	// DropZone is optional
	DropZone DropSource
	Logger   *logger.Logger
}

// Model is the interactive upload screen: a path picker above the result panel
type Model struct {
	cfg       *config.Config
	validator *intake.Validator
	submitter Submitter
	presenter *presenter.Presenter
	drops     DropSource
	report    formatter.Formatter
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	picker   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	// frame is the last frame the presenter rendered
	frame presenter.Frame

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the TUI model
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	picker := textinput.New()
	picker.Placeholder = "path/to/capture" + cfg.Intake.Extension
	picker.Prompt = emoji.GetEmoji("capture") + " "
	picker.CharLimit = 4096
	picker.Focus()

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(GetStyles().Spinner),
	)

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		cfg:       cfg,
		validator: intake.NewValidator(cfg, log),
		submitter: opts.Submitter,
		drops:     opts.DropZone,
		report:    formatter.NewTerminal(false, cfg.Messages),
		log:       log.WithComponent("tui"),
		ctx:       ctx,
		cancel:    cancel,
		picker:    picker,
		spinner:   spin,
		viewport:  viewport.New(80, 20),
	}
	m.presenter = presenter.New(m, cfg.Messages)
	return m
}

// Render receives presenter frames. The presenter is only driven from
// Update, so this runs on the bubbletea goroutine.
func (m *Model) Render(frame presenter.Frame) {
	m.frame = frame
	if frame.State != presenter.StateSuccess {
		return
	}

	content, err := m.report.Format(frame)
	if err != nil {
		content = []byte(err.Error())
	}
	m.viewport.SetContent(string(content))
	m.viewport.GotoTop()
}

// Presenter exposes the result panel state
func (m *Model) Presenter() *presenter.Presenter {
	return m.presenter
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.drops != nil {
		cmds = append(cmds, waitForDrop(m.drops))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and key bindings
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if m.frame.State != presenter.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitResultMsg:
		if !m.presenter.Resolve(msg.token, msg.result, msg.err) {
			m.log.Debug("discarding response for superseded upload %d", msg.token)
		}
		return m, nil

	case headerInfoMsg:
		m.presenter.Annotate(msg.token, msg.info.String())
		return m, nil

	case fileDroppedMsg:
		cmd := m.submit(msg.path)
		return m, tea.Batch(cmd, waitForDrop(m.drops))

	case dropErrorMsg:
		m.log.Warn("drop zone error: %v", msg.err)
		return m, waitForDrop(m.drops)

	case dropClosedMsg:
		m.drops = nil
		return m, nil
	}

	return m, m.updatePicker(msg)
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.picker.Width = max(10, msg.Width-10)
	m.viewport.Width = max(10, msg.Width-4)
	// title, picker box, panel border and help line
	m.viewport.Height = max(3, msg.Height-10)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "ctrl+r":
		m.presenter.Reset()
		m.picker.Reset()
		return m, m.picker.Focus()
	case "tab":
		m.presenter.ToggleDetail()
		return m, nil
	case "enter":
		if !m.picker.Focused() {
			return m, nil
		}
		path := ""
		if m.frame.State != presenter.StateLoading {
			path = intake.TakeSelection(&m.picker)
			m.picker.Blur()
		}
		return m, m.submit(path)
	}

	if m.picker.Focused() {
		if msg.String() == "esc" {
			m.picker.Blur()
			return m, nil
		}
		return m, m.updatePicker(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "esc":
		m.presenter.Close()
	case "d":
		m.presenter.ToggleDetail()
	case "o", "/":
		return m, m.picker.Focus()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

// submit validates path and starts an upload cycle. While a cycle is
// loading every new selection is ignored.
func (m *Model) submit(path string) tea.Cmd {
	if m.frame.State == presenter.StateLoading {
		m.log.Debug("upload in progress, ignoring %q", path)
		return nil
	}

	file, err := m.validator.ValidatePath(path)
	if err != nil {
		m.presenter.EnterError(m.presenter.ErrorMessage(err))
		return nil
	}
	if m.submitter == nil {
		m.presenter.EnterError(m.cfg.Messages.TransportFailure)
		return nil
	}

	token := m.presenter.Begin()
	cmds := []tea.Cmd{
		m.spinner.Tick,
		submitCommand(m.ctx, m.submitter, token, file),
	}
	if m.cfg.Intake.InspectHeader {
		cmds = append(cmds, inspectCommand(token, file))
	}
	return tea.Batch(cmds...)
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	styles := GetStyles()

	title := styles.Title.Render(emoji.GetEmoji("network") + " PcapView")
	if m.drops != nil {
		title += styles.Muted.Render("  " + emoji.GetEmoji("drop") + " drop zone active")
	}

	pickerStyle := styles.Picker
	if m.picker.Focused() {
		pickerStyle = styles.Focused
	}
	picker := pickerStyle.Width(max(10, m.width-4)).Render(m.picker.View())

	sections := []string{title, picker}
	if m.frame.Visible {
		sections = append(sections, m.renderPanel(styles))
	}
	sections = append(sections, styles.Muted.Render(m.helpLine()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderPanel(styles *Styles) string {
	width := max(10, m.width-4)

	switch m.frame.State {
	case presenter.StateLoading:
		lines := []string{m.spinner.View() + " " + formatter.Sanitize(m.frame.Message)}
		if m.frame.Note != "" {
			lines = append(lines, styles.Muted.Render(formatter.Sanitize(m.frame.Note)))
		}
		return styles.Panel.Width(width).Render(strings.Join(lines, "\n"))

	case presenter.StateError:
		// plain text with control characters escaped
		text := emoji.GetEmoji("error") + " " + formatter.Sanitize(m.frame.Message)
		return styles.ErrorPanel.Width(width).Render(styles.Error.Render(text))

	case presenter.StateSuccess:
		mode := "summary"
		if m.frame.Detail {
			mode = strings.ToLower(m.cfg.Messages.DetailLabel)
		}
		header := styles.Success.Render(emoji.GetEmoji("success")+" Analysis complete") +
			styles.Muted.Render(fmt.Sprintf("  %s  %3.f%%", mode, m.viewport.ScrollPercent()*100))
		return styles.Panel.Width(width).Render(header + "\n" + m.viewport.View())
	}

	return ""
}

func (m *Model) helpLine() string {
	if m.picker.Focused() {
		return "enter: analyze • esc: leave input • tab: summary/detail • ctrl+r: reset • ctrl+c: quit"
	}
	return "o: choose file • tab/d: summary/detail • ↑/↓: scroll • esc: close • ctrl+r: reset • q: quit"
}

// Run runs the TUI until the user quits
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
