// Package presenter owns the result panel: its visibility and the
// Idle, Loading, Error and Success states of one upload cycle.
package presenter

import (
	"errors"
	"sync"

	"github.com/yildizm/PcapView/internal/client"
	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/intake"
)

// State is the outer presentation state
type State int

// Presentation states of the result panel
const (
	StateIdle State = iota
	StateLoading
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Token identifies one upload cycle. Tokens only grow.
type Token uint64

// Frame is an immutable snapshot of what the panel should show
type Frame struct {
	State   State
	Visible bool
	// Message is the loading text or the error text
	Message string
	// Note is extra loading detail, such as a capture header preview
	Note    string
	Detail  bool
	Summary *Summary
	Result  *client.Result
	Token   Token
}

// Surface is the panel the presenter draws on
type Surface interface {
	Render(frame Frame)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(Frame)

// Render calls f(frame)
func (f SurfaceFunc) Render(frame Frame) { f(frame) }

// Presenter drives a single Surface. Calls are serialized; the surface is
// invoked outside the lock so it may read Frame() back.
type Presenter struct {
	mu       sync.Mutex
	surface  Surface
	messages config.MessageConfig
	seq      Token
	frame    Frame
}

// New creates a presenter bound to its surface
func New(surface Surface, messages config.MessageConfig) *Presenter {
	if surface == nil {
		surface = SurfaceFunc(func(Frame) {})
	}
	return &Presenter{surface: surface, messages: messages}
}

// Frame returns the current snapshot
func (p *Presenter) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// State returns the current outer state
func (p *Presenter) State() State {
	return p.Frame().State
}

// Begin starts a new upload cycle: the previous cycle's token stops being
// current and the panel enters Loading.
func (p *Presenter) Begin() Token {
	p.mu.Lock()
	p.seq++
	p.loadingLocked()
	frame := p.frame
	p.mu.Unlock()

	p.surface.Render(frame)
	return frame.Token
}

// Resolve applies the outcome of the cycle identified by token. Outcomes of
// superseded or closed cycles are ignored and reported as false.
func (p *Presenter) Resolve(token Token, result *client.Result, err error) bool {
	p.mu.Lock()
	if token != p.seq || p.frame.State != StateLoading {
		p.mu.Unlock()
		return false
	}
	if err != nil {
		p.errorLocked(p.ErrorMessage(err))
	} else {
		p.successLocked(result)
	}
	frame := p.frame
	p.mu.Unlock()

	p.surface.Render(frame)
	return true
}

// Annotate attaches a note to the loading panel of the current cycle
func (p *Presenter) Annotate(token Token, note string) bool {
	p.mu.Lock()
	if token != p.seq || p.frame.State != StateLoading {
		p.mu.Unlock()
		return false
	}
	p.frame.Note = note
	frame := p.frame
	p.mu.Unlock()

	p.surface.Render(frame)
	return true
}

// EnterLoading clears prior content, shows the loading indicator and opens the panel
func (p *Presenter) EnterLoading() {
	p.update(p.loadingLocked)
}

// EnterError clears prior content and shows message as plain text
func (p *Presenter) EnterError(message string) {
	p.update(func() { p.errorLocked(message) })
}

// EnterSuccess shows result, starting in summary view
func (p *Presenter) EnterSuccess(result *client.Result) {
	p.update(func() { p.successLocked(result) })
}

// ToggleDetail flips between summary and detailed view without touching the
// stored result. It reports the new mode; outside Success it does nothing.
func (p *Presenter) ToggleDetail() bool {
	p.mu.Lock()
	if p.frame.State != StateSuccess {
		detail := p.frame.Detail
		p.mu.Unlock()
		return detail
	}
	p.frame.Detail = !p.frame.Detail
	frame := p.frame
	p.mu.Unlock()

	p.surface.Render(frame)
	return frame.Detail
}

// Close hides the panel and returns to Idle. An in-flight request keeps
// running, but its outcome will no longer be applied.
func (p *Presenter) Close() {
	p.update(func() {
		p.seq++
		p.frame.State = StateIdle
		p.frame.Visible = false
		p.frame.Token = p.seq
	})
}

// Reset closes the panel and drops cached result and error data
func (p *Presenter) Reset() {
	p.update(func() {
		p.seq++
		p.frame = Frame{State: StateIdle, Token: p.seq}
	})
}

// ErrorMessage maps an error to the text shown to the user
func (p *Presenter) ErrorMessage(err error) string {
	var ve *intake.ValidationError
	if errors.As(err, &ve) && ve.Error() != "" {
		return ve.Error()
	}
	var ae *client.AnalysisError
	if errors.As(err, &ae) && ae.Error() != "" {
		return ae.Error()
	}
	return p.messages.TransportFailure
}

func (p *Presenter) update(mutate func()) {
	p.mu.Lock()
	mutate()
	frame := p.frame
	p.mu.Unlock()

	p.surface.Render(frame)
}

func (p *Presenter) loadingLocked() {
	p.frame = Frame{
		State:   StateLoading,
		Visible: true,
		Message: p.messages.Loading,
		Token:   p.seq,
	}
}

func (p *Presenter) errorLocked(message string) {
	p.frame = Frame{
		State:   StateError,
		Visible: true,
		Message: message,
		Token:   p.seq,
	}
}

func (p *Presenter) successLocked(result *client.Result) {
	summary := Summarize(result)
	p.frame = Frame{
		State:   StateSuccess,
		Visible: true,
		Summary: &summary,
		Result:  result,
		Token:   p.seq,
	}
}
