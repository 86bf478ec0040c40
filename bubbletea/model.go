package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pwalczyk/trickle"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the stream viewer. It shows the prompt,
// then renders events into blocks as they arrive: a collapsible reasoning
// summary, the output text, and any function call items. A status line at
// the bottom shows progress and, once the response completes, token usage.
type Model struct {
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	run    StreamFunc
	prompt string
	styles Styles

	spinner spinner.Model
	blocks  []MessageBlock
	summary *SummaryBlock
	output  *OutputBlock
	usage   trickle.Usage

	streaming bool
	cancel    context.CancelFunc
	eventCh   chan trickle.Event
	doneCh    chan error
	err       error
	ready     bool
	width     int
}

// New creates a stream viewer Model for one exchange.
func New(run StreamFunc, prompt string, theme trickle.Theme) Model {
	styles := NewStyles(theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Muted

	return Model{
		run:     run,
		prompt:  prompt,
		styles:  styles,
		spinner: sp,
		eventCh: make(chan trickle.Event, 256),
		doneCh:  make(chan error, 1),
		width:   80,
	}
}

// Streaming returns whether events are still arriving.
func (m Model) Streaming() bool { return m.streaming }

// Err returns the stream's terminal error, if any.
func (m Model) Err() error { return m.err }

// Usage returns token usage from the final lifecycle event, if one arrived.
func (m Model) Usage() trickle.Usage { return m.usage }

// Text returns the output text received so far.
func (m Model) Text() string {
	if m.output == nil {
		return ""
	}
	return m.output.Text()
}

// Init implements tea.Model. It starts the stream immediately.
func (m Model) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	run := m.run
	eventCh, doneCh := m.eventCh, m.doneCh
	start := func() tea.Msg {
		go func() {
			// After quit nobody receives; the ctx arm keeps the stream
			// goroutine from blocking on a send forever.
			err := run(ctx, func(evt trickle.Event) {
				select {
				case eventCh <- evt:
				case <-ctx.Done():
				}
			})
			close(eventCh)
			doneCh <- err
		}()
		return startedMsg{cancel: cancel}
	}
	return tea.Batch(m.spinner.Tick, start, listenForEvent(eventCh, doneCh))
}

// startedMsg delivers the cancel function for the stream's context.
type startedMsg struct {
	cancel context.CancelFunc
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		m.streaming = true
		m.cancel = msg.cancel
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if !m.ready {
			m.Viewport = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = msg.Height - 2
		}
		m.Viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		if m.ready {
			m.Viewport.SetContent(m.renderContent())
			m.Viewport.GotoBottom()
		}
		return m, listenForEvent(m.eventCh, m.doneCh)

	case StreamDoneMsg:
		m.streaming = false
		m.cancel = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		if m.ready {
			m.Viewport.SetContent(m.renderContent())
			m.Viewport.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Viewport always receives remaining messages for scrolling.
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "tab":
		if m.summary != nil {
			updated, _ := m.summary.Update(ToggleMsg{})
			m.summary = updated.(*SummaryBlock)
			if m.ready {
				m.Viewport.SetContent(m.renderContent())
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// processEvent folds one stream event into the block list.
func (m Model) processEvent(evt trickle.Event) Model {
	switch evt.Kind {
	case trickle.KindSummaryTextDelta:
		if m.summary == nil {
			m.summary = NewSummaryBlock(m.styles)
			m.blocks = append(m.blocks, m.summary)
		}
		m.summary.Append(evt.Delta)

	case trickle.KindSummaryTextDone:
		if m.summary == nil {
			m.summary = NewSummaryBlock(m.styles)
			m.blocks = append(m.blocks, m.summary)
		}
		m.summary.Set(evt.SummaryText)

	case trickle.KindOutputTextDelta, trickle.KindOutputTextDone:
		if m.output == nil {
			m.output = NewOutputBlock()
			m.blocks = append(m.blocks, m.output)
		}
		m.output.Apply(evt)

	case trickle.KindOutputItemDone:
		if evt.Item != nil && evt.Item.Type == trickle.ItemFunctionCall {
			m.blocks = append(m.blocks, NewFunctionCallBlock(*evt.Item, m.styles))
		}

	case trickle.KindError:
		if evt.Err != nil {
			m.blocks = append(m.blocks, NewErrorBlock(*evt.Err, m.styles))
		}

	case trickle.KindResponseCompleted, trickle.KindResponseFailed, trickle.KindResponseIncomplete:
		if evt.Response != nil {
			m.usage = evt.Response.Usage
		}
	}
	return m
}

func (m Model) renderContent() string {
	var sections []string
	sections = append(sections, m.styles.Prompt.Render(wrapText("> "+m.prompt, m.width)))
	for _, b := range m.blocks {
		sections = append(sections, b.View(m.width))
	}
	return strings.Join(sections, "\n\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	return m.Viewport.View() + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("✗ " + m.err.Error())
	case m.streaming:
		return m.spinner.View() + m.styles.Muted.Render(" streaming… (q to quit)")
	default:
		status := fmt.Sprintf("✓ done · %d in / %d out tokens · q to quit",
			m.usage.InputTokens+m.usage.CachedTokens, m.usage.OutputTokens)
		return m.styles.Success.Render(status)
	}
}
