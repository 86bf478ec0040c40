package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var _ MessageBlock = (*SummaryBlock)(nil)

// SummaryBlock renders the model's reasoning summary with a collapsible
// toggle.
type SummaryBlock struct {
	content   strings.Builder
	collapsed bool
	styles    Styles
}

// NewSummaryBlock creates a SummaryBlock that starts collapsed.
func NewSummaryBlock(styles Styles) *SummaryBlock {
	return &SummaryBlock{collapsed: true, styles: styles}
}

// Append adds a reasoning summary delta.
func (b *SummaryBlock) Append(text string) {
	b.content.WriteString(text)
}

// Set replaces the content with the final snapshot.
func (b *SummaryBlock) Set(text string) {
	b.content.Reset()
	b.content.WriteString(text)
}

func (b *SummaryBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *SummaryBlock) View(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := b.styles.Reasoning.Render(indicator + " Reasoning")
	if b.collapsed {
		return header
	}
	content := b.styles.Reasoning.Render(wrapText(b.content.String(), width))
	return header + "\n" + content
}
