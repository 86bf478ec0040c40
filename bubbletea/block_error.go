package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pwalczyk/trickle"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a server-reported error event.
type ErrorBlock struct {
	detail trickle.ErrorDetail
	styles Styles
}

// NewErrorBlock creates an ErrorBlock for a server error.
func NewErrorBlock(detail trickle.ErrorDetail, styles Styles) *ErrorBlock {
	return &ErrorBlock{detail: detail, styles: styles}
}

func (b *ErrorBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	return b.styles.Error.Render(wrapText("✗ "+b.detail.Error(), width))
}
