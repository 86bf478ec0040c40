package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pwalczyk/trickle"
)

var _ MessageBlock = (*FunctionCallBlock)(nil)

// FunctionCallBlock renders a completed function call item as a single
// annotated line.
type FunctionCallBlock struct {
	item   trickle.OutputItem
	styles Styles
}

// NewFunctionCallBlock creates a FunctionCallBlock for a function call item.
func NewFunctionCallBlock(item trickle.OutputItem, styles Styles) *FunctionCallBlock {
	return &FunctionCallBlock{item: item, styles: styles}
}

func (b *FunctionCallBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *FunctionCallBlock) View(width int) string {
	line := "⚙ " + b.item.Name + "(" + b.item.Arguments + ")"
	return b.styles.Accent.Render(wrapText(line, width))
}
