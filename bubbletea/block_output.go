package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pwalczyk/trickle"
)

var _ MessageBlock = (*OutputBlock)(nil)

// OutputBlock renders streaming output text. Deltas and done snapshots go
// through a TextAccumulator, so a done snapshot that extends the delta text
// is reconciled rather than duplicated.
type OutputBlock struct {
	acc trickle.TextAccumulator
}

// NewOutputBlock creates an empty OutputBlock.
func NewOutputBlock() *OutputBlock {
	return &OutputBlock{}
}

// Apply folds a text event into the block.
func (b *OutputBlock) Apply(evt trickle.Event) {
	b.acc.Apply(evt)
}

// Text returns the accumulated output text.
func (b *OutputBlock) Text() string {
	return b.acc.Text()
}

func (b *OutputBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *OutputBlock) View(width int) string {
	return wrapText(b.acc.Text(), width)
}
