package tui

import "sync"

// textBuffer is the editor buffer shared between the editor session (which
// runs inside tea.Cmd goroutines) and the textarea owned by the model.
// rev lets the model notice replacements it did not make itself.
type textBuffer struct {
	mu  sync.Mutex
	s   string
	rev uint64
}

func (b *textBuffer) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s
}

func (b *textBuffer) SetValue(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.s = s
	b.rev++
}

func (b *textBuffer) snapshot() (string, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s, b.rev
}
