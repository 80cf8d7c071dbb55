package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// loopScheduler runs deferred player callbacks on the bubbletea event loop instead of a timer goroutine.
type loopScheduler struct {
	due chan func()
}

func newLoopScheduler() *loopScheduler {
	return &loopScheduler{due: make(chan func(), 16)}
}

func (s *loopScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { s.due <- fn })
}

// wait blocks until a callback is due and hands it to Update.
func (s *loopScheduler) wait() tea.Cmd {
	return func() tea.Msg {
		return scheduledMsg(<-s.due)
	}
}
