package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundcheck/internal/library"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTick
	MsgScheduled
)

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(res library.Result) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: res}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(dt time.Duration) Msg {
	return Msg{kind: MsgTick, data: dt}
}

// scheduledMsg is the constructor for [MsgScheduled]
func scheduledMsg(fn func()) Msg {
	return Msg{kind: MsgScheduled, data: fn}
}
