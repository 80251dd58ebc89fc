package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/movies"
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
	MsgAuthenticated MsgKind = iota
	MsgLoggedOut
	MsgMoviesLoaded
	MsgActionDone
	MsgNotice
	MsgConfirm
)

type authResult struct {
	session models.Session
	err     error
}

type actionResult struct {
	action string
	err    error
}

// authenticatedMsg is the constructor for [MsgAuthenticated]
func authenticatedMsg(sess models.Session, err error) Msg {
	return Msg{kind: MsgAuthenticated, data: authResult{sess, err}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}

// moviesLoadedMsg is the constructor for [MsgMoviesLoaded]
func moviesLoadedMsg(err error) Msg {
	return Msg{kind: MsgMoviesLoaded, data: err}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{action, err}}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(n movies.Notice) Msg {
	return Msg{kind: MsgNotice, data: n}
}

// confirmMsg is the constructor for [MsgConfirm]
func confirmMsg(req confirmRequest) Msg {
	return Msg{kind: MsgConfirm, data: req}
}
