package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/movies"
)

// confirmRequest is a pending y/n prompt raised by the controller.
type confirmRequest struct {
	prompt string
	reply  chan bool
}

// bridge forwards controller notices and prompts into the bubbletea loop.
//
// It implements [movies.Notifier] and [movies.Confirmer]. Notices are dropped when the buffer is full.
type bridge struct {
	notices  chan movies.Notice
	requests chan confirmRequest
}

var (
	_ movies.Notifier  = (*bridge)(nil)
	_ movies.Confirmer = (*bridge)(nil)
)

func newBridge() *bridge {
	return &bridge{
		notices:  make(chan movies.Notice, 16),
		requests: make(chan confirmRequest),
	}
}

func (b *bridge) Notify(n movies.Notice) {
	select {
	case b.notices <- n:
	default:
	}
}

// Confirm blocks until the model answers the prompt or ctx ends.
func (b *bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (b *bridge) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-b.notices)
	}
}

func (b *bridge) waitForPrompt() tea.Cmd {
	return func() tea.Msg {
		return confirmMsg(<-b.requests)
	}
}
