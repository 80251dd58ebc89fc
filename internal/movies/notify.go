package movies

import (
	"context"

	"github.com/charmbracelet/log"
)

// Notice is a user-facing report of a failed write.
type Notice struct {
	Action  string
	Message string
	Err     error
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to a logger.
type LogNotifier struct{ Logger *log.Logger }

func (l LogNotifier) Notify(n Notice) {
	l.Logger.Error(n.Message, "action", n.Action, "error", n.Err)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to [Confirmer].
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm = ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })

// NeverConfirm declines every prompt.
var NeverConfirm = ConfirmerFunc(func(context.Context, string) (bool, error) { return false, nil })
