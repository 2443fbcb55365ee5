package view

import (
	"encoding/gob"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	toastSessionName = "toast-session"
	toastKey         = "toasts"
)

// ToastKind selects the styling of a toast.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification. ID is stable per outcome so a repeated
// outcome replaces the pending toast instead of stacking another one.
type Toast struct {
	ID      string
	Kind    ToastKind
	Message string
}

// Success builds a success toast.
func Success(id, message string) *Toast {
	return &Toast{ID: id, Kind: ToastSuccess, Message: message}
}

// Failure builds an error toast.
func Failure(id, message string) *Toast {
	return &Toast{ID: id, Kind: ToastError, Message: message}
}

// Toasts is an ordered list of pending toasts.
type Toasts []Toast

// Push appends t, or replaces the pending toast with the same ID in place.
func (ts Toasts) Push(t Toast) Toasts {
	for i := range ts {
		if ts[i].ID == t.ID {
			ts[i] = t
			return ts
		}
	}
	return append(ts, t)
}

func init() {
	gob.Register(Toasts{})
}

// PushToast queues a toast in the session so it survives a redirect.
func PushToast(c echo.Context, t Toast) error {
	sess, err := session.Get(toastSessionName, c)
	if err != nil {
		return err
	}
	pending, _ := sess.Values[toastKey].(Toasts)
	sess.Values[toastKey] = pending.Push(t)
	return sess.Save(c.Request(), c.Response())
}

// PullToasts retrieves and clears the pending toasts.
func PullToasts(c echo.Context) Toasts {
	sess, err := session.Get(toastSessionName, c)
	if err != nil {
		return nil
	}
	pending, _ := sess.Values[toastKey].(Toasts)
	if len(pending) == 0 {
		return nil
	}
	delete(sess.Values, toastKey)
	_ = sess.Save(c.Request(), c.Response())
	return pending
}
