package components

import (
	"github.com/ibcoder/portfolio/internal/view"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// ToastRegion is the container toasts are rendered into.
func ToastRegion(ts view.Toasts) gomponents.Node {
	return Div(
		ID("toasts"),
		Class("fixed top-4 right-4 z-50 space-y-2"),
		Aria("live", "polite"),
		gomponents.Map(ts, toast),
	)
}

// ToastsOOB replaces the toast region out of band after an htmx swap.
func ToastsOOB(ts view.Toasts) gomponents.Node {
	return Div(
		ID("toasts"),
		hx.SwapOOB("true"),
		Class("fixed top-4 right-4 z-50 space-y-2"),
		Aria("live", "polite"),
		gomponents.Map(ts, toast),
	)
}

func toast(t view.Toast) gomponents.Node {
	color := "bg-green-600"
	role := "status"
	if t.Kind == view.ToastError {
		color = "bg-red-600"
		role = "alert"
	}
	return Div(
		ID("toast-"+t.ID),
		Class("toast rounded-md px-4 py-3 text-white shadow-lg "+color),
		Data("toast-id", t.ID),
		Data("kind", string(t.Kind)),
		Role(role),
		gomponents.Text(t.Message),
	)
}
