package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

// Page wraps a gomponents tree as a templ.Component so layouts can be passed
// through templ-aware code such as the universal renderer.
func Page(n g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return n.Render(w)
	})
}
