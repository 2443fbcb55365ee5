package layouts

import (
	"github.com/a-h/templ"
	"github.com/ibcoder/portfolio/internal/view"
	"github.com/ibcoder/portfolio/web/src/templates/components"
	"maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// PageData is the chrome shared by every page.
type PageData struct {
	Title    string
	Toasts   view.Toasts
	SignedIn bool
	CSRF     string
}

// Base wraps content in the site layout.
func Base(p PageData, content gomponents.Node) templ.Component {
	return view.Page(h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				gomponents.If(p.CSRF != "", h.Meta(h.Name("csrf-token"), h.Content(p.CSRF))),
				h.TitleEl(gomponents.Text(CalculateTitle(p.Title))),
				h.Link(h.Rel("stylesheet"), h.Href("/static/css/app.css")),
				h.Script(h.Src("https://cdn.tailwindcss.com")),
				h.Script(h.Src("https://unpkg.com/htmx.org@2.0.4"), h.Defer()),
				h.Script(h.Src("/static/js/app.js"), h.Defer()),
			),
			h.Body(
				h.Class("min-h-screen bg-gray-100 text-gray-900"),
				gomponents.If(p.CSRF != "", gomponents.Attr("hx-headers", `{"X-CSRF-Token":"`+p.CSRF+`"}`)),
				nav(p.SignedIn),
				h.Main(h.Class("container mx-auto px-4 py-10"), content),
				components.ToastRegion(p.Toasts),
				h.Footer(h.Class("py-6 text-center text-sm text-gray-500"), gomponents.Text("© IB Coder")),
			),
		),
	))
}

func nav(signedIn bool) gomponents.Node {
	link := func(href, label string) gomponents.Node {
		return h.A(h.Href(href), h.Class("text-gray-700 hover:text-indigo-600"), gomponents.Text(label))
	}
	return h.Header(
		h.Class("bg-white shadow"),
		h.Nav(
			h.Class("container mx-auto flex items-center justify-between px-4 py-4"),
			h.A(h.Href("/"), h.Class("text-xl font-extrabold text-indigo-700"), gomponents.Text(siteName)),
			h.Div(
				h.Class("flex gap-6"),
				link("/books", "Books"),
				link("/contact", "Contact"),
				gomponents.If(signedIn, link("/auth/logout", "Sign out")),
				gomponents.If(!signedIn, link("/auth/login", "Sign in")),
			),
		),
	)
}
