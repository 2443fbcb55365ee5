package pages

import (
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Home is the landing page: a short introduction and the latest posts.
func Home(signedIn bool) gomponents.Node {
	return Div(
		Class("mx-auto max-w-3xl"),
		Div(
			Class("rounded-xl bg-white p-10 shadow-2xl"),
			H1(Class("mb-4 border-b pb-2 text-4xl font-extrabold text-indigo-700"), gomponents.Text("Hi, I'm IB.")),
			P(Class("mb-6 leading-relaxed text-gray-700"),
				gomponents.Text("I build web applications and write about the books that shaped how I think about software.")),
			Div(
				Class("space-y-4"),
				card("Projects", "A selection of things I have shipped, from small tools to full products."),
				card("Reading list", "Notes on the books I recommend. Verified members can browse the full list."),
			),
			Div(
				Class("mt-8 flex gap-4 border-t pt-4 text-sm"),
				gomponents.If(!signedIn, A(Href("/auth/signup"), Class("font-semibold text-indigo-600"), gomponents.Text("Create an account"))),
				A(Href("/contact"), Class("font-semibold text-indigo-600"), gomponents.Text("Get in touch")),
			),
		),
	)
}

func card(title, body string) gomponents.Node {
	return Div(
		Class("rounded-lg bg-gray-50 p-6 shadow"),
		Div(Class("mb-2 text-xl font-bold"), gomponents.Text(title)),
		P(Class("text-base text-gray-700"), gomponents.Text(body)),
	)
}
