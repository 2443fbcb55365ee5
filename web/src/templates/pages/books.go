package pages

import (
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Book is one entry of the reading list.
type Book struct {
	Title  string
	Author string
	Note   string
}

// ReadingList is shown to signed-in readers.
var ReadingList = []Book{
	{"The Pragmatic Programmer", "David Thomas, Andrew Hunt", "Habits over heroics."},
	{"Designing Data-Intensive Applications", "Martin Kleppmann", "The map of the storage landscape."},
	{"A Philosophy of Software Design", "John Ousterhout", "Deep modules, simple interfaces."},
	{"The Go Programming Language", "Alan Donovan, Brian Kernighan", "Still the best tour of the language."},
}

// Books renders the reading list for username.
func Books(username string, books []Book) gomponents.Node {
	return Div(
		Class("mx-auto max-w-3xl rounded-xl bg-white p-10 shadow-lg"),
		H1(Class("mb-2 text-3xl font-bold"), gomponents.Text("Reading list")),
		P(Class("mb-6 text-gray-600"), gomponents.Textf("Welcome, %s.", username)),
		Ul(
			Class("divide-y"),
			gomponents.Map(books, func(b Book) gomponents.Node {
				return Li(
					Class("py-4"),
					Data("book", b.Title),
					Div(Class("font-semibold"), gomponents.Text(b.Title)),
					Div(Class("text-sm text-gray-500"), gomponents.Text(b.Author)),
					P(Class("mt-1 text-gray-700"), gomponents.Text(b.Note)),
				)
			}),
		),
	)
}
