package pages

import (
	"github.com/ibcoder/portfolio/web/src/templates/components"
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// FormPage hosts the form panel on a full page.
func FormPage(p components.FormProps) gomponents.Node {
	return Div(Class("py-6"), components.FormPanel(p))
}

// ResetPasswordProps feeds the reset password page.
type ResetPasswordProps struct {
	Token  string
	CSRF   string
	Errors map[string]string
}

// ResetPassword renders the new password form reached from the emailed link.
func ResetPassword(p ResetPasswordProps) gomponents.Node {
	return Section(
		Class("mx-auto max-w-md rounded-xl bg-white p-8 shadow-lg"),
		H1(Class("mb-6 text-2xl font-bold"), gomponents.Text("Choose a new password")),
		Form(
			Method("post"),
			Action("/auth/reset-password"),
			Data("mode", "resetPassword"),
			gomponents.If(p.CSRF != "", Input(Type("hidden"), Name("_csrf"), Value(p.CSRF))),
			Input(Type("hidden"), Name("token"), Value(p.Token)),
			gomponents.If(p.Errors[""] != "", P(Class("mb-4 text-sm text-red-600"), Role("alert"), gomponents.Text(p.Errors[""]))),
			components.InputField(components.InputProps{Name: "password", Label: "New password", Type: "password",
				Toggle: true, Error: p.Errors["password"]}),
			components.InputField(components.InputProps{Name: "confirmPassword", Label: "Confirm new password", Type: "password",
				Toggle: true, Error: p.Errors["confirmPassword"]}),
			Button(Type("submit"), Class("w-full rounded-md bg-indigo-600 px-4 py-2 font-semibold text-white"),
				gomponents.Text("Reset password")),
		),
	)
}
