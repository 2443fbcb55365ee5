package components

import (
	"github.com/ibcoder/portfolio/internal/form"
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// PanelID is the element the form panel swaps into.
const PanelID = "form-panel"

// FormProps is everything the form panel needs to render one mode.
type FormProps struct {
	State form.State
	// Visible reports whether a password field is currently revealed.
	Visible   func(form.Field) bool
	CSRF      string
	SocialURL string
}

// ModePath is the page a mode lives on.
func ModePath(m form.Mode) string {
	switch m {
	case form.ModeSignup:
		return "/auth/signup"
	case form.ModeLogin:
		return "/auth/login"
	case form.ModeContact:
		return "/contact"
	case form.ModeForgotPassword:
		return "/auth/forgot-password"
	case form.ModeLoginVerification:
		return "/auth/verify"
	default:
		return "/"
	}
}

var headings = map[form.Mode]string{
	form.ModeSignup:            "Create an account",
	form.ModeLogin:             "Sign in",
	form.ModeContact:           "Get in touch",
	form.ModeForgotPassword:    "Forgot your password?",
	form.ModeLoginVerification: "Verify your email",
}

var submitLabels = map[form.Mode]string{
	form.ModeSignup:            "Sign up",
	form.ModeLogin:             "Sign in",
	form.ModeContact:           "Send message",
	form.ModeForgotPassword:    "Send reset link",
	form.ModeLoginVerification: "Verify",
}

// Heading returns the title shown for a mode.
func Heading(m form.Mode) string { return headings[m] }

// FormPanel renders the active mode's form. Exactly one form[data-mode] is
// produced per panel.
func FormPanel(p FormProps) gomponents.Node {
	mode := p.State.Mode
	action := ModePath(mode)
	visible := p.Visible
	if visible == nil {
		visible = func(form.Field) bool { return false }
	}

	return Section(
		ID(PanelID),
		Class("mx-auto max-w-md rounded-xl bg-white p-8 shadow-lg"),
		H1(Class("mb-6 text-2xl font-bold text-gray-900"), gomponents.Text(headings[mode])),
		Form(
			Method("post"),
			Action(action),
			Data("mode", string(mode)),
			hx.Post(action),
			hx.Target("#"+PanelID),
			hx.Swap("outerHTML"),
			gomponents.Attr("hx-disabled-elt", "find button[type='submit']"),
			gomponents.Attr("novalidate"),
			gomponents.If(p.CSRF != "", Input(Type("hidden"), Name("_csrf"), Value(p.CSRF))),
			gomponents.Group(fields(p.State, visible)),
			Button(
				Type("submit"),
				Class("w-full rounded-md bg-indigo-600 px-4 py-2 font-semibold text-white hover:bg-indigo-700 disabled:opacity-50"),
				gomponents.Text(submitLabels[mode]),
			),
		),
		switchLinks(mode),
		gomponents.If(p.SocialURL != "" && (mode == form.ModeLogin || mode == form.ModeSignup), socialButtons(p.SocialURL)),
	)
}

func fields(s form.State, visible func(form.Field) bool) []gomponents.Node {
	errs := s.Errors
	switch f := s.Form.(type) {
	case *form.SignupForm:
		emailErr := errs["email"]
		if s.EmailError != "" {
			emailErr = s.EmailError
		}
		return []gomponents.Node{
			InputField(InputProps{Name: "username", Label: "Username", Value: f.Username, Error: errs["username"]}),
			InputField(InputProps{Name: "email", Label: "Email", Type: "email", Value: f.Email, Error: emailErr}),
			InputField(InputProps{Name: "password", Label: "Password", Type: "password", Error: errs["password"],
				Toggle: true, Visible: visible(form.FieldPassword)}),
			InputField(InputProps{Name: "confirmPassword", Label: "Confirm password", Type: "password", Error: errs["confirmPassword"],
				Toggle: true, Visible: visible(form.FieldConfirmPassword)}),
			Checkbox("signForNewsLetter", "Send me the newsletter", f.SignForNewsLetter),
		}
	case *form.LoginForm:
		return []gomponents.Node{
			InputField(InputProps{Name: "email", Label: "Email", Type: "email", Value: f.Email, Error: errs["email"]}),
			InputField(InputProps{Name: "password", Label: "Password", Type: "password", Error: errs["password"],
				Toggle: true, Visible: visible(form.FieldPassword)}),
			Checkbox("rememberMe", "Remember me", f.RememberMe),
		}
	case *form.ContactForm:
		return []gomponents.Node{
			InputField(InputProps{Name: "name", Label: "Name", Value: f.Name, Error: errs["name"]}),
			InputField(InputProps{Name: "email", Label: "Email", Type: "email", Value: f.Email, Error: errs["email"]}),
			InputField(InputProps{Name: "subject", Label: "Subject", Value: f.Subject, Error: errs["subject"]}),
			InputField(InputProps{Name: "message", Label: "Message", Type: "textarea", Value: f.Message, Error: errs["message"]}),
		}
	case *form.ForgotPasswordForm:
		return []gomponents.Node{
			InputField(InputProps{Name: "email", Label: "Email", Type: "email", Value: f.Email, Error: errs["email"]}),
		}
	case *form.VerificationForm:
		return []gomponents.Node{
			P(Class("mb-4 text-sm text-gray-600"), gomponents.Text("Enter the 6-digit code we emailed you.")),
			InputField(InputProps{Name: "verificationCode", Label: "Verification code", Value: f.VerificationCode,
				Placeholder: "123456", Error: errs["verificationCode"]}),
		}
	default:
		return nil
	}
}

func switchLinks(m form.Mode) gomponents.Node {
	switch m {
	case form.ModeSignup:
		return P(Class("mt-4 text-sm text-gray-600"),
			gomponents.Text("Already have an account? "), switchLink(m, form.ModeLogin, "Sign in"))
	case form.ModeLogin:
		return Div(Class("mt-4 flex justify-between text-sm text-gray-600"),
			switchLink(m, form.ModeSignup, "Create an account"),
			switchLink(m, form.ModeForgotPassword, "Forgot password?"))
	case form.ModeForgotPassword:
		return P(Class("mt-4 text-sm"),
			A(Href(ModePath(form.ModeLogin)), Class("text-indigo-600 hover:underline"), gomponents.Text("Back to sign in")))
	default:
		return nil
	}
}

// switchLink changes mode in place with htmx and falls back to a plain link.
func switchLink(from, to form.Mode, label string) gomponents.Node {
	return A(
		Href(ModePath(to)),
		Class("text-indigo-600 hover:underline"),
		Data("switch-to", string(to)),
		hx.Get("/auth/switch?from="+string(from)+"&to="+string(to)),
		hx.Target("#"+PanelID),
		hx.Swap("outerHTML"),
		hx.PushURL(ModePath(to)),
		gomponents.Text(label),
	)
}

func socialButtons(base string) gomponents.Node {
	return Div(
		Class("mt-6 space-y-2 border-t pt-6"),
		socialButton(base, "github", "Continue with GitHub"),
		socialButton(base, "google", "Continue with Google"),
	)
}

func socialButton(base, provider, label string) gomponents.Node {
	return A(
		Href(base+"/"+provider),
		Class("block w-full rounded-md border border-gray-300 px-4 py-2 text-center text-gray-700 hover:bg-gray-50"),
		Data("provider", provider),
		gomponents.Text(label),
	)
}
