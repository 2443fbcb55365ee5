package components

import (
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// InputProps describes one labelled form control.
type InputProps struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Error       string
	// Toggle adds the eye button that reveals a password field.
	Toggle  bool
	Visible bool
}

// InputField renders a label, the control and its error message. Password
// values are never echoed back into the page.
func InputField(p InputProps) gomponents.Node {
	typ := p.Type
	if typ == "" {
		typ = "text"
	}
	if typ == "password" && p.Visible {
		typ = "text"
	}
	value := p.Value
	if p.Toggle || p.Type == "password" {
		value = ""
	}
	id := "field-" + p.Name

	var control gomponents.Node
	if typ == "textarea" {
		control = Textarea(
			ID(id), Name(p.Name), Rows("5"), Placeholder(p.Placeholder),
			Class(inputClass(p.Error)),
			gomponents.Text(value),
		)
	} else {
		control = Input(
			ID(id), Name(p.Name), Type(typ), Placeholder(p.Placeholder),
			gomponents.If(value != "", Value(value)),
			gomponents.If(p.Toggle, AutoComplete("current-password")),
			Class(inputClass(p.Error)),
			gomponents.If(p.Error != "", Aria("invalid", "true")),
		)
	}

	return Div(
		Class("mb-4"),
		Data("field", p.Name),
		Label(For(id), Class("block text-sm font-medium text-gray-700 mb-1"), gomponents.Text(p.Label)),
		Div(
			Class("relative"),
			control,
			gomponents.If(p.Toggle, visibilityToggle(id, p.Visible)),
		),
		gomponents.If(p.Error != "",
			P(Class("mt-1 text-sm text-red-600"), Data("error-for", p.Name), gomponents.Text(p.Error)),
		),
	)
}

func visibilityToggle(target string, visible bool) gomponents.Node {
	label := "Show password"
	if visible {
		label = "Hide password"
	}
	return Button(
		Type("button"),
		Class("absolute inset-y-0 right-0 px-3 text-gray-500"),
		Data("toggle-visibility", target),
		Aria("label", label),
		Aria("pressed", boolString(visible)),
		gomponents.Text("👁"),
	)
}

// Checkbox renders a labelled checkbox.
func Checkbox(name, label string, checked bool) gomponents.Node {
	id := "field-" + name
	return Div(
		Class("mb-4 flex items-center gap-2"),
		Input(ID(id), Type("checkbox"), Name(name), Value("true"), gomponents.If(checked, Checked())),
		Label(For(id), Class("text-sm text-gray-700"), gomponents.Text(label)),
	)
}

func inputClass(errMsg string) string {
	base := "w-full rounded-md border px-3 py-2 focus:outline-none focus:ring-2 "
	if errMsg != "" {
		return base + "border-red-500 focus:ring-red-300"
	}
	return base + "border-gray-300 focus:ring-indigo-300"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
