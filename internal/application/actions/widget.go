package actions

import "sort"

// Control identifies the form control rendered for a field kind
type Control string

const (
	ControlCheckbox   Control = "checkbox"
	ControlNumber     Control = "number"
	ControlDecimal    Control = "decimal"
	ControlTextInput  Control = "text_input"
	ControlDatePicker Control = "date_picker"
	ControlSelect     Control = "select"
)

// Widget describes one form control for a schema field
type Widget struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Control  Control     `json:"control"`
	Default  interface{} `json:"default,omitempty"`
	Required bool        `json:"required"`
	Options  []string    `json:"options,omitempty"`
}

// constructors maps the closed set of field kinds to widget builders
var constructors = map[Kind]func(name string, field Field) Widget{
	KindBool:  func(name string, f Field) Widget { return newWidget(name, f, ControlCheckbox) },
	KindInt:   func(name string, f Field) Widget { return newWidget(name, f, ControlNumber) },
	KindFloat: func(name string, f Field) Widget { return newWidget(name, f, ControlDecimal) },
	KindText:  func(name string, f Field) Widget { return newWidget(name, f, ControlTextInput) },
	KindDate:  func(name string, f Field) Widget { return newWidget(name, f, ControlDatePicker) },
	KindEnum: func(name string, f Field) Widget {
		w := newWidget(name, f, ControlSelect)
		w.Options = append([]string(nil), f.Options...)
		return w
	},
}

// newWidget builds the common widget shape for a field
func newWidget(name string, field Field, control Control) Widget {
	label := field.Label
	if label == "" {
		label = name
	}
	return Widget{
		Name:     name,
		Label:    label,
		Control:  control,
		Default:  field.Default,
		Required: field.Required,
	}
}

// BuildForm maps a schema to its form description. Pure: the result
// depends only on the schema. Fields are emitted in name order so the
// layout is stable. Unknown kinds fall back to a text input.
func BuildForm(schema Schema) []Widget {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	widgets := make([]Widget, 0, len(names))
	for _, name := range names {
		field := schema[name]
		build, ok := constructors[field.Kind]
		if !ok {
			build = func(name string, f Field) Widget { return newWidget(name, f, ControlTextInput) }
		}
		widgets = append(widgets, build(name, field))
	}
	return widgets
}
