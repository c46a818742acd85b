package actions

// Kind is the closed set of field kinds an action schema may declare
type Kind string

const (
	KindBool  Kind = "bool"
	KindInt   Kind = "int"
	KindFloat Kind = "float"
	KindText  Kind = "text"
	KindDate  Kind = "date"
	KindEnum  Kind = "enum"
)

// DateLayout is the wire format for date fields
const DateLayout = "2006-01-02"

// Field declares one action parameter
type Field struct {
	Kind     Kind        `json:"kind"`
	Label    string      `json:"label"`
	Default  interface{} `json:"default,omitempty"`
	Required bool        `json:"required"`
	Optional bool        `json:"optional"`
	Options  []string    `json:"options,omitempty"`
}

// Schema maps field names to their declarations
type Schema map[string]Field

// Params holds a validated, typed parameter set
type Params map[string]interface{}
