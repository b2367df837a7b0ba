package model

// Kind identifies the declaration shape a line was classified as.
type Kind string

const (
	KindUnknown  Kind = "unknown"
	KindFunction Kind = "function"
	KindProperty Kind = "property"
	KindClass    Kind = "class"
)

type Param struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Doc is the normalized result of matching a declaration line.
//
// Params is nil for anything that is not a function; a function without
// parameters carries an empty, non-nil slice. At most one of VarType and
// ReturnType is set.
type Doc struct {
	Message    string  `json:"message"`
	Params     []Param `json:"params,omitempty"`
	VarType    *string `json:"var,omitempty"`
	ReturnType *string `json:"return,omitempty"`
}

// Placeholders holds the generic texts seeded into a docblock when the
// source gives nothing more specific.
type Placeholders struct {
	FunctionSummary string
	PropertySummary string
	ClassSummary    string
	Summary         string
	Type            string
}

func DefaultPlaceholders() Placeholders {
	return Placeholders{
		FunctionSummary: "Undocumented function",
		PropertySummary: "Undocumented variable",
		ClassSummary:    "Undocumented class",
		Summary:         "Undocumented",
		Type:            "[type]",
	}
}

// EmptyDoc is the fallback descriptor used when no matcher recognises a line.
func EmptyDoc(p Placeholders) Doc {
	return Doc{Message: p.Summary}
}

func StringPtr(s string) *string {
	v := s
	return &v
}
