package matcher

import (
	"regexp"
	"strings"

	"github.com/phyten/docblocker/internal/model"
)

const typeAtom = `\??\\?` + identPattern + `(?:\\` + identPattern + `)*`

// A property is modifiers, an optional type, then $name followed only by a
// default value or terminator. "$name(" never matches.
var reProperty = regexp.MustCompile(`^\s*(?:(?i:var|public|protected|private|static|readonly|final)\s+)+` +
	`(?:(` + typeAtom + `(?:\s*[|&]\s*` + typeAtom + `)*)\s+)?` +
	`\$(` + identPattern + `)\s*(?:[=;,].*)?$`)

// Property matches class property declarations.
type Property struct {
	placeholders model.Placeholders
}

// NewProperty returns a property matcher seeded with p.
func NewProperty(p model.Placeholders) *Property {
	return &Property{placeholders: p}
}

func (p *Property) Kind() model.Kind { return model.KindProperty }

func (p *Property) Test(line string) bool {
	line = stripAttributes(line)
	if reFunctionHead.MatchString(line) {
		return false
	}
	return reProperty.MatchString(line)
}

// Parse extracts the declared type, falling back to the generic type.
func (p *Property) Parse(line string) model.Doc {
	varType := p.placeholders.Type
	if m := reProperty.FindStringSubmatch(stripAttributes(line)); m != nil {
		if declared := strings.TrimSpace(m[1]); declared != "" {
			varType = declared
		}
	}
	return model.Doc{Message: p.placeholders.PropertySummary, VarType: model.StringPtr(varType)}
}

func (p *Property) Name(line string) string {
	if m := reProperty.FindStringSubmatch(stripAttributes(line)); m != nil {
		return m[2]
	}
	return ""
}
