package matcher

import (
	"regexp"
	"strings"

	"github.com/phyten/docblocker/internal/model"
)

const identPattern = `[\p{L}_][\p{L}\p{N}_]*`

var (
	reFunctionHead = regexp.MustCompile(`^\s*(?:(?i:abstract|final|public|protected|private|static)\s+)*(?i:function)\s+&?\s*(` + identPattern + `)\s*\(`)
	reFunctionTail = regexp.MustCompile(`^\s*(?::\s*([^{;]+?))?\s*(?:\{.*|;.*)?$`)
	reParamPrefix  = regexp.MustCompile(`^(?:(?i:public|protected|private|readonly)\s+)+`)
)

// Function matches function and method declarations.
type Function struct {
	placeholders model.Placeholders
}

// NewFunction returns a function matcher seeded with p.
func NewFunction(p model.Placeholders) *Function {
	return &Function{placeholders: p}
}

func (f *Function) Kind() model.Kind { return model.KindFunction }

// functionParts holds the raw captures of one match attempt.
type functionParts struct {
	name       string
	params     string
	returnType string
}

func splitFunction(line string) (functionParts, bool) {
	line = stripAttributes(line)
	head := reFunctionHead.FindStringSubmatchIndex(line)
	if head == nil {
		return functionParts{}, false
	}
	open := head[1] - 1
	closeIdx := closingParen(line, open)
	if closeIdx < 0 {
		return functionParts{}, false
	}
	tail := reFunctionTail.FindStringSubmatch(stripTrailingComment(line[closeIdx+1:]))
	if tail == nil {
		return functionParts{}, false
	}
	return functionParts{
		name:       line[head[2]:head[3]],
		params:     line[open+1 : closeIdx],
		returnType: strings.TrimSpace(tail[1]),
	}, true
}

// Test reports whether line looks like a function declaration with a
// balanced parameter list.
func (f *Function) Test(line string) bool {
	_, ok := splitFunction(line)
	return ok
}

// Parse extracts parameters and the return type from line.
func (f *Function) Parse(line string) model.Doc {
	doc := model.Doc{Message: f.placeholders.FunctionSummary, Params: []model.Param{}}
	parts, ok := splitFunction(line)
	if !ok {
		doc.ReturnType = model.StringPtr(f.placeholders.Type)
		return doc
	}
	for _, raw := range splitTopLevel(parts.params, ',') {
		if p, ok := parseParam(raw); ok {
			doc.Params = append(doc.Params, p)
		}
	}
	ret := parts.returnType
	if ret == "" {
		ret = f.placeholders.Type
	}
	doc.ReturnType = model.StringPtr(ret)
	return doc
}

func (f *Function) Name(line string) string {
	parts, _ := splitFunction(line)
	return parts.name
}

func parseParam(raw string) (model.Param, bool) {
	p := stripAttributes(raw)
	if i := indexTopLevel(p, '='); i >= 0 {
		p = strings.TrimSpace(p[:i])
	}
	if p == "" {
		return model.Param{}, false
	}
	start := strings.LastIndexByte(p, '$')
	if start < 0 {
		fields := strings.Fields(p)
		start = len(p) - len(fields[len(fields)-1])
	}
	for start > 0 && (p[start-1] == '&' || p[start-1] == '.') {
		start--
	}
	name := strings.TrimLeft(p[start:], "&.$")
	typ := strings.TrimSpace(p[:start])
	typ = strings.TrimSpace(reParamPrefix.ReplaceAllString(typ, ""))
	if name == "" {
		return model.Param{}, false
	}
	return model.Param{Type: typ, Name: name}, true
}
