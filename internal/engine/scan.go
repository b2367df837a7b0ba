package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phyten/docblocker/internal/config"
	"github.com/phyten/docblocker/internal/documenter"
	"github.com/phyten/docblocker/internal/editor"
	"github.com/phyten/docblocker/internal/matcher"
	"github.com/phyten/docblocker/internal/model"
)

// Declaration is a recognised declaration line without a docblock.
type Declaration struct {
	Line  int
	Text  string
	Match matcher.Match
}

var kindAliases = map[string]model.Kind{
	"function":  model.KindFunction,
	"func":      model.KindFunction,
	"method":    model.KindFunction,
	"property":  model.KindProperty,
	"prop":      model.KindProperty,
	"var":       model.KindProperty,
	"class":     model.KindClass,
	"interface": model.KindClass,
	"trait":     model.KindClass,
	"enum":      model.KindClass,
}

// ParseKinds turns --kind values into a filter set. An empty list selects
// every kind.
func ParseKinds(values []string) (map[model.Kind]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[model.Kind]bool, len(values))
	for _, raw := range values {
		v := strings.ToLower(strings.TrimSpace(raw))
		if v == "" {
			continue
		}
		kind, ok := kindAliases[v]
		if !ok {
			return nil, fmt.Errorf("invalid --kind: %s", raw)
		}
		out[kind] = true
	}
	return out, nil
}

// KindNames lists the canonical kind names accepted by ParseKinds.
func KindNames() []string {
	return []string{string(model.KindFunction), string(model.KindProperty), string(model.KindClass)}
}

// FindUndocumented returns, in line order, every declaration in buf whose
// preceding code line does not close a comment. Attribute lines between the
// comment and the declaration are skipped, and so are lines inside block
// comments and heredocs.
func FindUndocumented(buf *editor.Buffer, reg *matcher.Registry, kinds map[model.Kind]bool) []Declaration {
	var out []Declaration
	lex := newLineLexer(stylePHP)
	for i := 0; i < buf.LineCount(); i++ {
		line, _ := buf.LineAt(i)
		if !lex.next(line) {
			continue
		}
		m, ok := reg.Identify(line)
		if !ok {
			continue
		}
		if len(kinds) > 0 && !kinds[m.Kind] {
			continue
		}
		if documented(buf, i) {
			continue
		}
		out = append(out, Declaration{Line: i, Text: strings.TrimSpace(line), Match: m})
	}
	return out
}

func documented(buf *editor.Buffer, line int) bool {
	for j := line - 1; j >= 0; j-- {
		prev, _ := buf.LineAt(j)
		trimmed := strings.TrimSpace(prev)
		if trimmed == "" || strings.HasPrefix(trimmed, "#[") {
			continue
		}
		return strings.HasSuffix(trimmed, "*/")
	}
	return false
}

// FixAll inserts a docblock above each declaration. Declarations are handled
// from the bottom up so earlier line numbers stay valid.
func FixAll(buf *editor.Buffer, decls []Declaration, reg *matcher.Registry, src config.Source) (int, error) {
	ordered := append([]Declaration(nil), decls...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Line > ordered[j].Line })

	fixed := 0
	for _, decl := range ordered {
		line, err := buf.LineAt(decl.Line)
		if err != nil {
			return fixed, err
		}
		trigger := leadingWhitespace(line) + "/** "
		err = buf.Edit(func(b editor.EditBuilder) {
			b.Insert(editor.Position{Line: decl.Line}, trigger+"\n")
		}, editor.DefaultEditOptions())
		if err != nil {
			return fixed, err
		}
		d, err := documenter.New(buf, src, reg, editor.Position{Line: decl.Line, Col: len(trigger)})
		if err != nil {
			return fixed, err
		}
		if _, err := d.Run(); err != nil {
			return fixed, fmt.Errorf("line %d: %w", decl.Line+1, err)
		}
		fixed++
	}
	return fixed, nil
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
