package engine

import (
	"regexp"
	"strings"
)

// commentStyle describes where code stops being code on a line.
type commentStyle struct {
	linePrefixes []string
	block        blockPattern
	stringDelims string
}

type blockPattern struct {
	start string
	end   string
}

var stylePHP = commentStyle{
	linePrefixes: []string{"//", "#"},
	block:        blockPattern{start: "/*", end: "*/"},
	stringDelims: `"'`,
}

var reHeredoc = regexp.MustCompile(`<<<\s*(["']?)([A-Za-z_][A-Za-z0-9_]*)(["']?)\s*$`)

// lineLexer tracks multi-line comments, strings, heredocs and inline HTML
// so declarations that only appear inside them are ignored.
type lineLexer struct {
	style   commentStyle
	inBlock bool
	quote   byte
	heredoc string
	html    bool
}

func newLineLexer(style commentStyle) *lineLexer {
	return &lineLexer{style: style}
}

// next reports whether line starts in code, then advances the state past it.
func (l *lineLexer) next(line string) bool {
	if l.heredoc != "" {
		trimmed := strings.TrimLeft(line, " \t")
		if rest, ok := strings.CutPrefix(trimmed, l.heredoc); ok && !startsIdent(rest) {
			l.heredoc = ""
		}
		return false
	}
	code := !l.inBlock && l.quote == 0 && !l.html
	l.scan(line)
	return code
}

func (l *lineLexer) scan(line string) {
	i := 0
	switch {
	case l.inBlock:
		end := strings.Index(line, l.style.block.end)
		if end < 0 {
			return
		}
		l.inBlock = false
		i = end + len(l.style.block.end)
	case l.quote != 0:
		end := findClosingDelimiter(line, 0, l.quote)
		if end < 0 {
			return
		}
		l.quote = 0
		i = end + 1
	}
	for i < len(line) {
		rest := line[i:]
		if l.html {
			open := strings.Index(rest, "<?")
			if open < 0 {
				return
			}
			l.html = false
			i += open + 2
			if strings.HasPrefix(line[i:], "php") {
				i += 3
			}
			continue
		}
		if strings.HasPrefix(rest, "?>") {
			l.html = true
			i += 2
			continue
		}
		if strings.HasPrefix(rest, l.style.block.start) {
			end := strings.Index(rest[len(l.style.block.start):], l.style.block.end)
			if end < 0 {
				l.inBlock = true
				return
			}
			i += len(l.style.block.start) + end + len(l.style.block.end)
			continue
		}
		for _, prefix := range l.style.linePrefixes {
			if strings.HasPrefix(rest, prefix) && !strings.HasPrefix(rest, "#[") {
				return
			}
		}
		if strings.HasPrefix(rest, "<<<") {
			if m := reHeredoc.FindStringSubmatch(rest); m != nil && m[1] == m[3] {
				l.heredoc = m[2]
				return
			}
		}
		if strings.IndexByte(l.style.stringDelims, line[i]) >= 0 {
			end := findClosingDelimiter(line, i+1, line[i])
			if end < 0 {
				l.quote = line[i]
				return
			}
			i = end + 1
			continue
		}
		i++
	}
}

func findClosingDelimiter(line string, start int, delim byte) int {
	for i := start; i < len(line); i++ {
		if line[i] == delim && !isEscaped(line, i) {
			return i
		}
	}
	return -1
}

func isEscaped(line string, pos int) bool {
	count := 0
	for i := pos - 1; i >= 0 && line[i] == '\\'; i-- {
		count++
	}
	return count%2 == 1
}

func startsIdent(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
