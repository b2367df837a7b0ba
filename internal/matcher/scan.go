package matcher

import "strings"

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// closingParen returns the index of the bracket closing the one at open, or
// -1 when the line ends first or the nesting is inconsistent.
func closingParen(line string, open int) int {
	if open < 0 || open >= len(line) {
		return -1
	}
	if _, ok := closers[line[open]]; !ok {
		return -1
	}
	stack := []byte{closers[line[open]]}
	for i := open + 1; i < len(line); i++ {
		c := line[i]
		switch c {
		case '\'', '"':
			end := closingQuote(line, i+1, c)
			if end < 0 {
				return -1
			}
			i = end
		case '(', '[', '{':
			stack = append(stack, closers[c])
		case ')', ']', '}':
			if stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets or
// quoted strings. Empty pieces are dropped.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			end := closingQuote(s, i+1, c)
			if end < 0 {
				i = len(s) - 1
				continue
			}
			i = end
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			if piece := strings.TrimSpace(s[start:i]); piece != "" {
				out = append(out, piece)
			}
			start = i + 1
		}
	}
	if piece := strings.TrimSpace(s[start:]); piece != "" {
		out = append(out, piece)
	}
	return out
}

// indexTopLevel is strings.IndexByte restricted to depth zero outside quotes.
func indexTopLevel(s string, b byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			end := closingQuote(s, i+1, c)
			if end < 0 {
				return -1
			}
			i = end
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == b && depth == 0:
			return i
		}
	}
	return -1
}

func closingQuote(s string, start int, quote byte) int {
	for i := start; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if isEscaped(s, i) {
			continue
		}
		return i
	}
	return -1
}

func isEscaped(s string, pos int) bool {
	count := 0
	for i := pos - 1; i >= 0; i-- {
		if s[i] != '\\' {
			break
		}
		count++
	}
	return count%2 == 1
}

// stripAttributes removes leading #[...] attribute groups.
func stripAttributes(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "#[") {
		end := closingParen(s, 1)
		if end < 0 {
			return s
		}
		s = strings.TrimSpace(s[end+1:])
	}
	return s
}

// stripTrailingComment cuts s at the first //, # or /* outside quotes.
// Attribute openers (#[) are not comments.
func stripTrailingComment(s string) string {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			end := closingQuote(s, i+1, c)
			if end < 0 {
				return s
			}
			i = end
		case '#':
			if !strings.HasPrefix(s[i:], "#[") {
				return s[:i]
			}
		case '/':
			if strings.HasPrefix(s[i:], "//") || strings.HasPrefix(s[i:], "/*") {
				return s[:i]
			}
		}
	}
	return s
}
