package detect

import (
	"bytes"
	"path/filepath"
	"strings"
)

type Info struct {
	Name string
}

// FromPathAndContent names the declaration syntax of a file, or returns an
// empty Info when the file is not one docblocker understands.
func FromPathAndContent(p string, data []byte) Info {
	name := detectByPath(p)
	if name != "" {
		if ambiguousExtensions[strings.ToLower(filepath.Ext(p))] && !hasOpenTag(data) {
			return Info{Name: ""}
		}
		return Info{Name: name}
	}
	if shebang := detectByShebang(data); shebang != "" {
		return Info{Name: shebang}
	}
	if hasOpenTag(data) {
		return Info{Name: "php"}
	}
	return Info{Name: ""}
}

func detectByPath(p string) string {
	base := filepath.Base(p)
	lowerBase := strings.ToLower(base)
	if lang, ok := basenameLanguages[lowerBase]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return ""
	}
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	stem := strings.TrimSuffix(lowerBase, ext)
	if lang, ok := extensionLanguages[filepath.Ext(stem)+ext]; ok {
		return lang
	}
	return ""
}

func detectByShebang(data []byte) string {
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("#!")) {
		return ""
	}
	end := bytes.IndexByte(data, '\n')
	if end == -1 {
		end = len(data)
	}
	fields := strings.Fields(strings.ToLower(string(data[2:end])))
	for _, field := range fields {
		if lang, ok := shebangLanguages[filepath.Base(field)]; ok {
			return lang
		}
	}
	return ""
}

// hasOpenTag looks for a PHP open tag near the start of the file.
func hasOpenTag(data []byte) bool {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	lower := bytes.ToLower(sample)
	return bytes.Contains(lower, []byte("<?php")) || bytes.Contains(lower, []byte("<?hh"))
}

func NormalizeLangName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	if canon, ok := langAliases[n]; ok {
		return canon
	}
	return n
}

func MatchesLang(info Info, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	detected := NormalizeLangName(info.Name)
	if detected == "" {
		return false
	}
	for _, raw := range allow {
		if NormalizeLangName(raw) == detected {
			return true
		}
	}
	return false
}

func KnownLanguage(name string) bool {
	if name == "" {
		return false
	}
	_, ok := supportedLanguages[NormalizeLangName(name)]
	return ok
}

func CanonicalDetectLangs(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		norm := NormalizeLangName(raw)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

var basenameLanguages = map[string]string{
	"artisan": "php",
}

var extensionLanguages = map[string]string{
	".php":       "php",
	".php3":      "php",
	".php4":      "php",
	".php5":      "php",
	".php7":      "php",
	".php8":      "php",
	".phpt":      "php",
	".phtml":     "php",
	".inc":       "php",
	".module":    "php",
	".install":   "php",
	".hack":      "php",
	".hhi":       "php",
	".blade.php": "php",
	".tpl.php":   "php",
}

// Extensions shared with other ecosystems count only when the file opens a
// PHP block.
var ambiguousExtensions = map[string]bool{
	".inc":     true,
	".module":  true,
	".install": true,
}

var shebangLanguages = map[string]string{
	"php":  "php",
	"php7": "php",
	"php8": "php",
	"hhvm": "php",
}

var langAliases = map[string]string{
	"php3":  "php",
	"php4":  "php",
	"php5":  "php",
	"php7":  "php",
	"php8":  "php",
	"phtml": "php",
	"hack":  "php",
	"hh":    "php",
}

var supportedLanguages = map[string]struct{}{
	"php": {},
}
