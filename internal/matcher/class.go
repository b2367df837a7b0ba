package matcher

import (
	"regexp"

	"github.com/phyten/docblocker/internal/model"
)

var reClass = regexp.MustCompile(`^\s*(?:(?i:abstract|final|readonly)\s+)*(?i:class|interface|trait|enum)\s+(` + identPattern + `)`)

// Class matches class, interface, trait and enum declarations.
type Class struct {
	placeholders model.Placeholders
}

// NewClass returns a class matcher seeded with p.
func NewClass(p model.Placeholders) *Class {
	return &Class{placeholders: p}
}

func (c *Class) Kind() model.Kind { return model.KindClass }

func (c *Class) Test(line string) bool {
	return reClass.MatchString(stripAttributes(line))
}

// Parse returns the summary only; the class name is not part of the docblock.
func (c *Class) Parse(string) model.Doc {
	return model.Doc{Message: c.placeholders.ClassSummary}
}

func (c *Class) Name(line string) string {
	if m := reClass.FindStringSubmatch(stripAttributes(line)); m != nil {
		return m[1]
	}
	return ""
}
