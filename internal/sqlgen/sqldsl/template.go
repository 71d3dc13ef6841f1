package sqldsl

import (
	"errors"
	"regexp"
)

// placeholderPattern matches {name} placeholders inside SQL templates.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ErrEmptyTemplate is returned by ParseTemplate for blank input.
var ErrEmptyTemplate = errors.New("sqldsl: empty template")

// Placeholder is an unbound {name} reference inside a parsed template.
type Placeholder struct {
	Name string
}

// SQL renders the placeholder in its source form.
func (p Placeholder) SQL() string {
	return "{" + p.Name + "}"
}

// ParseTemplate splits a SQL template such as
//
//	upper({name}) || ' ' || {suffix}
//
// into a Template of Raw fragments and Placeholder nodes. Braces that do
// not enclose an identifier are kept as raw SQL.
func ParseTemplate(src string) (Template, error) {
	if src == "" {
		return Template{}, ErrEmptyTemplate
	}
	var parts []Expr
	last := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(src, -1) {
		if m[0] > last {
			parts = append(parts, Raw(src[last:m[0]]))
		}
		parts = append(parts, Placeholder{Name: src[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(src) {
		parts = append(parts, Raw(src[last:]))
	}
	return Template{Parts: parts}, nil
}

// Placeholders returns the placeholder names used by e in order of
// first appearance.
func Placeholders(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(e, func(n Expr) {
		if p, ok := n.(Placeholder); ok && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	})
	return names
}

// Bind replaces placeholders with the expressions in values. Placeholders
// without a value are left in place.
func Bind(e Expr, values map[string]Expr) Expr {
	return Rewrite(e, func(n Expr) (Expr, bool) {
		if p, ok := n.(Placeholder); ok {
			if v, found := values[p.Name]; found {
				return v, true
			}
		}
		return nil, false
	})
}
