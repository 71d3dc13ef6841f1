package sqldsl

import "strings"

// CTEDef is one named statement of a WITH clause.
type CTEDef struct {
	Name  string
	Query SQLer
}

// SQL renders "name AS (query)" with the body indented.
func (c CTEDef) SQL() string {
	return QuoteIdent(c.Name) + " AS (\n" + IndentLines(c.Query.SQL(), "    ") + "\n)"
}

// WithCTE prefixes Query with a WITH clause defining CTEs in order. Later
// definitions may reference earlier ones:
//
//	WITH root_rows AS (
//	    SELECT src.* FROM articles AS src
//	),
//	root_page AS (
//	    SELECT r.* FROM root_rows AS r
//	)
//	SELECT ...
//
// Without definitions only Query is rendered.
type WithCTE struct {
	CTEs  []CTEDef
	Query SQLer
}

// SQL renders the WITH clause followed by the final query.
func (w WithCTE) SQL() string {
	if len(w.CTEs) == 0 {
		return w.Query.SQL()
	}

	defs := make([]string, len(w.CTEs))
	for i, cte := range w.CTEs {
		defs[i] = cte.SQL()
	}
	return "WITH " + strings.Join(defs, ",\n") + "\n" + w.Query.SQL()
}
