package sqldsl

// TableExpr is a row source in a FROM or JOIN clause.
type TableExpr interface {
	TableSQL() string
}

// TableRef names a table or CTE, optionally aliased. Name may be
// schema-qualified.
type TableRef struct {
	Name  string
	Alias string
}

func (t TableRef) TableSQL() string {
	return aliased(QuoteTable(t.Name), t.Alias)
}

// TableAs is shorthand for TableRef{Name: name, Alias: alias}.
func TableAs(name, alias string) TableRef {
	return TableRef{Name: name, Alias: alias}
}

// SubqueryTable is a derived table. PostgreSQL before 16 requires the
// alias, so it is always rendered.
type SubqueryTable struct {
	Query SQLer
	Alias string
}

func (s SubqueryTable) TableSQL() string {
	return "(\n" + IndentLines(s.Query.SQL(), "    ") + "\n) AS " + QuoteIdent(s.Alias)
}

func aliased(sql, alias string) string {
	if alias == "" {
		return sql
	}
	return sql + " AS " + QuoteIdent(alias)
}
