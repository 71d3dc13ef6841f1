package sqldsl

import (
	"fmt"
	"strings"
)

// Expr is the interface that all SQL expression types implement.
type Expr interface {
	SQL() string
}

// Param is a positional bind parameter ($1, $2, ...).
type Param int

// SQL renders the parameter placeholder.
func (p Param) SQL() string {
	return fmt.Sprintf("$%d", int(p))
}

// Col represents a column reference (e.g., a1.name).
// Table is a table name or row alias; it is left empty for bare columns.
type Col struct {
	Table  string
	Column string
}

// SQL renders the column reference, quoting identifiers that need it.
func (c Col) SQL() string {
	if c.Table == "" {
		return QuoteIdent(c.Column)
	}
	return QuoteIdent(c.Table) + "." + QuoteIdent(c.Column)
}

// Star selects every column of a row source (alias.*).
type Star struct {
	Table string
}

// SQL renders the qualified star.
func (s Star) SQL() string {
	if s.Table == "" {
		return "*"
	}
	return QuoteIdent(s.Table) + ".*"
}

// Lit represents a literal string value (auto-quoted with single quotes).
type Lit string

// SQL renders the literal with single quotes.
func (l Lit) SQL() string {
	return QuoteLiteral(string(l))
}

// Raw is an escape hatch for arbitrary SQL expressions.
type Raw string

// SQL renders the raw SQL as-is.
func (r Raw) SQL() string {
	return string(r)
}

// Int represents an integer literal.
type Int int

// SQL renders the integer.
func (i Int) SQL() string {
	return fmt.Sprintf("%d", i)
}

// Bool represents a boolean literal.
type Bool bool

// SQL renders the boolean.
func (b Bool) SQL() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// Null represents SQL NULL.
type Null struct{}

// SQL renders NULL.
func (Null) SQL() string {
	return "NULL"
}

// Func represents a SQL function call.
type Func struct {
	Name string
	Args []Expr
}

// SQL renders the function call.
func (f Func) SQL() string {
	return f.Name + "(" + joinSQL(f.Args, ", ") + ")"
}

// Coalesce returns coalesce(exprs...).
func Coalesce(exprs ...Expr) Func {
	return Func{Name: "coalesce", Args: exprs}
}

// Alias wraps an expression with an alias (expr AS alias).
type Alias struct {
	Expr Expr
	Name string
}

// SQL renders the aliased expression.
func (a Alias) SQL() string {
	return a.Expr.SQL() + " AS " + QuoteIdent(a.Name)
}

// SelectAs creates an aliased column expression (expr AS alias).
func SelectAs(expr Expr, alias string) Alias {
	return Alias{Expr: expr, Name: alias}
}

// Cast represents a PostgreSQL type cast (expr::type). Operands other than
// columns, parameters, literals and calls are wrapped in parentheses.
type Cast struct {
	Expr Expr
	Type string
}

// SQL renders the cast.
func (c Cast) SQL() string {
	switch c.Expr.(type) {
	case Col, Param, Lit, Func:
		return c.Expr.SQL() + "::" + c.Type
	default:
		return "(" + c.Expr.SQL() + ")::" + c.Type
	}
}

// Text casts expr to text.
func Text(expr Expr) Cast {
	return Cast{Expr: expr, Type: "text"}
}

// Concat represents SQL string concatenation (||).
type Concat struct {
	Parts []Expr
}

// SQL renders the concatenation.
func (c Concat) SQL() string {
	if len(c.Parts) == 0 {
		return "''"
	}
	return joinSQL(c.Parts, " || ")
}

// Template is a sequence of expressions rendered back to back with no
// separator. Parsed SQL templates (see ParseTemplate) produce a Template of
// Raw fragments and Col references so the references can be rewritten.
type Template struct {
	Parts []Expr
}

// SQL renders the parts in order.
func (t Template) SQL() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		sb.WriteString(p.SQL())
	}
	return sb.String()
}

// Subquery wraps a statement so it can be used as a scalar expression.
type Subquery struct {
	Query SQLer
}

// SQL renders the parenthesized, indented statement.
func (s Subquery) SQL() string {
	return "(\n" + IndentLines(s.Query.SQL(), "    ") + "\n)"
}

// RowNumber renders row_number() OVER (ORDER BY ...).
type RowNumber struct {
	OrderBy []OrderTerm
}

// SQL renders the window function.
func (r RowNumber) SQL() string {
	if len(r.OrderBy) == 0 {
		return "row_number() OVER ()"
	}
	return "row_number() OVER (ORDER BY " + orderBySQL(r.OrderBy) + ")"
}

// OrderTerm is a single ORDER BY item.
type OrderTerm struct {
	Expr Expr
	Desc bool
}

// SQL renders the ordering term.
func (o OrderTerm) SQL() string {
	if o.Desc {
		return o.Expr.SQL() + " DESC"
	}
	return o.Expr.SQL()
}

func orderBySQL(terms []OrderTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.SQL()
	}
	return strings.Join(parts, ", ")
}

// joinSQL renders expressions joined by sep.
func joinSQL(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, sep)
}
