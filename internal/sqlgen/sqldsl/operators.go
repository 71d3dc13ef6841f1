package sqldsl

// Eq compares two expressions with =. Operands render as given.
type Eq struct {
	Left  Expr
	Right Expr
}

func (e Eq) SQL() string { return e.Left.SQL() + " = " + e.Right.SQL() }

// NotInQuery keeps rows whose Expr does not appear in the result of Query.
// The subquery is rendered indented on its own lines.
type NotInQuery struct {
	Expr  Expr
	Query SQLer
}

func (n NotInQuery) SQL() string {
	return n.Expr.SQL() + " NOT IN (\n" + IndentLines(n.Query.SQL(), "    ") + "\n)"
}
