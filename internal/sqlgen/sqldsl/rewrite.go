package sqldsl

// RewriteFunc is called for every node of an expression tree in pre-order.
// Returning ok=true replaces the node and stops descent into it.
type RewriteFunc func(Expr) (replacement Expr, ok bool)

// Rewrite returns a copy of e with fn applied to every node. Nodes the
// walker does not know are treated as leaves and returned unchanged.
func Rewrite(e Expr, fn RewriteFunc) Expr {
	if e == nil {
		return nil
	}
	if r, ok := fn(e); ok {
		return r
	}
	switch n := e.(type) {
	case Func:
		return Func{Name: n.Name, Args: rewriteAll(n.Args, fn)}
	case Alias:
		return Alias{Expr: Rewrite(n.Expr, fn), Name: n.Name}
	case Cast:
		return Cast{Expr: Rewrite(n.Expr, fn), Type: n.Type}
	case Concat:
		return Concat{Parts: rewriteAll(n.Parts, fn)}
	case Template:
		return Template{Parts: rewriteAll(n.Parts, fn)}
	case JSONObject:
		pairs := make([]JSONPair, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = JSONPair{Key: p.Key, Value: Rewrite(p.Value, fn)}
		}
		return JSONObject{Pairs: pairs}
	case JSONAgg:
		return JSONAgg{Expr: Rewrite(n.Expr, fn), OrderBy: rewriteOrder(n.OrderBy, fn)}
	case JSONField:
		return JSONField{Expr: Rewrite(n.Expr, fn), Key: n.Key}
	case OrderTerm:
		return OrderTerm{Expr: Rewrite(n.Expr, fn), Desc: n.Desc}
	case RowNumber:
		return RowNumber{OrderBy: rewriteOrder(n.OrderBy, fn)}
	case Eq:
		return Eq{Left: Rewrite(n.Left, fn), Right: Rewrite(n.Right, fn)}
	case Subquery:
		return Subquery{Query: rewriteStatement(n.Query, fn)}
	case NotInQuery:
		return NotInQuery{Expr: Rewrite(n.Expr, fn), Query: rewriteStatement(n.Query, fn)}
	default:
		return e
	}
}

// Walk calls visit for every node of e in pre-order.
func Walk(e Expr, visit func(Expr)) {
	Rewrite(e, func(n Expr) (Expr, bool) {
		visit(n)
		return nil, false
	})
}

// Rebind substitutes every column reference qualified by from with the
// same column qualified by to. It is how an expression written against an
// entity's canonical table is moved onto a concrete row source alias.
func Rebind(e Expr, from, to string) Expr {
	return Rewrite(e, func(n Expr) (Expr, bool) {
		if c, ok := n.(Col); ok && c.Table == from {
			return Col{Table: to, Column: c.Column}, true
		}
		return nil, false
	})
}

func rewriteAll(exprs []Expr, fn RewriteFunc) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Rewrite(e, fn)
	}
	return out
}

func rewriteOrder(terms []OrderTerm, fn RewriteFunc) []OrderTerm {
	if terms == nil {
		return nil
	}
	out := make([]OrderTerm, len(terms))
	for i, t := range terms {
		out[i] = OrderTerm{Expr: Rewrite(t.Expr, fn), Desc: t.Desc}
	}
	return out
}

// rewriteStatement descends into SELECT statements and derived tables.
// Other statements are returned unchanged.
func rewriteStatement(q SQLer, fn RewriteFunc) SQLer {
	s, ok := q.(SelectStmt)
	if !ok {
		return q
	}
	out := s
	out.DistinctOn = rewriteAll(s.DistinctOn, fn)
	out.ColumnExprs = rewriteAll(s.ColumnExprs, fn)
	if sub, ok := s.FromExpr.(SubqueryTable); ok {
		out.FromExpr = SubqueryTable{Query: rewriteStatement(sub.Query, fn), Alias: sub.Alias}
	}
	if s.Joins != nil {
		out.Joins = make([]JoinClause, len(s.Joins))
		for i, j := range s.Joins {
			out.Joins[i] = JoinClause{Type: j.Type, TableExpr: j.TableExpr, On: Rewrite(j.On, fn)}
		}
	}
	out.Where = Rewrite(s.Where, fn)
	out.OrderBy = rewriteOrder(s.OrderBy, fn)
	return out
}
