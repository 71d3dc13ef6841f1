// Package sqldsl provides a type-safe DSL for building PostgreSQL queries.
//
// # Overview
//
// Rather than constructing SQL strings through concatenation or templating,
// this package provides typed building blocks that compose together to form
// complete queries. The document compiler in internal/sqlgen builds an
// expression tree per request and renders it once at the end.
//
// # Core Interfaces
//
// All DSL types implement one of two interfaces:
//
//   - Expr: SQL expressions (columns, literals, operators, function calls)
//   - SQLer: complete statements (SELECT, WITH, UNION ALL)
//
// Both interfaces define a SQL() method that renders the PostgreSQL syntax.
// Table sources used in FROM and JOIN implement TableExpr.
//
// # Expression Types
//
// Basic expressions:
//
//	Col{Table: "a1", Column: "name"}  // a1.name
//	Lit("articles")                   // 'articles'
//	Param(1)                          // $1
//	Int(42), Bool(true), Null{}
//	Raw("now()")                      // escape hatch
//	Text(Col{...})                    // a1._id::text
//
// JSON construction:
//
//	Obj(Pair("id", id), Pair("type", Lit("articles")))
//	                                  // jsonb_build_object('id', ..., 'type', 'articles')
//	AggOrEmpty(fragment, OrderTerm{Expr: id})
//	                                  // coalesce(jsonb_agg(... ORDER BY ...), '[]'::jsonb)
//	JSONField{Expr: f, Key: "type"}   // f->>'type'
//
// # Statements
//
//	SelectStmt{
//	    ColumnExprs: []Expr{fragment},
//	    FromExpr:    TableAs("root_page", "p"),
//	    OrderBy:     []OrderTerm{{Expr: Col{Table: "p", Column: "name"}}},
//	    Limit:       10,
//	}
//
// WithCTE, CTEDef, UnionAll and SubqueryTable compose larger statements.
//
// # Rewriting
//
// Rewrite walks an expression tree and rebuilds it with a substitution
// function applied. Rebind uses it to move column references from an
// entity's canonical table onto a row alias, and Bind fills the
// placeholders of templates produced by ParseTemplate.
//
// # Identifiers
//
// Table and column names go through QuoteIdent, which leaves plain
// lower-case identifiers untouched and double-quotes everything else.
package sqldsl
