package sqldsl

import (
	"fmt"
	"strings"
)

// SQLer is an interface for types that can render a complete statement.
type SQLer interface {
	SQL() string
}

// JoinClause represents a SQL JOIN clause.
type JoinClause struct {
	Type      string // "INNER", "LEFT", "CROSS JOIN LATERAL", ...
	TableExpr TableExpr
	On        Expr
}

// SQL renders the JOIN clause.
func (j JoinClause) SQL() string {
	// Don't add "JOIN" if Type already contains it.
	joinKeyword := j.Type + " JOIN"
	if strings.Contains(j.Type, "JOIN") {
		joinKeyword = j.Type
	}
	if j.On == nil || strings.HasPrefix(j.Type, "CROSS") {
		return joinKeyword + " " + j.TableExpr.TableSQL()
	}
	return joinKeyword + " " + j.TableExpr.TableSQL() + " ON " + j.On.SQL()
}

// SelectStmt represents a SELECT query.
// Limit and Offset are omitted when zero or negative.
type SelectStmt struct {
	DistinctOn  []Expr
	ColumnExprs []Expr
	FromExpr    TableExpr
	Joins       []JoinClause
	Where       Expr
	OrderBy     []OrderTerm
	Limit       int
	Offset      int
}

// SQL renders the SELECT statement, one clause per line.
func (s SelectStmt) SQL() string {
	lines := []string{"SELECT " + s.distinctSQL() + s.columnsSQL()}
	if s.FromExpr != nil {
		lines = append(lines, "FROM "+s.FromExpr.TableSQL())
	}
	for _, j := range s.Joins {
		lines = append(lines, j.SQL())
	}
	if s.Where != nil {
		lines = append(lines, "WHERE "+s.Where.SQL())
	}
	if len(s.OrderBy) > 0 {
		lines = append(lines, "ORDER BY "+orderBySQL(s.OrderBy))
	}
	if s.Limit > 0 {
		lines = append(lines, fmt.Sprintf("LIMIT %d", s.Limit))
	}
	if s.Offset > 0 {
		lines = append(lines, fmt.Sprintf("OFFSET %d", s.Offset))
	}
	return strings.Join(lines, "\n")
}

func (s SelectStmt) distinctSQL() string {
	if len(s.DistinctOn) == 0 {
		return ""
	}
	return "DISTINCT ON (" + joinSQL(s.DistinctOn, ", ") + ") "
}

func (s SelectStmt) columnsSQL() string {
	if len(s.ColumnExprs) == 0 {
		return "1"
	}
	return joinSQL(s.ColumnExprs, ", ")
}

// =============================================================================
// Query Blocks (for UNION queries)
// =============================================================================

// QueryBlock represents a query with optional comments.
// Used to build UNION queries with descriptive comments for each branch.
type QueryBlock struct {
	Comments []string // Comment lines (without -- prefix)
	Query    SQLer
}

// UnionAll joins query blocks with UNION ALL. Duplicates are kept; callers
// that need set semantics de-duplicate in an enclosing query.
type UnionAll struct {
	Blocks []QueryBlock
}

// SQL renders the union.
func (u UnionAll) SQL() string {
	parts := make([]string, len(u.Blocks))
	for i, block := range u.Blocks {
		parts[i] = renderSingleBlock(block)
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

// renderSingleBlock renders a single query block with its comments.
func renderSingleBlock(block QueryBlock) string {
	var lines []string
	for _, comment := range block.Comments {
		lines = append(lines, "-- "+comment)
	}
	lines = append(lines, block.Query.SQL())
	return strings.Join(lines, "\n")
}

// IndentLines adds the given indent prefix to each line of input.
func IndentLines(input, indent string) string {
	if input == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(input), "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
