package sqldsl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxObjectPairs is the number of key/value pairs that fit into a single
// jsonb_build_object call. PostgreSQL functions accept at most 100 arguments.
const maxObjectPairs = 50

// JSONPair is a single key/value entry of a JSON object.
type JSONPair struct {
	Key   string
	Value Expr
}

// JSONObject renders jsonb_build_object('k1', v1, 'k2', v2, ...).
// Objects with more than 50 pairs are split into several calls merged
// with the jsonb || operator.
type JSONObject struct {
	Pairs []JSONPair
}

// Obj is shorthand for building a JSONObject from pairs.
func Obj(pairs ...JSONPair) JSONObject {
	return JSONObject{Pairs: pairs}
}

// Pair creates a JSONPair.
func Pair(key string, value Expr) JSONPair {
	return JSONPair{Key: key, Value: value}
}

// SQL renders the object constructor.
func (o JSONObject) SQL() string {
	if len(o.Pairs) == 0 {
		return "jsonb_build_object()"
	}
	var chunks []string
	for start := 0; start < len(o.Pairs); start += maxObjectPairs {
		end := min(start+maxObjectPairs, len(o.Pairs))
		chunks = append(chunks, buildObjectCall(o.Pairs[start:end]))
	}
	if len(chunks) == 1 {
		return chunks[0]
	}
	return "(" + strings.Join(chunks, " || ") + ")"
}

func buildObjectCall(pairs []JSONPair) string {
	args := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		args = append(args, Lit(p.Key).SQL(), p.Value.SQL())
	}
	return "jsonb_build_object(" + strings.Join(args, ", ") + ")"
}

// JSONAgg renders jsonb_agg(expr [ORDER BY ...]).
type JSONAgg struct {
	Expr    Expr
	OrderBy []OrderTerm
}

// SQL renders the aggregate.
func (a JSONAgg) SQL() string {
	if len(a.OrderBy) == 0 {
		return "jsonb_agg(" + a.Expr.SQL() + ")"
	}
	return "jsonb_agg(" + a.Expr.SQL() + " ORDER BY " + orderBySQL(a.OrderBy) + ")"
}

// EmptyJSONArray renders '[]'::jsonb.
type EmptyJSONArray struct{}

// SQL renders the empty array.
func (EmptyJSONArray) SQL() string {
	return "'[]'::jsonb"
}

// AggOrEmpty aggregates expr into a JSON array, yielding [] rather than
// NULL when there are no rows.
func AggOrEmpty(expr Expr, orderBy ...OrderTerm) Func {
	return Coalesce(JSONAgg{Expr: expr, OrderBy: orderBy}, EmptyJSONArray{})
}

// JSONField renders expr->>'key' (text extraction).
type JSONField struct {
	Expr Expr
	Key  string
}

// SQL renders the extraction.
func (f JSONField) SQL() string {
	return f.Expr.SQL() + "->>" + Lit(f.Key).SQL()
}

// JSONLiteral encodes value and returns it as a jsonb-typed literal.
func JSONLiteral(value any) (Expr, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding json literal: %w", err)
	}
	return Cast{Expr: Lit(string(raw)), Type: "jsonb"}, nil
}
