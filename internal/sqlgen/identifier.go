package sqlgen

import "github.com/pthm/docsql/internal/sqlgen/sqldsl"

// identifierPairs returns the id and type members of a resource object.
// The identity is always cast to text so integer and UUID keys serialize
// the same way.
func (c *compiler) identifierPairs(info *entityInfo, alias string) ([]sqldsl.JSONPair, error) {
	typeName, err := c.reg.TypeNameOf(info.entity.Name)
	if err != nil {
		return nil, err
	}
	return []sqldsl.JSONPair{
		sqldsl.Pair("id", sqldsl.Text(info.identityExpr(alias))),
		sqldsl.Pair("type", sqldsl.Lit(typeName)),
	}, nil
}

// identifier builds a resource identifier object {id, type}.
func (c *compiler) identifier(info *entityInfo, alias string) (sqldsl.Expr, error) {
	pairs, err := c.identifierPairs(info, alias)
	if err != nil {
		return nil, err
	}
	return sqldsl.Obj(pairs...), nil
}
