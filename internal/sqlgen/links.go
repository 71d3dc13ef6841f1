package sqlgen

import "github.com/pthm/docsql/internal/sqlgen/sqldsl"

// resourceURL renders baseURL + type + "/" + id [+ suffix] as a text
// expression.
func (c *compiler) resourceURL(typeName string, id sqldsl.Expr, suffix string) sqldsl.Expr {
	parts := []sqldsl.Expr{sqldsl.Lit(c.opts.BaseURL + typeName + "/"), sqldsl.Text(id)}
	if suffix != "" {
		parts = append(parts, sqldsl.Lit(suffix))
	}
	return sqldsl.Concat{Parts: parts}
}

// selfLink returns the links member of a resource object, or nil when no
// base URL is configured.
func (c *compiler) selfLink(info *entityInfo, alias string) (sqldsl.Expr, error) {
	if c.opts.BaseURL == "" {
		return nil, nil
	}
	typeName, err := c.reg.TypeNameOf(info.entity.Name)
	if err != nil {
		return nil, err
	}
	return sqldsl.Obj(
		sqldsl.Pair("self", c.resourceURL(typeName, info.identityExpr(alias), "")),
	), nil
}

// relationshipLinks returns the self and related links of a relationship
// object, or nil when no base URL is configured.
func (c *compiler) relationshipLinks(info *entityInfo, alias, name string) (sqldsl.Expr, error) {
	if c.opts.BaseURL == "" {
		return nil, nil
	}
	typeName, err := c.reg.TypeNameOf(info.entity.Name)
	if err != nil {
		return nil, err
	}
	id := info.identityExpr(alias)
	return sqldsl.Obj(
		sqldsl.Pair("self", c.resourceURL(typeName, id, "/relationships/"+name)),
		sqldsl.Pair("related", c.resourceURL(typeName, id, "/"+name)),
	), nil
}
