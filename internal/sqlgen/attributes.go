package sqlgen

import (
	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
	"github.com/pthm/docsql/schema"
)

// strictKeywords are member names of a JSON:API resource object that an
// attribute may not shadow. Lenient mode reserves only id and type.
var (
	strictKeywords  = []string{"id", "type", "links", "included", "attributes", "relationships"}
	lenientKeywords = []string{"id", "type"}
)

func (o *Options) reserved(name string) bool {
	keywords := strictKeywords
	if o.LenientKeywords {
		keywords = lenientKeywords
	}
	for _, k := range keywords {
		if k == name {
			return true
		}
	}
	return false
}

// Formatter wraps attribute values of a declared SQL type. Template is an
// expression with a {value} placeholder.
type Formatter struct {
	Type     string
	Template sqldsl.Expr
}

// NewFormatter parses a formatter template such as
//
//	to_char({value}, 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"')
func NewFormatter(typ, template string) (Formatter, error) {
	tmpl, err := sqldsl.ParseTemplate(template)
	if err != nil {
		return Formatter{}, err
	}
	return Formatter{Type: typ, Template: tmpl}, nil
}

// attrValue is one resolved attribute ready to be emitted.
type attrValue struct {
	Name  string
	Value sqldsl.Expr
}

// lookup returns the named attribute without following synonyms.
func (info *entityInfo) lookup(name string) (schema.Attribute, bool) {
	i, ok := info.attrIndex[name]
	if !ok {
		return schema.Attribute{}, false
	}
	return info.attrs[i], true
}

// resolve follows synonyms to the column or derived attribute that
// produces the value. Chains are validated acyclic by the schema package.
func (info *entityInfo) resolve(name string) (schema.Attribute, bool) {
	for range len(info.attrs) + 1 {
		a, ok := info.lookup(name)
		if !ok {
			return schema.Attribute{}, false
		}
		if a.Kind() != schema.KindSynonym {
			return a, true
		}
		name = a.Synonym
	}
	return schema.Attribute{}, false
}

// column returns the physical column behind name, if it is column-backed.
func (info *entityInfo) column(name string) (*schema.Column, bool) {
	a, ok := info.resolve(name)
	if !ok || a.Column == nil {
		return nil, false
	}
	return a.Column, true
}

func (info *entityInfo) relationship(name string) (schema.Relationship, bool) {
	i, ok := info.relIndex[name]
	if !ok {
		return schema.Relationship{}, false
	}
	return info.rels[i], true
}

// valueExpr returns the unformatted value of the named attribute read from
// the row source alias.
func (info *entityInfo) valueExpr(name, alias string) (sqldsl.Expr, bool) {
	a, ok := info.resolve(name)
	if !ok {
		return nil, false
	}
	if a.Column != nil {
		return sqldsl.Col{Table: alias, Column: a.Column.Name}, true
	}
	return sqldsl.Rebind(info.derived[a.Name], info.entity.Table, alias), true
}

// declaredType returns the SQL type formatters match against. A synonym's
// own type wins over its target's.
func (info *entityInfo) declaredType(name string) string {
	if a, ok := info.lookup(name); ok && a.Type != "" {
		return a.Type
	}
	if a, ok := info.resolve(name); ok {
		return a.Type
	}
	return ""
}

func (info *entityInfo) identityExpr(alias string) sqldsl.Expr {
	expr, _ := info.valueExpr(info.entity.IdentityName(), alias)
	return expr
}

// eligible reports whether an attribute is emitted when no explicit field
// list is given for its type.
func (c *compiler) eligible(info *entityInfo, a schema.Attribute) bool {
	if a.Name == info.entity.IdentityName() || c.opts.reserved(a.Name) {
		return false
	}
	if _, isRel := info.relIndex[a.Name]; isRel {
		return false
	}
	if col, ok := info.column(a.Name); ok && (col.References != nil || col.PrimaryKey) {
		return false
	}
	return true
}

// checkExplicit validates a field named in a sparse fieldset.
func (c *compiler) checkExplicit(info *entityInfo, name string) error {
	if c.opts.reserved(name) {
		return reservedField(name)
	}
	if _, ok := info.lookup(name); !ok {
		return unknownField(info.entity.Name, name)
	}
	if col, ok := info.column(name); ok {
		if col.References != nil {
			return foreignKeyField(name, col.Name)
		}
		if col.PrimaryKey {
			return primaryKeyField(name, col.Name)
		}
	}
	return nil
}

// resolveFields selects and resolves the attributes to emit for an entity
// read from alias. requested is nil when the request has no field list for
// the entity's type.
func (c *compiler) resolveFields(info *entityInfo, requested []string, alias string) ([]attrValue, error) {
	var names []string
	if requested == nil {
		for _, a := range info.attrs {
			if c.eligible(info, a) {
				names = append(names, a.Name)
			}
		}
	} else {
		seen := make(map[string]bool, len(requested))
		for _, name := range requested {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, isRel := info.relIndex[name]; isRel {
				continue
			}
			if err := c.checkExplicit(info, name); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}

	values := make([]attrValue, 0, len(names))
	for _, name := range names {
		expr, _ := info.valueExpr(name, alias)
		values = append(values, attrValue{Name: name, Value: c.format(info.declaredType(name), expr)})
	}
	return values, nil
}

// format applies the first formatter registered for typ.
func (c *compiler) format(typ string, value sqldsl.Expr) sqldsl.Expr {
	if typ == "" {
		return value
	}
	for _, f := range c.opts.Formatters {
		if f.Type == typ {
			return sqldsl.Bind(f.Template, map[string]sqldsl.Expr{"value": value})
		}
	}
	return value
}
