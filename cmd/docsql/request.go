package main

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/docsql"
	"github.com/pthm/docsql/internal/cli"
	"github.com/pthm/docsql/schema"
)

// requestFlags are the document request flags shared by build and query.
type requestFlags struct {
	schema       string
	baseURL      string
	query        string
	id           string
	related      string
	relationship string
	from         string
	args         []string
	links        map[string]string
	idsOnly      bool
	asText       bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.schema, "schema", "", "path to schema file")
	fs.StringVar(&f.baseURL, "base-url", "", "prefix for self and related links (must end with /)")
	fs.StringVar(&f.query, "query", "", "JSON:API query string (fields, include, sort, page)")
	fs.StringVar(&f.id, "id", "", "select the single resource with this id")
	fs.StringVar(&f.related, "related", "", "select the resources of this relationship (requires --id)")
	fs.StringVar(&f.relationship, "relationship", "", "select the identifiers of this relationship (requires --id)")
	fs.StringVar(&f.from, "from", "", "custom SQL row source for the primary resources")
	fs.StringArrayVar(&f.args, "arg", nil, "argument for a placeholder in --from (repeatable)")
	fs.StringToStringVar(&f.links, "link", nil, "top-level document link, e.g. self=/articles")
	fs.BoolVar(&f.idsOnly, "ids-only", false, "emit resource identifiers only")
	fs.BoolVar(&f.asText, "as-text", false, "return the document as text instead of jsonb")
	cmd.MarkFlagsMutuallyExclusive("related", "relationship")
}

// compile loads the schema, builds the query builder and compiles the
// request for the resource type typeName.
func (f *requestFlags) compile(typeName string) (docsql.Query, error) {
	qb, err := f.builder()
	if err != nil {
		return docsql.Query{}, err
	}

	e, err := qb.Registry().EntityOf(typeName)
	if err != nil {
		return docsql.Query{}, cli.GeneralError("resolving type", err)
	}

	req, err := docsql.ParseQuery(f.query)
	if err != nil {
		return docsql.Query{}, cli.GeneralError("parsing --query", err)
	}
	req.From = f.from
	req.IDsOnly = f.idsOnly
	req.AsText = f.asText
	req.Links = f.links
	for _, a := range f.args {
		req.Args = append(req.Args, a)
	}

	var q docsql.Query
	switch {
	case (f.related != "" || f.relationship != "") && f.id == "":
		return docsql.Query{}, cli.GeneralError("--related and --relationship require --id", nil)
	case f.related != "":
		q, err = qb.SelectRelated(e.Name, f.id, f.related, req)
	case f.relationship != "":
		q, err = qb.SelectRelationship(e.Name, f.id, f.relationship, req)
	case f.id != "":
		q, err = qb.SelectOne(e.Name, f.id, req)
	default:
		q, err = qb.Select(e.Name, req)
	}
	if err != nil {
		return docsql.Query{}, cli.GeneralError("building query", err)
	}

	logger.Debug("compiled document query",
		zap.String("type", typeName),
		zap.Int("args", len(q.Args)),
	)
	return q, nil
}

// builder creates a QueryBuilder from the schema file and configuration.
// The base URL resolves flag > config > schema file.
func (f *requestFlags) builder() (*docsql.QueryBuilder, error) {
	file, reg, err := loadSchema(cmp.Or(f.schema, cfg.Schema))
	if err != nil {
		return nil, err
	}

	opts := configOptions()
	if baseURL := cmp.Or(f.baseURL, cfg.BaseURL, file.BaseURL); baseURL != "" {
		opts = append(opts, docsql.WithBaseURL(baseURL))
	}

	qb, err := docsql.NewQueryBuilder(reg, opts...)
	if err != nil {
		return nil, cli.ConfigError("configuring formatters", err)
	}
	return qb, nil
}

// configOptions returns the builder options set in the configuration.
// Formatters are registered in type name order.
func configOptions() []docsql.Option {
	opts := []docsql.Option{docsql.WithEmptyIncluded(cfg.EmptyIncluded)}
	if !cfg.StrictKeywords {
		opts = append(opts, docsql.WithLenientKeywords())
	}

	types := make([]string, 0, len(cfg.Formatters))
	for typ := range cfg.Formatters {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		opts = append(opts, docsql.WithTypeFormatter(typ, cfg.Formatters[typ]))
	}
	return opts
}

// loadSchema parses and validates a schema file.
func loadSchema(path string) (*schema.File, *docsql.Registry, error) {
	file, err := schema.LoadFile(path)
	if err != nil {
		return nil, nil, cli.SchemaParseError("loading schema", err)
	}
	reg, err := docsql.RegistryFromFile(file)
	if err != nil {
		return nil, nil, cli.SchemaParseError(fmt.Sprintf("validating schema %s", path), err)
	}
	logger.Debug("schema loaded", zap.String("path", path), zap.Strings("types", reg.Types()))
	return file, reg, nil
}
