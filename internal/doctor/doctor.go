// Package doctor provides health checks for a docsql schema against a live
// database.
//
// The doctor validates the schema file, checks that every table, column
// and association table it names exists, and runs a one-row sample document
// query per resource type.
//
// Example usage:
//
//	d := doctor.New(db, "schema.yaml")
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pthm/docsql"
	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
	"github.com/pthm/docsql/schema"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// Check categories, in report order.
const (
	CategorySchema       = "Schema File"
	CategoryTables       = "Tables"
	CategoryAssociations = "Association Tables"
	CategoryDocuments    = "Documents"
)

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	Category string
	Name     string
	Status   Status
	Message  string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer, grouped by category.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor checks a schema file against a database.
type Doctor struct {
	db         *sql.DB
	schemaPath string
	opts       []docsql.Option

	// Populated by checkSchemaFile.
	model *schema.Model
	qb    *docsql.QueryBuilder
}

// New creates a new Doctor. opts configure the builder used for sample
// queries, so formatters are exercised as they will be in production.
func New(db *sql.DB, schemaPath string, opts ...docsql.Option) *Doctor {
	return &Doctor{
		db:         db,
		schemaPath: schemaPath,
		opts:       opts,
	}
}

// Run executes all health checks and returns a report. Database and table
// checks are skipped when the schema file is unusable.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkSchemaFile(report)
	if d.model == nil {
		return report, nil
	}
	if err := d.checkTables(ctx, report); err != nil {
		return nil, fmt.Errorf("checking tables: %w", err)
	}
	if err := d.checkAssociations(ctx, report); err != nil {
		return nil, fmt.Errorf("checking association tables: %w", err)
	}
	d.checkDocuments(ctx, report)

	return report, nil
}

func (d *Doctor) checkSchemaFile(report *Report) {
	if _, err := os.Stat(d.schemaPath); err != nil {
		report.AddCheck(CheckResult{
			Category: CategorySchema,
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema file not found at %s", d.schemaPath),
			FixHint:  "Set schema in docsql.yaml or pass --schema",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: CategorySchema,
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema file exists at %s", d.schemaPath),
	})

	file, err := schema.LoadFile(d.schemaPath)
	if err != nil {
		d.failSchema(report, "Schema file cannot be parsed", err)
		return
	}
	model, err := file.Model()
	if err != nil {
		d.failSchema(report, "Schema is invalid", err)
		return
	}
	reg, err := docsql.NewRegistry(model, file.TypeMap())
	if err != nil {
		d.failSchema(report, "Resource types are invalid", err)
		return
	}
	qb, err := docsql.NewQueryBuilder(reg, d.opts...)
	if err != nil {
		d.failSchema(report, "Formatters are invalid", err)
		return
	}

	d.model = model
	d.qb = qb

	report.AddCheck(CheckResult{
		Category: CategorySchema,
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema is valid (%d entities, %d types)", len(model.Entities()), len(reg.Types())),
	})
}

func (d *Doctor) failSchema(report *Report, msg string, err error) {
	report.AddCheck(CheckResult{
		Category: CategorySchema,
		Name:     "valid",
		Status:   StatusFail,
		Message:  msg,
		Details:  err.Error(),
		FixHint:  "Run 'docsql validate' for the full error",
	})
}

// checkTables verifies every entity table and its declared columns.
// Aliases share their base table and are skipped.
func (d *Doctor) checkTables(ctx context.Context, report *Report) error {
	for _, e := range d.model.Entities() {
		if e.AliasOf != "" {
			continue
		}

		cols, err := d.tableColumns(ctx, e.Table)
		if err != nil {
			return err
		}
		if cols == nil {
			report.AddCheck(CheckResult{
				Category: CategoryTables,
				Name:     e.Name,
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s: table %s does not exist", e.Name, e.Table),
				FixHint:  "Create the table or correct the entity's table name",
			})
			continue
		}

		declared := make([]string, len(e.Columns))
		for i, c := range e.Columns {
			declared[i] = c.Name
		}
		if missing := missingColumns(cols, declared...); len(missing) > 0 {
			report.AddCheck(CheckResult{
				Category: CategoryTables,
				Name:     e.Name,
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s: table %s is missing columns: %s", e.Name, e.Table, strings.Join(missing, ", ")),
				Details:  fmt.Sprintf("Found columns: %s", strings.Join(cols, ", ")),
				FixHint:  "Update the schema file to match the table",
			})
			continue
		}

		report.AddCheck(CheckResult{
			Category: CategoryTables,
			Name:     e.Name,
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s: table %s (%d columns)", e.Name, e.Table, len(e.Columns)),
		})
	}
	return nil
}

// checkAssociations verifies the association tables of many-to-many
// relationships. Subquery associations are covered by the sample documents.
func (d *Doctor) checkAssociations(ctx context.Context, report *Report) error {
	for _, e := range d.model.Entities() {
		if e.AliasOf != "" {
			continue
		}
		for _, r := range e.Relationships {
			if r.Through == nil || r.Through.Table == "" {
				continue
			}
			t := r.Through
			name := e.Name + "." + r.Name

			cols, err := d.tableColumns(ctx, t.Table)
			if err != nil {
				return err
			}
			switch missing := missingColumns(cols, t.SourceColumn, t.TargetColumn); {
			case cols == nil:
				report.AddCheck(CheckResult{
					Category: CategoryAssociations,
					Name:     name,
					Status:   StatusFail,
					Message:  fmt.Sprintf("%s: table %s does not exist", name, t.Table),
				})
			case len(missing) > 0:
				report.AddCheck(CheckResult{
					Category: CategoryAssociations,
					Name:     name,
					Status:   StatusFail,
					Message:  fmt.Sprintf("%s: table %s is missing columns: %s", name, t.Table, strings.Join(missing, ", ")),
				})
			default:
				report.AddCheck(CheckResult{
					Category: CategoryAssociations,
					Name:     name,
					Status:   StatusPass,
					Message:  fmt.Sprintf("%s: via %s", name, t.Table),
				})
			}
		}
	}
	return nil
}

// checkDocuments runs a one-row collection query for every resource type.
// This catches errors in derived attribute expressions, formatters and
// subquery associations that static checks cannot see.
func (d *Doctor) checkDocuments(ctx context.Context, report *Report) {
	exec := docsql.NewExecutor(d.db)
	reg := d.qb.Registry()
	for _, typeName := range reg.Types() {
		e, err := reg.EntityOf(typeName)
		if err != nil {
			continue
		}

		req := docsql.Request{Limit: 1}
		rels, _ := reg.Graph().RelationshipsOf(e.Name)
		for _, r := range rels {
			req.Include = append(req.Include, r.Name)
		}

		q, err := d.qb.Select(e.Name, req)
		if err == nil {
			_, err = exec.Document(ctx, q)
		}
		if err != nil {
			hint := "Check derived attributes and formatters of this type"
			if docsql.IsSchemaMismatchErr(err) {
				hint = "The schema file references tables, columns or functions the database lacks"
			}
			report.AddCheck(CheckResult{
				Category: CategoryDocuments,
				Name:     typeName,
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s: document query failed", typeName),
				Details:  err.Error(),
				FixHint:  hint,
			})
			continue
		}

		report.AddCheck(CheckResult{
			Category: CategoryDocuments,
			Name:     typeName,
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s: document query ok (%d relationships included)", typeName, len(req.Include)),
		})
	}
}

// tableColumns returns the column names of a table, view or materialized
// view in attribute order. It returns nil when the relation does not exist.
// The name is resolved exactly as the built queries spell it.
func (d *Doctor) tableColumns(ctx context.Context, table string) ([]string, error) {
	table = sqldsl.QuoteTable(table)
	var exists bool
	if err := d.db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT a.attname
		FROM pg_attribute a
		WHERE a.attrelid = to_regclass($1)
		AND a.attnum > 0
		AND NOT a.attisdropped
		ORDER BY a.attnum
	`, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols := []string{}
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// missingColumns returns the wanted columns absent from have, in order.
func missingColumns(have []string, want ...string) []string {
	set := make(map[string]bool, len(have))
	for _, c := range have {
		set[c] = true
	}
	var missing []string
	for _, c := range want {
		if !set[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
