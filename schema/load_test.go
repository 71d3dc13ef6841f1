package schema

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const blogYAML = `
base_url: https://api.example.com/
entities:
  - name: User
    table: users
    columns:
      - {name: id, type: integer, primary_key: true}
      - {name: name, type: text}
  - name: Article
    table: articles
    columns:
      - {name: _id, attribute: id, type: integer, primary_key: true}
      - {name: title, type: text}
      - name: author_id
        type: integer
        references: {table: users, column: id}
    attributes:
      - name: headline
        synonym: title
    relationships:
      - name: author
        target: User
        cardinality: one
        local_column: author_id
        remote_column: id
  - name: Author
    alias_of: User
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(blogYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.BaseURL != "https://api.example.com/" {
		t.Errorf("BaseURL = %q", f.BaseURL)
	}
	if len(f.Entities) != 3 {
		t.Fatalf("len(Entities) = %d, want 3", len(f.Entities))
	}

	article := f.Entities[1]
	if article.Columns[0].AttributeName() != "id" || !article.Columns[0].PrimaryKey {
		t.Errorf("identity column = %+v", article.Columns[0])
	}
	if fk := article.Columns[2].References; fk == nil || fk.Table != "users" {
		t.Errorf("author_id references = %+v", fk)
	}
	if r := article.Relationships[0]; r.Cardinality != One || r.ToMany() {
		t.Errorf("author relationship = %+v", r)
	}

	m, err := f.Model()
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	if _, ok := m.Entity("Author"); !ok {
		t.Error("alias entity missing from model")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		contains string
	}{
		{"unknown key", "entities:\n  - name: User\n    tabel: users\n", "tabel"},
		{"no entities", "base_url: /\n", "no entities declared"},
		{"not yaml", "entities: [", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !IsInvalidSchemaErr(err) {
				t.Fatalf("Parse() error = %v, want ErrInvalidSchema", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want it to contain %q", err, tt.contains)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(blogYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}
}

func TestTypeMap(t *testing.T) {
	f, err := Parse([]byte(blogYAML))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"users": "User", "articles": "Article"}
	if got := f.TypeMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("TypeMap() = %v, want %v", got, want)
	}
	if got := f.TypeNames(); !reflect.DeepEqual(got, []string{"articles", "users"}) {
		t.Errorf("TypeNames() = %v", got)
	}

	f.Types = map[string]string{"people": "User"}
	got := f.TypeMap()
	got["writers"] = "Author"
	if len(f.Types) != 1 {
		t.Error("TypeMap() returned the file's own map")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		entity string
		want   string
	}{
		{"Article", "articles"},
		{"Category", "categories"},
		{"User", "users"},
		{"LeagueInvitation", "league-invitations"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.entity); got != tt.want {
			t.Errorf("TypeName(%q) = %q, want %q", tt.entity, got, tt.want)
		}
	}
}
