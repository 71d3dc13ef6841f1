package sqlgen

import (
	"testing"

	"github.com/pthm/docsql/schema"
)

// friendships stores each friendship once; the subquery makes it symmetric.
const friendshipsSQL = `SELECT user_id AS source_id, friend_id AS target_id FROM friendships
UNION
SELECT friend_id AS source_id, user_id AS target_id FROM friendships`

func fk(table, column string) *schema.ForeignKey {
	return &schema.ForeignKey{Table: table, Column: column}
}

func blogEntities() []schema.Entity {
	return []schema.Entity{
		{
			Name:  "Article",
			Table: "articles",
			Columns: []schema.Column{
				{Name: "_id", Type: "integer", PrimaryKey: true, Attribute: "id"},
				{Name: "name", Type: "text"},
				{Name: "content", Type: "text"},
				{Name: "author_id", Type: "integer", References: fk("users", "id")},
				{Name: "owner_id", Type: "integer", References: fk("users", "id")},
				{Name: "category_id", Type: "integer", References: fk("categories", "id")},
			},
			Attributes: []schema.Attribute{
				{Name: "name_synonym", Synonym: "name"},
				{Name: "name_upper", Expression: "upper({name})", Type: "text"},
				{Name: "comment_count", Expression: "(SELECT count(*) FROM comments c WHERE c.article_id = {_id})", Type: "integer"},
			},
			Relationships: []schema.Relationship{
				{Name: "author", Target: "User", Cardinality: schema.One, LocalColumn: "author_id", RemoteColumn: "id"},
				{Name: "owner", Target: "User", Cardinality: schema.One, LocalColumn: "owner_id", RemoteColumn: "id"},
				{Name: "category", Target: "Category", Cardinality: schema.One, LocalColumn: "category_id", RemoteColumn: "id"},
				{Name: "comments", Target: "Comment", Cardinality: schema.Many, LocalColumn: "_id", RemoteColumn: "article_id"},
			},
		},
		{
			Name:  "Category",
			Table: "categories",
			Columns: []schema.Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "text"},
				{Name: "created_at", Type: "timestamp"},
				{Name: "parent_id", Type: "integer", References: fk("categories", "id")},
			},
			Relationships: []schema.Relationship{
				{Name: "parent", Target: "Category", Cardinality: schema.One, LocalColumn: "parent_id", RemoteColumn: "id"},
				{Name: "subcategories", Target: "Category", Cardinality: schema.Many, LocalColumn: "id", RemoteColumn: "parent_id"},
				{Name: "articles", Target: "Article", Cardinality: schema.Many, LocalColumn: "id", RemoteColumn: "category_id", OrderBy: []string{"-name"}},
			},
		},
		{
			Name:  "User",
			Table: "users",
			Columns: []schema.Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "text"},
			},
			Relationships: []schema.Relationship{
				{
					Name: "all_friends", Target: "User", Cardinality: schema.Many,
					LocalColumn: "id", RemoteColumn: "id",
					Through: &schema.Through{Subquery: friendshipsSQL, SourceColumn: "source_id", TargetColumn: "target_id"},
				},
				{
					Name: "groups", Target: "Group", Cardinality: schema.Many,
					LocalColumn: "id", RemoteColumn: "id",
					Through: &schema.Through{Table: "user_groups", SourceColumn: "user_id", TargetColumn: "group_id"},
				},
			},
		},
		{
			Name:  "Group",
			Table: "groups",
			Columns: []schema.Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "name", Type: "text"},
			},
		},
		{
			Name:  "Comment",
			Table: "comments",
			Columns: []schema.Column{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "content", Type: "text"},
				{Name: "article_id", Type: "integer", References: fk("articles", "_id")},
				{Name: "author_id", Type: "integer", References: fk("users", "id")},
			},
			Relationships: []schema.Relationship{
				{Name: "article", Target: "Article", Cardinality: schema.One, LocalColumn: "article_id", RemoteColumn: "_id"},
				{Name: "author", Target: "User", Cardinality: schema.One, LocalColumn: "author_id", RemoteColumn: "id"},
			},
		},
		{
			Name:     "Setting",
			Table:    "settings",
			Identity: "key",
			Columns: []schema.Column{
				{Name: "key", Type: "text", PrimaryKey: true},
				{Name: "value", Type: "text"},
			},
		},
	}
}

var blogTypes = map[string]string{
	"articles":   "Article",
	"categories": "Category",
	"users":      "User",
	"groups":     "Group",
	"comments":   "Comment",
	"settings":   "Setting",
}

func blogRegistry(t *testing.T) *Registry {
	t.Helper()
	model, err := schema.NewModel(blogEntities()...)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	reg, err := NewRegistry(model, blogTypes)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}
