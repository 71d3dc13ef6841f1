// Package main provides the docsql command line tool.
//
// The CLI supports:
//   - validate: Check a schema file and list its resource types
//   - build: Compile a document request and print the SQL and arguments
//   - query: Compile a document request, run it and print the document
//   - doctor: Check a schema against a live database
//   - config show: Print the effective configuration
//
// Requests are given as a JSON:API query string, the same one an HTTP
// handler would receive:
//
//	docsql build articles --query 'fields[articles]=name,author&include=author&sort=-name'
//	docsql query articles --id 1 --related comments --db postgres://localhost/blog
//
// Only query and doctor need database access.
package main

func main() {
	Execute()
}
