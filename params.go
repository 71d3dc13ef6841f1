package docsql

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// fieldsPattern matches query parameters like fields[typename]
var fieldsPattern = regexp.MustCompile(`^fields\[([^\]]+)\]$`)

// pagePattern matches query parameters like page[limit]
var pagePattern = regexp.MustCompile(`^page\[(limit|offset)\]$`)

// ParseQuery parses a JSON:API query string into a Request.
//
//	fields[articles]=name,author&include=author,comments.author&sort=-name&page[limit]=10&page[offset]=20
//
// An include or fields parameter that is present but empty yields an empty,
// non-nil list: no included member contents, or identifiers only. Absent
// parameters leave the corresponding Request field nil. Other parameters
// are ignored. Malformed input returns an error wrapping ErrInvalidQuery.
func ParseQuery(rawQuery string) (Request, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var req Request
	if raw, ok := values["include"]; ok {
		req.Include = splitList(first(raw))
	}
	if raw, ok := values["sort"]; ok {
		req.Sort = splitList(first(raw))
	}

	for key, raw := range values {
		if m := fieldsPattern.FindStringSubmatch(key); len(m) == 2 {
			if req.Fields == nil {
				req.Fields = make(map[string][]string)
			}
			req.Fields[m[1]] = splitList(first(raw))
			continue
		}
		if m := pagePattern.FindStringSubmatch(key); len(m) == 2 {
			n, err := parsePage(key, first(raw))
			if err != nil {
				return Request{}, err
			}
			if m[1] == "limit" {
				req.Limit = n
			} else {
				req.Offset = n
			}
		}
	}

	return req, nil
}

func parsePage(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidQuery, key, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidQuery, key, n)
	}
	return n, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// splitList splits a comma-separated parameter, dropping blank entries.
// The result is never nil.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
