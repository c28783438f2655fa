// Package search implements the list-screen field filter: a free-text query
// matched against one user-chosen field of an in-memory row set.
package search

import (
	"strings"
	"time"
)

// Criteria identifies the field a query is matched against.
type Criteria string

const (
	CriteriaCompany Criteria = "company"
	CriteriaCode    Criteria = "code"
	CriteriaName    Criteria = "name"
	CriteriaNumber  Criteria = "number"
	CriteriaDate    Criteria = "date"
)

// dateLayouts lists the stored representations a date field may arrive in.
var dateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339, "2006-01-02T15:04:05"}

// MatchText reports whether value contains query, case-insensitive.
func MatchText(value, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(query))
}

// MatchDate matches query against every supported rendering of a date value,
// so a partial query like "03-05" hits 2024-03-05 regardless of how the
// record stores the date. Accepts time.Time or string values; unparseable
// strings degrade to plain substring matching.
func MatchDate(value any, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		parsed, ok := parseDate(v)
		if !ok {
			return strings.Contains(v, query)
		}
		t = parsed
	default:
		return false
	}
	for _, repr := range []string{
		t.Format("2006-01-02"),
		t.Format("2006/01/02"),
		t.Format("01-02"),
	} {
		if strings.Contains(repr, query) {
			return true
		}
	}
	return false
}

// Match applies the criteria-appropriate matcher to a single field value.
func Match(criteria Criteria, value any, query string) bool {
	if criteria == CriteriaDate {
		return MatchDate(value, query)
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return MatchText(s, query)
}

// Filter keeps the rows whose chosen field matches query. The accessor
// returns the field value for one row; rows are never mutated.
func Filter[T any](rows []T, criteria Criteria, query string, value func(T) any) []T {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if Match(criteria, value(row), query) {
			out = append(out, row)
		}
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
