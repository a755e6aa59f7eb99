package store

import (
	"regexp"
	"strings"
)

// FTS5 query syntax detection.
//
// The character class covers operators reserved by the FTS5 query
// language. Hyphen is included because hyphenated terms are otherwise
// parsed as column filters ("no such column" errors).
var (
	ftsSpecialChars = regexp.MustCompile(`[.():*"\-]`)
	ftsOperators    = regexp.MustCompile(`(?i)\b(AND|OR|NOT)\b`)
)

// SanitizeQuery conditions a raw user query for the FTS5 MATCH clause.
//
// If the query contains reserved characters or boolean operator
// keywords, the whole query is downgraded to a literal phrase: embedded
// double quotes are doubled and the string is wrapped in quotes.
// Plain multi-term queries pass through untouched so normal relevance
// matching applies. This guarantees MATCH never raises a syntax error
// on arbitrary input.
func SanitizeQuery(query string) string {
	if ftsSpecialChars.MatchString(query) || ftsOperators.MatchString(query) {
		return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
	}
	return query
}
