package listing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Suggest proposes the searchable word closest to query, for "did you mean"
// hints on empty results. It returns "" when query is empty, already matches a
// record, or nothing lies within len(query)/3+1 edits.
func Suggest[T any](records []T, query string, s Schema[T]) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ""
	}
	for _, r := range records {
		if s.matchesSearch(r, query) {
			return ""
		}
	}

	limit := utf8.RuneCountInString(q)/3 + 1
	best, bestDist := "", limit+1
	for _, r := range records {
		for _, f := range s.Search {
			for _, w := range words(f(r)) {
				d := levenshtein.ComputeDistance(q, strings.ToLower(w))
				if d < bestDist {
					best, bestDist = w, d
				}
			}
		}
	}
	if bestDist > limit {
		return ""
	}
	return best
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '@' && r != '.' && r != '-'
	})
}
