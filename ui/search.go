package ui

import (
	"sort"
	"strings"

	"bizdesk/api"

	"github.com/sahilm/fuzzy"
)

// rowSource exposes the searchable text of each row to the fuzzy matcher.
type rowSource struct {
	rows   []api.Entity
	fields []string
}

func (s rowSource) String(i int) string {
	parts := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if v := s.rows[i].String(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func (s rowSource) Len() int { return len(s.rows) }

// Search returns the rows whose search fields fuzzy-match query, in their
// original order. An empty query keeps every row.
func Search(query string, rows []api.Entity, fields []string) []api.Entity {
	query = strings.TrimSpace(query)
	if query == "" || len(fields) == 0 {
		return rows
	}
	matches := fuzzy.FindFrom(query, rowSource{rows: rows, fields: fields})
	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })

	out := make([]api.Entity, 0, len(matches))
	for _, m := range matches {
		out = append(out, rows[m.Index])
	}
	return out
}

// MatchPositions returns the byte offsets in text that match query, for
// highlighting. It returns nil when query does not match.
func MatchPositions(query, text string) []int {
	query = strings.TrimSpace(query)
	if query == "" || text == "" {
		return nil
	}
	matches := fuzzy.Find(query, []string{text})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}
