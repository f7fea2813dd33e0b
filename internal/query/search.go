package query

import (
	"sort"
	"strings"

	"github.com/Lito-docs/graph/internal/graph"
)

// Search weights per matching field.
const (
	ScoreTitle         = 10
	ScoreSummary       = 5
	ScoreTag           = 3
	ScoreCanonicalName = 10
	ScoreAlias         = 7
)

// DefaultSearchLimit applies when Search is called with limit <= 0.
const DefaultSearchLimit = 20

// SearchResult is a scored match.
type SearchResult struct {
	Node  graph.Node
	Score int
}

// Search does a case-insensitive substring match over titles, summaries,
// tags and concept names. Results are ordered by descending score, ties in
// graph order.
func (ix *Index) Search(q string, limit int) []SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []SearchResult{}
	}

	results := []SearchResult{}
	for _, n := range ix.graph.Nodes {
		if score := scoreNode(n, q); score > 0 {
			results = append(results, SearchResult{Node: n, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func scoreNode(n graph.Node, q string) int {
	b := n.Base()
	score := 0
	if strings.Contains(strings.ToLower(b.Title), q) {
		score += ScoreTitle
	}
	if strings.Contains(strings.ToLower(b.Summary), q) {
		score += ScoreSummary
	}
	if anyContains(b.Tags, q) {
		score += ScoreTag
	}
	if c, ok := n.(*graph.ConceptNode); ok {
		if strings.Contains(strings.ToLower(c.CanonicalName), q) {
			score += ScoreCanonicalName
		}
		if anyContains(c.Aliases, q) {
			score += ScoreAlias
		}
	}
	return score
}

func anyContains(values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
