package command

import (
	"slices"
	"strings"
	"unicode"
)

// Suggestion is a command that matched a partial name.
type Suggestion struct {
	// Name is the command's primary name.
	Name string
	// Matched is the name or alias that matched.
	Matched string
	Score   int
}

// Suggest returns up to limit commands whose name or an alias contains
// the characters of query in order, best match first. A limit of zero or
// less returns every match.
func (r *Registry) Suggest(query string, limit int) []Suggestion {
	q := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(q) == 0 {
		return nil
	}

	r.mu.RLock()
	best := make(map[string]Suggestion)
	for word, e := range r.names {
		score := fuzzyScore(q, word)
		if score == 0 {
			continue
		}
		if prev, ok := best[e.info.Name]; !ok || score > prev.Score {
			best[e.info.Name] = Suggestion{Name: e.info.Name, Matched: word, Score: score}
		}
	}
	r.mu.RUnlock()

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// fuzzyScore scores word against query, or returns 0 when the query's
// runes do not all appear in word in order.
func fuzzyScore(query []rune, word string) int {
	original := []rune(word)
	text := []rune(strings.ToLower(word))

	matches := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(query) {
		return 0
	}

	score := 100
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}
	for _, idx := range matches {
		if isWordBoundary(original, idx) {
			score += 15
		}
	}
	if matches[0] == 0 {
		score += 25
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		score -= gap * 2
	}
	score -= matches[0]
	if len(text) < 20 {
		score += 20 - len(text)
	}
	if len(text) >= len(query) && slices.Equal(text[:len(query)], query) {
		score += 50
	}
	return max(score, 1)
}

func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	return unicode.IsSpace(prev) || unicode.IsPunct(prev) ||
		(unicode.IsLower(prev) && unicode.IsUpper(cur))
}
