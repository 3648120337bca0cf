package phrases

import (
	"sort"

	"github.com/gcbaptista/vibe-rank/internal/typoutil"
	"github.com/gcbaptista/vibe-rank/model"
)

// DefaultSuggestLimit caps Suggest when limit is not positive
const DefaultSuggestLimit = 3

// Suggest returns phrases within the typo budget of query, closest first.
// Ties are broken by rank (highest first) and then table order. Exact matches are excluded.
func (t *Table) Suggest(query string, limit int) []model.VibePhrase {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	q := key(query)
	maxDistance := typoutil.MaxDistanceFor(len([]rune(q)))
	if maxDistance == 0 {
		return nil
	}

	type candidate struct {
		phrase   model.VibePhrase
		distance int
	}

	t.mu.RLock()
	var candidates []candidate
	for _, p := range t.phrases {
		k := key(p.Phrase)
		if k == q || !typoutil.Within(q, k, maxDistance) {
			continue
		}
		candidates = append(candidates, candidate{phrase: p, distance: typoutil.Distance(q, k)})
	}
	t.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].phrase.Rank > candidates[j].phrase.Rank
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}
	result := make([]model.VibePhrase, len(candidates))
	for i, c := range candidates {
		result[i] = c.phrase
	}
	return result
}
