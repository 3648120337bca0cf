// Package phrases holds the trending phrase table and its lookups.
package phrases

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/internal/persistence"
	"github.com/gcbaptista/vibe-rank/model"
)

// DefaultTopLimit is used by GetTopPhrases when limit is not positive
const DefaultTopLimit = 10

// Table is the in-memory phrase table. Phrases are matched case-insensitively.
type Table struct {
	mu      sync.RWMutex
	phrases []model.VibePhrase
	byKey   map[string]int // lowercased phrase -> position in phrases

	// generation increases on every change to phrases or their ranks
	generation uint64
}

// gobTableData excludes the mutex and the derived lookup map.
type gobTableData struct {
	Phrases []model.VibePhrase
}

// NewTable creates a table from phrases. Later duplicates of a phrase are dropped.
func NewTable(phrases []model.VibePhrase) *Table {
	t := &Table{}
	t.reset(phrases)
	return t
}

// NewDefaultTable creates a table seeded with DefaultPhrases
func NewDefaultTable() *Table {
	return NewTable(DefaultPhrases())
}

func key(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}

// reset replaces the contents. Caller must hold the write lock or own t exclusively.
func (t *Table) reset(phrases []model.VibePhrase) {
	t.generation++
	t.phrases = make([]model.VibePhrase, 0, len(phrases))
	t.byKey = make(map[string]int, len(phrases))
	for _, p := range phrases {
		k := key(p.Phrase)
		if k == "" {
			continue
		}
		if _, exists := t.byKey[k]; exists {
			continue
		}
		t.byKey[k] = len(t.phrases)
		t.phrases = append(t.phrases, p)
	}
}

// Generation identifies the current contents. Any write changes it.
func (t *Table) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Len returns the number of phrases
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.phrases)
}

// All returns a copy of every phrase in table order
func (t *Table) All() []model.VibePhrase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.VibePhrase(nil), t.phrases...)
}

// Get returns the phrase matching exactly (ignoring case)
func (t *Table) Get(phrase string) (model.VibePhrase, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, exists := t.byKey[key(phrase)]
	if !exists {
		return model.VibePhrase{}, errors.NewPhraseNotFoundError(phrase)
	}
	return t.phrases[i], nil
}

// GetVibesByPhrase returns every phrase containing query, ignoring case
func (t *Table) GetVibesByPhrase(query string) []model.VibePhrase {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q := strings.ToLower(query)
	var result []model.VibePhrase
	for _, p := range t.phrases {
		if strings.Contains(strings.ToLower(p.Phrase), q) {
			result = append(result, p)
		}
	}
	return result
}

// GetPhrasesByVibe returns every phrase classified under vibe
func (t *Table) GetPhrasesByVibe(vibe model.Vibe) []model.VibePhrase {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []model.VibePhrase
	for _, p := range t.phrases {
		if p.Vibe == vibe {
			result = append(result, p)
		}
	}
	return result
}

// GetTopPhrases returns the limit highest ranked phrases. Ties keep table order.
// The table itself is never reordered.
func (t *Table) GetTopPhrases(limit int) []model.VibePhrase {
	top, _ := t.GetTopPhrasesWithGeneration(limit)
	return top
}

// GetTopPhrasesWithGeneration is GetTopPhrases plus the generation the list was read at
func (t *Table) GetTopPhrasesWithGeneration(limit int) ([]model.VibePhrase, uint64) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	t.mu.RLock()
	sorted := append([]model.VibePhrase(nil), t.phrases...)
	generation := t.generation
	t.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, generation
}

// AnalyzeText scores each vibe by summing the ranks of its phrases found in text.
// Only vibes with a positive score are returned, highest first.
func (t *Table) AnalyzeText(text string) []model.VibeScore {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lowered := strings.ToLower(text)
	scores := make(map[model.Vibe]float64)
	order := model.KnownVibes()
	for _, p := range t.phrases {
		if !strings.Contains(lowered, strings.ToLower(p.Phrase)) {
			continue
		}
		if _, seen := scores[p.Vibe]; !seen && !p.Vibe.IsKnown() {
			order = append(order, p.Vibe)
		}
		scores[p.Vibe] += p.Rank
	}

	result := make([]model.VibeScore, 0, len(scores))
	for _, vibe := range order {
		if score := scores[vibe]; score > 0 {
			result = append(result, model.VibeScore{Vibe: vibe, Score: score})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result
}

// ApplyRanks sets the rank of every known phrase in ranks (keys match ignoring case).
// It returns the number of phrases updated.
func (t *Table) ApplyRanks(ranks map[string]float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	updated := 0
	for phrase, rank := range ranks {
		i, exists := t.byKey[key(phrase)]
		if !exists {
			continue
		}
		t.phrases[i].Rank = rank
		updated++
	}
	if updated > 0 {
		t.generation++
	}
	return updated
}

// Upsert adds a phrase or replaces the vibe and rank of an existing one
func (t *Table) Upsert(phrase model.VibePhrase) error {
	k := key(phrase.Phrase)
	if k == "" {
		return errors.NewValidationError("phrase", "phrase cannot be empty or whitespace-only")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
	if i, exists := t.byKey[k]; exists {
		t.phrases[i].Vibe = phrase.Vibe
		t.phrases[i].Rank = phrase.Rank
		return nil
	}
	t.byKey[k] = len(t.phrases)
	t.phrases = append(t.phrases, phrase)
	return nil
}

// GobEncode implements the gob.GobEncoder interface for Table.
func (t *Table) GobEncode() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobTableData{Phrases: t.phrases}); err != nil {
		return nil, fmt.Errorf("failed to gob encode phrase table: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for Table.
func (t *Table) GobDecode(data []byte) error {
	var decoded gobTableData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode phrase table: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset(decoded.Phrases)
	return nil
}

// SaveSnapshot writes the table to path
func (t *Table) SaveSnapshot(path string) error {
	return persistence.SaveGob(path, t)
}

// LoadSnapshot replaces the table contents with the snapshot at path.
// A missing file returns os.ErrNotExist and leaves the table untouched.
func (t *Table) LoadSnapshot(path string) error {
	return persistence.LoadGob(path, t)
}
