package model

// DefaultPhraseRank is the rank every seeded phrase starts with until the first re-rank
const DefaultPhraseRank = 0.25

// VibePhrase is a trending slang token classified under a vibe
type VibePhrase struct {
	Phrase string  `json:"phrase"`
	Vibe   Vibe    `json:"vibe"`
	Rank   float64 `json:"rank"`
}

// PhraseSignal carries one phrase's signal observation for a re-rank run.
// The embedded input's Vibe is taken from the phrase table when left empty.
type PhraseSignal struct {
	Phrase string `json:"phrase"`
	RankInput
}

// VibeScore is the accumulated score of a vibe for an analyzed text
type VibeScore struct {
	Vibe  Vibe    `json:"vibe"`
	Score float64 `json:"score"`
}
