package model

// RankInput is one observation of a candidate phrase's signals at scoring time.
//
// MaxTikTok is shared context across a batch: every record compared together
// must carry the same day's ceiling.
type RankInput struct {
	Vibe       Vibe    `json:"vibe"`
	ChartPos   *int    `json:"chart_pos"`   // 1-50, nil when not charting
	FreqLyrics float64 `json:"freq_lyrics"` // 0-1, fraction of the lyric corpus containing the phrase
	TikTokHits float64 `json:"tiktok_hits"` // raw mention/view count for the period
	MaxTikTok  float64 `json:"max_tiktok"`  // max TikTokHits across the period's candidates
}

// RankResult is a RankInput with its computed rank attached
type RankResult struct {
	RankInput
	Rank float64 `json:"rank"`
}

// RankComponents holds the weighted terms that make up a rank
type RankComponents struct {
	Popularity float64 `json:"popularity"`
	Frequency  float64 `json:"frequency"`
	Buzz       float64 `json:"buzz"`
	Base       float64 `json:"base"`
	Boost      float64 `json:"boost"`
}

// RankExplanation is the diagnostic breakdown of a rank
type RankExplanation struct {
	Rank       float64        `json:"rank"`
	Components RankComponents `json:"components"`
}

// ChartPosition is a convenience for building a RankInput with a chart position
func ChartPosition(pos int) *int {
	return &pos
}
