package rank

import (
	"github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/model"
)

// Chart position bounds, inclusive
const (
	MinChartPos = 1
	MaxChartPos = 50
)

// ValidateRankInput reports whether input is well formed.
// TikTokHits is not checked against MaxTikTok; a larger value yields buzz above 1.
func ValidateRankInput(input model.RankInput) bool {
	return len(ValidateRankInputDetailed(input)) == 0
}

// ValidateRankInputDetailed returns one ValidationError per malformed field
func ValidateRankInputDetailed(input model.RankInput) []error {
	var errs []error

	if input.ChartPos != nil && (*input.ChartPos < MinChartPos || *input.ChartPos > MaxChartPos) {
		errs = append(errs, errors.NewValidationError("chart_pos", "must be between 1 and 50 when present"))
	}

	if !inRange(input.FreqLyrics, 0, 1) {
		errs = append(errs, errors.NewValidationError("freq_lyrics", "must be between 0 and 1"))
	}

	if !nonNegative(input.TikTokHits) {
		errs = append(errs, errors.NewValidationError("tiktok_hits", "must be a non-negative number"))
	}

	if !nonNegative(input.MaxTikTok) {
		errs = append(errs, errors.NewValidationError("max_tiktok", "must be a non-negative number"))
	}

	return errs
}

// NaN fails every comparison, so both helpers reject it
func inRange(x, min, max float64) bool {
	return x >= min && x <= max
}

func nonNegative(x float64) bool {
	return x >= 0
}
