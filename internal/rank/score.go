// Package rank scores trending vibe phrases.
//
// A phrase's rank combines three signals observed for the same period:
//
//	pop  = 1 / chartPos        (0 when the phrase is not charting)
//	freq = freqLyrics          (already in [0,1])
//	buzz = tiktokHits / maxTikTok
//
//	rank = round3((Alpha*pop + Beta*freq + Gamma*buzz) * boost[vibe])
//
// Scoring never fails. Out-of-domain numbers propagate (NaN in, NaN out);
// use ValidateRankInput to reject malformed input before scoring.
package rank

import (
	"math"
	"sort"

	"github.com/gcbaptista/vibe-rank/model"
)

// Signal weights. They sum to 1.0.
const (
	Alpha = 0.5 // popularity
	Beta  = 0.3 // lyrics frequency
	Gamma = 0.2 // social buzz
)

// DefaultTopLimit is used by GetTopRankedVibes when limit is not positive
const DefaultTopLimit = 10

// Scorer computes ranks against a fixed boost table
type Scorer struct {
	boosts BoostTable
}

// NewScorer creates a scorer bound to a copy of the given boost table
func NewScorer(boosts BoostTable) *Scorer {
	if boosts == nil {
		boosts = BoostTable{}
	}
	return &Scorer{boosts: boosts.Clone()}
}

// DefaultScorer scores with DefaultBoosts
var DefaultScorer = NewScorer(DefaultBoosts())

// Boosts returns a copy of the scorer's boost table
func (s *Scorer) Boosts() BoostTable {
	return s.boosts.Clone()
}

// Normalize maps x linearly into [0,1] relative to [min, max].
// Returns 0 when max == min. No clamping is applied.
func Normalize(x, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (x - min) / (max - min)
}

// Round3 rounds half away from zero to 3 decimal places.
// Magnitudes of 1e15 and above carry no thousandths and are returned as is,
// so scaling by 1000 cannot overflow a finite value to Inf.
func Round3(x float64) float64 {
	if math.Abs(x) >= 1e15 {
		return x
	}
	return math.Round(x*1000) / 1000
}

// signals returns the unweighted popularity, frequency and buzz signals
func signals(input model.RankInput) (pop, freq, buzz float64) {
	if input.ChartPos != nil && *input.ChartPos != 0 {
		pop = 1 / float64(*input.ChartPos)
	}
	freq = input.FreqLyrics
	buzz = Normalize(input.TikTokHits, 0, input.MaxTikTok)
	return pop, freq, buzz
}

// BoostFactor returns the configured boost for vibe, or DefaultBoost
func (s *Scorer) BoostFactor(vibe model.Vibe) float64 {
	return s.boosts.Factor(vibe)
}

// CalcRank computes the rank of a single input
func (s *Scorer) CalcRank(input model.RankInput) float64 {
	pop, freq, buzz := signals(input)
	base := Alpha*pop + Beta*freq + Gamma*buzz
	return Round3(base * s.boosts.Factor(input.Vibe))
}

// ExplainRank returns the rank alongside each weighted term.
// Rank always equals CalcRank for the same input.
func (s *Scorer) ExplainRank(input model.RankInput) model.RankExplanation {
	pop, freq, buzz := signals(input)
	base := Alpha*pop + Beta*freq + Gamma*buzz
	boost := s.boosts.Factor(input.Vibe)

	return model.RankExplanation{
		Rank: Round3(base * boost),
		Components: model.RankComponents{
			Popularity: Round3(Alpha * pop),
			Frequency:  Round3(Beta * freq),
			Buzz:       Round3(Gamma * buzz),
			Base:       Round3(base),
			Boost:      boost,
		},
	}
}

// CalculateBatchRanks attaches a rank to every input, preserving order
func (s *Scorer) CalculateBatchRanks(inputs []model.RankInput) []model.RankResult {
	results := make([]model.RankResult, len(inputs))
	for i, input := range inputs {
		results[i] = model.RankResult{
			RankInput: input,
			Rank:      s.CalcRank(input),
		}
	}
	return results
}

// GetTopRankedVibes returns the top limit results sorted by rank descending.
// Equal ranks keep their input order. A non-positive limit means DefaultTopLimit.
func (s *Scorer) GetTopRankedVibes(inputs []model.RankInput, limit int) []model.RankResult {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	results := s.CalculateBatchRanks(inputs)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank > results[j].Rank
	})

	if limit < len(results) {
		results = results[:limit]
	}
	return results
}

// Package-level helpers below score with DefaultScorer.

// CalcRank computes the rank of input with the default boost table
func CalcRank(input model.RankInput) float64 {
	return DefaultScorer.CalcRank(input)
}

// ExplainRank explains the rank of input with the default boost table
func ExplainRank(input model.RankInput) model.RankExplanation {
	return DefaultScorer.ExplainRank(input)
}

// CalculateBatchRanks ranks inputs with the default boost table
func CalculateBatchRanks(inputs []model.RankInput) []model.RankResult {
	return DefaultScorer.CalculateBatchRanks(inputs)
}

// GetTopRankedVibes returns the top ranked inputs with the default boost table
func GetTopRankedVibes(inputs []model.RankInput, limit int) []model.RankResult {
	return DefaultScorer.GetTopRankedVibes(inputs, limit)
}

// GetVibeBoostFactor returns the default boost for vibe
func GetVibeBoostFactor(vibe model.Vibe) float64 {
	return DefaultScorer.BoostFactor(vibe)
}
