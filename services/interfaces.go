package services

import (
	"context"

	"github.com/gcbaptista/vibe-rank/model"
)

// RankScorer computes ranks for phrase signal observations.
// Implementations never fail on out-of-domain numbers; validation is separate.
type RankScorer interface {
	CalcRank(input model.RankInput) float64
	ExplainRank(input model.RankInput) model.RankExplanation
	CalculateBatchRanks(inputs []model.RankInput) []model.RankResult
	GetTopRankedVibes(inputs []model.RankInput, limit int) []model.RankResult
	BoostFactor(vibe model.Vibe) float64
}

// PhraseReader defines read operations on the phrase table
type PhraseReader interface {
	Get(phrase string) (model.VibePhrase, error)
	All() []model.VibePhrase
	GetVibesByPhrase(query string) []model.VibePhrase
	GetPhrasesByVibe(vibe model.Vibe) []model.VibePhrase
	GetTopPhrases(limit int) []model.VibePhrase
	GetTopPhrasesWithGeneration(limit int) ([]model.VibePhrase, uint64)
	Generation() uint64
	AnalyzeText(text string) []model.VibeScore
	Suggest(query string, limit int) []model.VibePhrase
}

// PhraseStore is a PhraseReader that accepts new ranks and can be snapshotted
type PhraseStore interface {
	PhraseReader
	ApplyRanks(ranks map[string]float64) int
	SaveSnapshot(path string) error
}

// TopCache caches top-N phrase lists per table generation
type TopCache interface {
	GetTop(ctx context.Context, generation uint64, limit int) ([]model.VibePhrase, error)
	SetTop(ctx context.Context, generation uint64, limit int, phrases []model.VibePhrase) error
	Invalidate(ctx context.Context) error
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(jobType *model.JobType, status *model.JobStatus) []*model.Job
}

// Reranker starts background runs over the phrase table
type Reranker interface {
	RerankAsync(signals []model.PhraseSignal) (string, error)
	SnapshotAsync() (string, error)
}
