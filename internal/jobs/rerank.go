package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/internal/logger"
	"github.com/gcbaptista/vibe-rank/internal/metrics"
	"github.com/gcbaptista/vibe-rank/internal/rank"
	"github.com/gcbaptista/vibe-rank/model"
	"github.com/gcbaptista/vibe-rank/services"
)

// progressEvery controls how often a re-rank run reports progress
const progressEvery = 500

// RerankSummary reports what a re-rank run did
type RerankSummary struct {
	Received int `json:"received"`
	Applied  int `json:"applied"`
	Invalid  int `json:"invalid"`
	Unknown  int `json:"unknown"`
}

// Reranker applies a period's signal batch to the phrase table
type Reranker struct {
	manager      *Manager
	table        services.PhraseStore
	scorer       services.RankScorer
	cache        services.TopCache // nil disables invalidation
	snapshotPath string            // empty disables snapshots
	log          logger.Logger
}

// RerankerOptions holds the optional collaborators of a Reranker
type RerankerOptions struct {
	Cache        services.TopCache
	SnapshotPath string
	Logger       logger.Logger
}

// NewReranker creates a Reranker that runs on manager
func NewReranker(manager *Manager, table services.PhraseStore, scorer services.RankScorer, opts RerankerOptions) *Reranker {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Reranker{
		manager:      manager,
		table:        table,
		scorer:       scorer,
		cache:        opts.Cache,
		snapshotPath: opts.SnapshotPath,
		log:          log,
	}
}

// RerankAsync starts a rerank job and returns its ID
func (r *Reranker) RerankAsync(signals []model.PhraseSignal) (string, error) {
	if len(signals) == 0 {
		return "", errors.NewValidationError("signals", "no signals provided")
	}

	jobID := r.manager.CreateJob(model.JobTypeRerank, map[string]string{
		"signals": strconv.Itoa(len(signals)),
	})

	err := r.manager.ExecuteJob(jobID, func(ctx context.Context, job model.Job) error {
		summary, err := r.rerank(ctx, job.ID, signals)
		r.manager.SetJobMetadata(job.ID, "applied", strconv.Itoa(summary.Applied))
		r.manager.SetJobMetadata(job.ID, "invalid", strconv.Itoa(summary.Invalid))
		r.manager.SetJobMetadata(job.ID, "unknown", strconv.Itoa(summary.Unknown))
		return err
	})
	if err != nil {
		return jobID, fmt.Errorf("failed to start rerank job: %w", err)
	}
	return jobID, nil
}

// SnapshotAsync starts a job that writes the phrase table to the snapshot path
func (r *Reranker) SnapshotAsync() (string, error) {
	if r.snapshotPath == "" {
		return "", errors.ErrSnapshotsDisabled
	}

	jobID := r.manager.CreateJob(model.JobTypeSnapshot, map[string]string{
		"path": r.snapshotPath,
	})

	err := r.manager.ExecuteJob(jobID, func(ctx context.Context, job model.Job) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.table.SaveSnapshot(r.snapshotPath); err != nil {
			return fmt.Errorf("failed to snapshot phrase table: %w", err)
		}
		r.log.Info("Phrase table snapshot written", map[string]interface{}{
			"job_id": job.ID,
			"path":   r.snapshotPath,
		})
		return nil
	})
	if err != nil {
		return jobID, fmt.Errorf("failed to start snapshot job: %w", err)
	}
	return jobID, nil
}

// Rerank runs a re-rank synchronously
func (r *Reranker) Rerank(ctx context.Context, signals []model.PhraseSignal) (RerankSummary, error) {
	return r.rerank(ctx, "", signals)
}

func (r *Reranker) rerank(ctx context.Context, jobID string, signals []model.PhraseSignal) (RerankSummary, error) {
	summary := RerankSummary{Received: len(signals)}

	phrases := make([]string, 0, len(signals))
	inputs := make([]model.RankInput, 0, len(signals))
	for i, signal := range signals {
		if i%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			r.progress(jobID, i, len(signals), "validating signals")
		}

		existing, err := r.table.Get(signal.Phrase)
		if err != nil {
			summary.Unknown++
			continue
		}

		input := signal.RankInput
		if input.Vibe == "" {
			input.Vibe = existing.Vibe
		}
		if !rank.ValidateRankInput(input) {
			summary.Invalid++
			metrics.InvalidInputs.WithLabelValues("rerank").Inc()
			continue
		}

		phrases = append(phrases, strings.ToLower(strings.TrimSpace(signal.Phrase)))
		inputs = append(inputs, input)
	}

	results := r.scorer.CalculateBatchRanks(inputs)
	metrics.RanksComputed.WithLabelValues("rerank").Add(float64(len(results)))

	ranks := make(map[string]float64, len(results))
	for i, result := range results {
		ranks[phrases[i]] = result.Rank
	}
	summary.Applied = r.table.ApplyRanks(ranks)
	r.progress(jobID, len(signals), len(signals), "ranks applied")

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx); err != nil {
			r.log.WithError(err).Warn("Failed to invalidate top-N cache", nil)
		}
	}

	if r.snapshotPath != "" {
		if err := r.table.SaveSnapshot(r.snapshotPath); err != nil {
			r.log.WithError(err).Warn("Failed to snapshot phrase table", map[string]interface{}{"path": r.snapshotPath})
		}
	}

	fields := map[string]interface{}{
		"received": summary.Received,
		"applied":  summary.Applied,
		"invalid":  summary.Invalid,
		"unknown":  summary.Unknown,
	}
	if jobID != "" {
		fields["job_id"] = jobID
	}
	r.log.Info("Rerank finished", fields)
	return summary, nil
}

func (r *Reranker) progress(jobID string, current, total int, message string) {
	if jobID == "" {
		return
	}
	r.manager.UpdateJobProgress(jobID, current, total, message)
}
