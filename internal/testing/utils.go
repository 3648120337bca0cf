// Package testing provides utilities and helpers for testing the vibe-rank service.
package testing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/vibe-rank/internal/jobs"
	"github.com/gcbaptista/vibe-rank/internal/logger"
	"github.com/gcbaptista/vibe-rank/internal/phrases"
	"github.com/gcbaptista/vibe-rank/model"
	"github.com/gcbaptista/vibe-rank/services"
)

// CreateTestTable returns a phrase table seeded with the default phrases
func CreateTestTable(t *testing.T) *phrases.Table {
	t.Helper()
	table := phrases.NewDefaultTable()
	require.Positive(t, table.Len(), "default phrase table should not be empty")
	return table
}

// SnapshotPath returns a snapshot file path inside a per-test temporary directory
func SnapshotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "phrases.gob")
}

// CreateTestManager creates a started job manager that is stopped on test cleanup
func CreateTestManager(t *testing.T, workers int) *jobs.Manager {
	t.Helper()
	manager := jobs.NewManager(workers, logger.NewTestLogger(t))
	manager.Start(time.Hour)
	t.Cleanup(manager.Stop)
	return manager
}

// Signal builds a phrase signal. chartPos 0 means not charting.
func Signal(phrase string, vibe model.Vibe, chartPos int, freq, hits, maxHits float64) model.PhraseSignal {
	signal := model.PhraseSignal{
		Phrase: phrase,
		RankInput: model.RankInput{
			Vibe:       vibe,
			FreqLyrics: freq,
			TikTokHits: hits,
			MaxTikTok:  maxHits,
		},
	}
	if chartPos != 0 {
		signal.ChartPos = model.ChartPosition(chartPos)
	}
	return signal
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it reaches a terminal status or times out
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			if job.Status.IsTerminal() {
				if opts.LogProgress && job.CompletedAt != nil {
					t.Logf("Job %s finished as %s in %v", jobID, job.Status, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			}
			if opts.LogProgress && job.Progress != nil {
				t.Logf("Job %s progress: %d/%d - %s",
					jobID,
					job.Progress.Current,
					job.Progress.Total,
					job.Progress.Message)
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// AssertRanksDescending verifies results are ordered by rank, highest first
func AssertRanksDescending(t *testing.T, results []model.RankResult) {
	t.Helper()
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Rank, results[i].Rank,
			"result %d (%s) ranks above result %d (%s)", i, results[i].Vibe, i-1, results[i-1].Vibe)
	}
}
