package jobs

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/internal/logger"
	"github.com/gcbaptista/vibe-rank/model"
)

// JobFunc is the body of a background job. ctx is cancelled when the manager stops.
type JobFunc func(ctx context.Context, job model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	queued   map[string]bool // handed to ExecuteJob, waiting for a worker
	workers  chan struct{}   // limits concurrent jobs
	stopChan chan struct{}
	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	metrics  *JobMetrics
	log      logger.Logger
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int, log logger.Logger) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:     make(map[string]*model.Job),
		queued:   make(map[string]bool),
		workers:  make(chan struct{}, maxWorkers),
		stopChan: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		metrics:  NewJobMetrics(),
		log:      log,
	}
}

// Start launches the periodic cleanup of finished jobs older than retention
func (m *Manager) Start(retention time.Duration) {
	m.log.Info("Job manager started", map[string]interface{}{"max_workers": cap(m.workers)})

	m.wg.Add(1)
	go m.cleanupRoutine(retention)
}

// Stop cancels running jobs and waits for them to return
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		close(m.stopChan)
		m.mu.Unlock()
		m.cancel()
	})
	m.wg.Wait()
	m.log.Info("Job manager stopped", nil)
}

// CreateJob registers a pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  maps.Clone(metadata),
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.log.Debug("Created job", map[string]interface{}{"job_id": job.ID, "job_type": job.Type})
	return job.ID
}

// copyJob returns a copy that shares no mutable state with job. Caller must hold m.mu.
func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		progressCopy.Percentage = progressCopy.GetProgressPercentage()
		jobCopy.Progress = &progressCopy
	}
	jobCopy.Metadata = maps.Clone(job.Metadata)
	return &jobCopy
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of all jobs, optionally filtered by type and status, newest first
func (m *Manager) ListJobs(jobType *model.JobType, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if jobType != nil && job.Type != *jobType {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// ExecuteJob queues jobFunc for a pending job and returns without waiting for a worker.
// The job stays pending until a worker slot frees up.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	select {
	case <-m.stopChan:
		m.mu.Unlock()
		m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
		return errors.ErrManagerStopped
	default:
	}
	if job.Status != model.JobStatusPending || m.queued[jobID] {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	m.queued[jobID] = true
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		select {
		case m.workers <- struct{}{}:
			defer func() { <-m.workers }()
		case <-m.ctx.Done():
		}
		if m.ctx.Err() != nil {
			// select picks at random when a slot frees up during shutdown
			m.dequeue(jobID)
			m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
			return
		}

		snapshot, ok := m.startJob(jobID)
		if !ok {
			return
		}

		startTime := time.Now()
		err := jobFunc(m.ctx, snapshot)
		executionTime := time.Since(startTime)

		fields := map[string]interface{}{
			"job_id":   jobID,
			"job_type": snapshot.Type,
			"duration": executionTime.String(),
		}
		switch {
		case err != nil && m.ctx.Err() != nil:
			m.updateJobStatus(jobID, model.JobStatusCancelled, err.Error())
			m.log.WithError(err).Warn("Job cancelled", fields)
		case err != nil:
			m.metrics.RecordJobFailed(snapshot.Type)
			m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
			m.log.WithError(err).Error("Job failed", fields)
		default:
			m.metrics.RecordJobCompleted(snapshot.Type, executionTime)
			m.updateJobStatus(jobID, model.JobStatusCompleted, "")
			m.log.Info("Job completed", fields)
		}
	}()

	return nil
}

// startJob moves a queued job to running and returns a copy for the job body
func (m *Manager) startJob(jobID string) (model.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.queued, jobID)
	job, exists := m.jobs[jobID]
	if !exists {
		return model.Job{}, false
	}
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(model.JobStatusPending, model.JobStatusRunning)
	return *copyJob(job), true
}

func (m *Manager) dequeue(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queued, jobID)
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// SetJobMetadata records a key/value on the job
func (m *Manager) SetJobMetadata(jobID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]string)
	}
	job.Metadata[key] = value
}

func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if status.IsTerminal() {
		now := time.Now()
		job.CompletedAt = &now
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)
}

func (m *Manager) cleanupRoutine(retention time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(retention)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.log.Info("Cleaned up old jobs", map[string]interface{}{"count": cleaned})
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate
func (m *Manager) GetJobSuccessRate() float64 {
	return m.metrics.GetSuccessRate()
}

// GetCurrentWorkload returns the number of pending or running jobs
func (m *Manager) GetCurrentWorkload() int64 {
	return m.metrics.GetCurrentWorkload()
}
