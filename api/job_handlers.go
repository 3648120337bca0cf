package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	vibeerrors "github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/model"
)

func (api *API) jobsUnavailable(c *gin.Context) bool {
	if api.jobs == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Job management is not enabled on this server")
		return true
	}
	return false
}

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	if api.jobsUnavailable(c) {
		return
	}
	jobID := c.Param("jobId")

	job, err := api.jobs.GetJob(jobID)
	if err != nil {
		if errors.Is(err, vibeerrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendInternalError(c, "get job", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs, newest first.
// Query: type, status (both optional)
func (api *API) ListJobsHandler(c *gin.Context) {
	if api.jobsUnavailable(c) {
		return
	}

	var typeFilter *model.JobType
	if typeParam := c.Query("type"); typeParam != "" {
		jobType := model.JobType(typeParam)
		typeFilter = &jobType
	}

	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	jobs := api.jobs.ListJobs(typeFilter, statusFilter)
	if jobs == nil {
		jobs = []*model.Job{}
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	if api.jobsUnavailable(c) {
		return
	}

	provider, ok := api.jobs.(jobMetricsProvider)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Job metrics are not supported by this job manager")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":          provider.GetMetrics(),
		"success_rate":     provider.GetJobSuccessRate(),
		"current_workload": provider.GetCurrentWorkload(),
	})
}
