package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcbaptista/vibe-rank/config"
	"github.com/gcbaptista/vibe-rank/internal/jobs"
	"github.com/gcbaptista/vibe-rank/internal/logger"
	"github.com/gcbaptista/vibe-rank/services"
)

// Dependencies are the collaborators the handlers use.
// Cache, Jobs and Reranker are optional; the related routes degrade when nil.
type Dependencies struct {
	Scorer   services.RankScorer
	Phrases  services.PhraseReader
	Cache    services.TopCache
	Jobs     services.JobManager
	Reranker services.Reranker
	Ranking  config.RankingConfig
	Logger   logger.Logger
}

// API holds dependencies for API handlers.
type API struct {
	scorer   services.RankScorer
	phrases  services.PhraseReader
	cache    services.TopCache
	jobs     services.JobManager
	reranker services.Reranker
	ranking  config.RankingConfig
	log      logger.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(deps Dependencies) *API {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ranking := deps.Ranking
	if ranking.DefaultTopLimit == 0 || ranking.MaxTopLimit == 0 || ranking.MaxBatchSize == 0 {
		defaults := config.Default().Ranking
		if ranking.DefaultTopLimit == 0 {
			ranking.DefaultTopLimit = defaults.DefaultTopLimit
		}
		if ranking.MaxTopLimit == 0 {
			ranking.MaxTopLimit = defaults.MaxTopLimit
		}
		if ranking.MaxBatchSize == 0 {
			ranking.MaxBatchSize = defaults.MaxBatchSize
		}
	}
	return &API{
		scorer:   deps.Scorer,
		phrases:  deps.Phrases,
		cache:    deps.Cache,
		jobs:     deps.Jobs,
		reranker: deps.Reranker,
		ranking:  ranking,
		log:      log,
	}
}

// jobMetricsProvider is implemented by *jobs.Manager
type jobMetricsProvider interface {
	GetMetrics() jobs.JobMetricsData
	GetJobSuccessRate() float64
	GetCurrentWorkload() int64
}

// SetupRoutes defines all the API routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	apiHandler := NewAPI(deps)

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Scoring routes
	rankRoutes := router.Group("/rank")
	{
		rankRoutes.POST("", apiHandler.CalcRankHandler)              // Rank a single input
		rankRoutes.POST("/explain", apiHandler.ExplainRankHandler)   // Rank breakdown
		rankRoutes.POST("/validate", apiHandler.ValidateRankHandler) // Check an input without scoring it
		rankRoutes.POST("/batch", apiHandler.BatchRankHandler)       // Rank many inputs, order preserved
		rankRoutes.POST("/top", apiHandler.TopRankedHandler)         // Rank many inputs, top N
	}

	// Boost table routes
	router.GET("/boosts", apiHandler.ListBoostsHandler)
	router.GET("/boosts/:vibe", apiHandler.GetBoostHandler)

	// Phrase table routes
	phraseRoutes := router.Group("/phrases")
	{
		phraseRoutes.GET("", apiHandler.ListPhrasesHandler)          // All phrases, or ?q= substring search
		phraseRoutes.GET("/top", apiHandler.TopPhrasesHandler)       // Highest ranked phrases
		phraseRoutes.GET("/:phrase", apiHandler.GetPhraseHandler)    // Single phrase
		phraseRoutes.POST("/analyze", apiHandler.AnalyzeTextHandler) // Score vibes found in a text
		phraseRoutes.POST("/rerank", apiHandler.RerankHandler)       // Apply a signal batch (async)
		phraseRoutes.POST("/snapshot", apiHandler.SnapshotHandler)   // Persist the table (async)
	}
	router.GET("/vibes/:vibe/phrases", apiHandler.PhrasesByVibeHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
	}
}
