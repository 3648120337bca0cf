package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	vibeerrors "github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/model"
)

// AnalyzeTextRequest is the body of /phrases/analyze
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// RerankRequest is the body of /phrases/rerank
type RerankRequest struct {
	Signals []model.PhraseSignal `json:"signals"`
}

func nonNilPhrases(phrases []model.VibePhrase) []model.VibePhrase {
	if phrases == nil {
		return []model.VibePhrase{}
	}
	return phrases
}

// ListPhrasesHandler lists the phrase table.
// Query: q (optional, case-insensitive substring)
func (api *API) ListPhrasesHandler(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	var phrases []model.VibePhrase
	if query == "" {
		phrases = api.phrases.All()
	} else {
		phrases = api.phrases.GetVibesByPhrase(query)
	}

	c.JSON(http.StatusOK, gin.H{
		"phrases": nonNilPhrases(phrases),
		"total":   len(phrases),
		"query":   query,
	})
}

// TopPhrasesHandler returns the highest ranked phrases, served from the cache when possible.
// Query: limit (optional)
func (api *API) TopPhrasesHandler(c *gin.Context) {
	limit, validation := ValidateLimit(c.Query("limit"), api.ranking.DefaultTopLimit, api.ranking.MaxTopLimit)
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	ctx := c.Request.Context()
	if api.cache != nil {
		cached, err := api.cache.GetTop(ctx, api.phrases.Generation(), limit)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{
				"phrases": nonNilPhrases(cached),
				"total":   len(cached),
				"cached":  true,
			})
			return
		}
		if !errors.Is(err, vibeerrors.ErrCacheMiss) {
			api.log.Warn("Top phrases cache read failed", map[string]interface{}{
				"limit": limit,
				"error": err.Error(),
			})
		}
	}

	phrases, generation := api.phrases.GetTopPhrasesWithGeneration(limit)
	if api.cache != nil {
		if err := api.cache.SetTop(ctx, generation, limit, phrases); err != nil {
			api.log.Warn("Top phrases cache write failed", map[string]interface{}{
				"limit": limit,
				"error": err.Error(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"phrases": nonNilPhrases(phrases),
		"total":   len(phrases),
		"cached":  false,
	})
}

// GetPhraseHandler returns one phrase, matched ignoring case. Misses carry close spellings.
func (api *API) GetPhraseHandler(c *gin.Context) {
	phrase := c.Param("phrase")

	found, err := api.phrases.Get(phrase)
	if err != nil {
		if errors.Is(err, vibeerrors.ErrPhraseNotFound) {
			var suggestions []string
			for _, s := range api.phrases.Suggest(phrase, 0) {
				suggestions = append(suggestions, s.Phrase)
			}
			SendPhraseNotFoundError(c, phrase, suggestions...)
			return
		}
		SendInternalError(c, "get phrase", err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// PhrasesByVibeHandler lists every phrase classified under a vibe
func (api *API) PhrasesByVibeHandler(c *gin.Context) {
	vibe := model.Vibe(c.Param("vibe"))
	phrases := api.phrases.GetPhrasesByVibe(vibe)

	c.JSON(http.StatusOK, gin.H{
		"vibe":    vibe,
		"phrases": nonNilPhrases(phrases),
		"total":   len(phrases),
	})
}

// AnalyzeTextHandler scores the vibes whose phrases appear in a text
// Request Body: AnalyzeTextRequest
func (api *API) AnalyzeTextHandler(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	scores := api.phrases.AnalyzeText(req.Text)
	if scores == nil {
		scores = []model.VibeScore{}
	}

	c.JSON(http.StatusOK, gin.H{
		"vibes": scores,
		"total": len(scores),
	})
}

// RerankHandler queues a signal batch for re-ranking and returns the job id
// Request Body: RerankRequest
func (api *API) RerankHandler(c *gin.Context) {
	if api.reranker == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Re-ranking is not enabled on this server")
		return
	}

	var req RerankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateBatchSize("signals", len(req.Signals), api.ranking.MaxBatchSize); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateSignals(req.Signals); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.reranker.RerankAsync(req.Signals)
	if err != nil {
		SendJobExecutionError(c, "start rerank", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Re-rank started",
		"job_id":  jobID,
		"signals": len(req.Signals),
	})
}

// SnapshotHandler queues a snapshot of the phrase table and returns the job id
func (api *API) SnapshotHandler(c *gin.Context) {
	if api.reranker == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Re-ranking is not enabled on this server")
		return
	}

	jobID, err := api.reranker.SnapshotAsync()
	if err != nil {
		if errors.Is(err, vibeerrors.ErrSnapshotsDisabled) {
			SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented, "Snapshots are disabled on this server")
			return
		}
		SendJobExecutionError(c, "start snapshot", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Snapshot started",
		"job_id":  jobID,
	})
}
