package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/vibe-rank/internal/metrics"
	"github.com/gcbaptista/vibe-rank/model"
)

// BatchRankRequest is the body of /rank/batch and /rank/top
type BatchRankRequest struct {
	Inputs []model.RankInput `json:"inputs"`
}

// BatchRankResponse lists ranked inputs
type BatchRankResponse struct {
	Results []model.RankResult `json:"results"`
	Total   int                `json:"total"`
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func resultsFinite(results []model.RankResult) bool {
	for _, r := range results {
		if !finite(r.Rank) {
			return false
		}
	}
	return true
}

// CalcRankHandler scores a single input. Out-of-range values are scored, not rejected.
// Request Body: model.RankInput
func (api *API) CalcRankHandler(c *gin.Context) {
	var input model.RankInput
	if err := c.ShouldBindJSON(&input); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	r := api.scorer.CalcRank(input)
	metrics.RanksComputed.WithLabelValues("single").Inc()
	if !finite(r) {
		SendNonFiniteRankError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank":  r,
		"input": input,
	})
}

// ExplainRankHandler returns the weighted terms behind a rank
// Request Body: model.RankInput
func (api *API) ExplainRankHandler(c *gin.Context) {
	var input model.RankInput
	if err := c.ShouldBindJSON(&input); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	explanation := api.scorer.ExplainRank(input)
	metrics.RanksComputed.WithLabelValues("explain").Inc()
	comps := explanation.Components
	if !finite(explanation.Rank, comps.Popularity, comps.Frequency, comps.Buzz, comps.Base) {
		SendNonFiniteRankError(c)
		return
	}

	c.JSON(http.StatusOK, explanation)
}

// ValidateRankHandler reports whether an input is well formed without scoring it
// Request Body: model.RankInput
func (api *API) ValidateRankHandler(c *gin.Context) {
	var input model.RankInput
	if err := c.ShouldBindJSON(&input); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	result := ValidateRankInput(input, "")
	if result.HasErrors() {
		metrics.InvalidInputs.WithLabelValues("api").Inc()
	}
	c.JSON(http.StatusOK, result)
}

func (api *API) bindBatch(c *gin.Context) ([]model.RankInput, bool) {
	var req BatchRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return nil, false
	}

	// An empty batch is valid and ranks to an empty list.
	if len(req.Inputs) > api.ranking.MaxBatchSize {
		SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeBatchTooLarge,
			fmt.Sprintf("Batch of %d inputs exceeds the maximum of %d", len(req.Inputs), api.ranking.MaxBatchSize))
		return nil, false
	}
	return req.Inputs, true
}

// BatchRankHandler ranks every input, keeping request order
// Request Body: BatchRankRequest
func (api *API) BatchRankHandler(c *gin.Context) {
	inputs, ok := api.bindBatch(c)
	if !ok {
		return
	}

	results := api.scorer.CalculateBatchRanks(inputs)
	metrics.RanksComputed.WithLabelValues("batch").Add(float64(len(results)))
	if !resultsFinite(results) {
		SendNonFiniteRankError(c)
		return
	}

	c.JSON(http.StatusOK, BatchRankResponse{Results: results, Total: len(results)})
}

// TopRankedHandler returns the highest ranked inputs
// Request Body: BatchRankRequest. Query: limit (optional)
func (api *API) TopRankedHandler(c *gin.Context) {
	limit, validation := ValidateLimit(c.Query("limit"), api.ranking.DefaultTopLimit, api.ranking.MaxTopLimit)
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	inputs, ok := api.bindBatch(c)
	if !ok {
		return
	}

	results := api.scorer.GetTopRankedVibes(inputs, limit)
	metrics.RanksComputed.WithLabelValues("top").Add(float64(len(inputs)))
	if !resultsFinite(results) {
		SendNonFiniteRankError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"limit":   limit,
	})
}

// ListBoostsHandler lists the boost of every known vibe
func (api *API) ListBoostsHandler(c *gin.Context) {
	vibes := model.KnownVibes()
	boosts := make(map[model.Vibe]float64, len(vibes))
	for _, vibe := range vibes {
		boosts[vibe] = api.scorer.BoostFactor(vibe)
	}
	c.JSON(http.StatusOK, gin.H{"boosts": boosts})
}

// GetBoostHandler returns the boost for one vibe. Unknown vibes get the neutral boost.
func (api *API) GetBoostHandler(c *gin.Context) {
	vibe := model.Vibe(c.Param("vibe"))
	c.JSON(http.StatusOK, gin.H{
		"vibe":  vibe,
		"boost": api.scorer.BoostFactor(vibe),
		"known": vibe.IsKnown(),
	})
}
