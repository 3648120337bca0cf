package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/vibe-rank/config"
	"github.com/gcbaptista/vibe-rank/internal/cache"
	vibeerrors "github.com/gcbaptista/vibe-rank/internal/errors"
	"github.com/gcbaptista/vibe-rank/internal/jobs"
	"github.com/gcbaptista/vibe-rank/internal/logger"
	"github.com/gcbaptista/vibe-rank/internal/phrases"
	"github.com/gcbaptista/vibe-rank/internal/rank"
	testutil "github.com/gcbaptista/vibe-rank/internal/testing"
	"github.com/gcbaptista/vibe-rank/model"
)

type testServer struct {
	router  *gin.Engine
	table   *phrases.Table
	manager *jobs.Manager
	redis   *miniredis.Miniredis
}

type serverOptions struct {
	withJobs  bool
	withCache bool
	ranking   config.RankingConfig
}

func setupTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table := testutil.CreateTestTable(t)
	deps := Dependencies{
		Scorer:  rank.DefaultScorer,
		Phrases: table,
		Ranking: opts.ranking,
		Logger:  logger.NewTestLogger(t),
	}
	server := &testServer{table: table}

	var rankCache *cache.RankCache
	if opts.withCache {
		server.redis = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: server.redis.Addr()})
		rankCache = cache.NewWithClient(client, time.Minute)
		t.Cleanup(func() { _ = rankCache.Close() })
		deps.Cache = rankCache
	}

	if opts.withJobs {
		server.manager = testutil.CreateTestManager(t, 2)
		rerankOpts := jobs.RerankerOptions{
			SnapshotPath: testutil.SnapshotPath(t),
			Logger:       logger.NewTestLogger(t),
		}
		if rankCache != nil {
			rerankOpts.Cache = rankCache
		}
		reranker := jobs.NewReranker(server.manager, table, rank.DefaultScorer, rerankOpts)
		deps.Jobs = server.manager
		deps.Reranker = reranker
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	SetupRoutes(router, deps)
	server.router = router
	return server
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), "response: %s", w.Body.String())
}

func chillInput() model.RankInput {
	return model.RankInput{
		Vibe:       model.VibeChill,
		ChartPos:   model.ChartPosition(5),
		FreqLyrics: 0.6,
		TikTokHits: 7500,
		MaxTikTok:  10000,
	}
}

func productivoInput() model.RankInput {
	return model.RankInput{
		Vibe:       model.VibeProductivo,
		ChartPos:   model.ChartPosition(1),
		FreqLyrics: 0.8,
		TikTokHits: 10000,
		MaxTikTok:  10000,
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	w := server.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "vibe-rank", body["service"])
	assert.Equal(t, false, body["cache"])
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	server.do(t, http.MethodPost, "/rank", chillInput())
	w := server.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ranks_computed_total")
}

func TestCalcRankHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedRank   float64
		expectedCode   ErrorCode
	}{
		{
			name:           "chill example",
			body:           chillInput(),
			expectedStatus: http.StatusOK,
			expectedRank:   0.645,
		},
		{
			name:           "productivo example",
			body:           productivoInput(),
			expectedStatus: http.StatusOK,
			expectedRank:   1.41,
		},
		{
			name:           "not charting",
			body:           `{"vibe":"sad","freq_lyrics":0.5,"tiktok_hits":0,"max_tiktok":0}`,
			expectedStatus: http.StatusOK,
			expectedRank:   0.15,
		},
		{
			name:           "out of range values are still scored",
			body:           `{"vibe":"generic","chart_pos":80,"freq_lyrics":2,"tiktok_hits":20,"max_tiktok":10}`,
			expectedStatus: http.StatusOK,
			expectedRank:   1.006,
		},
		{
			name:           "huge but finite rank",
			body:           `{"vibe":"generic","freq_lyrics":1e306}`,
			expectedStatus: http.StatusOK,
			expectedRank:   3e305,
		},
		{
			name:           "overflowing rank",
			body:           `{"vibe":"generic","tiktok_hits":1e308,"max_tiktok":1e-10}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   ErrorCodeNonFiniteRank,
		},
		{
			name:           "invalid JSON",
			body:           `{"vibe":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := server.do(t, http.MethodPost, "/rank", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, "response: %s", w.Body.String())

			if tt.expectedCode != "" {
				var apiErr APIError
				decode(t, w, &apiErr)
				assert.Equal(t, tt.expectedCode, apiErr.Code)
				assert.NotEmpty(t, apiErr.RequestID)
				return
			}

			var body struct {
				Rank float64 `json:"rank"`
			}
			decode(t, w, &body)
			if math.Abs(tt.expectedRank) > 1e6 {
				assert.InEpsilon(t, tt.expectedRank, body.Rank, 1e-12)
				return
			}
			assert.InDelta(t, tt.expectedRank, body.Rank, 1e-9)
		})
	}
}

func TestExplainRankHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	w := server.do(t, http.MethodPost, "/rank/explain", chillInput())
	require.Equal(t, http.StatusOK, w.Code)

	var explanation model.RankExplanation
	decode(t, w, &explanation)
	assert.Equal(t, model.RankExplanation{
		Rank: 0.645,
		Components: model.RankComponents{
			Popularity: 0.1,
			Frequency:  0.18,
			Buzz:       0.15,
			Base:       0.43,
			Boost:      1.5,
		},
	}, explanation)
}

func TestValidateRankHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	t.Run("valid input", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/rank/validate", chillInput())
		require.Equal(t, http.StatusOK, w.Code)

		var result ValidationResult
		decode(t, w, &result)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("every field out of range", func(t *testing.T) {
		body := `{"vibe":"chill","chart_pos":51,"freq_lyrics":1.5,"tiktok_hits":-1,"max_tiktok":-1}`
		w := server.do(t, http.MethodPost, "/rank/validate", body)
		require.Equal(t, http.StatusOK, w.Code)

		var result ValidationResult
		decode(t, w, &result)
		assert.False(t, result.Valid)

		fields := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"chart_pos", "freq_lyrics", "tiktok_hits", "max_tiktok"}, fields)
	})

	t.Run("hits above the period maximum are accepted", func(t *testing.T) {
		body := `{"vibe":"chill","tiktok_hits":20,"max_tiktok":10}`
		w := server.do(t, http.MethodPost, "/rank/validate", body)
		require.Equal(t, http.StatusOK, w.Code)

		var result ValidationResult
		decode(t, w, &result)
		assert.True(t, result.Valid)
	})
}

func TestBatchRankHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{ranking: config.RankingConfig{MaxBatchSize: 2}})

	t.Run("order preserved", func(t *testing.T) {
		body := BatchRankRequest{Inputs: []model.RankInput{chillInput(), productivoInput()}}
		w := server.do(t, http.MethodPost, "/rank/batch", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp BatchRankResponse
		decode(t, w, &resp)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, model.VibeChill, resp.Results[0].Vibe)
		assert.Equal(t, 0.645, resp.Results[0].Rank)
		assert.Equal(t, model.VibeProductivo, resp.Results[1].Vibe)
		assert.Equal(t, 1.41, resp.Results[1].Rank)
	})

	t.Run("empty batch", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/rank/batch", `{"inputs":[]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp BatchRankResponse
		decode(t, w, &resp)
		assert.Empty(t, resp.Results)
		assert.Equal(t, 0, resp.Total)
	})

	t.Run("batch too large", func(t *testing.T) {
		body := BatchRankRequest{Inputs: []model.RankInput{chillInput(), chillInput(), chillInput()}}
		w := server.do(t, http.MethodPost, "/rank/batch", body)
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var apiErr APIError
		decode(t, w, &apiErr)
		assert.Equal(t, ErrorCodeBatchTooLarge, apiErr.Code)
	})
}

func TestTopRankedHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	inputs := []model.RankInput{
		{Vibe: model.VibeSad, FreqLyrics: 0.1},
		chillInput(),
		productivoInput(),
		{Vibe: model.VibeTraka, FreqLyrics: 0.1},
	}

	t.Run("limit applied", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/rank/top?limit=2", BatchRankRequest{Inputs: inputs})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Results []model.RankResult `json:"results"`
			Total   int                `json:"total"`
			Limit   int                `json:"limit"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 2, resp.Limit)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, model.VibeProductivo, resp.Results[0].Vibe)
		assert.Equal(t, model.VibeChill, resp.Results[1].Vibe)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/rank/top", BatchRankRequest{Inputs: inputs})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Results []model.RankResult `json:"results"`
		}
		decode(t, w, &resp)
		require.Len(t, resp.Results, 4)
		testutil.AssertRanksDescending(t, resp.Results)
		assert.Equal(t, model.VibeSad, resp.Results[2].Vibe)
		assert.Equal(t, model.VibeTraka, resp.Results[3].Vibe)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/rank/top?limit=zero", BatchRankRequest{Inputs: inputs})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var apiErr APIError
		decode(t, w, &apiErr)
		assert.Equal(t, ErrorCodeValidationFailed, apiErr.Code)
		require.Len(t, apiErr.Details, 1)
		assert.Equal(t, "limit", apiErr.Details[0].Field)
	})
}

func TestBoostHandlers(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	w := server.do(t, http.MethodGet, "/boosts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Boosts map[model.Vibe]float64 `json:"boosts"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Boosts, len(model.KnownVibes()))
	assert.Equal(t, 1.5, list.Boosts[model.VibeProductivo])
	assert.Equal(t, 1.2, list.Boosts[model.VibeKCute])
	assert.Equal(t, 1.0, list.Boosts[model.VibeCorridos])

	tests := []struct {
		vibe  string
		boost float64
		known bool
	}{
		{"chill", 1.5, true},
		{"eco", 1.2, true},
		{"hyperpop", 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.vibe, func(t *testing.T) {
			w := server.do(t, http.MethodGet, "/boosts/"+tt.vibe, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Vibe  model.Vibe `json:"vibe"`
				Boost float64    `json:"boost"`
				Known bool       `json:"known"`
			}
			decode(t, w, &body)
			assert.Equal(t, model.Vibe(tt.vibe), body.Vibe)
			assert.Equal(t, tt.boost, body.Boost)
			assert.Equal(t, tt.known, body.Known)
		})
	}
}

type phraseList struct {
	Phrases []model.VibePhrase `json:"phrases"`
	Total   int                `json:"total"`
	Cached  bool               `json:"cached"`
}

func TestPhraseHandlers(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	t.Run("list all", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp phraseList
		decode(t, w, &resp)
		assert.Equal(t, len(resp.Phrases), resp.Total)
		assert.Greater(t, resp.Total, 40)
	})

	t.Run("substring search ignores case", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases?q=MODE", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp phraseList
		decode(t, w, &resp)
		require.Len(t, resp.Phrases, 1)
		assert.Equal(t, "zen mode", resp.Phrases[0].Phrase)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases?q=zzz", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"phrases":[]`)
	})

	t.Run("get phrase", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases/Troca", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var phrase model.VibePhrase
		decode(t, w, &phrase)
		assert.Equal(t, model.VibePhrase{Phrase: "troca", Vibe: model.VibeCorridos, Rank: model.DefaultPhraseRank}, phrase)
	})

	t.Run("unknown phrase", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases/skibidi", nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var apiErr APIError
		decode(t, w, &apiErr)
		assert.Equal(t, ErrorCodePhraseNotFound, apiErr.Code)
		assert.Empty(t, apiErr.Details)
	})

	t.Run("misspelled phrase gets suggestions", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases/grindst", nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var apiErr APIError
		decode(t, w, &apiErr)
		require.Len(t, apiErr.Details, 1)
		assert.Equal(t, "SUGGESTION", apiErr.Details[0].Code)
		assert.Contains(t, apiErr.Details[0].Message, "grindset")
	})

	t.Run("phrases by vibe", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/vibes/chill/phrases", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp phraseList
		decode(t, w, &resp)
		names := make([]string, 0, len(resp.Phrases))
		for _, p := range resp.Phrases {
			names = append(names, p.Phrase)
		}
		assert.Equal(t, []string{"lofi", "headphones on", "zen mode", "quiet flex", "tranqui"}, names)
	})

	t.Run("top phrases keep table order on ties", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/phrases/top?limit=3", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp phraseList
		decode(t, w, &resp)
		require.Len(t, resp.Phrases, 3)
		assert.Equal(t, "bélico", resp.Phrases[0].Phrase)
		assert.Equal(t, "troca", resp.Phrases[1].Phrase)
		assert.Equal(t, "plebita", resp.Phrases[2].Phrase)
		assert.False(t, resp.Cached)
	})
}

func TestAnalyzeTextHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	t.Run("scores matching vibes", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/phrases/analyze", AnalyzeTextRequest{Text: "GRINDSET con lofi"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Vibes []model.VibeScore `json:"vibes"`
			Total int               `json:"total"`
		}
		decode(t, w, &resp)
		assert.Equal(t, []model.VibeScore{
			{Vibe: model.VibeChill, Score: 0.25},
			{Vibe: model.VibeProductivo, Score: 0.25},
		}, resp.Vibes)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("no match", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/phrases/analyze", AnalyzeTextRequest{Text: "xyz"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"vibes":[]`)
	})

	t.Run("text is required", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/phrases/analyze", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTopPhrasesHandler_Cache(t *testing.T) {
	server := setupTestServer(t, serverOptions{withCache: true, withJobs: true})

	w := server.do(t, http.MethodGet, "/phrases/top?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first phraseList
	decode(t, w, &first)
	assert.False(t, first.Cached)
	staleKey := fmt.Sprintf("vibes:top:g%d:2", server.table.Generation())
	assert.True(t, server.redis.Exists(staleKey))

	w = server.do(t, http.MethodGet, "/phrases/top?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second phraseList
	decode(t, w, &second)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Phrases, second.Phrases)

	// A re-rank invalidates the cached list.
	signals := RerankRequest{Signals: []model.PhraseSignal{
		testutil.Signal("grindset", "", 1, 0.8, 10000, 10000),
	}}
	w = server.do(t, http.MethodPost, "/phrases/rerank", signals)
	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decode(t, w, &accepted)
	testutil.WaitForJobCompletion(t, server.manager, accepted.JobID, testutil.DefaultJobPollingOptions())
	assert.False(t, server.redis.Exists(staleKey))

	w = server.do(t, http.MethodGet, "/phrases/top?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var third phraseList
	decode(t, w, &third)
	assert.False(t, third.Cached)
	require.NotEmpty(t, third.Phrases)
	assert.Equal(t, "grindset", third.Phrases[0].Phrase)
	assert.Equal(t, 1.41, third.Phrases[0].Rank)
}

// interleavingCache stores lists in memory and runs beforeSet ahead of every write
type interleavingCache struct {
	mu        sync.Mutex
	lists     map[string][]model.VibePhrase
	beforeSet func()
}

func newInterleavingCache() *interleavingCache {
	return &interleavingCache{lists: make(map[string][]model.VibePhrase)}
}

func (c *interleavingCache) key(generation uint64, limit int) string {
	return fmt.Sprintf("%d:%d", generation, limit)
}

func (c *interleavingCache) GetTop(ctx context.Context, generation uint64, limit int) ([]model.VibePhrase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[c.key(generation, limit)]
	if !ok {
		return nil, vibeerrors.NewCacheMissError(c.key(generation, limit))
	}
	return list, nil
}

func (c *interleavingCache) SetTop(ctx context.Context, generation uint64, limit int, phrases []model.VibePhrase) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[c.key(generation, limit)] = phrases
	return nil
}

func (c *interleavingCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[string][]model.VibePhrase)
	return nil
}

func TestTopPhrasesHandler_RerankBetweenReadAndCacheWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	table := testutil.CreateTestTable(t)
	topCache := newInterleavingCache()

	router := gin.New()
	SetupRoutes(router, Dependencies{
		Scorer:  rank.DefaultScorer,
		Phrases: table,
		Cache:   topCache,
		Logger:  logger.NewTestLogger(t),
	})
	server := &testServer{router: router, table: table}

	// A re-rank lands after the handler read the table but before it wrote the cache.
	topCache.beforeSet = func() {
		require.Equal(t, 1, table.ApplyRanks(map[string]float64{"grindset": 99}))
		require.NoError(t, topCache.Invalidate(context.Background()))
	}

	w := server.do(t, http.MethodGet, "/phrases/top?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first phraseList
	decode(t, w, &first)
	assert.False(t, first.Cached)

	w = server.do(t, http.MethodGet, "/phrases/top?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second phraseList
	decode(t, w, &second)
	assert.False(t, second.Cached, "a list read before the re-rank must not be served")
	require.Len(t, second.Phrases, 1)
	assert.Equal(t, "grindset", second.Phrases[0].Phrase)
	assert.Equal(t, 99.0, second.Phrases[0].Rank)

	w = server.do(t, http.MethodGet, "/phrases/top?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var third phraseList
	decode(t, w, &third)
	assert.True(t, third.Cached)
	assert.Equal(t, second.Phrases, third.Phrases)
}

func TestRerankHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{withJobs: true})

	signals := RerankRequest{Signals: []model.PhraseSignal{
		testutil.Signal("lofi", "", 5, 0.6, 7500, 10000),
		testutil.Signal("troca", "", 0, 1.5, 0, 10000),
		testutil.Signal("skibidi", "", 0, 0.9, 9000, 10000),
	}}
	w := server.do(t, http.MethodPost, "/phrases/rerank", signals)
	require.Equal(t, http.StatusAccepted, w.Code, "response: %s", w.Body.String())

	var accepted struct {
		JobID   string `json:"job_id"`
		Signals int    `json:"signals"`
	}
	decode(t, w, &accepted)
	require.NotEmpty(t, accepted.JobID)
	assert.Equal(t, 3, accepted.Signals)

	job := testutil.WaitForJobCompletion(t, server.manager, accepted.JobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeRerank)
	assert.Equal(t, "1", job.Metadata["applied"])
	assert.Equal(t, "1", job.Metadata["invalid"])
	assert.Equal(t, "1", job.Metadata["unknown"])

	w = server.do(t, http.MethodGet, "/phrases/lofi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lofi model.VibePhrase
	decode(t, w, &lofi)
	assert.Equal(t, 0.645, lofi.Rank)

	t.Run("empty batch", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/phrases/rerank", `{"signals":[]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank phrase", func(t *testing.T) {
		body := RerankRequest{Signals: []model.PhraseSignal{testutil.Signal("  ", "", 1, 0.5, 1, 1)}}
		w := server.do(t, http.MethodPost, "/phrases/rerank", body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var apiErr APIError
		decode(t, w, &apiErr)
		require.Len(t, apiErr.Details, 1)
		assert.Equal(t, "signals[0].phrase", apiErr.Details[0].Field)
	})
}

func TestSnapshotHandler(t *testing.T) {
	server := setupTestServer(t, serverOptions{withJobs: true})

	w := server.do(t, http.MethodPost, "/phrases/snapshot", nil)
	require.Equal(t, http.StatusAccepted, w.Code, "response: %s", w.Body.String())

	var accepted struct {
		JobID string `json:"job_id"`
	}
	decode(t, w, &accepted)
	job := testutil.WaitForJobCompletion(t, server.manager, accepted.JobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeSnapshot)
}

func TestJobHandlers(t *testing.T) {
	server := setupTestServer(t, serverOptions{withJobs: true})

	w := server.do(t, http.MethodPost, "/phrases/rerank", RerankRequest{Signals: []model.PhraseSignal{
		testutil.Signal("pomodoro", "", 2, 0.4, 10, 100),
	}})
	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decode(t, w, &accepted)
	testutil.WaitForJobCompletion(t, server.manager, accepted.JobID, testutil.DefaultJobPollingOptions())

	t.Run("get job", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/jobs/"+accepted.JobID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var job model.Job
		decode(t, w, &job)
		assert.Equal(t, accepted.JobID, job.ID)
		assert.Equal(t, model.JobStatusCompleted, job.Status)
	})

	t.Run("unknown job", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/jobs/does-not-exist", nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var apiErr APIError
		decode(t, w, &apiErr)
		assert.Equal(t, ErrorCodeJobNotFound, apiErr.Code)
	})

	t.Run("list with filters", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/jobs?type=rerank&status=completed", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Jobs  []model.Job `json:"jobs"`
			Total int         `json:"total"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 1, resp.Total)

		w = server.do(t, http.MethodGet, "/jobs?status=failed", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"jobs":[]`)
	})

	t.Run("metrics", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/jobs/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Metrics     jobs.JobMetricsData `json:"metrics"`
			SuccessRate float64             `json:"success_rate"`
		}
		decode(t, w, &resp)
		assert.Equal(t, int64(1), resp.Metrics.JobsCompleted)
		assert.Equal(t, 1.0, resp.SuccessRate)
	})
}

func TestHandlersWithoutJobs(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	for _, path := range []string{"/jobs", "/jobs/metrics", "/jobs/abc"} {
		w := server.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotImplemented, w.Code, path)
	}

	w := server.do(t, http.MethodPost, "/phrases/rerank", RerankRequest{Signals: []model.PhraseSignal{
		testutil.Signal("lofi", "", 1, 0.5, 1, 1),
	}})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestSizeLimitMiddleware(32))
	SetupRoutes(router, Dependencies{Scorer: rank.DefaultScorer, Phrases: testutil.CreateTestTable(t)})

	body := `{"text":"` + strings.Repeat("lofi ", 50) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/phrases/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	server := setupTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(requestIDHeader))

	w = server.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
