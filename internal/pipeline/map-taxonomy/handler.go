// internal/pipeline/map-taxonomy/handler.go
package maptaxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/common/metrics"
	"skillforge/internal/models"
)

const StageName = "map-taxonomy"

const cacheKeyPrefix = "taxonomy:match:"

type Handler struct {
	config *Config
	es     *elasticsearch.Client
	redis  *redis.Client
	logger logger.Logger
}

// NewHandler wires the taxonomy index and its lookaside cache. The redis
// client may be nil, in which case every skill hits the index.
func NewHandler(config *Config, es *elasticsearch.Client, rdb *redis.Client, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		es:     es,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute resolves every extracted skill against the taxonomy. One skill's
// lookup failure never fails the batch: the skill comes back as a custom
// entry with Outcome set to OutcomeFailed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	results := make([]SkillResult, 0, len(input.Skills))
	counts := map[MapOutcome]int{}

	for i := range input.Skills {
		record := input.Skills[i]
		mapped, outcome, mapErr := h.mapOne(ctx, record)
		results = append(results, SkillResult{Skill: mapped, Outcome: outcome, Err: mapErr})
		counts[outcome]++
		metrics.SkillsMapped.WithLabelValues(string(outcome)).Inc()
	}

	h.logger.Info("taxonomy mapping complete", map[string]interface{}{
		"employeeId": input.EmployeeID,
		"matched":    counts[OutcomeMatched],
		"custom":     counts[OutcomeCustom],
		"failed":     counts[OutcomeFailed],
	})
	metrics.PipelineRunsCompleted.WithLabelValues(StageName).Inc()
	metrics.PipelineRunDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())

	return &Output{EmployeeID: input.EmployeeID, Results: results}, nil
}

func (h *Handler) mapOne(ctx context.Context, record models.SkillRecord) (models.MappedSkill, MapOutcome, error) {
	mapped := models.MappedSkill{
		SkillRecord:      record,
		ProficiencyLevel: DeriveProficiency(record.YearsExperience),
	}

	match, err := h.resolve(ctx, record.Name)
	if err != nil {
		h.logger.Warn("taxonomy lookup failed, dropping skill from profile", map[string]interface{}{
			"skill": record.Name,
			"error": err.Error(),
		})
		return mapped, OutcomeFailed, err
	}

	if !match.Matched {
		// No taxonomy entry resembles this skill; it is kept verbatim as an
		// employee-specific entry.
		mapped.IsTaxonomyMatch = false
		mapped.MatchConfidence = 1.0
		return mapped, OutcomeCustom, nil
	}

	mapped.IsTaxonomyMatch = true
	mapped.TaxonomyID = &match.SkillID
	mapped.TaxonomyName = &match.SkillName
	mapped.MatchConfidence = match.Confidence
	return mapped, OutcomeMatched, nil
}

func (h *Handler) resolve(ctx context.Context, skillName string) (*cachedMatch, error) {
	cacheKey := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(skillName))

	if h.redis != nil {
		if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
			var match cachedMatch
			if err := json.Unmarshal([]byte(val), &match); err == nil {
				return &match, nil
			}
		}
	}

	match, err := h.search(ctx, skillName)
	if err != nil {
		return nil, err
	}

	if h.redis != nil {
		if data, err := json.Marshal(match); err == nil {
			// Cache write failures are ignored, the index remains the source
			// of truth.
			h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
		}
	}
	return match, nil
}

func (h *Handler) search(ctx context.Context, skillName string) (*cachedMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.SearchTimeout)
	defer cancel()

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     skillName,
				"fields":    []string{"name^3", "aliases^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	body, _ := json.Marshal(queryBody)

	size := 1
	req := esapi.SearchRequest{
		Index: []string{h.config.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, h.es)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewSearchTimeoutError()
		}
		return nil, stderrors.NewTaxonomyLookupFailedError(skillName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, stderrors.NewIndexNotFoundError(h.config.Index)
		}
		return nil, stderrors.NewTaxonomyLookupFailedError(skillName, fmt.Errorf("search failed: %s", res.String()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Score  *float64        `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, stderrors.NewTaxonomyLookupFailedError(skillName, err)
	}

	if len(r.Hits.Hits) == 0 {
		return &cachedMatch{Matched: false}, nil
	}

	top := r.Hits.Hits[0]
	var hit taxonomyHit
	if err := json.Unmarshal(top.Source, &hit); err != nil {
		return nil, stderrors.NewTaxonomyLookupFailedError(skillName, err)
	}

	return &cachedMatch{
		Matched:    true,
		SkillID:    hit.ID,
		SkillName:  hit.Name,
		Confidence: h.confidence(top.Score),
	}, nil
}

// confidence normalizes the raw relevance score into [0, 1].
func (h *Handler) confidence(score *float64) float64 {
	if score == nil {
		return h.config.FallbackScore
	}
	c := *score / h.config.ScoreNorm
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}
