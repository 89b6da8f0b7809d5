// internal/pipeline/extract-skills/handler.go
package extractskills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/common/metrics"
	"skillforge/internal/models"
)

const StageName = "extract-skills"

// resultSchema is validated against every model response before any field is
// trusted. A response that passes can still carry unknown categories; those
// are coerced, not rejected.
const resultSchema = `{
	"type": "object",
	"required": ["extracted_skills"],
	"properties": {
		"summary": {"type": "string"},
		"extracted_skills": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"category": {"type": "string"},
					"years_experience": {"type": ["number", "null"]},
					"evidence": {"type": "string"},
					"source_context": {"type": "string"}
				}
			}
		},
		"work_experience": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"company": {"type": "string"},
					"duration": {"type": "string"},
					"description": {"type": "string"}
				}
			}
		},
		"education": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"degree": {"type": "string"},
					"institution": {"type": "string"},
					"year": {"type": "string"}
				}
			}
		},
		"certifications": {"type": "array", "items": {"type": "string"}},
		"languages": {"type": "array", "items": {"type": "string"}},
		"total_experience_years": {"type": ["number", "null"]}
	}
}`

type Handler struct {
	config *Config
	client *http.Client
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	if config.BaseURL == "" {
		return nil, stderrors.NewConfigMissingError("llm.base_url")
	}
	if config.APIKey == "" {
		return nil, stderrors.NewConfigMissingError("llm.api_key")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchema))
	if err != nil {
		return nil, fmt.Errorf("compile result schema: %w", err)
	}
	return &Handler{
		config: config,
		// No client timeout, the per-call context carries the deadline.
		client: &http.Client{},
		schema: schema,
		logger: log.WithFields(map[string]interface{}{
			"stage": StageName,
		}),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	content, err := h.complete(ctx, input.Text)
	if err != nil {
		if stdErr, ok := err.(*stderrors.StandardError); ok {
			metrics.PipelineRunsFailed.WithLabelValues(StageName, string(stdErr.Code)).Inc()
		}
		return nil, err
	}

	result, err := h.parseResult(content)
	if err != nil {
		metrics.PipelineRunsFailed.WithLabelValues(StageName, string(stderrors.ErrCodeUpstreamParseError)).Inc()
		return nil, err
	}

	skills := make([]models.SkillRecord, 0, len(result.ExtractedSkills))
	for _, sk := range result.ExtractedSkills {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			continue
		}
		category := models.SkillCategory(strings.ToLower(strings.TrimSpace(sk.Category)))
		if !models.ValidCategory(category) {
			category = models.CategoryTechnical
		}
		skills = append(skills, models.SkillRecord{
			Name:            name,
			Category:        category,
			YearsExperience: sk.YearsExperience,
			Evidence:        strings.TrimSpace(sk.Evidence),
			SourceContext:   strings.TrimSpace(sk.SourceContext),
		})
	}

	h.logger.Info("skills extracted", map[string]interface{}{
		"employeeId": input.EmployeeID,
		"skillCount": len(skills),
	})
	metrics.PipelineRunsCompleted.WithLabelValues(StageName).Inc()
	metrics.PipelineRunDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())

	return &Output{
		EmployeeID: input.EmployeeID,
		Summary:    strings.TrimSpace(result.Summary),
		Skills:     skills,
		Background: buildBackground(result),
	}, nil
}

// buildBackground copies the non-skill extraction fields into the domain
// shape, dropping entries with no usable text.
func buildBackground(result *extractionResult) models.CVBackground {
	background := models.CVBackground{
		TotalExperienceYears: result.TotalExperienceYears,
	}
	for _, job := range result.WorkExperience {
		title := strings.TrimSpace(job.Title)
		company := strings.TrimSpace(job.Company)
		if title == "" && company == "" {
			continue
		}
		background.WorkExperience = append(background.WorkExperience, models.WorkExperience{
			Title:       title,
			Company:     company,
			Duration:    strings.TrimSpace(job.Duration),
			Description: strings.TrimSpace(job.Description),
		})
	}
	for _, edu := range result.Education {
		degree := strings.TrimSpace(edu.Degree)
		institution := strings.TrimSpace(edu.Institution)
		if degree == "" && institution == "" {
			continue
		}
		background.Education = append(background.Education, models.Education{
			Degree:      degree,
			Institution: institution,
			Year:        strings.TrimSpace(edu.Year),
		})
	}
	for _, cert := range result.Certifications {
		if cert = strings.TrimSpace(cert); cert != "" {
			background.Certifications = append(background.Certifications, cert)
		}
	}
	for _, lang := range result.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			background.Languages = append(background.Languages, lang)
		}
	}
	return background
}

func (h *Handler) complete(ctx context.Context, cvText string) (string, error) {
	reqBody := chatRequest{
		Model: h.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(cvText)},
		},
		Temperature:    h.config.Temperature,
		MaxTokens:      h.config.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", stderrors.NewLLMRequestFailedError(err)
	}

	url := strings.TrimRight(h.config.BaseURL, "/") + "/v1/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(200*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", stderrors.NewLLMTimeoutError()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", stderrors.NewLLMRequestFailedError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)

		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return "", stderrors.NewLLMTimeoutError()
			}
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
			// Client errors other than rate limiting will not heal on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return "", stderrors.NewLLMRequestFailedError(lastErr)
			}
			continue
		}

		var chatResp chatResponse
		if err := json.Unmarshal(respBody, &chatResp); err != nil {
			return "", stderrors.NewUpstreamParseError(err)
		}
		if len(chatResp.Choices) == 0 {
			return "", stderrors.NewUpstreamParseError(fmt.Errorf("empty choices"))
		}
		return chatResp.Choices[0].Message.Content, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", stderrors.NewLLMTimeoutError()
	}
	return "", stderrors.NewLLMRequestFailedError(lastErr)
}

func (h *Handler) parseResult(content string) (*extractionResult, error) {
	cleaned := stripCodeFences(content)

	validation, err := h.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, stderrors.NewUpstreamParseError(err)
	}
	if !validation.Valid() {
		var problems []string
		for _, desc := range validation.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, stderrors.NewUpstreamParseError(fmt.Errorf("schema violations: %s", strings.Join(problems, "; ")))
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, stderrors.NewUpstreamParseError(err)
	}
	return &result, nil
}

// stripCodeFences removes markdown fencing some models wrap around JSON even
// when asked for a bare object.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
