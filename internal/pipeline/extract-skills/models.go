// internal/pipeline/extract-skills/models.go
package extractskills

import "skillforge/internal/models"

// Input is the plain CV text produced by the document extraction stage.
type Input struct {
	EmployeeID string `json:"employeeId"`
	Text       string `json:"text"`
}

// Output holds the structured skill records recovered from the CV, plus the
// employment and credential background that goes with them.
type Output struct {
	EmployeeID string               `json:"employeeId"`
	Summary    string               `json:"summary"`
	Skills     []models.SkillRecord `json:"skills"`
	Background models.CVBackground  `json:"background"`
}

// chatRequest and chatResponse mirror the OpenAI-compatible chat completions
// wire shape the provider exposes.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractionResult is the JSON document the model is instructed to return.
type extractionResult struct {
	Summary              string                `json:"summary"`
	ExtractedSkills      []extractionSkill     `json:"extracted_skills"`
	WorkExperience       []extractionJob       `json:"work_experience"`
	Education            []extractionEducation `json:"education"`
	Certifications       []string              `json:"certifications"`
	Languages            []string              `json:"languages"`
	TotalExperienceYears *float64              `json:"total_experience_years"`
}

type extractionSkill struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	YearsExperience *float64 `json:"years_experience"`
	Evidence        string   `json:"evidence"`
	SourceContext   string   `json:"source_context"`
}

type extractionJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type extractionEducation struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}
