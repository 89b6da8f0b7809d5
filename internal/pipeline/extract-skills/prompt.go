// internal/pipeline/extract-skills/prompt.go
package extractskills

import "fmt"

const systemPrompt = "You are a precise skill extraction assistant for an HR platform. " +
	"Extract only skills that are evidenced in the CV text. Never invent skills, " +
	"employers, or experience durations. Respond with a single JSON object and nothing else."

const userPromptTemplate = `Analyze this CV and extract every professional skill it evidences:
1. Technical skills (languages, frameworks, databases, cloud platforms)
2. Software and tools
3. Soft skills (leadership, communication, mentoring)
4. Domain expertise areas

For each skill report years of experience when the CV supports it, otherwise null.
Quote the CV fragment that evidences the skill.

Also extract the work history, education, certifications, and languages the CV
states, and the total years of professional experience (null when no dates are
given).

Format as JSON:
{
  "summary": "2-3 sentence professional summary",
  "extracted_skills": [
    {
      "name": "skill name",
      "category": "technical|soft|domain|tool",
      "years_experience": 3.5,
      "evidence": "verbatim fragment from the CV",
      "source_context": "section or role the fragment came from"
    }
  ],
  "work_experience": [
    {
      "title": "job title",
      "company": "employer name",
      "duration": "e.g. 2019-2023 or 4 years",
      "description": "one-line role summary"
    }
  ],
  "education": [
    {
      "degree": "degree or program",
      "institution": "school name",
      "year": "graduation year if stated"
    }
  ],
  "certifications": ["certification names as written"],
  "languages": ["spoken languages with level if stated"],
  "total_experience_years": 7.5
}

CV text:
%s`

func buildUserPrompt(cvText string) string {
	return fmt.Sprintf(userPromptTemplate, cvText)
}
