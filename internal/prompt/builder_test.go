package prompt

import (
	"strings"
	"testing"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/stretchr/testify/assert"
)

func fixedToken() string { return "token-42" }

func TestQuestionPromptEmbedsParameters(t *testing.T) {
	b := NewBuilder(fixedToken)
	p := b.QuestionPrompt(QuestionParams{
		Role:           domain.JobRoleDevOps,
		Difficulty:     domain.DifficultyMedium,
		QuestionNumber: 3,
		ResumeContext:  "Built CI pipelines on Kubernetes",
		CompanyName:    "Acme",
	})

	assert.Contains(t, p, "DevOps Engineer position at Acme")
	assert.Contains(t, p, "medium difficulty")
	assert.Contains(t, p, "question 3/6")
	assert.Contains(t, p, "Built CI pipelines on Kubernetes")
	assert.Contains(t, p, "within 60 seconds")
	assert.Contains(t, p, "Uniqueness token: token-42")
}

func TestQuestionPromptWithoutOptionalContext(t *testing.T) {
	p := NewBuilder(fixedToken).QuestionPrompt(QuestionParams{
		Role:           domain.JobRoleFrontend,
		Difficulty:     domain.DifficultyEasy,
		QuestionNumber: 1,
	})

	assert.Contains(t, p, "Frontend Developer position.")
	assert.NotContains(t, p, "Résumé excerpt")
	assert.NotContains(t, p, " at ")
}

func TestQuestionPromptTruncatesResume(t *testing.T) {
	resume := strings.Repeat("a", ResumeContextLimit) + "TAIL-MARKER"
	p := NewBuilder(fixedToken).QuestionPrompt(QuestionParams{
		Role:           domain.JobRoleBackend,
		Difficulty:     domain.DifficultyHard,
		QuestionNumber: 6,
		ResumeContext:  resume,
	})

	assert.Contains(t, p, strings.Repeat("a", ResumeContextLimit))
	assert.NotContains(t, p, "TAIL-MARKER")
}

func TestTruncateResumeCountsRunes(t *testing.T) {
	resume := strings.Repeat("é", ResumeContextLimit+10)
	assert.Len(t, []rune(TruncateResume(resume)), ResumeContextLimit)
	assert.Equal(t, "short", TruncateResume("  short \n"))
}

func TestDefaultTokenVaries(t *testing.T) {
	b := NewBuilder(nil)
	params := QuestionParams{Role: domain.JobRoleBackend, Difficulty: domain.DifficultyEasy, QuestionNumber: 1}
	assert.NotEqual(t, b.QuestionPrompt(params), b.QuestionPrompt(params))
}

func TestEvaluationPrompt(t *testing.T) {
	p := NewBuilder(fixedToken).EvaluationPrompt("What is a goroutine?", "A lightweight thread")
	assert.Contains(t, p, "Question: What is a goroutine?")
	assert.Contains(t, p, "Answer: A lightweight thread")
	assert.Contains(t, p, `"Score: X/10"`)
}

func TestSummaryPrompt(t *testing.T) {
	p := NewBuilder(fixedToken).SummaryPrompt(domain.Transcript{
		QA:     []domain.QA{{Question: "Q1", Answer: "A1"}},
		Scores: []int{8, 7},
	})
	assert.Contains(t, p, `[{"question":"Q1","answer":"A1"}]`)
	assert.Contains(t, p, "Individual Scores: 8, 7")
	assert.Contains(t, p, `"Final Score: XX"`)
}
