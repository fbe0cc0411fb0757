package prompt

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
)

// ResumeContextLimit bounds the résumé excerpt embedded in question prompts.
const ResumeContextLimit = 1200

// SystemInstruction is sent as the system prompt with every completion.
const SystemInstruction = `You are a professional technical interviewer assessing software engineering candidates.
Be fair and concise, answer in plain text without markdown, and follow the requested output format exactly.`

const questionPrompt = `You are an expert technical interviewer for a %s position%s.
Generate a %s difficulty technical interview question (question %d/%d).
%s%s
The question must be answerable in writing within %d seconds.
Ask a question you have not asked before. Uniqueness token: %s
Provide only the question text, no additional commentary.`

const evaluationPrompt = `Evaluate this interview answer on a scale of 0-10.
Question: %s
Answer: %s

Provide a score in the format "Score: X/10" followed by brief feedback.`

const summaryPrompt = `Summarize this interview performance:
Questions and Answers: %s
Individual Scores: %s

Provide:
1. A final score out of 100 (format: "Final Score: XX")
2. A concise 2-3 sentence summary of the candidate's performance, strengths, and areas for improvement.`

type QuestionParams struct {
	Role           domain.JobRole
	Difficulty     domain.Difficulty
	QuestionNumber int
	ResumeContext  string
	CompanyName    string
}

// TokenSource yields the per-prompt uniqueness token.
type TokenSource func() string

type Builder struct {
	token TokenSource
}

func NewBuilder(token TokenSource) *Builder {
	if token == nil {
		token = defaultToken
	}
	return &Builder{token: token}
}

func (b *Builder) QuestionPrompt(p QuestionParams) string {
	company := ""
	if p.CompanyName != "" {
		company = " at " + p.CompanyName
	}

	focus := fmt.Sprintf("The question should test the core skills expected of a %s.", p.Role)
	if p.CompanyName != "" {
		focus += fmt.Sprintf(" Tailor it to the kind of work done at %s.", p.CompanyName)
	}

	resume := ""
	if excerpt := TruncateResume(p.ResumeContext); excerpt != "" {
		resume = "\nBase the question on the candidate's background where relevant. Résumé excerpt:\n" + excerpt + "\n"
	}

	return fmt.Sprintf(questionPrompt,
		p.Role,
		company,
		p.Difficulty,
		p.QuestionNumber,
		domain.QuestionCount,
		focus,
		resume,
		domain.TimeLimitFor(p.Difficulty),
		b.token(),
	)
}

func (b *Builder) EvaluationPrompt(question, answer string) string {
	return fmt.Sprintf(evaluationPrompt, question, answer)
}

func (b *Builder) SummaryPrompt(transcript domain.Transcript) string {
	qa := transcript.QA
	if qa == nil {
		qa = []domain.QA{}
	}
	qaJSON, err := json.Marshal(qa)
	if err != nil {
		qaJSON = []byte("[]")
	}

	scores := make([]string, len(transcript.Scores))
	for i, s := range transcript.Scores {
		scores[i] = strconv.Itoa(s)
	}

	return fmt.Sprintf(summaryPrompt, qaJSON, strings.Join(scores, ", "))
}

// TruncateResume trims the résumé text and cuts it to ResumeContextLimit runes.
func TruncateResume(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= ResumeContextLimit {
		return text
	}
	return string(runes[:ResumeContextLimit])
}

func defaultToken() string {
	return fmt.Sprintf("%d-%04d", time.Now().UnixNano(), rand.Intn(10000))
}
