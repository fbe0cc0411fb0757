package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/prompt"

	"github.com/gofiber/fiber/v2"
)

// ProxyRequest is the body accepted by the proxy endpoint.
type ProxyRequest struct {
	Action         string             `json:"action"`
	Difficulty     domain.Difficulty  `json:"difficulty,omitempty"`
	QuestionNumber int                `json:"questionNumber,omitempty"`
	Role           domain.JobRole     `json:"role,omitempty"`
	ResumeContext  string             `json:"resumeContext,omitempty"`
	CompanyName    string             `json:"companyName,omitempty"`
	Question       string             `json:"question,omitempty"`
	Answer         string             `json:"answer,omitempty"`
	Transcript     *domain.Transcript `json:"transcript,omitempty"`
}

type ProxyQuestion struct {
	Text       string            `json:"text"`
	Difficulty domain.Difficulty `json:"difficulty"`
	TimeLimit  int               `json:"timeLimit"`
}

type QuestionResponse struct {
	Question *ProxyQuestion `json:"question"`
}

type ScoreResponse struct {
	Score *int `json:"score"`
}

type SummaryResponse struct {
	FinalScore *int   `json:"finalScore"`
	Summary    string `json:"summary"`
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("proxy responded with status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

var ErrMalformedProxyResponse = errors.New("proxy response is missing required fields")

type ProxyTransport struct {
	url     string
	timeout time.Duration
}

func NewProxyTransport(url string, timeout time.Duration) *ProxyTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProxyTransport{
		url:     url,
		timeout: timeout,
	}
}

func (t *ProxyTransport) Name() string {
	return "proxy"
}

func (t *ProxyTransport) Question(ctx context.Context, params prompt.QuestionParams) (string, error) {
	var resp QuestionResponse
	err := t.post(ctx, ProxyRequest{
		Action:         ActionGenerateQuestion,
		Difficulty:     params.Difficulty,
		QuestionNumber: params.QuestionNumber,
		Role:           params.Role,
		ResumeContext:  prompt.TruncateResume(params.ResumeContext),
		CompanyName:    params.CompanyName,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Question == nil || strings.TrimSpace(resp.Question.Text) == "" {
		return "", ErrMalformedProxyResponse
	}
	return strings.TrimSpace(resp.Question.Text), nil
}

func (t *ProxyTransport) Score(ctx context.Context, question, answer string) (int, error) {
	var resp ScoreResponse
	err := t.post(ctx, ProxyRequest{
		Action:   ActionEvaluateAnswer,
		Question: question,
		Answer:   answer,
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.Score == nil {
		return 0, ErrMalformedProxyResponse
	}
	return *resp.Score, nil
}

func (t *ProxyTransport) Summary(ctx context.Context, transcript domain.Transcript) (domain.Summary, error) {
	var resp SummaryResponse
	err := t.post(ctx, ProxyRequest{
		Action:     ActionSummarizeInterview,
		Transcript: &transcript,
	}, &resp)
	if err != nil {
		return domain.Summary{}, err
	}
	if resp.FinalScore == nil {
		return domain.Summary{}, ErrMalformedProxyResponse
	}
	return domain.Summary{FinalScore: *resp.FinalScore, Text: resp.Summary}, nil
}

func (t *ProxyTransport) post(ctx context.Context, body ProxyRequest, out interface{}) error {
	timeout := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	agent := fiber.Post(t.url)
	agent.JSON(body)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("failed to prepare proxy request: %w", err)
	}

	code, respBody, errs := agent.Struct(out)
	if code != 0 && (code < fiber.StatusOK || code >= fiber.StatusMultipleChoices) {
		return &StatusError{Code: code, Body: string(respBody)}
	}
	if len(errs) > 0 {
		return fmt.Errorf("proxy request failed: %w", errors.Join(errs...))
	}
	return nil
}
