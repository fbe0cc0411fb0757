package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/parser"
	"github.com/raflytch/interview-assistant/internal/prompt"
)

const (
	ActionGenerateQuestion   = "generateQuestion"
	ActionEvaluateAnswer     = "evaluateAnswer"
	ActionSummarizeInterview = "summarizeInterview"
)

var (
	ErrNoCompleter     = errors.New("no completion client configured")
	ErrEmptyCompletion = errors.New("completion contained no usable text")
)

// Transport reaches the generative-language service, directly or through the proxy.
type Transport interface {
	Question(ctx context.Context, params prompt.QuestionParams) (string, error)
	Score(ctx context.Context, question, answer string) (int, error)
	Summary(ctx context.Context, transcript domain.Transcript) (domain.Summary, error)
	Name() string
}

// Completer runs one prompt under a system instruction.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type DirectTransport struct {
	completer Completer
	prompts   *prompt.Builder
}

func NewDirectTransport(completer Completer, prompts *prompt.Builder) *DirectTransport {
	if prompts == nil {
		prompts = prompt.NewBuilder(nil)
	}
	return &DirectTransport{
		completer: completer,
		prompts:   prompts,
	}
}

func (t *DirectTransport) Name() string {
	return "direct"
}

func (t *DirectTransport) Configured() bool {
	return t.completer != nil
}

func (t *DirectTransport) Question(ctx context.Context, params prompt.QuestionParams) (string, error) {
	text, err := t.complete(ctx, t.prompts.QuestionPrompt(params))
	if err != nil {
		return "", err
	}
	question := parser.QuestionText(text)
	if question == "" {
		return "", ErrEmptyCompletion
	}
	return question, nil
}

func (t *DirectTransport) Score(ctx context.Context, question, answer string) (int, error) {
	text, err := t.complete(ctx, t.prompts.EvaluationPrompt(question, answer))
	if err != nil {
		return 0, err
	}
	return parser.Score(text), nil
}

func (t *DirectTransport) Summary(ctx context.Context, transcript domain.Transcript) (domain.Summary, error) {
	text, err := t.complete(ctx, t.prompts.SummaryPrompt(transcript))
	if err != nil {
		return domain.Summary{}, err
	}
	score, summary := parser.FinalSummary(text)
	return domain.Summary{FinalScore: score, Text: summary}, nil
}

func (t *DirectTransport) complete(ctx context.Context, p string) (string, error) {
	if t.completer == nil {
		return "", ErrNoCompleter
	}
	text, err := t.completer.Complete(ctx, prompt.SystemInstruction, p)
	if err != nil {
		return "", fmt.Errorf("direct completion failed: %w", err)
	}
	return text, nil
}
