package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/prompt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCallTimeout    = 30 * time.Second
	defaultSetConcurrency = 3
)

type Gateway struct {
	transport   Transport
	bank        *QuestionBank
	logger      *zap.Logger
	timeout     time.Duration
	concurrency int
}

type Option func(*Gateway)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

func WithConcurrency(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// New returns a gateway that never fails; a nil transport serves fallbacks only.
func New(transport Transport, bank *QuestionBank, opts ...Option) *Gateway {
	g := &Gateway{
		transport:   transport,
		bank:        bank,
		logger:      zap.NewNop(),
		timeout:     defaultCallTimeout,
		concurrency: defaultSetConcurrency,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.bank == nil {
		bank, err := NewQuestionBank(nil)
		if err != nil {
			panic(err)
		}
		g.bank = bank
	}
	return g
}

func (g *Gateway) GenerateQuestion(ctx context.Context, difficulty domain.Difficulty, questionNumber int, resumeContext string, role domain.JobRole, companyName string) domain.Question {
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}

	if g.transport != nil {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := g.transport.Question(callCtx, prompt.QuestionParams{
			Role:           role,
			Difficulty:     difficulty,
			QuestionNumber: questionNumber,
			ResumeContext:  resumeContext,
			CompanyName:    companyName,
		})
		cancel()

		if err == nil && strings.TrimSpace(text) != "" {
			return domain.Question{
				Text:             strings.TrimSpace(text),
				Difficulty:       difficulty,
				TimeLimitSeconds: domain.TimeLimitFor(difficulty),
			}
		}
		g.degraded("generate_question", err,
			zap.String("difficulty", string(difficulty)),
			zap.Int("question_number", questionNumber),
		)
	}

	return g.bank.Pick(role, difficulty)
}

// GenerateQuestionSet returns one question per plan slot, in plan order.
func (g *Gateway) GenerateQuestionSet(ctx context.Context, resumeContext string, role domain.JobRole, companyName string) []domain.Question {
	questions := make([]domain.Question, domain.QuestionCount)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, difficulty := range domain.QuestionPlan {
		eg.Go(func() error {
			questions[i] = g.GenerateQuestion(egCtx, difficulty, i+1, resumeContext, role, companyName)
			return nil
		})
	}
	_ = eg.Wait()

	return questions
}

func (g *Gateway) EvaluateAnswer(ctx context.Context, question, answer string) int {
	if g.transport != nil {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		score, err := g.transport.Score(callCtx, question, answer)
		cancel()

		if err == nil {
			return clamp(score, 0, 10)
		}
		g.degraded("evaluate_answer", err)
	}

	return FallbackScore(answer)
}

func (g *Gateway) SummarizeInterview(ctx context.Context, transcript domain.Transcript) domain.Summary {
	if g.transport != nil {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		summary, err := g.transport.Summary(callCtx, transcript)
		cancel()

		if err == nil {
			summary.FinalScore = clamp(summary.FinalScore, 0, 100)
			summary.Text = strings.TrimSpace(summary.Text)
			return summary
		}
		g.degraded("summarize_interview", err, zap.Int("answers", len(transcript.QA)))
	}

	return FallbackSummary(transcript.Scores)
}

func (g *Gateway) degraded(op string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("operation", op),
		zap.String("transport", g.transport.Name()),
	)
	if err != nil {
		fields = append(fields, zap.Error(err))
	} else {
		fields = append(fields, zap.Error(ErrEmptyCompletion))
	}
	g.logger.Warn("ai call failed, using fallback", fields...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
