package handler

import (
	"context"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/gateway"
	"github.com/raflytch/interview-assistant/internal/prompt"
	"github.com/raflytch/interview-assistant/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CompletionTransport is the server-side transport behind the proxy endpoint.
type CompletionTransport interface {
	gateway.Transport
	Configured() bool
}

type ProxyHandler struct {
	transport CompletionTransport
	timeout   time.Duration
	logger    *zap.Logger
}

func NewProxyHandler(transport CompletionTransport, timeout time.Duration, logger *zap.Logger) *ProxyHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyHandler{
		transport: transport,
		timeout:   timeout,
		logger:    logger,
	}
}

// Handle serves POST /api/gemini. The caller falls back locally on any non-2xx.
func (h *ProxyHandler) Handle(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return response.MethodNotAllowed(c, "method not allowed")
	}
	if h.transport == nil || !h.transport.Configured() {
		return response.InternalError(c, "API key not configured")
	}

	var req gateway.ProxyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	switch req.Action {
	case gateway.ActionGenerateQuestion:
		difficulty := req.Difficulty
		if !difficulty.Valid() {
			difficulty = domain.DifficultyMedium
		}
		text, err := h.transport.Question(ctx, prompt.QuestionParams{
			Role:           req.Role,
			Difficulty:     difficulty,
			QuestionNumber: req.QuestionNumber,
			ResumeContext:  req.ResumeContext,
			CompanyName:    req.CompanyName,
		})
		if err != nil {
			return h.failed(c, req.Action, err)
		}
		return c.JSON(gateway.QuestionResponse{Question: &gateway.ProxyQuestion{
			Text:       text,
			Difficulty: difficulty,
			TimeLimit:  domain.TimeLimitFor(difficulty),
		}})

	case gateway.ActionEvaluateAnswer:
		score, err := h.transport.Score(ctx, req.Question, req.Answer)
		if err != nil {
			return h.failed(c, req.Action, err)
		}
		return c.JSON(gateway.ScoreResponse{Score: &score})

	case gateway.ActionSummarizeInterview:
		if req.Transcript == nil {
			return response.BadRequest(c, "transcript is required")
		}
		summary, err := h.transport.Summary(ctx, *req.Transcript)
		if err != nil {
			return h.failed(c, req.Action, err)
		}
		return c.JSON(gateway.SummaryResponse{FinalScore: &summary.FinalScore, Summary: summary.Text})
	}

	return response.BadRequest(c, "invalid action")
}

func (h *ProxyHandler) failed(c *fiber.Ctx, action string, err error) error {
	h.logger.Error("proxy completion failed", zap.String("action", action), zap.Error(err))
	return response.InternalError(c, "failed to process request")
}
