package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/gateway"
	"github.com/raflytch/interview-assistant/internal/middleware"
	"github.com/raflytch/interview-assistant/internal/repository"
	"github.com/raflytch/interview-assistant/internal/service"
	"github.com/raflytch/interview-assistant/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionApp struct {
	app   *fiber.App
	token string
}

func newSessionApp(t *testing.T) *sessionApp {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := repository.NewCacheRepository(client)
	sessions := service.NewSessionService(
		repository.NewSessionStore(client, time.Hour),
		repository.NewSubmissionGuard(cache, time.Minute),
		gateway.New(nil, nil),
		nil,
		nil,
		nil,
		nil,
	)
	h := NewSessionHandler(sessions, service.NewResumeService(sessions, nil, nil))

	manager := jwt.NewJWTManager("secret", 1)
	token, err := manager.Generate(uuid.New(), "ada@example.com", string(domain.RoleCandidate))
	require.NoError(t, err)

	app := fiber.New()
	group := app.Group("/session", middleware.NewAuthMiddleware(service.NewAuthService(manager, cache)).Authenticate())
	group.Get("/", h.Current)
	group.Get("/resume", h.Resumable)
	group.Put("/profile", h.UpdateProfile)
	group.Post("/resume", h.UploadResume)
	group.Put("/role", h.SetJobRole)
	group.Post("/start", h.Start)
	group.Post("/tick", h.Tick)
	group.Post("/answers", h.SubmitAnswer)
	group.Delete("/", h.Reset)

	return &sessionApp{app: app, token: token}
}

func (s *sessionApp) call(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	resp, env := doJSON(t, s.app, method, path, s.token, body)
	return resp.StatusCode, env
}

func TestSessionRequiresToken(t *testing.T) {
	s := newSessionApp(t)
	resp, _ := doJSON(t, s.app, fiber.MethodGet, "/session/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionInterviewFlow(t *testing.T) {
	s := newSessionApp(t)

	status, env := s.call(t, fiber.MethodPut, "/session/profile", fiber.Map{"email": "not-an-email"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "email must be a valid email address", env.Error)

	status, _ = s.call(t, fiber.MethodPost, "/session/start", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.call(t, fiber.MethodPut, "/session/profile", fiber.Map{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"phone": "+44 1234 567890",
	})
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.call(t, fiber.MethodPut, "/session/role", fiber.Map{"job_role": "Astronaut"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "job_role is not a supported job role", env.Error)

	status, _ = s.call(t, fiber.MethodPut, "/session/role", fiber.Map{"job_role": domain.JobRoleBackend})
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.call(t, fiber.MethodPost, "/session/start", nil)
	require.Equal(t, fiber.StatusCreated, status)
	var started domain.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &started))
	assert.Equal(t, domain.SessionStatusActive, started.Session.Status)
	require.NotNil(t, started.CurrentQuestion)
	assert.Equal(t, domain.DifficultyEasy, started.CurrentQuestion.Difficulty)

	status, _ = s.call(t, fiber.MethodPost, "/session/start", nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = s.call(t, fiber.MethodPut, "/session/profile", fiber.Map{"name": "Someone Else"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, env = s.call(t, fiber.MethodGet, "/session/resume", nil)
	require.Equal(t, fiber.StatusOK, status)
	var resumable domain.ResumableResponse
	require.NoError(t, json.Unmarshal(env.Data, &resumable))
	assert.True(t, resumable.Resumable)

	status, _ = s.call(t, fiber.MethodPost, "/session/answers", fiber.Map{"question_index": 2, "answer": "skipping ahead"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.call(t, fiber.MethodPost, "/session/answers", fiber.Map{"answer": "no index"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = s.call(t, fiber.MethodPost, "/session/answers", fiber.Map{"question_index": 0, "answer": "A process is an executing program."})
	require.Equal(t, fiber.StatusOK, status)
	var submitted domain.SubmissionResult
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.True(t, submitted.Accepted)
	require.NotNil(t, submitted.Score)
	assert.Equal(t, 5, *submitted.Score)

	status, env = s.call(t, fiber.MethodPost, "/session/answers", fiber.Map{"question_index": 0, "answer": "again"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "question already answered", env.Message)

	status, env = s.call(t, fiber.MethodPost, "/session/tick", nil)
	require.Equal(t, fiber.StatusOK, status)
	var tick domain.TickResult
	require.NoError(t, json.Unmarshal(env.Data, &tick))
	assert.Equal(t, domain.TimeLimitFor(domain.DifficultyEasy)-1, tick.Session.TimeRemainingSeconds)

	status, env = s.call(t, fiber.MethodDelete, "/session/", nil)
	require.Equal(t, fiber.StatusOK, status)
	var reset domain.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &reset))
	assert.Equal(t, domain.SessionStatusNotStarted, reset.Session.Status)
}

func TestSessionResumeUpload(t *testing.T) {
	s := newSessionApp(t)

	status, _ := s.call(t, fiber.MethodPost, "/session/resume", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("resume_text", "Grace Hopper\ngrace@navy.mil\n+1 555 123 4567"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/session/resume", body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	resp, env := do(t, s.app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result domain.ResumeUploadResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Grace Hopper", result.Extracted.Name)
	assert.Empty(t, result.MissingFields)
	assert.Equal(t, domain.SessionStatusReadyToStart, result.Session.Status)

	body = &bytes.Buffer{}
	writer = multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "cv.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req = httptest.NewRequest(fiber.MethodPost, "/session/resume", body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	resp, _ = do(t, s.app, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionTickSubmitsDraftOnExpiry(t *testing.T) {
	s := newSessionApp(t)

	status, _ := s.call(t, fiber.MethodPut, "/session/profile", fiber.Map{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"phone": "+44 1234 567890",
	})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.call(t, fiber.MethodPut, "/session/role", fiber.Map{"job_role": domain.JobRoleBackend})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.call(t, fiber.MethodPost, "/session/start", nil)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = s.call(t, fiber.MethodPost, "/session/tick", fiber.Map{"draft": strings.Repeat("x", 10001)})
	assert.Equal(t, fiber.StatusBadRequest, status)

	var tick domain.TickResult
	for i := 0; i < domain.TimeLimitFor(domain.DifficultyEasy); i++ {
		status, env := s.call(t, fiber.MethodPost, "/session/tick", fiber.Map{"draft": "A thread shares memory"})
		require.Equal(t, fiber.StatusOK, status)
		tick = domain.TickResult{}
		require.NoError(t, json.Unmarshal(env.Data, &tick))
	}

	require.NotNil(t, tick.Submission)
	assert.True(t, tick.Submission.Forced)
	assert.Equal(t, "A thread shares memory", tick.Session.Answers[0])
	assert.Equal(t, 1, tick.Session.CurrentQuestionIndex)
}
