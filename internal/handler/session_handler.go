package handler

import (
	"errors"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/middleware"
	"github.com/raflytch/interview-assistant/internal/repository"
	"github.com/raflytch/interview-assistant/internal/service"
	"github.com/raflytch/interview-assistant/internal/session"
	"github.com/raflytch/interview-assistant/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	sessionService domain.SessionService
	resumeService  domain.ResumeService
}

func NewSessionHandler(sessionService domain.SessionService, resumeService domain.ResumeService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		resumeService:  resumeService,
	}
}

func (h *SessionHandler) Current(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	result, err := h.sessionService.Current(c.UserContext(), user.ID)
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "session retrieved", result)
}

func (h *SessionHandler) Resumable(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	result := h.sessionService.Resumable(c.UserContext(), user.ID)
	return response.Success(c, fiber.StatusOK, "resume state retrieved", result)
}

func (h *SessionHandler) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	var req domain.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validateRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.sessionService.UpdateProfile(c.UserContext(), user.ID, domain.CandidateProfile{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "profile updated", result)
}

func (h *SessionHandler) UploadResume(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	upload := &domain.ResumeUpload{ResumeText: c.FormValue("resume_text")}
	if file, err := c.FormFile("file"); err == nil {
		upload.File = file
	}

	result, err := h.resumeService.Upload(c.UserContext(), user.ID, upload)
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "resume processed", result)
}

func (h *SessionHandler) SetJobRole(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	var req domain.SetJobRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validateRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.sessionService.SetJobRole(c.UserContext(), user.ID, req.JobRole)
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "job role updated", result)
}

func (h *SessionHandler) Start(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	result, err := h.sessionService.Start(c.UserContext(), user.ID)
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusCreated, "interview started", result)
}

func (h *SessionHandler) Tick(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	var req domain.TickRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
		if err := validateRequest(&req); err != nil {
			return response.BadRequest(c, err.Error())
		}
	}

	result, err := h.sessionService.Tick(c.UserContext(), user.ID, req.Draft)
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "tick processed", result)
}

func (h *SessionHandler) SubmitAnswer(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	var req domain.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validateRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.sessionService.SubmitAnswer(c.UserContext(), user.ID, *req.QuestionIndex, req.Answer)
	if err != nil {
		return sessionError(c, err)
	}

	message := "answer submitted"
	if !result.Accepted {
		message = "question already answered"
	}
	return response.Success(c, fiber.StatusOK, message, result)
}

func (h *SessionHandler) Reset(c *fiber.Ctx) error {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		return response.Unauthorized(c, "user not authenticated")
	}

	result, err := h.sessionService.Reset(c.UserContext(), user.ID)
	if err != nil {
		return sessionError(c, err)
	}
	return response.Success(c, fiber.StatusOK, "session reset", result)
}

func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrProfileLocked),
		errors.Is(err, session.ErrInterviewInProgress),
		errors.Is(err, session.ErrInterviewCompleted),
		errors.Is(err, session.ErrAlreadyAnswered),
		errors.Is(err, service.ErrSubmissionInFlight),
		errors.Is(err, service.ErrStartInFlight),
		errors.Is(err, service.ErrSessionChanged),
		errors.Is(err, repository.ErrSnapshotConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, session.ErrProfileIncomplete),
		errors.Is(err, session.ErrJobRoleRequired),
		errors.Is(err, session.ErrInvalidQuestionSet),
		errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrQuestionOutOfRange),
		errors.Is(err, session.ErrAnswersMissing),
		errors.Is(err, service.ErrResumeRequired),
		errors.Is(err, service.ErrInvalidResumeFile):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		return response.Forbidden(c, "interview quota exceeded for this month")
	}
	return response.InternalError(c, err.Error())
}
