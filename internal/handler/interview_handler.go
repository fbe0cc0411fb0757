package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/internal/service"
	"github.com/raflytch/interview-assistant/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InterviewHandler struct {
	interviewService domain.InterviewService
}

func NewInterviewHandler(interviewService domain.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

func (h *InterviewHandler) List(c *fiber.Ctx) error {
	order := strings.ToLower(c.Query("order", "desc"))
	if order != "asc" && order != "desc" {
		return response.BadRequest(c, "order must be asc or desc")
	}

	result, err := h.interviewService.List(c.UserContext(),
		strings.TrimSpace(c.Query("search")),
		domain.JobRole(c.Query("role")),
		domain.InterviewSortField(c.Query("sort")),
		order == "desc",
		c.QueryInt("page", 1),
		c.QueryInt("limit", 10),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSortField) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "interviews retrieved", result)
}

func (h *InterviewHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid interview id")
	}

	interview, err := h.interviewService.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrInterviewNotFound) {
			return response.NotFound(c, "interview not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "interview retrieved", interview)
}

func (h *InterviewHandler) DownloadPDF(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid interview id")
	}

	pdfBytes, err := h.interviewService.GeneratePDF(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrInterviewNotFound) {
			return response.NotFound(c, "interview not found")
		}
		return response.InternalError(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=interview_%s.pdf", id.String()))
	return c.Send(pdfBytes)
}

func (h *InterviewHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid interview id")
	}

	if err := h.interviewService.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrInterviewNotFound) {
			return response.NotFound(c, "interview not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "interview deleted", nil)
}
