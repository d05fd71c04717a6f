package handler

import (
	"quizmaster/internal/domain"
	"quizmaster/internal/dto"
	"quizmaster/internal/logger"
	"quizmaster/internal/middleware"
	"quizmaster/internal/service"
	"quizmaster/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AttemptHandler handles quiz attempt HTTP requests
type AttemptHandler struct {
	service   service.AttemptService
	validator *validation.Validator
}

// NewAttemptHandler creates a new AttemptHandler instance
func NewAttemptHandler(service service.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// StartAttempt godoc
// @Summary Start a quiz attempt
// @Description Creates an attempt for the caller and returns the quiz without answers. Questions are shuffled when the quiz asks for it.
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Quiz ID"
// @Success 201 {object} dto.StartAttemptResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *fiber.Ctx) error {
	requester, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	quizID := c.Params("id")
	if errs := h.validator.ValidateID("id", quizID); len(errs) > 0 {
		return errs
	}

	attemptID, view, err := h.service.StartAttempt(c.UserContext(), quizID, requester)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.StartAttemptResponse{
		Success:   true,
		AttemptID: attemptID,
		Data:      view,
	})
}

// SubmitAttempt godoc
// @Summary Submit a quiz attempt
// @Description Scores the submitted answers and completes the attempt. An attempt can be submitted once.
// @Tags attempts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attempt ID"
// @Param answers body dto.SubmitAttemptRequest true "Submitted answers"
// @Success 200 {object} dto.SubmitAttemptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	requester, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	attemptID := c.Params("id")
	if errs := h.validator.ValidateID("id", attemptID); len(errs) > 0 {
		return errs
	}

	var req dto.SubmitAttemptRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			logger.Get().Debug("Failed to parse submission body", zap.String("attempt_id", attemptID), zap.Error(err))
			return domain.NewInvalidInputError("Invalid request body")
		}
	}
	if errs := h.validator.ValidateSubmitAttemptRequest(&req); len(errs) > 0 {
		return errs
	}

	answers := make([]domain.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		choice := domain.NoChoice
		if a.SelectedChoice != nil {
			choice = *a.SelectedChoice
		}
		answers = append(answers, domain.SubmittedAnswer{
			QuestionID:     a.QuestionID,
			SelectedChoice: choice,
			TimeTaken:      a.TimeTaken,
		})
	}

	result, err := h.service.SubmitAttempt(c.UserContext(), attemptID, requester, answers)
	if err != nil {
		return err
	}

	return c.JSON(dto.SubmitAttemptResponse{
		Success: true,
		Data:    result,
	})
}

// GetAttempt godoc
// @Summary Get a quiz attempt
// @Description Returns an attempt to its taker, the quiz owner or an admin.
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} dto.GetAttemptResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *fiber.Ctx) error {
	requester, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	attemptID := c.Params("id")
	if errs := h.validator.ValidateID("id", attemptID); len(errs) > 0 {
		return errs
	}

	detail, err := h.service.GetAttempt(c.UserContext(), attemptID, requester)
	if err != nil {
		return err
	}

	return c.JSON(dto.GetAttemptResponse{
		Success: true,
		Data:    detail,
	})
}

func requirePrincipal(c *fiber.Ctx) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.NewUnauthorizedError("Authentication required")
	}
	return p, nil
}
