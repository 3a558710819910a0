package handler

import (
	"context"

	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// InterviewHandler handles interview practice requests
type InterviewHandler struct {
	service   service.InterviewService
	validator *validation.Validator
}

func NewInterviewHandler(service service.InterviewService, validator *validation.Validator) *InterviewHandler {
	return &InterviewHandler{service: service, validator: validator}
}

// StartDrill godoc
// @Summary Start an interview drill
// @Description regional_speech without region_id uses the selected region preference.
// @Tags interview
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Param request body dto.StartDrillRequest true "Practice type and optional region"
// @Success 201 {object} dto.DrillResponse
// @Success 200 {object} dto.DrillResponse "state no_content"
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /interview/drills [post]
func (h *InterviewHandler) StartDrill(c *fiber.Ctx) error {
	owner, err := middleware.ResolveOwner(c)
	if err != nil {
		return err
	}
	var req dto.StartDrillRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}

	practiceType := domain.InterviewPracticeType(req.PracticeType)
	resp, err := h.service.StartDrill(c.UserContext(), owner, domain.ExamRequest{
		PracticeType: &practiceType,
		RegionID:     req.RegionID,
	})
	if err != nil {
		return err
	}
	if resp.State == dto.ExamStateNoContent {
		return c.JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetDrill godoc
// @Summary Get the current interview question
// @Tags interview
// @Produce json
// @Param id path string true "Drill ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.DrillResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /interview/drills/{id} [get]
func (h *InterviewHandler) GetDrill(c *fiber.Ctx) error {
	return h.drillStep(c, h.service.GetDrill)
}

// NextQuestion godoc
// @Summary Move to the next interview question
// @Description Wraps around from the last question to the first and hides the explanation again.
// @Tags interview
// @Produce json
// @Param id path string true "Drill ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.DrillResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /interview/drills/{id}/next [post]
func (h *InterviewHandler) NextQuestion(c *fiber.Ctx) error {
	return h.drillStep(c, h.service.NextQuestion)
}

// RevealExplanation godoc
// @Summary Show the reference explanation
// @Tags interview
// @Produce json
// @Param id path string true "Drill ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.DrillResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /interview/drills/{id}/reveal [post]
func (h *InterviewHandler) RevealExplanation(c *fiber.Ctx) error {
	return h.drillStep(c, h.service.Reveal)
}

// EvaluateAnswer godoc
// @Summary Evaluate a spoken answer
// @Description Scores a free-text answer against the reference explanation with the configured LLM.
// @Tags interview
// @Accept json
// @Produce json
// @Param request body dto.EvaluateAnswerRequest true "Question and answer"
// @Success 200 {object} dto.EvaluateAnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse "LLM unavailable"
// @Router /interview/evaluate [post]
func (h *InterviewHandler) EvaluateAnswer(c *fiber.Ctx) error {
	var req dto.EvaluateAnswerRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.service.Evaluate(c.UserContext(), req.QuestionID, req.Answer)
	if err != nil {
		logger.Get().Error("Failed to evaluate interview answer",
			zap.Error(err),
			zap.Int64("question_id", req.QuestionID),
		)
		return err
	}
	return c.JSON(resp)
}

type drillFunc func(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error)

func (h *InterviewHandler) drillStep(c *fiber.Ctx, step drillFunc) error {
	owner, err := middleware.ResolveOwner(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, h.validator, "id")
	if err != nil {
		return err
	}
	resp, err := step(c.UserContext(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
