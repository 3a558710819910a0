package handler

import (
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ExamHandler handles exam session HTTP requests
type ExamHandler struct {
	service   service.ExamService
	validator *validation.Validator
}

// NewExamHandler creates a new ExamHandler instance
func NewExamHandler(service service.ExamService, validator *validation.Validator) *ExamHandler {
	return &ExamHandler{
		service:   service,
		validator: validator,
	}
}

// StartExam godoc
// @Summary Start an exam session
// @Description Opens a session over a subject's questions or a mock exam paper. An empty body starts the default subject. A subject without questions answers with state no_content.
// @Tags exams
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Param request body dto.StartExamRequest false "Subject or paper"
// @Success 201 {object} dto.ExamResponse
// @Success 200 {object} dto.ExamResponse "state no_content"
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Paper not found"
// @Failure 500 {object} middleware.ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) StartExam(c *fiber.Ctx) error {
	owner, err := middleware.ResolveOwner(c)
	if err != nil {
		return err
	}
	var req dto.StartExamRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}

	resp, err := h.service.Start(c.UserContext(), owner, domain.ExamRequest{
		SubjectID: req.SubjectID,
		PaperID:   req.PaperID,
	})
	if err != nil {
		logger.Get().Error("Failed to start exam",
			zap.Error(err),
			zap.String("subject_id", req.SubjectID),
		)
		return err
	}

	if resp.State == dto.ExamStateNoContent {
		return c.JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetExam godoc
// @Summary Get the current exam view
// @Tags exams
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Session not found or expired"
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *fiber.Ctx) error {
	owner, id, err := h.sessionParams(c)
	if err != nil {
		return err
	}
	resp, err := h.service.Get(c.UserContext(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SelectOption godoc
// @Summary Select an option
// @Description Single-choice and true-false questions replace the selection, multi-choice questions toggle the key.
// @Tags exams
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Param request body dto.SelectOptionRequest true "Option key"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} middleware.ErrorResponse "Unknown option key"
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Question already submitted or session finished"
// @Router /exams/{id}/select [post]
func (h *ExamHandler) SelectOption(c *fiber.Ctx) error {
	owner, id, err := h.sessionParams(c)
	if err != nil {
		return err
	}
	var req dto.SelectOptionRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.service.Select(c.UserContext(), owner, id, req.Key)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswer godoc
// @Summary Submit the current selection
// @Description Grades the selection and reveals the correct answer and explanation.
// @Tags exams
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.ExamResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Nothing selected or already submitted"
// @Router /exams/{id}/submit [post]
func (h *ExamHandler) SubmitAnswer(c *fiber.Ctx) error {
	owner, id, err := h.sessionParams(c)
	if err != nil {
		return err
	}
	resp, err := h.service.Submit(c.UserContext(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// NextQuestion godoc
// @Summary Move to the next question
// @Description From the last question this finishes the session and returns the result.
// @Tags exams
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Device-ID header string false "Device id for anonymous clients"
// @Success 200 {object} dto.ExamResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Current question not submitted"
// @Router /exams/{id}/next [post]
func (h *ExamHandler) NextQuestion(c *fiber.Ctx) error {
	owner, id, err := h.sessionParams(c)
	if err != nil {
		return err
	}
	resp, err := h.service.Next(c.UserContext(), owner, id)
	if err != nil {
		return err
	}
	if resp.State == dto.ExamStateFinished {
		logger.Get().Info("Exam finished",
			zap.String("session_id", id),
			zap.Int("score", resp.Result.Score),
		)
	}
	return c.JSON(resp)
}

func (h *ExamHandler) sessionParams(c *fiber.Ctx) (domain.Owner, string, error) {
	owner, err := middleware.ResolveOwner(c)
	if err != nil {
		return domain.Owner{}, "", err
	}
	id, err := pathID(c, h.validator, "id")
	if err != nil {
		return domain.Owner{}, "", err
	}
	return owner, id, nil
}
