package handler

import (
	"time"

	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService  service.UserService
	studyService service.StudyService
	validator    *validation.Validator
	location     *time.Location
	now          func() time.Time
}

func NewUserHandler(userService service.UserService, studyService service.StudyService, validator *validation.Validator, loc *time.Location) *UserHandler {
	if loc == nil {
		loc = time.Local
	}
	return &UserHandler{
		userService:  userService,
		studyService: studyService,
		validator:    validator,
		location:     loc,
		now:          time.Now,
	}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	profile, err := h.userService.GetUserProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetMyWrongAnswers lists the wrong-answer book.
// @Summary Get My Wrong Answers
// @Description Most recently missed questions first.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.WrongAnswersResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me/wrong-answers [get]
func (h *UserHandler) GetMyWrongAnswers(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var pagination dto.Pagination
	if err := c.QueryParser(&pagination); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("pagination", c.Request().URI().QueryArgs().String())}
	}
	if errs := h.validator.ValidateStruct(&pagination); len(errs) > 0 {
		return errs
	}
	resp, err := h.userService.GetWrongAnswers(c.UserContext(), userID, pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RemoveWrongAnswer drops a mastered question from the wrong-answer book.
// @Summary Remove Wrong Answer
// @Tags users
// @Security ApiKeyAuth
// @Param questionId path int true "Question ID"
// @Success 204
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/me/wrong-answers/{questionId} [delete]
func (h *UserHandler) RemoveWrongAnswer(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	questionID, errs := h.validator.ParseQuestionID("questionId", c.Params("questionId"))
	if len(errs) > 0 {
		return errs
	}
	if err := h.userService.RemoveWrongAnswer(c.UserContext(), userID, questionID); err != nil {
		return err
	}
	logger.Get().Info("Wrong answer removed", zap.String("userID", userID), zap.Int64("question_id", questionID))
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyStudyDay returns one day of practice.
// @Summary Get Study Day
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} dto.StudyDayResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /users/me/study [get]
func (h *UserHandler) GetMyStudyDay(c *fiber.Ctx) error {
	userID, date, err := h.studyParams(c)
	if err != nil {
		return err
	}
	resp, err := h.studyService.Day(c.UserContext(), userID, date)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetMyStudyWeek returns the seven days centred on date.
// @Summary Get Study Week
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} dto.StudyWeekResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /users/me/study/week [get]
func (h *UserHandler) GetMyStudyWeek(c *fiber.Ctx) error {
	userID, date, err := h.studyParams(c)
	if err != nil {
		return err
	}
	resp, err := h.studyService.Week(c.UserContext(), userID, date)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *UserHandler) studyParams(c *fiber.Ctx) (string, string, error) {
	userID, err := requireUser(c)
	if err != nil {
		return "", "", err
	}
	raw := c.Query("date")
	if raw == "" {
		return userID, domain.DateKey(h.now().In(h.location)), nil
	}
	date, errs := h.validator.ParseDate("date", raw)
	if len(errs) > 0 {
		return "", "", errs
	}
	return userID, date, nil
}

func requireUser(c *fiber.Ctx) (string, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		logger.Get().Warn("User ID not found in context", zap.String("path", c.Path()))
		return "", domain.NewUnauthorizedError("User ID not found in context")
	}
	return userID, nil
}
