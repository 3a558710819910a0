package handler

import (
	"time"

	"guide-exam/internal/domain"
	"guide-exam/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Per client IP, across all /auth endpoints.
const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

// Handlers bundles every HTTP handler mounted under /api.
type Handlers struct {
	Exam      *ExamHandler
	Catalog   *CatalogHandler
	Interview *InterviewHandler
	Auth      *AuthHandler
	User      *UserHandler
}

// RegisterRoutes mounts the API on router. Exam, drill and preference routes
// accept anonymous clients identified by X-Device-ID.
func RegisterRoutes(router fiber.Router, h Handlers, auth middleware.TokenValidator) {
	optional := middleware.OptionalAuth(auth)
	protected := middleware.Protected(auth)

	router.Get("/subjects", h.Catalog.ListSubjects)
	router.Get("/papers", h.Catalog.ListPapers)
	router.Get("/regions", h.Catalog.ListRegions)
	router.Get("/preferences/region", optional, h.Catalog.GetRegionPreference)
	router.Put("/preferences/region", optional, h.Catalog.SetRegionPreference)

	exams := router.Group("/exams", optional)
	exams.Post("/", h.Exam.StartExam)
	exams.Get("/:id", h.Exam.GetExam)
	exams.Post("/:id/select", h.Exam.SelectOption)
	exams.Post("/:id/submit", h.Exam.SubmitAnswer)
	exams.Post("/:id/next", h.Exam.NextQuestion)

	interview := router.Group("/interview", optional)
	interview.Post("/drills", h.Interview.StartDrill)
	interview.Get("/drills/:id", h.Interview.GetDrill)
	interview.Post("/drills/:id/next", h.Interview.NextQuestion)
	interview.Post("/drills/:id/reveal", h.Interview.RevealExplanation)
	interview.Post("/evaluate", h.Interview.EvaluateAnswer)

	authGroup := router.Group("/auth", limiter.New(limiter.Config{
		Max:        authRateLimit,
		Expiration: authRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return domain.NewTooManyRequestsError("Too many authentication requests", int(authRateWindow/time.Second))
		},
	}))
	authGroup.Post("/verification-code", h.Auth.SendVerificationCode)
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/logout", protected, h.Auth.Logout)

	users := router.Group("/users/me", protected)
	users.Get("/", h.User.GetMyProfile)
	users.Get("/wrong-answers", h.User.GetMyWrongAnswers)
	users.Delete("/wrong-answers/:questionId", h.User.RemoveWrongAnswer)
	users.Get("/study", h.User.GetMyStudyDay)
	users.Get("/study/week", h.User.GetMyStudyWeek)
}
