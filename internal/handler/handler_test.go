package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"guide-exam/internal/config"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/handler"
	"guide-exam/internal/logger"
	"guide-exam/internal/middleware"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sessionID = "01HX3Z1V8Q9K2M4N5P6R7S8T9V"
	userToken = "user-token"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Env: "test", Level: "debug"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServices struct {
	exam        *MockExamService
	bank        *MockQuestionBank
	preferences *MockPreferenceService
	interview   *MockInterviewService
	auth        *MockAuthService
	user        *MockUserService
	study       *MockStudyService
}

func newTestApp() (*fiber.App, *testServices) {
	svcs := &testServices{
		exam:        &MockExamService{},
		bank:        &MockQuestionBank{},
		preferences: &MockPreferenceService{},
		interview:   &MockInterviewService{},
		auth: &MockAuthService{
			ValidateJWTFunc: func(ctx context.Context, token string) (*dto.AuthClaims, error) {
				if token == userToken {
					claims := &dto.AuthClaims{UserID: "user-1", Email: "guide@example.com"}
					claims.ID = "jti-1"
					return claims, nil
				}
				return nil, service.ErrInvalidJWTToken
			},
		},
		user:  &MockUserService{},
		study: &MockStudyService{},
	}

	v := validation.NewValidator()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app.Group("/api"), handler.Handlers{
		Exam:      handler.NewExamHandler(svcs.exam, v),
		Catalog:   handler.NewCatalogHandler(svcs.bank, svcs.preferences, v),
		Interview: handler.NewInterviewHandler(svcs.interview, v),
		Auth:      handler.NewAuthHandler(svcs.auth, v),
		User:      handler.NewUserHandler(svcs.user, svcs.study, v, time.UTC),
	}, svcs.auth)
	return app, svcs
}

type requestOption func(*http.Request)

func withDevice(id string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.DeviceIDHeader, id) }
}

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, opts ...requestOption) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body middleware.ErrorResponse
	decodeBody(t, resp, &body)
	return body.Code
}

func TestExamHandler_StartExam(t *testing.T) {
	app, svcs := newTestApp()

	var got domain.ExamRequest
	var gotOwner domain.Owner
	svcs.exam.StartFunc = func(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.ExamResponse, error) {
		gotOwner, got = owner, req
		if req.SubjectID == "empty" {
			return &dto.ExamResponse{State: dto.ExamStateNoContent, SubjectID: req.SubjectID}, nil
		}
		return &dto.ExamResponse{State: dto.ExamStateInProgress, SessionID: sessionID, SubjectID: req.ResolvedSubject(), Total: 5}, nil
	}

	t.Run("empty body starts default subject", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/exams", nil, withDevice("d1"))
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body dto.ExamResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "fagui", body.SubjectID)
		assert.Equal(t, domain.Owner{DeviceID: "d1"}, gotOwner)
		assert.Empty(t, got.SubjectID)
	})

	t.Run("authenticated user owns the session", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/exams", map[string]interface{}{"paper_id": 1}, withToken(userToken))
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, domain.Owner{UserID: "user-1"}, gotOwner)
		require.NotNil(t, got.PaperID)
		assert.Equal(t, int64(1), *got.PaperID)
	})

	t.Run("no content", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/exams", dto.StartExamRequest{SubjectID: "empty"}, withDevice("d1"))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		var body dto.ExamResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, dto.ExamStateNoContent, body.State)
		assert.Empty(t, body.SessionID)
	})

	t.Run("missing owner", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/exams", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid subject id", func(t *testing.T) {
		resp := doRequest(t, app, "POST", "/api/exams", dto.StartExamRequest{SubjectID: "fa-gui!"}, withDevice("d1"))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		var body middleware.ValidationErrorResponse
		decodeBody(t, resp, &body)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "subject_id", body.Errors[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/exams", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.DeviceIDHeader, "d1")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestExamHandler_Transitions(t *testing.T) {
	app, svcs := newTestApp()

	svcs.exam.SelectFunc = func(ctx context.Context, owner domain.Owner, id, key string) (*dto.ExamResponse, error) {
		if key == "E" {
			return nil, domain.NewTransitionError(domain.ErrInvalidOption)
		}
		return &dto.ExamResponse{State: dto.ExamStateInProgress, SessionID: id, Selection: []string{key}}, nil
	}
	svcs.exam.SubmitFunc = func(ctx context.Context, owner domain.Owner, id string) (*dto.ExamResponse, error) {
		return nil, domain.NewTransitionError(domain.ErrEmptySelection)
	}
	svcs.exam.NextFunc = func(ctx context.Context, owner domain.Owner, id string) (*dto.ExamResponse, error) {
		return &dto.ExamResponse{
			State:     dto.ExamStateFinished,
			SessionID: id,
			Result:    &dto.ExamResultResponse{Score: 80, CorrectCount: 4, Total: 5},
		}, nil
	}
	svcs.exam.GetFunc = func(ctx context.Context, owner domain.Owner, id string) (*dto.ExamResponse, error) {
		return nil, domain.NewSessionNotFoundError(id)
	}

	resp := doRequest(t, app, "POST", "/api/exams/"+sessionID+"/select", dto.SelectOptionRequest{Key: "B"}, withDevice("d1"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var view dto.ExamResponse
	decodeBody(t, resp, &view)
	assert.Equal(t, []string{"B"}, view.Selection)

	resp = doRequest(t, app, "POST", "/api/exams/"+sessionID+"/select", dto.SelectOptionRequest{Key: "E"}, withDevice("d1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_OPTION", errorCode(t, resp))

	resp = doRequest(t, app, "POST", "/api/exams/"+sessionID+"/select", map[string]string{}, withDevice("d1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/exams/"+sessionID+"/submit", nil, withDevice("d1"))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, resp))

	resp = doRequest(t, app, "POST", "/api/exams/"+sessionID+"/next", nil, withDevice("d1"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	require.NotNil(t, view.Result)
	assert.Equal(t, 80, view.Result.Score)

	resp = doRequest(t, app, "GET", "/api/exams/"+sessionID, nil, withDevice("d1"))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, resp))

	resp = doRequest(t, app, "GET", "/api/exams/not-a-ulid", nil, withDevice("d1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCatalogHandler(t *testing.T) {
	app, svcs := newTestApp()

	svcs.bank.SubjectsFunc = func(ctx context.Context) ([]dto.SubjectResponse, error) {
		return []dto.SubjectResponse{{ID: "fagui", Name: "政策与法律法规", QuestionCount: 5}}, nil
	}
	svcs.bank.PapersFunc = func(ctx context.Context) ([]dto.PaperResponse, error) {
		return nil, domain.NewInternalError("Failed to load papers", context.DeadlineExceeded)
	}
	svcs.preferences.RegionsFunc = func(ctx context.Context) []dto.RegionResponse {
		return []dto.RegionResponse{{ID: "beijing", Name: "北京"}}
	}
	var stored map[string]string
	svcs.preferences.SelectRegionFunc = func(ctx context.Context, owner domain.Owner, regionID string) (*dto.RegionPreferenceResponse, error) {
		if regionID == "atlantis" {
			return nil, domain.NewInvalidInputError("Unknown region: atlantis")
		}
		stored = map[string]string{owner.Key(): regionID}
		return &dto.RegionPreferenceResponse{Region: dto.RegionResponse{ID: regionID}}, nil
	}
	svcs.preferences.SelectedRegionFunc = func(ctx context.Context, owner domain.Owner) (*dto.RegionPreferenceResponse, error) {
		return &dto.RegionPreferenceResponse{Region: dto.RegionResponse{ID: "beijing"}, IsDefault: true}, nil
	}

	resp := doRequest(t, app, "GET", "/api/subjects", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var subjects []dto.SubjectResponse
	decodeBody(t, resp, &subjects)
	require.Len(t, subjects, 1)
	assert.Equal(t, 5, subjects[0].QuestionCount)

	resp = doRequest(t, app, "GET", "/api/papers", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/regions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/preferences/region", nil, withDevice("d1"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var pref dto.RegionPreferenceResponse
	decodeBody(t, resp, &pref)
	assert.True(t, pref.IsDefault)

	resp = doRequest(t, app, "PUT", "/api/preferences/region", dto.RegionPreferenceRequest{RegionID: "shanghai"}, withToken(userToken))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"user:user-1": "shanghai"}, stored)

	resp = doRequest(t, app, "PUT", "/api/preferences/region", dto.RegionPreferenceRequest{RegionID: "atlantis"}, withDevice("d1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, resp))
}

func TestInterviewHandler(t *testing.T) {
	app, svcs := newTestApp()

	var started domain.ExamRequest
	svcs.interview.StartDrillFunc = func(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.DrillResponse, error) {
		started = req
		return &dto.DrillResponse{State: dto.ExamStateInProgress, DrillID: sessionID, PracticeType: string(*req.PracticeType), Total: 3}, nil
	}
	svcs.interview.StepFunc = func(ctx context.Context, owner domain.Owner, id string) (*dto.DrillResponse, error) {
		return &dto.DrillResponse{State: dto.ExamStateInProgress, DrillID: id, ShowExplanation: true}, nil
	}
	svcs.interview.EvaluateFunc = func(ctx context.Context, questionID int64, answer string) (*dto.EvaluateAnswerResponse, error) {
		if questionID == 99 {
			return nil, domain.NewLLMServiceError(context.DeadlineExceeded)
		}
		return &dto.EvaluateAnswerResponse{QuestionID: questionID, Score: 0.8, KeyPoints: []string{"安抚游客"}}, nil
	}

	region := "shanghai"
	resp := doRequest(t, app, "POST", "/api/interview/drills", dto.StartDrillRequest{PracticeType: "regional_speech", RegionID: &region}, withDevice("d1"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, started.PracticeType)
	assert.Equal(t, domain.PracticeRegionalSpeech, *started.PracticeType)
	assert.Equal(t, "shanghai", *started.RegionID)

	resp = doRequest(t, app, "POST", "/api/interview/drills", dto.StartDrillRequest{PracticeType: "karaoke"}, withDevice("d1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for _, path := range []string{"", "/next", "/reveal"} {
		method := "POST"
		if path == "" {
			method = "GET"
		}
		resp = doRequest(t, app, method, "/api/interview/drills/"+sessionID+path, nil, withDevice("d1"))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	resp = doRequest(t, app, "POST", "/api/interview/evaluate", dto.EvaluateAnswerRequest{QuestionID: 7, Answer: "先安抚游客"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var eval dto.EvaluateAnswerResponse
	decodeBody(t, resp, &eval)
	assert.InDelta(t, 0.8, eval.Score, 1e-9)

	resp = doRequest(t, app, "POST", "/api/interview/evaluate", dto.EvaluateAnswerRequest{QuestionID: 99, Answer: "..."})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/interview/evaluate", dto.EvaluateAnswerRequest{QuestionID: 7})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandler(t *testing.T) {
	app, svcs := newTestApp()

	svcs.auth.SendVerificationCodeFunc = func(ctx context.Context, email string) (*dto.SendCodeResponse, error) {
		if email == "again@example.com" {
			return nil, domain.NewTooManyRequestsError("Please wait 30 seconds before requesting a new code", 30)
		}
		return &dto.SendCodeResponse{Message: "Verification code sent", RetryAfter: 60}, nil
	}
	svcs.auth.RegisterFunc = func(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
		return &dto.TokenResponse{AccessToken: "t", TokenType: "Bearer"}, nil
	}
	svcs.auth.LoginFunc = func(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
		return nil, domain.NewUnauthorizedError("Invalid email or password")
	}
	var revoked string
	svcs.auth.LogoutFunc = func(ctx context.Context, claims *dto.AuthClaims) error {
		revoked = claims.ID
		return nil
	}

	resp := doRequest(t, app, "POST", "/api/auth/verification-code", dto.SendCodeRequest{Email: "guide@example.com"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/auth/verification-code", dto.SendCodeRequest{Email: "again@example.com"})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))

	resp = doRequest(t, app, "POST", "/api/auth/verification-code", dto.SendCodeRequest{Email: "nope"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	register := dto.RegisterRequest{Email: "guide@example.com", Password: "abcdefgh", ConfirmPassword: "abcdefgh", Code: "123456"}
	resp = doRequest(t, app, "POST", "/api/auth/register", register)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	register.Password, register.ConfirmPassword = "abcdefg1", "abcdefg1"
	resp = doRequest(t, app, "POST", "/api/auth/register", register)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/auth/login", dto.LoginRequest{Email: "guide@example.com", Password: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/auth/logout", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/auth/logout", nil, withToken(userToken))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "jti-1", revoked)
}

func TestAuthHandler_RateLimited(t *testing.T) {
	app, svcs := newTestApp()
	svcs.auth.LoginFunc = func(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
		return nil, domain.NewUnauthorizedError("Invalid email or password")
	}

	login := dto.LoginRequest{Email: "guide@example.com", Password: "guess"}
	for i := 0; i < 20; i++ {
		resp := doRequest(t, app, "POST", "/api/auth/login", login)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "request %d", i+1)
	}

	resp := doRequest(t, app, "POST", "/api/auth/login", login)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, string(domain.CodeTooManyRequests), errorCode(t, resp))

	// other route groups are not limited
	resp = doRequest(t, app, "GET", "/api/regions", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUserHandler(t *testing.T) {
	app, svcs := newTestApp()

	svcs.user.GetUserProfileFunc = func(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
		return &dto.UserProfileResponse{ID: userID, Email: "guide@example.com"}, nil
	}
	var gotPage dto.Pagination
	svcs.user.GetWrongAnswersFunc = func(ctx context.Context, userID string, p dto.Pagination) (*dto.WrongAnswersResponse, error) {
		gotPage = p
		return &dto.WrongAnswersResponse{Items: []dto.WrongAnswerItem{}}, nil
	}
	var removed int64
	svcs.user.RemoveWrongAnswerFunc = func(ctx context.Context, userID string, questionID int64) error {
		if questionID == 404 {
			return domain.NewNotFoundError("Wrong answer not found")
		}
		removed = questionID
		return nil
	}
	var gotDate string
	svcs.study.DayFunc = func(ctx context.Context, userID, date string) (*dto.StudyDayResponse, error) {
		gotDate = date
		return &dto.StudyDayResponse{Date: date}, nil
	}
	svcs.study.WeekFunc = func(ctx context.Context, userID, date string) (*dto.StudyWeekResponse, error) {
		gotDate = date
		return &dto.StudyWeekResponse{Days: []dto.StudyDayResponse{}}, nil
	}

	resp := doRequest(t, app, "GET", "/api/users/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/users/me", nil, withToken(userToken))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var profile dto.UserProfileResponse
	decodeBody(t, resp, &profile)
	assert.Equal(t, "user-1", profile.ID)

	resp = doRequest(t, app, "GET", "/api/users/me/wrong-answers?limit=10&offset=20", nil, withToken(userToken))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.Pagination{Limit: 10, Offset: 20}, gotPage)

	resp = doRequest(t, app, "GET", "/api/users/me/wrong-answers?limit=500", nil, withToken(userToken))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, "DELETE", "/api/users/me/wrong-answers/103", nil, withToken(userToken))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(103), removed)

	resp = doRequest(t, app, "DELETE", "/api/users/me/wrong-answers/404", nil, withToken(userToken))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, "DELETE", "/api/users/me/wrong-answers/abc", nil, withToken(userToken))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/users/me/study?date=2024-05-02", nil, withToken(userToken))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-05-02", gotDate)

	resp = doRequest(t, app, "GET", "/api/users/me/study/week", nil, withToken(userToken))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Now().UTC().Format(domain.DateLayout), gotDate)

	resp = doRequest(t, app, "GET", "/api/users/me/study?date=05/02/2024", nil, withToken(userToken))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
