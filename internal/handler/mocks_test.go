package handler_test

import (
	"context"
	"errors"

	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
)

var errNotStubbed = errors.New("not stubbed")

// --- Manual Mocks ---

type MockExamService struct {
	StartFunc  func(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.ExamResponse, error)
	GetFunc    func(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error)
	SelectFunc func(ctx context.Context, owner domain.Owner, sessionID, key string) (*dto.ExamResponse, error)
	SubmitFunc func(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error)
	NextFunc   func(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error)
}

func (m *MockExamService) Start(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.ExamResponse, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, owner, req)
	}
	return nil, errNotStubbed
}
func (m *MockExamService) Get(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, owner, sessionID)
	}
	return nil, errNotStubbed
}
func (m *MockExamService) Select(ctx context.Context, owner domain.Owner, sessionID, key string) (*dto.ExamResponse, error) {
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, owner, sessionID, key)
	}
	return nil, errNotStubbed
}
func (m *MockExamService) Submit(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, owner, sessionID)
	}
	return nil, errNotStubbed
}
func (m *MockExamService) Next(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, owner, sessionID)
	}
	return nil, errNotStubbed
}

type MockQuestionBank struct {
	SubjectsFunc func(ctx context.Context) ([]dto.SubjectResponse, error)
	PapersFunc   func(ctx context.Context) ([]dto.PaperResponse, error)
}

func (m *MockQuestionBank) BySubject(ctx context.Context, subjectID string) ([]*domain.Question, error) {
	return nil, errNotStubbed
}
func (m *MockQuestionBank) All(ctx context.Context) ([]*domain.Question, error) {
	return nil, errNotStubbed
}
func (m *MockQuestionBank) ByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error) {
	return nil, errNotStubbed
}
func (m *MockQuestionBank) Subjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	if m.SubjectsFunc != nil {
		return m.SubjectsFunc(ctx)
	}
	return nil, errNotStubbed
}
func (m *MockQuestionBank) Papers(ctx context.Context) ([]dto.PaperResponse, error) {
	if m.PapersFunc != nil {
		return m.PapersFunc(ctx)
	}
	return nil, errNotStubbed
}
func (m *MockQuestionBank) Paper(ctx context.Context, id int64) (*domain.ExamPaper, error) {
	return nil, errNotStubbed
}

type MockPreferenceService struct {
	RegionsFunc        func(ctx context.Context) []dto.RegionResponse
	SelectedRegionFunc func(ctx context.Context, owner domain.Owner) (*dto.RegionPreferenceResponse, error)
	SelectRegionFunc   func(ctx context.Context, owner domain.Owner, regionID string) (*dto.RegionPreferenceResponse, error)
}

func (m *MockPreferenceService) Regions(ctx context.Context) []dto.RegionResponse {
	if m.RegionsFunc != nil {
		return m.RegionsFunc(ctx)
	}
	return nil
}
func (m *MockPreferenceService) SelectedRegion(ctx context.Context, owner domain.Owner) (*dto.RegionPreferenceResponse, error) {
	if m.SelectedRegionFunc != nil {
		return m.SelectedRegionFunc(ctx, owner)
	}
	return nil, errNotStubbed
}
func (m *MockPreferenceService) SelectRegion(ctx context.Context, owner domain.Owner, regionID string) (*dto.RegionPreferenceResponse, error) {
	if m.SelectRegionFunc != nil {
		return m.SelectRegionFunc(ctx, owner, regionID)
	}
	return nil, errNotStubbed
}

type MockInterviewService struct {
	StartDrillFunc func(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.DrillResponse, error)
	StepFunc       func(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error)
	EvaluateFunc   func(ctx context.Context, questionID int64, answer string) (*dto.EvaluateAnswerResponse, error)
}

func (m *MockInterviewService) StartDrill(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.DrillResponse, error) {
	if m.StartDrillFunc != nil {
		return m.StartDrillFunc(ctx, owner, req)
	}
	return nil, errNotStubbed
}
func (m *MockInterviewService) GetDrill(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	return m.step(ctx, owner, drillID)
}
func (m *MockInterviewService) NextQuestion(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	return m.step(ctx, owner, drillID)
}
func (m *MockInterviewService) Reveal(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	return m.step(ctx, owner, drillID)
}
func (m *MockInterviewService) step(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	if m.StepFunc != nil {
		return m.StepFunc(ctx, owner, drillID)
	}
	return nil, errNotStubbed
}
func (m *MockInterviewService) Evaluate(ctx context.Context, questionID int64, answer string) (*dto.EvaluateAnswerResponse, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, questionID, answer)
	}
	return nil, errNotStubbed
}

type MockAuthService struct {
	SendVerificationCodeFunc func(ctx context.Context, email string) (*dto.SendCodeResponse, error)
	RegisterFunc             func(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	LoginFunc                func(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	ValidateJWTFunc          func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	LogoutFunc               func(ctx context.Context, claims *dto.AuthClaims) error
}

func (m *MockAuthService) SendVerificationCode(ctx context.Context, email string) (*dto.SendCodeResponse, error) {
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, email)
	}
	return nil, errNotStubbed
}
func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, errNotStubbed
}
func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, errNotStubbed
}
func (m *MockAuthService) CreateJWT(ctx context.Context, user *domain.User) (string, error) {
	return "", errNotStubbed
}
func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return nil, errNotStubbed
}
func (m *MockAuthService) Logout(ctx context.Context, claims *dto.AuthClaims) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, claims)
	}
	return errNotStubbed
}

type MockUserService struct {
	GetUserProfileFunc    func(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	GetWrongAnswersFunc   func(ctx context.Context, userID string, pagination dto.Pagination) (*dto.WrongAnswersResponse, error)
	RemoveWrongAnswerFunc func(ctx context.Context, userID string, questionID int64) error
}

func (m *MockUserService) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return nil, errNotStubbed
}
func (m *MockUserService) GetWrongAnswers(ctx context.Context, userID string, pagination dto.Pagination) (*dto.WrongAnswersResponse, error) {
	if m.GetWrongAnswersFunc != nil {
		return m.GetWrongAnswersFunc(ctx, userID, pagination)
	}
	return nil, errNotStubbed
}
func (m *MockUserService) CountWrongAnswers(ctx context.Context, userID string) (int, error) {
	return 0, errNotStubbed
}
func (m *MockUserService) RemoveWrongAnswer(ctx context.Context, userID string, questionID int64) error {
	if m.RemoveWrongAnswerFunc != nil {
		return m.RemoveWrongAnswerFunc(ctx, userID, questionID)
	}
	return errNotStubbed
}

type MockStudyService struct {
	DayFunc  func(ctx context.Context, userID, date string) (*dto.StudyDayResponse, error)
	WeekFunc func(ctx context.Context, userID, date string) (*dto.StudyWeekResponse, error)
}

func (m *MockStudyService) RecordSession(ctx context.Context, userID string, session *domain.ExamSession, result *domain.ExamResult) error {
	return errNotStubbed
}
func (m *MockStudyService) Day(ctx context.Context, userID, date string) (*dto.StudyDayResponse, error) {
	if m.DayFunc != nil {
		return m.DayFunc(ctx, userID, date)
	}
	return nil, errNotStubbed
}
func (m *MockStudyService) Week(ctx context.Context, userID, date string) (*dto.StudyWeekResponse, error) {
	if m.WeekFunc != nil {
		return m.WeekFunc(ctx, userID, date)
	}
	return nil, errNotStubbed
}
