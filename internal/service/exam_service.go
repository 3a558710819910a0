package service

import (
	"context"
	"time"

	"guide-exam/internal/cache"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/util"

	"go.uber.org/zap"
)

// ExamService drives exam sessions across HTTP calls. Sessions live in the cache
// between calls and are bound to the owner that started them.
type ExamService interface {
	Start(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.ExamResponse, error)
	Get(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error)
	Select(ctx context.Context, owner domain.Owner, sessionID, key string) (*dto.ExamResponse, error)
	Submit(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error)
	Next(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error)
}

type examService struct {
	bank  QuestionBank
	store *sessionStore
	study StudyService
	now   func() time.Time
}

// NewExamService creates a new instance of examService. study may be nil when
// results should not be recorded.
func NewExamService(bank QuestionBank, cache domain.Cache, sessionTTL time.Duration, study StudyService) ExamService {
	return &examService{
		bank:  bank,
		store: &sessionStore{cache: cache, ttl: sessionTTL},
		study: study,
		now:   time.Now,
	}
}

func sessionKey(id string) string {
	return cache.GenerateCacheKey(cache.ServiceExam, cache.TypeSession, id)
}

// Start builds a session for a paper or a subject. A subject without questions
// yields a no-content response and nothing is stored.
func (s *examService) Start(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.ExamResponse, error) {
	var session *domain.ExamSession
	if req.IsPaper() {
		paper, err := s.bank.Paper(ctx, *req.PaperID)
		if err != nil {
			return nil, err
		}
		questions, err := s.bank.All(ctx)
		if err != nil {
			return nil, err
		}
		session = domain.NewPaperSession(paper.ID, questions)
	} else {
		subjectID := req.ResolvedSubject()
		questions, err := s.bank.BySubject(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		session = domain.NewExamSession(subjectID, questions)
	}

	if session.Empty() {
		logger.Get().Info("ExamService: no questions for request",
			zap.String("subject_id", session.SubjectID),
			zap.String("owner", owner.Key()))
		return &dto.ExamResponse{
			State:     dto.ExamStateNoContent,
			SubjectID: session.SubjectID,
			PaperID:   session.PaperID,
			Selection: []string{},
		}, nil
	}

	session.ID = util.NewULID()
	session.SetClock(s.now)
	if err := s.save(ctx, owner, session); err != nil {
		return nil, err
	}

	logger.Get().Info("ExamService: session started",
		zap.String("session_id", session.ID),
		zap.String("subject_id", session.SubjectID),
		zap.Int("total", session.Total()),
		zap.String("owner", owner.Key()))
	return s.view(session), nil
}

func (s *examService) Get(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error) {
	session, err := s.load(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

func (s *examService) Select(ctx context.Context, owner domain.Owner, sessionID, key string) (*dto.ExamResponse, error) {
	return s.mutate(ctx, owner, sessionID, func(session *domain.ExamSession) error {
		return session.SelectOption(key)
	})
}

func (s *examService) Submit(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error) {
	return s.mutate(ctx, owner, sessionID, func(session *domain.ExamSession) error {
		_, err := session.Submit()
		return err
	})
}

// Next advances the session. From the last question it finishes the session,
// removes it from the cache and records the outcome for signed-in owners.
func (s *examService) Next(ctx context.Context, owner domain.Owner, sessionID string) (*dto.ExamResponse, error) {
	session, err := s.load(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	result, err := session.Advance()
	if err != nil {
		return nil, domain.NewTransitionError(err)
	}
	if result == nil {
		if err := s.save(ctx, owner, session); err != nil {
			return nil, err
		}
		return s.view(session), nil
	}

	if err := s.store.delete(ctx, sessionKey(session.ID)); err != nil {
		logger.Get().Warn("ExamService: failed to delete finished session", zap.String("session_id", session.ID), zap.Error(err))
	}
	logger.Get().Info("ExamService: session finished",
		zap.String("session_id", session.ID),
		zap.Int("score", result.Score),
		zap.Int("correct", result.CorrectCount),
		zap.Int("total", result.Total))

	if owner.Authenticated() && s.study != nil {
		if err := s.study.RecordSession(ctx, owner.UserID, session, result); err != nil {
			logger.Get().Error("ExamService: failed to record finished session",
				zap.String("session_id", session.ID),
				zap.String("user_id", owner.UserID),
				zap.Error(err))
		}
	}
	return s.view(session), nil
}

// mutate is load, transition, save without a lock. One client drives one session,
// so concurrent calls on the same session are last-write-wins.
func (s *examService) mutate(ctx context.Context, owner domain.Owner, sessionID string, fn func(*domain.ExamSession) error) (*dto.ExamResponse, error) {
	session, err := s.load(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, domain.NewTransitionError(err)
	}
	if err := s.save(ctx, owner, session); err != nil {
		return nil, err
	}
	return s.view(session), nil
}

func (s *examService) load(ctx context.Context, owner domain.Owner, sessionID string) (*domain.ExamSession, error) {
	var session domain.ExamSession
	found, err := s.store.load(ctx, sessionKey(sessionID), owner, &session)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam session", err)
	}
	if !found {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	session.UseClock(s.now)
	return &session, nil
}

func (s *examService) save(ctx context.Context, owner domain.Owner, session *domain.ExamSession) error {
	if err := s.store.save(ctx, sessionKey(session.ID), owner, session); err != nil {
		return domain.NewInternalError("Failed to save exam session", err)
	}
	return nil
}

func (s *examService) view(session *domain.ExamSession) *dto.ExamResponse {
	resp := &dto.ExamResponse{
		State:         dto.ExamStateInProgress,
		SessionID:     session.ID,
		SubjectID:     session.SubjectID,
		PaperID:       session.PaperID,
		Total:         session.Total(),
		CurrentIndex:  session.CurrentIndex(),
		AnsweredCount: session.AnsweredCount(),
		IsLast:        session.IsLast(),
		Selection:     session.Selection(),
	}
	if resp.Selection == nil {
		resp.Selection = []string{}
	}

	if result := session.Result(); result != nil {
		resp.State = dto.ExamStateFinished
		resp.Result = toExamResultResponse(session, result)
		return resp
	}

	resp.Status = string(session.Status())
	q := session.CurrentQuestion()
	resp.Question = toQuestionResponse(q)
	if session.Status() != domain.StatusUnanswered {
		resp.CorrectAnswer = append([]string(nil), q.Answer...)
		resp.Explanation = q.Explanation
	}
	expiresAt := s.now().Add(s.store.ttl)
	resp.ExpiresAt = &expiresAt
	return resp
}

func toExamResultResponse(session *domain.ExamSession, result *domain.ExamResult) *dto.ExamResultResponse {
	wrong := make([]dto.WrongQuestionResponse, 0, len(result.WrongQuestions))
	for _, q := range result.WrongQuestions {
		userAnswer, _ := session.UserAnswer(q.ID)
		wrong = append(wrong, dto.WrongQuestionResponse{
			QuestionDetailResponse: toQuestionDetailResponse(q),
			UserAnswer:             userAnswer,
		})
	}
	return &dto.ExamResultResponse{
		Score:           result.Score,
		CorrectCount:    result.CorrectCount,
		Total:           result.Total,
		DurationSeconds: int64(result.Duration() / time.Second),
		WrongQuestions:  wrong,
		StartedAt:       result.StartedAt,
		FinishedAt:      result.FinishedAt,
	}
}

func toQuestionResponse(q *domain.Question) *dto.QuestionResponse {
	if q == nil {
		return nil
	}
	opts := q.DisplayOptions()
	options := make([]dto.OptionResponse, 0, len(opts))
	for _, o := range opts {
		options = append(options, dto.OptionResponse{Key: o.Key, Label: o.Label})
	}
	return &dto.QuestionResponse{
		ID:        q.ID,
		SubjectID: q.SubjectID,
		Type:      string(q.Type),
		Content:   q.Content,
		Options:   options,
	}
}

func toQuestionDetailResponse(q *domain.Question) dto.QuestionDetailResponse {
	return dto.QuestionDetailResponse{
		QuestionResponse: *toQuestionResponse(q),
		Answer:           append([]string(nil), q.Answer...),
		Explanation:      q.Explanation,
	}
}
