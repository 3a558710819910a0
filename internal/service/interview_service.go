package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guide-exam/internal/cache"
	"guide-exam/internal/catalog"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"
	"guide-exam/internal/util"

	"go.uber.org/zap"
)

// InterviewService runs interview practice drills and scores free-text answers.
type InterviewService interface {
	StartDrill(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.DrillResponse, error)
	GetDrill(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error)
	NextQuestion(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error)
	Reveal(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error)
	Evaluate(ctx context.Context, questionID int64, answer string) (*dto.EvaluateAnswerResponse, error)
}

type interviewService struct {
	catalog     *catalog.Catalog
	store       *sessionStore
	preferences PreferenceService
	evaluator   domain.InterviewEvaluator
}

// NewInterviewService creates an InterviewService. evaluator may be nil when no LLM is configured.
func NewInterviewService(c *catalog.Catalog, cache domain.Cache, ttl time.Duration, preferences PreferenceService, evaluator domain.InterviewEvaluator) InterviewService {
	return &interviewService{
		catalog:     c,
		store:       &sessionStore{cache: cache, ttl: ttl},
		preferences: preferences,
		evaluator:   evaluator,
	}
}

func drillKey(id string) string {
	return cache.GenerateCacheKey(cache.ServiceInterview, cache.TypeDrill, id)
}

// StartDrill builds a drill for the requested practice type. Regional speech
// without an explicit region uses the owner's selected region.
func (s *interviewService) StartDrill(ctx context.Context, owner domain.Owner, req domain.ExamRequest) (*dto.DrillResponse, error) {
	if req.PracticeType == nil || !req.PracticeType.IsValid() {
		return nil, domain.NewInvalidInputError("A valid practice_type is required")
	}
	practiceType := *req.PracticeType

	regionID := ""
	if practiceType == domain.PracticeRegionalSpeech {
		if req.RegionID != nil && *req.RegionID != "" {
			if _, ok := s.catalog.RegionByID(*req.RegionID); !ok {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("Unknown region: %s", *req.RegionID))
			}
			regionID = *req.RegionID
		} else {
			pref, err := s.preferences.SelectedRegion(ctx, owner)
			if err != nil {
				return nil, err
			}
			regionID = pref.Region.ID
		}
	}

	drill := domain.NewInterviewDrill(practiceType, regionID, s.catalog.InterviewQuestions)
	if drill.Empty() {
		return toDrillResponse(drill), nil
	}

	drill.ID = util.NewULID()
	if err := s.save(ctx, owner, drill); err != nil {
		return nil, err
	}
	logger.Get().Info("InterviewService: drill started",
		zap.String("drill_id", drill.ID),
		zap.String("practice_type", string(practiceType)),
		zap.String("region_id", regionID),
		zap.Int("total", len(drill.Questions)))
	return toDrillResponse(drill), nil
}

func (s *interviewService) GetDrill(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	drill, err := s.load(ctx, owner, drillID)
	if err != nil {
		return nil, err
	}
	return toDrillResponse(drill), nil
}

func (s *interviewService) NextQuestion(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	return s.mutate(ctx, owner, drillID, (*domain.InterviewDrill).Next)
}

func (s *interviewService) Reveal(ctx context.Context, owner domain.Owner, drillID string) (*dto.DrillResponse, error) {
	return s.mutate(ctx, owner, drillID, (*domain.InterviewDrill).Reveal)
}

// Evaluate asks the LLM to compare answer with the question's reference answer.
func (s *interviewService) Evaluate(ctx context.Context, questionID int64, answer string) (*dto.EvaluateAnswerResponse, error) {
	question, ok := s.catalog.InterviewQuestionByID(questionID)
	if !ok {
		return nil, domain.NewNotFoundError(fmt.Sprintf("Interview question %d not found", questionID))
	}
	if s.evaluator == nil {
		return nil, domain.NewLLMServiceError(fmt.Errorf("answer evaluation is not enabled"))
	}

	feedback, err := s.evaluator.Evaluate(ctx, question, answer)
	if err != nil {
		logger.Get().Error("InterviewService: evaluation failed", zap.Int64("question_id", questionID), zap.Error(err))
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewLLMServiceError(err)
	}

	return &dto.EvaluateAnswerResponse{
		QuestionID:      question.ID,
		Score:           feedback.Score,
		Feedback:        feedback.Feedback,
		KeyPoints:       feedback.KeyPoints,
		MissedPoints:    feedback.MissedPoints,
		ReferenceAnswer: question.Explanation,
	}, nil
}

func (s *interviewService) mutate(ctx context.Context, owner domain.Owner, drillID string, fn func(*domain.InterviewDrill) error) (*dto.DrillResponse, error) {
	drill, err := s.load(ctx, owner, drillID)
	if err != nil {
		return nil, err
	}
	if err := fn(drill); err != nil {
		return nil, domain.NewTransitionError(err)
	}
	if err := s.save(ctx, owner, drill); err != nil {
		return nil, err
	}
	return toDrillResponse(drill), nil
}

func (s *interviewService) load(ctx context.Context, owner domain.Owner, drillID string) (*domain.InterviewDrill, error) {
	var drill domain.InterviewDrill
	found, err := s.store.load(ctx, drillKey(drillID), owner, &drill)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load interview drill", err)
	}
	if !found {
		return nil, domain.NewSessionNotFoundError(drillID)
	}
	if err := drill.Validate(); err != nil {
		return nil, domain.NewInternalError("Stored interview drill is invalid", err)
	}
	return &drill, nil
}

func (s *interviewService) save(ctx context.Context, owner domain.Owner, drill *domain.InterviewDrill) error {
	if err := s.store.save(ctx, drillKey(drill.ID), owner, drill); err != nil {
		return domain.NewInternalError("Failed to save interview drill", err)
	}
	return nil
}

func toDrillResponse(d *domain.InterviewDrill) *dto.DrillResponse {
	resp := &dto.DrillResponse{
		State:            dto.ExamStateInProgress,
		DrillID:          d.ID,
		PracticeType:     string(d.PracticeType),
		PracticeTypeName: d.PracticeType.DisplayName(),
		RegionID:         d.RegionID,
		Total:            len(d.Questions),
		CurrentIndex:     d.CurrentIndex,
		ShowExplanation:  d.ShowExplanation,
	}
	q := d.Current()
	if q == nil {
		resp.State = dto.ExamStateNoContent
		return resp
	}
	resp.Question = &dto.InterviewQuestionResponse{ID: q.ID, Content: q.Content}
	if d.ShowExplanation {
		resp.Question.Explanation = q.Explanation
	}
	return resp
}
