package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guide-exam/internal/cache"
	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuestionBank serves the exam question bank with a read-through cache.
type QuestionBank interface {
	BySubject(ctx context.Context, subjectID string) ([]*domain.Question, error)
	All(ctx context.Context) ([]*domain.Question, error)
	ByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error)
	Subjects(ctx context.Context) ([]dto.SubjectResponse, error)
	Papers(ctx context.Context) ([]dto.PaperResponse, error)
	Paper(ctx context.Context, id int64) (*domain.ExamPaper, error)
}

type questionBank struct {
	repo  domain.QuestionRepository
	cache domain.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewQuestionBank creates a QuestionBank. cache may be nil, in which case every call hits the repository.
func NewQuestionBank(repo domain.QuestionRepository, cache domain.Cache, ttl time.Duration) QuestionBank {
	return &questionBank{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

func (b *questionBank) BySubject(ctx context.Context, subjectID string) ([]*domain.Question, error) {
	key := cache.GenerateCacheKey(cache.ServiceQuestion, cache.TypeSubject, subjectID)
	return b.load(ctx, key, func(ctx context.Context) ([]*domain.Question, error) {
		return b.repo.GetQuestionsBySubject(ctx, subjectID)
	})
}

func (b *questionBank) All(ctx context.Context) ([]*domain.Question, error) {
	key := cache.GenerateCacheKey(cache.ServiceQuestion, cache.TypeAll, "questions")
	return b.load(ctx, key, b.repo.GetAllQuestions)
}

func (b *questionBank) ByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}
	questions, err := b.repo.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questions", err)
	}
	return questions, nil
}

// load reads key from the cache and falls back to fetch. Concurrent misses on
// the same key share one fetch. Cache failures are logged and never fail the call.
func (b *questionBank) load(ctx context.Context, key string, fetch func(context.Context) ([]*domain.Question, error)) ([]*domain.Question, error) {
	if questions, ok := b.fromCache(ctx, key); ok {
		return questions, nil
	}

	// the fetch is shared, so one caller giving up must not fail the others
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := b.group.Do(key, func() (interface{}, error) {
		questions, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		b.toCache(fetchCtx, key, questions)
		return questions, nil
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questions", err)
	}
	if shared {
		logger.Get().Debug("QuestionBank: shared repository load", zap.String("key", key))
	}
	return v.([]*domain.Question), nil
}

func (b *questionBank) fromCache(ctx context.Context, key string) ([]*domain.Question, bool) {
	if b.cache == nil {
		return nil, false
	}
	raw, err := b.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("QuestionBank: cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var questions []*domain.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		logger.Get().Warn("QuestionBank: dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		_ = b.cache.Delete(ctx, key)
		return nil, false
	}
	return questions, true
}

func (b *questionBank) toCache(ctx context.Context, key string, questions []*domain.Question) {
	if b.cache == nil {
		return
	}
	data, err := json.Marshal(questions)
	if err != nil {
		logger.Get().Warn("QuestionBank: failed to marshal questions", zap.String("key", key), zap.Error(err))
		return
	}
	if err := b.cache.Set(ctx, key, string(data), b.ttl); err != nil {
		logger.Get().Warn("QuestionBank: cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Subjects lists subjects in catalog order with their question counts.
func (b *questionBank) Subjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := b.repo.GetSubjects(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get subjects", err)
	}
	all, err := b.All(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(subjects))
	for _, q := range all {
		counts[q.SubjectID]++
	}

	resp := make([]dto.SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		resp = append(resp, dto.SubjectResponse{
			ID:            s.ID,
			Name:          s.Name,
			QuestionCount: counts[s.ID],
		})
	}
	return resp, nil
}

// Papers lists the mock papers. A paper session draws on the whole bank, so
// SessionQuestionCount is the bank size rather than the paper's nominal count.
func (b *questionBank) Papers(ctx context.Context) ([]dto.PaperResponse, error) {
	papers, err := b.repo.GetPapers(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get exam papers", err)
	}
	all, err := b.All(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PaperResponse, 0, len(papers))
	for _, p := range papers {
		item := toPaperResponse(p)
		item.SessionQuestionCount = len(all)
		resp = append(resp, item)
	}
	return resp, nil
}

// Paper returns a not-found error for unknown ids.
func (b *questionBank) Paper(ctx context.Context, id int64) (*domain.ExamPaper, error) {
	paper, err := b.repo.GetPaperByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get exam paper", err)
	}
	if paper == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("Exam paper %d not found", id))
	}
	return paper, nil
}

func toPaperResponse(p *domain.ExamPaper) dto.PaperResponse {
	return dto.PaperResponse{
		ID:              p.ID,
		Title:           p.Title,
		Subject:         p.Subject,
		QuestionCount:   p.QuestionCount,
		DurationMinutes: p.DurationMinutes,
		Description:     p.Description,
	}
}
