package service

import (
	"context"
	"errors"
	"fmt"

	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserService defines the interface for user-related operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	GetWrongAnswers(ctx context.Context, userID string, pagination dto.Pagination) (*dto.WrongAnswersResponse, error)
	CountWrongAnswers(ctx context.Context, userID string) (int, error)
	RemoveWrongAnswer(ctx context.Context, userID string, questionID int64) error
}

type userServiceImpl struct {
	userRepo  domain.UserRepository
	wrongRepo domain.WrongAnswerRepository
	bank      QuestionBank
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository, wrongRepo domain.WrongAnswerRepository, bank QuestionBank) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		wrongRepo: wrongRepo,
		bank:      bank,
	}
}

// GetUserProfile retrieves a user's profile information.
func (s *userServiceImpl) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("User %s not found", userID))
	}
	return toUserProfileResponse(user), nil
}

// GetWrongAnswers pages through the wrong-answer book, newest mistakes first,
// with every entry joined to its question.
func (s *userServiceImpl) GetWrongAnswers(ctx context.Context, userID string, pagination dto.Pagination) (*dto.WrongAnswersResponse, error) {
	limit := pagination.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := pagination.Offset
	if offset < 0 {
		offset = 0
	}

	total, err := s.wrongRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to count wrong answers", err)
	}
	entries, err := s.wrongRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list wrong answers", err)
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.QuestionID)
	}
	questions, err := s.bank.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	items := make([]dto.WrongAnswerItem, 0, len(entries))
	for _, e := range entries {
		q, ok := byID[e.QuestionID]
		if !ok {
			// the question was removed from the bank after the mistake was recorded
			logger.Get().Warn("UserService: wrong answer refers to unknown question",
				zap.String("user_id", userID),
				zap.Int64("question_id", e.QuestionID))
			continue
		}
		items = append(items, dto.WrongAnswerItem{
			Question:      toQuestionDetailResponse(q),
			LastSelection: e.LastSelection,
			WrongCount:    e.WrongCount,
			LastWrongAt:   e.LastWrongAt,
		})
	}

	return &dto.WrongAnswersResponse{
		Items:          items,
		PaginationInfo: dto.NewPaginationInfo(int64(total), limit, offset),
	}, nil
}

func (s *userServiceImpl) CountWrongAnswers(ctx context.Context, userID string) (int, error) {
	count, err := s.wrongRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, domain.NewInternalError("Failed to count wrong answers", err)
	}
	return count, nil
}

// RemoveWrongAnswer drops a mastered question from the book.
func (s *userServiceImpl) RemoveWrongAnswer(ctx context.Context, userID string, questionID int64) error {
	if err := s.wrongRepo.Delete(ctx, userID, questionID); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return domain.NewInternalError("Failed to remove wrong answer", err)
	}
	logger.Get().Info("UserService: wrong answer removed", zap.String("user_id", userID), zap.Int64("question_id", questionID))
	return nil
}

func toUserProfileResponse(u *domain.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
