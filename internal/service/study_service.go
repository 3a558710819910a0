package service

import (
	"context"
	"time"

	"guide-exam/internal/domain"
	"guide-exam/internal/dto"
	"guide-exam/internal/logger"

	"go.uber.org/zap"
)

// StudyService keeps the per-day study log and the wrong-answer book in step
// with finished exam sessions.
type StudyService interface {
	RecordSession(ctx context.Context, userID string, session *domain.ExamSession, result *domain.ExamResult) error
	Day(ctx context.Context, userID, date string) (*dto.StudyDayResponse, error)
	Week(ctx context.Context, userID, date string) (*dto.StudyWeekResponse, error)
}

type studyService struct {
	studyRepo domain.StudyRecordRepository
	wrongRepo domain.WrongAnswerRepository
	txManager domain.TransactionManager
	location  *time.Location
}

// NewStudyService creates a StudyService. Days are cut in loc; nil means time.Local.
func NewStudyService(studyRepo domain.StudyRecordRepository, wrongRepo domain.WrongAnswerRepository, txManager domain.TransactionManager, loc *time.Location) StudyService {
	if loc == nil {
		loc = time.Local
	}
	return &studyService{
		studyRepo: studyRepo,
		wrongRepo: wrongRepo,
		txManager: txManager,
		location:  loc,
	}
}

// RecordSession adds the wrong questions to the book and the session to the
// study record of the day it finished, in one transaction.
func (s *studyService) RecordSession(ctx context.Context, userID string, session *domain.ExamSession, result *domain.ExamResult) error {
	finishedAt := result.FinishedAt.In(s.location)
	date := domain.DateKey(finishedAt)
	minutes := domain.SessionMinutes(result.Duration())

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, q := range result.WrongQuestions {
			selection, _ := session.UserAnswer(q.ID)
			entry := &domain.WrongAnswer{
				UserID:        userID,
				QuestionID:    q.ID,
				SubjectID:     q.SubjectID,
				LastSelection: selection,
				WrongCount:    1,
				LastWrongAt:   result.FinishedAt,
			}
			if err := s.wrongRepo.Upsert(txCtx, entry); err != nil {
				return err
			}
		}
		return s.studyRepo.AddToDay(txCtx, userID, date, minutes, result.Total, result.CorrectCount)
	})
	if err != nil {
		return domain.NewInternalError("Failed to record exam session", err)
	}

	logger.Get().Info("StudyService: session recorded",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("minutes", minutes),
		zap.Int("wrong", len(result.WrongQuestions)))
	return nil
}

// Day returns a zero record for days without practice.
func (s *studyService) Day(ctx context.Context, userID, date string) (*dto.StudyDayResponse, error) {
	record, err := s.studyRepo.GetDay(ctx, userID, date)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get study record", err)
	}
	if record == nil {
		record = &domain.StudyRecord{UserID: userID, Date: date}
	}
	resp := toStudyDayResponse(record)
	return &resp, nil
}

// Week covers date-3 .. date+3, filling days without practice with zeros.
func (s *studyService) Week(ctx context.Context, userID, date string) (*dto.StudyWeekResponse, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, s.location)
	if err != nil {
		return nil, domain.NewInvalidInputError("date must use the YYYY-MM-DD format")
	}
	keys := domain.WeekAround(day)

	records, err := s.studyRepo.ListRange(ctx, userID, keys[0], keys[len(keys)-1])
	if err != nil {
		return nil, domain.NewInternalError("Failed to list study records", err)
	}
	byDate := make(map[string]*domain.StudyRecord, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	resp := &dto.StudyWeekResponse{Days: make([]dto.StudyDayResponse, 0, len(keys))}
	for _, key := range keys {
		record, ok := byDate[key]
		if !ok {
			record = &domain.StudyRecord{UserID: userID, Date: key}
		}
		resp.Days = append(resp.Days, toStudyDayResponse(record))
		resp.TotalMinutes += record.Minutes
		resp.TotalAnswered += record.Answered
	}
	return resp, nil
}

func toStudyDayResponse(r *domain.StudyRecord) dto.StudyDayResponse {
	return dto.StudyDayResponse{
		Date:     r.Date,
		Minutes:  r.Minutes,
		Answered: r.Answered,
		Correct:  r.Correct,
		Accuracy: r.Accuracy(),
	}
}
