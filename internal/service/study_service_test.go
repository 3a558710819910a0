package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"guide-exam/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func finishedSession(t *testing.T, start time.Time, took time.Duration, picks map[int64][]string) (*domain.ExamSession, *domain.ExamResult) {
	t.Helper()
	now := start
	s := domain.NewExamSession("fagui", faguiQuestions())
	s.SetClock(func() time.Time { return now })
	for {
		q := s.CurrentQuestion()
		keys, ok := picks[q.ID]
		if !ok {
			keys = q.Answer
		}
		for _, k := range keys {
			require.NoError(t, s.SelectOption(k))
		}
		_, err := s.Submit()
		require.NoError(t, err)
		if s.IsLast() {
			now = start.Add(took)
		}
		result, err := s.Advance()
		require.NoError(t, err)
		if result != nil {
			return s, result
		}
	}
}

func TestStudyService_RecordSession(t *testing.T) {
	studyRepo := new(MockStudyRecordRepository)
	wrongRepo := new(MockWrongAnswerRepository)
	svc := NewStudyService(studyRepo, wrongRepo, &MockTransactionManager{}, time.UTC)

	start := time.Date(2024, 5, 1, 23, 50, 0, 0, time.UTC)
	session, result := finishedSession(t, start, 12*time.Minute+40*time.Second, map[int64][]string{103: {domain.KeyTrue}})

	wrongRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.WrongAnswer) bool {
		return e.UserID == "user-1" && e.QuestionID == 103 && e.SubjectID == "fagui" &&
			assert.ObjectsAreEqual([]string{domain.KeyTrue}, e.LastSelection) && e.WrongCount == 1
	})).Return(nil).Once()
	// finished after midnight, so the session counts for the next day
	studyRepo.On("AddToDay", mock.Anything, "user-1", "2024-05-02", 13, 5, 4).Return(nil).Once()

	err := svc.RecordSession(context.Background(), "user-1", session, result)
	require.NoError(t, err)
	wrongRepo.AssertExpectations(t)
	studyRepo.AssertExpectations(t)
}

func TestStudyService_RecordSession_Failure(t *testing.T) {
	studyRepo := new(MockStudyRecordRepository)
	wrongRepo := new(MockWrongAnswerRepository)
	svc := NewStudyService(studyRepo, wrongRepo, &MockTransactionManager{}, time.UTC)

	session, result := finishedSession(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), time.Minute, map[int64][]string{101: {"B"}})
	wrongRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	err := svc.RecordSession(context.Background(), "user-1", session, result)
	assertCode(t, err, domain.CodeInternal)
	studyRepo.AssertNotCalled(t, "AddToDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStudyService_Day(t *testing.T) {
	studyRepo := new(MockStudyRecordRepository)
	svc := NewStudyService(studyRepo, nil, &MockTransactionManager{}, time.UTC)
	ctx := context.Background()

	studyRepo.On("GetDay", mock.Anything, "user-1", "2024-05-01").Return(&domain.StudyRecord{
		UserID: "user-1", Date: "2024-05-01", Minutes: 45, Answered: 20, Correct: 18,
	}, nil)
	studyRepo.On("GetDay", mock.Anything, "user-1", "2024-05-02").Return(nil, nil)

	day, err := svc.Day(ctx, "user-1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 90, day.Accuracy)
	assert.Equal(t, 45, day.Minutes)

	empty, err := svc.Day(ctx, "user-1", "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", empty.Date)
	assert.Equal(t, 0, empty.Accuracy)
}

func TestStudyService_Week(t *testing.T) {
	studyRepo := new(MockStudyRecordRepository)
	svc := NewStudyService(studyRepo, nil, &MockTransactionManager{}, time.UTC)

	studyRepo.On("ListRange", mock.Anything, "user-1", "2024-02-27", "2024-03-04").Return([]*domain.StudyRecord{
		{Date: "2024-02-28", Minutes: 30, Answered: 10, Correct: 7},
		{Date: "2024-03-02", Minutes: 15, Answered: 5, Correct: 5},
	}, nil)

	week, err := svc.Week(context.Background(), "user-1", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "2024-02-27", week.Days[0].Date)
	assert.Equal(t, "2024-02-29", week.Days[2].Date)
	assert.Equal(t, "2024-03-04", week.Days[6].Date)
	assert.Equal(t, 70, week.Days[1].Accuracy)
	assert.Equal(t, 0, week.Days[3].Minutes)
	assert.Equal(t, 45, week.TotalMinutes)
	assert.Equal(t, 15, week.TotalAnswered)

	_, err = svc.Week(context.Background(), "user-1", "March 1st")
	assertCode(t, err, domain.CodeInvalidInput)
}
