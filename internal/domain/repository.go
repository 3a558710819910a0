package domain

import "context"

// QuestionRepository reads the exam question bank.
type QuestionRepository interface {
	GetAllQuestions(ctx context.Context) ([]*Question, error)
	GetQuestionsBySubject(ctx context.Context, subjectID string) ([]*Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []int64) ([]*Question, error)
	GetSubjects(ctx context.Context) ([]*Subject, error)
	GetPapers(ctx context.Context) ([]*ExamPaper, error)
	GetPaperByID(ctx context.Context, id int64) (*ExamPaper, error)
}

// WrongAnswerRepository persists wrong-answer book entries.
type WrongAnswerRepository interface {
	// Upsert increments WrongCount for an existing entry or inserts a new one.
	Upsert(ctx context.Context, entry *WrongAnswer) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*WrongAnswer, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID string, questionID int64) error
}

// StudyRecordRepository persists per-day study records.
type StudyRecordRepository interface {
	// AddToDay folds minutes/answered/correct into the user's record for date.
	AddToDay(ctx context.Context, userID, date string, minutes, answered, correct int) error
	GetDay(ctx context.Context, userID, date string) (*StudyRecord, error)
	ListRange(ctx context.Context, userID, from, to string) ([]*StudyRecord, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
