package dto

import "time"

// Exam view states.
const (
	ExamStateInProgress = "in_progress"
	ExamStateFinished   = "finished"
	ExamStateNoContent  = "no_content"
)

// StartExamRequest opens a session for a subject or a mock exam paper.
// @Description Request body for starting an exam session
type StartExamRequest struct {
	SubjectID string `json:"subject_id" validate:"omitempty,max=32,alphanum"`
	PaperID   *int64 `json:"paper_id" validate:"omitempty,min=1"`
}

// SelectOptionRequest picks or toggles one option key on the current question.
// @Description Request body for selecting an option
type SelectOptionRequest struct {
	Key string `json:"key" validate:"required,max=8"`
}

// OptionResponse is one selectable answer choice.
type OptionResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// QuestionResponse is a question as shown while it is being answered.
// The answer is never part of it.
type QuestionResponse struct {
	ID        int64            `json:"id"`
	SubjectID string           `json:"subject_id"`
	Type      string           `json:"type"`
	Content   string           `json:"content"`
	Options   []OptionResponse `json:"options"`
}

// QuestionDetailResponse is a question together with its answer and explanation.
type QuestionDetailResponse struct {
	QuestionResponse
	Answer      []string `json:"answer"`
	Explanation string   `json:"explanation"`
}

// WrongQuestionResponse is a wrongly answered question of a finished session.
type WrongQuestionResponse struct {
	QuestionDetailResponse
	UserAnswer []string `json:"user_answer"`
}

// ExamResultResponse is the score sheet of a finished session.
// @Description Exam result
type ExamResultResponse struct {
	Score           int                     `json:"score"`
	CorrectCount    int                     `json:"correct_count"`
	Total           int                     `json:"total"`
	DurationSeconds int64                   `json:"duration_seconds"`
	WrongQuestions  []WrongQuestionResponse `json:"wrong_questions"`
	StartedAt       time.Time               `json:"started_at"`
	FinishedAt      time.Time               `json:"finished_at"`
}

// ExamResponse is the client view of a session after every call.
// @Description Exam session view
type ExamResponse struct {
	State         string              `json:"state"`
	SessionID     string              `json:"session_id,omitempty"`
	SubjectID     string              `json:"subject_id,omitempty"`
	PaperID       *int64              `json:"paper_id,omitempty"`
	Total         int                 `json:"total"`
	CurrentIndex  int                 `json:"current_index"`
	AnsweredCount int                 `json:"answered_count"`
	IsLast        bool                `json:"is_last"`
	Status        string              `json:"status,omitempty"`
	Question      *QuestionResponse   `json:"question,omitempty"`
	Selection     []string            `json:"selection"`
	CorrectAnswer []string            `json:"correct_answer,omitempty"`
	Explanation   string              `json:"explanation,omitempty"`
	Result        *ExamResultResponse `json:"result,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
}
