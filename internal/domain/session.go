package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// AnswerStatus is the derived state of the current question.
type AnswerStatus string

const (
	StatusUnanswered AnswerStatus = "unanswered"
	StatusCorrect    AnswerStatus = "correct"
	StatusIncorrect  AnswerStatus = "incorrect"
)

// Precondition failures of ExamSession. A failed call leaves the session untouched.
var (
	ErrNoQuestions      = errors.New("session has no questions")
	ErrSessionFinished  = errors.New("session is already finished")
	ErrAlreadySubmitted = errors.New("current question has already been submitted")
	ErrEmptySelection   = errors.New("select at least one option before submitting")
	ErrNotSubmitted     = errors.New("submit the current question before moving on")
	ErrNotLastQuestion  = errors.New("session can only finish from the last question")
	ErrInvalidOption    = errors.New("option does not belong to the current question")
)

// ExamResult is produced once, when the session finishes.
type ExamResult struct {
	Score          int         `json:"score"`
	CorrectCount   int         `json:"correct_count"`
	Total          int         `json:"total"`
	WrongQuestions []*Question `json:"wrong_questions"`
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     time.Time   `json:"finished_at"`
}

// Duration is the wall time between start and finish.
func (r *ExamResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ScorePercent returns round(100*correct/total), or 0 for an empty total.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// ExamSession drives one pass through an ordered question list.
//
// Per question it moves unanswered -> correct|incorrect on Submit, and Advance
// moves on to the next question's unanswered state. Advancing from the last
// answered question finishes the session, after which nothing can change.
type ExamSession struct {
	ID        string
	SubjectID string
	PaperID   *int64
	StartedAt time.Time

	questions    []*Question
	currentIndex int
	userAnswers  map[int64][]string
	selection    []string
	status       AnswerStatus
	wrong        []*Question
	finished     bool
	result       *ExamResult

	now func() time.Time
}

// NewExamSession builds a session over the questions of one subject, in source order.
// No match yields an empty session; callers check Empty before presenting it.
func NewExamSession(subjectID string, allQuestions []*Question) *ExamSession {
	s := newSession(FilterBySubject(allQuestions, subjectID))
	s.SubjectID = subjectID
	return s
}

// NewPaperSession builds a session over a pre-assembled mock exam paper.
func NewPaperSession(paperID int64, questions []*Question) *ExamSession {
	ordered := make([]*Question, len(questions))
	copy(ordered, questions)
	s := newSession(ordered)
	s.PaperID = &paperID
	return s
}

func newSession(questions []*Question) *ExamSession {
	return &ExamSession{
		StartedAt:   time.Now(),
		questions:   questions,
		userAnswers: make(map[int64][]string),
		status:      StatusUnanswered,
		now:         time.Now,
	}
}

// SetClock replaces the time source used for StartedAt and FinishedAt.
func (s *ExamSession) SetClock(now func() time.Time) {
	s.now = now
	s.StartedAt = now()
}

// UseClock replaces the time source without touching StartedAt, for restored sessions.
func (s *ExamSession) UseClock(now func() time.Time) {
	s.now = now
}

// Empty reports a session whose subject matched no questions.
func (s *ExamSession) Empty() bool { return len(s.questions) == 0 }

func (s *ExamSession) Total() int { return len(s.questions) }

func (s *ExamSession) CurrentIndex() int { return s.currentIndex }

func (s *ExamSession) Finished() bool { return s.finished }

func (s *ExamSession) Status() AnswerStatus { return s.status }

// IsLast reports whether the current question is the final one.
func (s *ExamSession) IsLast() bool {
	return !s.Empty() && s.currentIndex == len(s.questions)-1
}

// CurrentQuestion returns nil for empty or finished sessions.
func (s *ExamSession) CurrentQuestion() *Question {
	if s.Empty() || s.finished {
		return nil
	}
	return s.questions[s.currentIndex]
}

// Questions returns the session's question list.
func (s *ExamSession) Questions() []*Question {
	out := make([]*Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Selection returns the keys chosen for the current question, in selection order.
func (s *ExamSession) Selection() []string {
	return append([]string(nil), s.selection...)
}

// UserAnswer returns the submitted keys for a question id.
func (s *ExamSession) UserAnswer(questionID int64) ([]string, bool) {
	keys, ok := s.userAnswers[questionID]
	if !ok {
		return nil, false
	}
	return append([]string(nil), keys...), true
}

// AnsweredCount is the number of submitted questions.
func (s *ExamSession) AnsweredCount() int { return len(s.userAnswers) }

// WrongQuestions returns the questions answered incorrectly so far.
func (s *ExamSession) WrongQuestions() []*Question {
	out := make([]*Question, len(s.wrong))
	copy(out, s.wrong)
	return out
}

// Result is nil until the session finishes.
func (s *ExamSession) Result() *ExamResult { return s.result }

func (s *ExamSession) checkActive() error {
	if s.finished {
		return ErrSessionFinished
	}
	if s.Empty() {
		return ErrNoQuestions
	}
	return nil
}

// SelectOption picks key on the current question. Single-choice and true-false
// questions replace the selection; multi-choice toggles membership.
func (s *ExamSession) SelectOption(key string) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	if s.status != StatusUnanswered {
		return ErrAlreadySubmitted
	}
	q := s.questions[s.currentIndex]
	if !q.HasKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidOption, key)
	}

	if q.Type.SingleSelection() {
		s.selection = []string{key}
		return nil
	}
	for i, k := range s.selection {
		if k == key {
			s.selection = append(s.selection[:i:i], s.selection[i+1:]...)
			return nil
		}
	}
	s.selection = append(s.selection, key)
	return nil
}

// Submit checks the current selection against the answer.
func (s *ExamSession) Submit() (AnswerStatus, error) {
	if err := s.checkActive(); err != nil {
		return s.status, err
	}
	if s.status != StatusUnanswered {
		return s.status, ErrAlreadySubmitted
	}
	if len(s.selection) == 0 {
		return s.status, ErrEmptySelection
	}

	q := s.questions[s.currentIndex]
	submitted := append([]string(nil), s.selection...)
	s.userAnswers[q.ID] = submitted
	if q.IsCorrect(submitted) {
		s.status = StatusCorrect
	} else {
		s.status = StatusIncorrect
		s.wrong = append(s.wrong, q)
	}
	return s.status, nil
}

// Advance moves to the next question. From the last question it finishes the
// session and returns the result; otherwise the result is nil.
func (s *ExamSession) Advance() (*ExamResult, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}
	if s.status == StatusUnanswered {
		return nil, ErrNotSubmitted
	}
	if s.IsLast() {
		return s.Finish()
	}
	s.currentIndex++
	s.selection = nil
	s.status = StatusUnanswered
	return nil, nil
}

// Finish ends the session from the last, submitted question and scores it.
func (s *ExamSession) Finish() (*ExamResult, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}
	if !s.IsLast() {
		return nil, ErrNotLastQuestion
	}
	if s.status == StatusUnanswered {
		return nil, ErrNotSubmitted
	}

	correct := 0
	for _, q := range s.questions {
		if keys, ok := s.userAnswers[q.ID]; ok && q.IsCorrect(keys) {
			correct++
		}
	}
	s.finished = true
	s.result = &ExamResult{
		Score:          ScorePercent(correct, len(s.questions)),
		CorrectCount:   correct,
		Total:          len(s.questions),
		WrongQuestions: s.WrongQuestions(),
		StartedAt:      s.StartedAt,
		FinishedAt:     s.now(),
	}
	return s.result, nil
}

type sessionSnapshot struct {
	ID           string             `json:"id"`
	SubjectID    string             `json:"subject_id,omitempty"`
	PaperID      *int64             `json:"paper_id,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	Questions    []*Question        `json:"questions"`
	CurrentIndex int                `json:"current_index"`
	UserAnswers  map[int64][]string `json:"user_answers"`
	Selection    []string           `json:"selection,omitempty"`
	Status       AnswerStatus       `json:"status"`
	WrongIDs     []int64            `json:"wrong_ids,omitempty"`
	Finished     bool               `json:"finished"`
	Result       *ExamResult        `json:"result,omitempty"`
}

// MarshalJSON stores the full session state so it can be restored later.
func (s *ExamSession) MarshalJSON() ([]byte, error) {
	wrongIDs := make([]int64, 0, len(s.wrong))
	for _, q := range s.wrong {
		wrongIDs = append(wrongIDs, q.ID)
	}
	return json.Marshal(sessionSnapshot{
		ID:           s.ID,
		SubjectID:    s.SubjectID,
		PaperID:      s.PaperID,
		StartedAt:    s.StartedAt,
		Questions:    s.questions,
		CurrentIndex: s.currentIndex,
		UserAnswers:  s.userAnswers,
		Selection:    s.selection,
		Status:       s.status,
		WrongIDs:     wrongIDs,
		Finished:     s.finished,
		Result:       s.result,
	})
}

// UnmarshalJSON restores a session written by MarshalJSON.
func (s *ExamSession) UnmarshalJSON(data []byte) error {
	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	if len(snap.Questions) > 0 && (snap.CurrentIndex < 0 || snap.CurrentIndex >= len(snap.Questions)) {
		return fmt.Errorf("session snapshot: index %d out of range [0,%d)", snap.CurrentIndex, len(snap.Questions))
	}
	switch snap.Status {
	case StatusUnanswered, StatusCorrect, StatusIncorrect:
	default:
		return fmt.Errorf("session snapshot: unknown status %q", snap.Status)
	}

	byID := make(map[int64]*Question, len(snap.Questions))
	for _, q := range snap.Questions {
		byID[q.ID] = q
	}
	wrong := make([]*Question, 0, len(snap.WrongIDs))
	for _, id := range snap.WrongIDs {
		q, ok := byID[id]
		if !ok {
			return fmt.Errorf("session snapshot: wrong question %d is not in the session", id)
		}
		wrong = append(wrong, q)
	}
	if snap.UserAnswers == nil {
		snap.UserAnswers = make(map[int64][]string)
	}

	*s = ExamSession{
		ID:           snap.ID,
		SubjectID:    snap.SubjectID,
		PaperID:      snap.PaperID,
		StartedAt:    snap.StartedAt,
		questions:    snap.Questions,
		currentIndex: snap.CurrentIndex,
		userAnswers:  snap.UserAnswers,
		selection:    snap.Selection,
		status:       snap.Status,
		wrong:        wrong,
		finished:     snap.Finished,
		result:       snap.Result,
		now:          time.Now,
	}
	return nil
}
