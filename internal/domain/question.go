package domain

import (
	"fmt"
	"strings"
)

// QuestionType is the answering mode of a question.
type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	TrueFalse    QuestionType = "true-false"
)

// Fixed keys of a true-false question.
const (
	KeyTrue  = "T"
	KeyFalse = "F"
)

// IsValid reports whether t is a known question type.
func (t QuestionType) IsValid() bool {
	switch t {
	case SingleChoice, MultiChoice, TrueFalse:
		return true
	}
	return false
}

// SingleSelection reports whether at most one key may be selected at a time.
func (t QuestionType) SingleSelection() bool {
	return t == SingleChoice || t == TrueFalse
}

// Option is one selectable answer choice.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// trueFalseOptions are the implicit options of a true-false question.
var trueFalseOptions = []Option{
	{Key: KeyTrue, Label: "正确"},
	{Key: KeyFalse, Label: "错误"},
}

// Question represents a single exam question
type Question struct {
	ID          int64        `json:"id"`
	SubjectID   string       `json:"subject_id"`
	Type        QuestionType `json:"type"`
	Content     string       `json:"content"`
	Options     []Option     `json:"options,omitempty"`
	Answer      []string     `json:"answer"`
	Explanation string       `json:"explanation"`
}

// DisplayOptions returns the options to render, including the fixed T/F pair.
func (q *Question) DisplayOptions() []Option {
	if q.Type == TrueFalse {
		return trueFalseOptions
	}
	return q.Options
}

// HasKey reports whether key belongs to the question's key space.
func (q *Question) HasKey(key string) bool {
	for _, opt := range q.DisplayOptions() {
		if opt.Key == key {
			return true
		}
	}
	return false
}

// IsCorrect compares a selection with the answer as sets.
func (q *Question) IsCorrect(selection []string) bool {
	return SameKeys(selection, q.Answer)
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.ID == 0 {
		return fmt.Errorf("question id is required")
	}
	if strings.TrimSpace(q.SubjectID) == "" {
		return fmt.Errorf("question %d: subject is required", q.ID)
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("question %d: unknown type %q", q.ID, q.Type)
	}
	if strings.TrimSpace(q.Content) == "" {
		return fmt.Errorf("question %d: content is required", q.ID)
	}
	if q.Type != TrueFalse {
		if len(q.Options) == 0 {
			return fmt.Errorf("question %d: options are required", q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if opt.Key == "" {
				return fmt.Errorf("question %d: option key is empty", q.ID)
			}
			if _, dup := seen[opt.Key]; dup {
				return fmt.Errorf("question %d: duplicate option key %q", q.ID, opt.Key)
			}
			seen[opt.Key] = struct{}{}
		}
	}
	if len(q.Answer) == 0 {
		return fmt.Errorf("question %d: answer is required", q.ID)
	}
	if q.Type.SingleSelection() && len(q.Answer) != 1 {
		return fmt.Errorf("question %d: %s takes exactly one answer key, got %d", q.ID, q.Type, len(q.Answer))
	}
	for _, key := range q.Answer {
		if !q.HasKey(key) {
			return fmt.Errorf("question %d: answer key %q is not an option", q.ID, key)
		}
	}
	if len(normalizeKeys(q.Answer)) != len(q.Answer) {
		return fmt.Errorf("question %d: answer has duplicate keys", q.ID)
	}
	return nil
}

// FilterBySubject keeps the questions of one subject in source order.
func FilterBySubject(questions []*Question, subjectID string) []*Question {
	filtered := make([]*Question, 0)
	for _, q := range questions {
		if q.SubjectID == subjectID {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// SameKeys reports whether a and b hold the same keys, ignoring order.
func SameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, k := range a {
		counts[k]++
	}
	for _, k := range b {
		counts[k]--
		if counts[k] < 0 {
			return false
		}
	}
	return true
}

func normalizeKeys(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Subject is a top-level exam category.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExamPaper is a full mock exam paper.
type ExamPaper struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Subject         string `json:"subject"`
	QuestionCount   int    `json:"question_count"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
}

// DefaultSubjectID is used when an exam request names neither a subject nor a paper.
const DefaultSubjectID = "fagui"
