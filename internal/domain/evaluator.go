package domain

import "context"

// InterviewFeedback is the evaluation of a free-text interview answer.
type InterviewFeedback struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	KeyPoints    []string `json:"key_points"`
	MissedPoints []string `json:"missed_points,omitempty"`
}

// InterviewEvaluator scores an answer against the question's reference explanation.
type InterviewEvaluator interface {
	Evaluate(ctx context.Context, question *InterviewQuestion, answer string) (*InterviewFeedback, error)
}
