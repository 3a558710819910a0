package dto

// StartDrillRequest opens an interview practice drill.
// @Description Request body for starting an interview drill
type StartDrillRequest struct {
	PracticeType string  `json:"practice_type" validate:"required,oneof=regional_speech contingency comprehensive service_standards"`
	RegionID     *string `json:"region_id,omitempty" validate:"omitempty,max=32"`
}

// InterviewQuestionResponse is the current drill question. Explanation is only set once revealed.
type InterviewQuestionResponse struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	Explanation string `json:"explanation,omitempty"`
}

// DrillResponse is the client view of an interview drill.
// @Description Interview drill view
type DrillResponse struct {
	State            string                     `json:"state"`
	DrillID          string                     `json:"drill_id,omitempty"`
	PracticeType     string                     `json:"practice_type"`
	PracticeTypeName string                     `json:"practice_type_name"`
	RegionID         string                     `json:"region_id,omitempty"`
	Total            int                        `json:"total"`
	CurrentIndex     int                        `json:"current_index"`
	ShowExplanation  bool                       `json:"show_explanation"`
	Question         *InterviewQuestionResponse `json:"question,omitempty"`
}

// EvaluateAnswerRequest asks for feedback on a spoken/typed interview answer.
// @Description Request body for evaluating an interview answer
type EvaluateAnswerRequest struct {
	QuestionID int64  `json:"question_id" validate:"required,min=1"`
	Answer     string `json:"answer" validate:"required,max=4000"`
}

// EvaluateAnswerResponse represents the evaluation result in the API response
type EvaluateAnswerResponse struct {
	QuestionID      int64    `json:"question_id"`
	Score           float64  `json:"score"` // 0.0 ~ 1.0
	Feedback        string   `json:"feedback"`
	KeyPoints       []string `json:"key_points"`
	MissedPoints    []string `json:"missed_points,omitempty"`
	ReferenceAnswer string   `json:"reference_answer"`
}
