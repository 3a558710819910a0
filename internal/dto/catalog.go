package dto

// SubjectResponse represents a subject in the API response
// @Description Subject information
type SubjectResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// PaperResponse represents a mock exam paper.
// QuestionCount and DurationMinutes describe the real exam format;
// SessionQuestionCount is how many questions a session started from the paper holds.
// @Description Mock exam paper
type PaperResponse struct {
	ID                   int64  `json:"id"`
	Title                string `json:"title"`
	Subject              string `json:"subject"`
	QuestionCount        int    `json:"question_count"`
	SessionQuestionCount int    `json:"session_question_count"`
	DurationMinutes      int    `json:"duration_minutes"`
	Description          string `json:"description"`
}

// RegionResponse represents a practice region
type RegionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RegionPreferenceRequest stores the selected region.
// @Description Request body for selecting a region
type RegionPreferenceRequest struct {
	RegionID string `json:"region_id" validate:"required,max=32"`
}

// RegionPreferenceResponse is the currently selected region.
type RegionPreferenceResponse struct {
	Region    RegionResponse `json:"region"`
	IsDefault bool           `json:"is_default"`
}
