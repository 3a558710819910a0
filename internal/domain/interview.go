package domain

import "fmt"

// Region is a selectable area for regional interview practice.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InterviewPracticeType groups interview questions by practice mode.
type InterviewPracticeType string

const (
	PracticeRegionalSpeech   InterviewPracticeType = "regional_speech"
	PracticeContingency      InterviewPracticeType = "contingency"
	PracticeComprehensive    InterviewPracticeType = "comprehensive"
	PracticeServiceStandards InterviewPracticeType = "service_standards"
)

var practiceTypeNames = map[InterviewPracticeType]string{
	PracticeRegionalSpeech:   "地区导游词",
	PracticeContingency:      "应变能力问答",
	PracticeComprehensive:    "综合知识问答",
	PracticeServiceStandards: "导游服务规范问答",
}

func (t InterviewPracticeType) IsValid() bool {
	_, ok := practiceTypeNames[t]
	return ok
}

// DisplayName returns the label shown to candidates.
func (t InterviewPracticeType) DisplayName() string {
	if name, ok := practiceTypeNames[t]; ok {
		return name
	}
	return string(t)
}

// InterviewQuestion is an open question with a reference answer.
type InterviewQuestion struct {
	ID           int64                 `json:"id"`
	Content      string                `json:"content"`
	Explanation  string                `json:"explanation"`
	PracticeType InterviewPracticeType `json:"practice_type"`
	RegionID     string                `json:"region_id,omitempty"`
}

// FilterInterviewQuestions selects the questions for a drill. Regional speech with a
// region matches on both fields; everything else takes the practice type's
// region-independent questions.
func FilterInterviewQuestions(all []*InterviewQuestion, practiceType InterviewPracticeType, regionID string) []*InterviewQuestion {
	filtered := make([]*InterviewQuestion, 0)
	for _, q := range all {
		if q.PracticeType != practiceType {
			continue
		}
		if practiceType == PracticeRegionalSpeech && regionID != "" {
			if q.RegionID == regionID {
				filtered = append(filtered, q)
			}
			continue
		}
		if q.RegionID == "" {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// InterviewDrill cycles through a fixed list of interview questions.
type InterviewDrill struct {
	ID              string                `json:"id"`
	PracticeType    InterviewPracticeType `json:"practice_type"`
	RegionID        string                `json:"region_id,omitempty"`
	Questions       []*InterviewQuestion  `json:"questions"`
	CurrentIndex    int                   `json:"current_index"`
	ShowExplanation bool                  `json:"show_explanation"`
}

// NewInterviewDrill filters all by practice type and region.
func NewInterviewDrill(practiceType InterviewPracticeType, regionID string, all []*InterviewQuestion) *InterviewDrill {
	return &InterviewDrill{
		PracticeType: practiceType,
		RegionID:     regionID,
		Questions:    FilterInterviewQuestions(all, practiceType, regionID),
	}
}

func (d *InterviewDrill) Empty() bool {
	return len(d.Questions) == 0
}

// Current returns nil for an empty drill.
func (d *InterviewDrill) Current() *InterviewQuestion {
	if d.Empty() {
		return nil
	}
	return d.Questions[d.CurrentIndex]
}

// Next hides the explanation and moves on, wrapping to the first question.
func (d *InterviewDrill) Next() error {
	if d.Empty() {
		return ErrNoQuestions
	}
	d.ShowExplanation = false
	d.CurrentIndex = (d.CurrentIndex + 1) % len(d.Questions)
	return nil
}

// Reveal shows the reference answer of the current question.
func (d *InterviewDrill) Reveal() error {
	if d.Empty() {
		return ErrNoQuestions
	}
	d.ShowExplanation = true
	return nil
}

// Validate checks a drill restored from storage.
func (d *InterviewDrill) Validate() error {
	if !d.PracticeType.IsValid() {
		return fmt.Errorf("drill %s: unknown practice type %q", d.ID, d.PracticeType)
	}
	if !d.Empty() && (d.CurrentIndex < 0 || d.CurrentIndex >= len(d.Questions)) {
		return fmt.Errorf("drill %s: index %d out of range [0,%d)", d.ID, d.CurrentIndex, len(d.Questions))
	}
	return nil
}
