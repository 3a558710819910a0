package domain

// ExamRequest carries the parameters a client passes when opening an exam or a drill.
// Optional fields are pointers so an absent value is never confused with a zero value.
type ExamRequest struct {
	SubjectID    string
	PaperID      *int64
	PracticeType *InterviewPracticeType
	RegionID     *string
}

// IsPaper reports whether the request targets a mock exam paper.
func (r ExamRequest) IsPaper() bool {
	return r.PaperID != nil
}

// ResolvedSubject returns the subject to filter by, falling back to DefaultSubjectID.
func (r ExamRequest) ResolvedSubject() string {
	if r.SubjectID == "" {
		return DefaultSubjectID
	}
	return r.SubjectID
}
