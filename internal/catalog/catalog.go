// Package catalog holds the static exam content shipped with the service: the question
// bank, subjects, mock exam papers, interview regions and interview questions.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"guide-exam/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog is read-only after Load.
type Catalog struct {
	Subjects           []*domain.Subject
	Questions          []*domain.Question
	Papers             []*domain.ExamPaper
	Regions            []*domain.Region
	InterviewQuestions []*domain.InterviewQuestion
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, loading it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	return defaultCatalog, defaultErr
}

// Load decodes and validates the embedded data files.
func Load() (*Catalog, error) {
	c := &Catalog{}
	files := []struct {
		name string
		dest interface{}
	}{
		{"data/subjects.json", &c.Subjects},
		{"data/questions.json", &c.Questions},
		{"data/papers.json", &c.Papers},
		{"data/regions.json", &c.Regions},
		{"data/interview_questions.json", &c.InterviewQuestions},
	}
	for _, f := range files {
		raw, err := dataFS.ReadFile(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dest); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", f.name, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks cross references between the data files.
func (c *Catalog) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("catalog: no regions")
	}
	subjects := make(map[string]struct{}, len(c.Subjects))
	for _, s := range c.Subjects {
		subjects[s.ID] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(c.Questions))
	for _, q := range c.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		if _, ok := subjects[q.SubjectID]; !ok {
			return fmt.Errorf("catalog: question %d has unknown subject %q", q.ID, q.SubjectID)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("catalog: duplicate question id %d", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	regions := make(map[string]struct{}, len(c.Regions))
	for _, r := range c.Regions {
		regions[r.ID] = struct{}{}
	}
	for _, q := range c.InterviewQuestions {
		if !q.PracticeType.IsValid() {
			return fmt.Errorf("catalog: interview question %d has unknown practice type %q", q.ID, q.PracticeType)
		}
		if q.RegionID == "" {
			continue
		}
		if _, ok := regions[q.RegionID]; !ok {
			return fmt.Errorf("catalog: interview question %d has unknown region %q", q.ID, q.RegionID)
		}
	}
	return nil
}

// DefaultRegion is the first region of the list.
func (c *Catalog) DefaultRegion() *domain.Region {
	return c.Regions[0]
}

func (c *Catalog) RegionByID(id string) (*domain.Region, bool) {
	for _, r := range c.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// SubjectByID returns false for unknown subjects.
func (c *Catalog) SubjectByID(id string) (*domain.Subject, bool) {
	for _, s := range c.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

func (c *Catalog) PaperByID(id int64) (*domain.ExamPaper, bool) {
	for _, p := range c.Papers {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (c *Catalog) InterviewQuestionByID(id int64) (*domain.InterviewQuestion, bool) {
	for _, q := range c.InterviewQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return nil, false
}
