package repository

import (
	"context"

	"guide-exam/internal/catalog"
	"guide-exam/internal/domain"
)

// QuestionCatalogAdapter serves the question bank straight from the embedded catalog.
// It is used when db.use_catalog is set, e.g. for local runs without seeded tables.
type QuestionCatalogAdapter struct {
	catalog *catalog.Catalog
}

func NewQuestionCatalogAdapter(c *catalog.Catalog) domain.QuestionRepository {
	return &QuestionCatalogAdapter{catalog: c}
}

func (a *QuestionCatalogAdapter) GetAllQuestions(ctx context.Context) ([]*domain.Question, error) {
	all := make([]*domain.Question, 0, len(a.catalog.Questions))
	for _, s := range a.catalog.Subjects {
		all = append(all, domain.FilterBySubject(a.catalog.Questions, s.ID)...)
	}
	return all, nil
}

func (a *QuestionCatalogAdapter) GetQuestionsBySubject(ctx context.Context, subjectID string) ([]*domain.Question, error) {
	return domain.FilterBySubject(a.catalog.Questions, subjectID), nil
}

func (a *QuestionCatalogAdapter) GetQuestionsByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error) {
	byID := make(map[int64]*domain.Question, len(a.catalog.Questions))
	for _, q := range a.catalog.Questions {
		byID[q.ID] = q
	}
	found := make([]*domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			found = append(found, q)
		}
	}
	return found, nil
}

func (a *QuestionCatalogAdapter) GetSubjects(ctx context.Context) ([]*domain.Subject, error) {
	return a.catalog.Subjects, nil
}

func (a *QuestionCatalogAdapter) GetPapers(ctx context.Context) ([]*domain.ExamPaper, error) {
	return a.catalog.Papers, nil
}

func (a *QuestionCatalogAdapter) GetPaperByID(ctx context.Context, id int64) (*domain.ExamPaper, error) {
	if p, ok := a.catalog.PaperByID(id); ok {
		return p, nil
	}
	return nil, nil
}
