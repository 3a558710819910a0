package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guide-exam/internal/domain"
	"guide-exam/internal/repository/models"
	"guide-exam/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `q.id "id",
		q.subject_id "subject_id",
		q.question_type "question_type",
		q.content "content",
		q.options "options",
		q.answer "answer",
		q.explanation "explanation",
		q.sort_order "sort_order"`

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx
type QuestionDatabaseAdapter struct {
	db DBTX
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db DBTX) *QuestionDatabaseAdapter {
	return &QuestionDatabaseAdapter{db: db}
}

var _ domain.QuestionRepository = (*QuestionDatabaseAdapter)(nil)

// GetAllQuestions returns the bank ordered by subject, then by position within the subject.
func (a *QuestionDatabaseAdapter) GetAllQuestions(ctx context.Context) ([]*domain.Question, error) {
	query := `SELECT ` + questionColumns + `
	FROM questions q
	JOIN subjects s ON s.id = q.subject_id
	ORDER BY s.sort_order, q.sort_order, q.id`

	var rows []models.Question
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return toDomainQuestions(rows)
}

func (a *QuestionDatabaseAdapter) GetQuestionsBySubject(ctx context.Context, subjectID string) ([]*domain.Question, error) {
	db := GetExecutor(ctx, a.db)
	query := db.Rebind(`SELECT ` + questionColumns + `
	FROM questions q
	WHERE q.subject_id = ?
	ORDER BY q.sort_order, q.id`)

	var rows []models.Question
	if err := db.SelectContext(ctx, &rows, query, subjectID); err != nil {
		return nil, fmt.Errorf("failed to get questions for subject %s: %w", subjectID, err)
	}
	return toDomainQuestions(rows)
}

// GetQuestionsByIDs returns the found questions in the order of ids. Unknown ids are skipped.
func (a *QuestionDatabaseAdapter) GetQuestionsByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}
	db := GetExecutor(ctx, a.db)
	query, args, err := sqlx.In(`SELECT `+questionColumns+`
	FROM questions q
	WHERE q.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build question id query: %w", err)
	}

	var rows []models.Question
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	found, err := toDomainQuestions(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ordered := make([]*domain.Question, 0, len(found))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (a *QuestionDatabaseAdapter) GetSubjects(ctx context.Context) ([]*domain.Subject, error) {
	query := `SELECT id "id", name "name", sort_order "sort_order" FROM subjects ORDER BY sort_order, id`

	var rows []models.Subject
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get subjects: %w", err)
	}
	subjects := make([]*domain.Subject, len(rows))
	for i, row := range rows {
		subjects[i] = &domain.Subject{ID: row.ID, Name: row.Name}
	}
	return subjects, nil
}

const paperColumns = `id "id",
		title "title",
		subject "subject",
		question_count "question_count",
		duration_minutes "duration_minutes",
		description "description"`

func (a *QuestionDatabaseAdapter) GetPapers(ctx context.Context) ([]*domain.ExamPaper, error) {
	query := `SELECT ` + paperColumns + ` FROM exam_papers ORDER BY id`

	var rows []models.ExamPaper
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get exam papers: %w", err)
	}
	papers := make([]*domain.ExamPaper, len(rows))
	for i := range rows {
		papers[i] = toDomainPaper(&rows[i])
	}
	return papers, nil
}

// GetPaperByID returns nil, nil when the paper does not exist.
func (a *QuestionDatabaseAdapter) GetPaperByID(ctx context.Context, id int64) (*domain.ExamPaper, error) {
	db := GetExecutor(ctx, a.db)
	query := db.Rebind(`SELECT ` + paperColumns + ` FROM exam_papers WHERE id = ?`)

	var row models.ExamPaper
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam paper %d: %w", id, err)
	}
	return toDomainPaper(&row), nil
}

// SaveSubject inserts or updates a subject.
func (a *QuestionDatabaseAdapter) SaveSubject(ctx context.Context, subject *domain.Subject, sortOrder int) error {
	db := GetExecutor(ctx, a.db)
	exists, err := rowExists(ctx, db, `SELECT COUNT(*) FROM subjects WHERE id = ?`, subject.ID)
	if err != nil {
		return fmt.Errorf("failed to check subject %s: %w", subject.ID, err)
	}
	if exists {
		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE subjects SET name = ?, sort_order = ? WHERE id = ?`),
			subject.Name, sortOrder, subject.ID)
	} else {
		_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO subjects (id, name, sort_order) VALUES (?, ?, ?)`),
			subject.ID, subject.Name, sortOrder)
	}
	if err != nil {
		return fmt.Errorf("failed to save subject %s: %w", subject.ID, err)
	}
	return nil
}

// SaveQuestion inserts or updates a question after validating it.
func (a *QuestionDatabaseAdapter) SaveQuestion(ctx context.Context, question *domain.Question, sortOrder int) error {
	if err := question.Validate(); err != nil {
		return err
	}
	m := fromDomainQuestion(question, sortOrder)
	db := GetExecutor(ctx, a.db)

	exists, err := rowExists(ctx, db, `SELECT COUNT(*) FROM questions WHERE id = ?`, m.ID)
	if err != nil {
		return fmt.Errorf("failed to check question %d: %w", m.ID, err)
	}
	if exists {
		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE questions
		SET subject_id = ?, question_type = ?, content = ?, options = ?, answer = ?, explanation = ?, sort_order = ?
		WHERE id = ?`),
			m.SubjectID, m.QuestionType, m.Content, m.Options, m.Answer, m.Explanation, m.SortOrder, m.ID)
	} else {
		_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO questions (
			id, subject_id, question_type, content, options, answer, explanation, sort_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			m.ID, m.SubjectID, m.QuestionType, m.Content, m.Options, m.Answer, m.Explanation, m.SortOrder)
	}
	if err != nil {
		return fmt.Errorf("failed to save question %d: %w", m.ID, err)
	}
	return nil
}

// SavePaper inserts or updates an exam paper.
func (a *QuestionDatabaseAdapter) SavePaper(ctx context.Context, paper *domain.ExamPaper) error {
	db := GetExecutor(ctx, a.db)
	exists, err := rowExists(ctx, db, `SELECT COUNT(*) FROM exam_papers WHERE id = ?`, paper.ID)
	if err != nil {
		return fmt.Errorf("failed to check exam paper %d: %w", paper.ID, err)
	}
	if exists {
		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE exam_papers
		SET title = ?, subject = ?, question_count = ?, duration_minutes = ?, description = ?
		WHERE id = ?`),
			paper.Title, paper.Subject, paper.QuestionCount, paper.DurationMinutes, paper.Description, paper.ID)
	} else {
		_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO exam_papers (
			id, title, subject, question_count, duration_minutes, description
		) VALUES (?, ?, ?, ?, ?, ?)`),
			paper.ID, paper.Title, paper.Subject, paper.QuestionCount, paper.DurationMinutes, paper.Description)
	}
	if err != nil {
		return fmt.Errorf("failed to save exam paper %d: %w", paper.ID, err)
	}
	return nil
}

func rowExists(ctx context.Context, db DBTX, query string, args ...interface{}) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(query), args...); err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDomainQuestions(rows []models.Question) ([]*domain.Question, error) {
	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		q := toDomainQuestion(&rows[i])
		if !q.Type.IsValid() {
			return nil, fmt.Errorf("question %d has unknown type %q", q.ID, q.Type)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	q := &domain.Question{
		ID:          m.ID,
		SubjectID:   m.SubjectID,
		Type:        domain.QuestionType(m.QuestionType),
		Content:     m.Content,
		Answer:      []string(m.Answer),
		Explanation: m.Explanation.String,
	}
	if len(m.Options) > 0 {
		q.Options = []domain.Option(m.Options)
	}
	return q
}

func fromDomainQuestion(q *domain.Question, sortOrder int) *models.Question {
	if q == nil {
		return nil
	}
	return &models.Question{
		ID:           q.ID,
		SubjectID:    q.SubjectID,
		QuestionType: string(q.Type),
		Content:      q.Content,
		Options:      models.OptionList(q.Options),
		Answer:       models.StringSlice(q.Answer),
		Explanation:  util.StringToNullString(q.Explanation),
		SortOrder:    sortOrder,
	}
}

func toDomainPaper(m *models.ExamPaper) *domain.ExamPaper {
	return &domain.ExamPaper{
		ID:              m.ID,
		Title:           m.Title,
		Subject:         m.Subject,
		QuestionCount:   m.QuestionCount,
		DurationMinutes: m.DurationMinutes,
		Description:     m.Description.String,
	}
}
