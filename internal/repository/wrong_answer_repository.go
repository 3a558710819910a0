package repository

import (
	"context"
	"fmt"

	"guide-exam/internal/domain"
	"guide-exam/internal/repository/models"
)

type sqlxWrongAnswerRepository struct {
	db DBTX
}

func NewSQLXWrongAnswerRepository(db DBTX) domain.WrongAnswerRepository {
	return &sqlxWrongAnswerRepository{db: db}
}

// Upsert bumps wrong_count for a known question or inserts the first entry.
// Callers run it inside a transaction so the check and the write see the same row.
func (r *sqlxWrongAnswerRepository) Upsert(ctx context.Context, entry *domain.WrongAnswer) error {
	db := GetExecutor(ctx, r.db)
	selection := models.StringSlice(entry.LastSelection)

	exists, err := rowExists(ctx, db, `SELECT COUNT(*) FROM wrong_answers WHERE user_id = ? AND question_id = ?`,
		entry.UserID, entry.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to check wrong answer: %w", err)
	}

	if exists {
		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE wrong_answers
		SET wrong_count = wrong_count + 1, last_selection = ?, last_wrong_at = ?
		WHERE user_id = ? AND question_id = ?`),
			selection, entry.LastWrongAt, entry.UserID, entry.QuestionID)
	} else {
		_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO wrong_answers (
			user_id, question_id, subject_id, last_selection, wrong_count, last_wrong_at
		) VALUES (?, ?, ?, ?, 1, ?)`),
			entry.UserID, entry.QuestionID, entry.SubjectID, selection, entry.LastWrongAt)
	}
	if err != nil {
		return fmt.Errorf("failed to save wrong answer for question %d: %w", entry.QuestionID, err)
	}
	return nil
}

// ListByUser returns the most recent mistakes first.
func (r *sqlxWrongAnswerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.WrongAnswer, error) {
	db := GetExecutor(ctx, r.db)
	query, pageArgs := paginate(db, `SELECT
		user_id "user_id",
		question_id "question_id",
		subject_id "subject_id",
		last_selection "last_selection",
		wrong_count "wrong_count",
		last_wrong_at "last_wrong_at"
	FROM wrong_answers
	WHERE user_id = ?
	ORDER BY last_wrong_at DESC, question_id`, limit, offset)

	var rows []models.WrongAnswer
	args := append([]interface{}{userID}, pageArgs...)
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list wrong answers: %w", err)
	}

	entries := make([]*domain.WrongAnswer, len(rows))
	for i, row := range rows {
		entries[i] = &domain.WrongAnswer{
			UserID:        row.UserID,
			QuestionID:    row.QuestionID,
			SubjectID:     row.SubjectID,
			LastSelection: []string(row.LastSelection),
			WrongCount:    row.WrongCount,
			LastWrongAt:   row.LastWrongAt,
		}
	}
	return entries, nil
}

func (r *sqlxWrongAnswerRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	db := GetExecutor(ctx, r.db)
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(`SELECT COUNT(*) FROM wrong_answers WHERE user_id = ?`), userID); err != nil {
		return 0, fmt.Errorf("failed to count wrong answers: %w", err)
	}
	return count, nil
}

// Delete removes one entry. Missing entries are reported as not found.
func (r *sqlxWrongAnswerRepository) Delete(ctx context.Context, userID string, questionID int64) error {
	db := GetExecutor(ctx, r.db)
	res, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM wrong_answers WHERE user_id = ? AND question_id = ?`), userID, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete wrong answer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("question %d is not in the wrong-answer book", questionID))
	}
	return nil
}
