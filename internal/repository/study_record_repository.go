package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guide-exam/internal/domain"
	"guide-exam/internal/repository/models"
)

const studyRecordColumns = `user_id "user_id",
		study_date "study_date",
		minutes "minutes",
		answered "answered",
		correct "correct"`

type sqlxStudyRecordRepository struct {
	db DBTX
}

func NewSQLXStudyRecordRepository(db DBTX) domain.StudyRecordRepository {
	return &sqlxStudyRecordRepository{db: db}
}

// AddToDay accumulates into the (user, date) row, creating it on first use.
func (r *sqlxStudyRecordRepository) AddToDay(ctx context.Context, userID, date string, minutes, answered, correct int) error {
	db := GetExecutor(ctx, r.db)

	exists, err := rowExists(ctx, db, `SELECT COUNT(*) FROM study_records WHERE user_id = ? AND study_date = ?`, userID, date)
	if err != nil {
		return fmt.Errorf("failed to check study record: %w", err)
	}
	if exists {
		_, err = db.ExecContext(ctx, db.Rebind(`UPDATE study_records
		SET minutes = minutes + ?, answered = answered + ?, correct = correct + ?
		WHERE user_id = ? AND study_date = ?`),
			minutes, answered, correct, userID, date)
	} else {
		_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO study_records (user_id, study_date, minutes, answered, correct)
		VALUES (?, ?, ?, ?, ?)`),
			userID, date, minutes, answered, correct)
	}
	if err != nil {
		return fmt.Errorf("failed to save study record for %s: %w", date, err)
	}
	return nil
}

// GetDay returns nil, nil for a day without practice.
func (r *sqlxStudyRecordRepository) GetDay(ctx context.Context, userID, date string) (*domain.StudyRecord, error) {
	db := GetExecutor(ctx, r.db)
	query := db.Rebind(`SELECT ` + studyRecordColumns + ` FROM study_records WHERE user_id = ? AND study_date = ?`)

	var row models.StudyRecord
	if err := db.GetContext(ctx, &row, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get study record for %s: %w", date, err)
	}
	return toDomainStudyRecord(&row), nil
}

// ListRange returns the stored days in [from, to], oldest first.
func (r *sqlxStudyRecordRepository) ListRange(ctx context.Context, userID, from, to string) ([]*domain.StudyRecord, error) {
	db := GetExecutor(ctx, r.db)
	query := db.Rebind(`SELECT ` + studyRecordColumns + ` FROM study_records
	WHERE user_id = ? AND study_date >= ? AND study_date <= ?
	ORDER BY study_date`)

	var rows []models.StudyRecord
	if err := db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list study records: %w", err)
	}
	records := make([]*domain.StudyRecord, len(rows))
	for i := range rows {
		records[i] = toDomainStudyRecord(&rows[i])
	}
	return records, nil
}

func toDomainStudyRecord(m *models.StudyRecord) *domain.StudyRecord {
	return &domain.StudyRecord{
		UserID:   m.UserID,
		Date:     m.StudyDate,
		Minutes:  m.Minutes,
		Answered: m.Answered,
		Correct:  m.Correct,
	}
}
