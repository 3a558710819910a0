package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"guide-exam/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLXWrongAnswerRepository_Upsert(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXWrongAnswerRepository(db)
	ctx := context.Background()
	now := time.Now()
	entry := &domain.WrongAnswer{UserID: "u1", QuestionID: 103, SubjectID: "fagui", LastSelection: []string{"T"}, LastWrongAt: now}
	check := regexp.QuoteMeta(`SELECT COUNT(*) FROM wrong_answers WHERE user_id = ? AND question_id = ?`)

	t.Run("FirstMistakeInserts", func(t *testing.T) {
		mock.ExpectQuery(check).WithArgs("u1", 103).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wrong_answers (`)).
			WithArgs("u1", 103, "fagui", `["T"]`, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Upsert(ctx, entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RepeatMistakeIncrements", func(t *testing.T) {
		mock.ExpectQuery(check).WithArgs("u1", 103).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta(`SET wrong_count = wrong_count + 1`)).
			WithArgs(`["T"]`, now, "u1", 103).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Upsert(ctx, entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLXWrongAnswerRepository_ListByUser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXWrongAnswerRepository(db)
	now := time.Now().Truncate(time.Second)

	rows := sqlmock.NewRows([]string{"user_id", "question_id", "subject_id", "last_selection", "wrong_count", "last_wrong_at"}).
		AddRow("u1", 104, "fagui", `["A","B"]`, 2, now)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY last_wrong_at DESC, question_id LIMIT ? OFFSET ?`)).
		WithArgs("u1", 20, 40).WillReturnRows(rows)

	entries, err := repo.ListByUser(context.Background(), "u1", 20, 40)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"A", "B"}, entries[0].LastSelection)
	assert.Equal(t, 2, entries[0].WrongCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXWrongAnswerRepository_CountAndDelete(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXWrongAnswerRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM wrong_answers WHERE user_id = ?`)).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	count, err := repo.CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	del := regexp.QuoteMeta(`DELETE FROM wrong_answers WHERE user_id = ? AND question_id = ?`)
	mock.ExpectExec(del).WithArgs("u1", 104).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "u1", 104))

	mock.ExpectExec(del).WithArgs("u1", 999).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Delete(ctx, "u1", 999)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeNotFound, domainErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginate(t *testing.T) {
	db, _ := setupTestDB(t)
	q, args := paginate(db, "SELECT 1", 10, 30)
	assert.Equal(t, "SELECT 1 LIMIT ? OFFSET ?", q)
	assert.Equal(t, []interface{}{10, 30}, args)
}
