package models

import (
	"database/sql"
	"time"
)

// Question is a row of the questions table.
type Question struct {
	ID           int64          `db:"id"`
	SubjectID    string         `db:"subject_id"`
	QuestionType string         `db:"question_type"`
	Content      string         `db:"content"`
	Options      OptionList     `db:"options"`
	Answer       StringSlice    `db:"answer"`
	Explanation  sql.NullString `db:"explanation"`
	SortOrder    int            `db:"sort_order"`
}

type Subject struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	SortOrder int    `db:"sort_order"`
}

// SubjectCount is a subject joined with its number of questions.
type SubjectCount struct {
	Subject
	QuestionCount int `db:"question_count"`
}

type ExamPaper struct {
	ID              int64          `db:"id"`
	Title           string         `db:"title"`
	Subject         string         `db:"subject"`
	QuestionCount   int            `db:"question_count"`
	DurationMinutes int            `db:"duration_minutes"`
	Description     sql.NullString `db:"description"`
}

// User represents a registered account.
type User struct {
	ID           string    `db:"id"` // ULID
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"` // bcrypt
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// WrongAnswer is a row of a user's wrong-answer book.
type WrongAnswer struct {
	UserID        string      `db:"user_id"`
	QuestionID    int64       `db:"question_id"`
	SubjectID     string      `db:"subject_id"`
	LastSelection StringSlice `db:"last_selection"`
	WrongCount    int         `db:"wrong_count"`
	LastWrongAt   time.Time   `db:"last_wrong_at"`
}

// StudyRecord is one user's practice totals for one day.
type StudyRecord struct {
	UserID    string `db:"user_id"`
	StudyDate string `db:"study_date"` // YYYY-MM-DD
	Minutes   int    `db:"minutes"`
	Answered  int    `db:"answered"`
	Correct   int    `db:"correct"`
}
