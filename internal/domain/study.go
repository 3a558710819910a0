package domain

import "time"

// DateLayout is the calendar-day key of study records.
const DateLayout = "2006-01-02"

// StudyRecord aggregates one user's practice on one calendar day.
type StudyRecord struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	Minutes  int    `json:"minutes"`
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
}

// Accuracy returns round(100*correct/answered), 0 when nothing was answered.
func (r *StudyRecord) Accuracy() int {
	return ScorePercent(r.Correct, r.Answered)
}

// Add folds one finished session into the record.
func (r *StudyRecord) Add(minutes, answered, correct int) {
	r.Minutes += minutes
	r.Answered += answered
	r.Correct += correct
}

// DateKey formats t as a study record date in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekAround returns the seven date keys from day-3 to day+3.
func WeekAround(day time.Time) []string {
	keys := make([]string, 0, 7)
	for offset := -3; offset <= 3; offset++ {
		keys = append(keys, DateKey(day.AddDate(0, 0, offset)))
	}
	return keys
}

// SessionMinutes rounds an elapsed duration to whole minutes.
func SessionMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Round(time.Minute) / time.Minute)
}
