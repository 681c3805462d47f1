package model

import "time"

// CalendarNote is a personal note pinned to a calendar day. The daily
// reminder job pushes a note back to its owner on that day.
type CalendarNote struct {
	UserID  string    `firestore:"userId" json:"userId"`
	Content string    `firestore:"content" json:"content"`
	Date    time.Time `firestore:"date" json:"date"`
}
