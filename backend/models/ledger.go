package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event types recorded in the activity ledger.
const (
	EventLogin             = "login"
	EventLogout            = "logout"
	EventLessonCompleted   = "lesson_completed"
	EventExerciseCompleted = "exercise_completed"
	EventContentViewed     = "content_viewed"
)

// Event is one immutable ledger entry. Events are append-only: they are
// never updated or deleted after creation.
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"index;not null" json:"username"`
	Type      string         `gorm:"index;not null" json:"type"`
	Details   datatypes.JSON `json:"details"`
	Date      time.Time      `gorm:"index" json:"date"`
	Timestamp int64          `json:"timestamp"` // unix milliseconds
}

type LessonCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"index;not null" json:"username"`
	LessonID      string    `gorm:"index" json:"lessonId"`
	CompletedDate time.Time `gorm:"index" json:"completedDate"`
	Duration      uint      `json:"duration"` // seconds
}

type ExerciseCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"index;not null" json:"username"`
	ExerciseID    string    `gorm:"index" json:"exerciseId"`
	Score         int       `gorm:"index" json:"score"`
	MaxScore      int       `json:"maxScore"`
	Percentage    int       `json:"percentage"`
	CompletedDate time.Time `gorm:"index" json:"completedDate"`
}

type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"index;not null" json:"username"`
	LoginDate time.Time `gorm:"index" json:"loginDate"`
	Duration  uint      `gorm:"index" json:"duration"` // seconds, 0 until the session is closed
}
