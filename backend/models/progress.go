package models

import (
	"time"

	"gorm.io/gorm"
)

type UserLessonProgress struct {
	gorm.Model
	UserID          uint
	SubjectID       uint
	LessonID        uint
	Completed       bool
	WatchedPercent  int
	PositionSeconds float64
	DurationSeconds float64
}

type UserQuizProgress struct {
	gorm.Model
	UserID      uint
	SubjectID   uint
	QuizID      uint
	Completed   bool
	Passed      bool
	Status      string // submitted, awaiting_review
	BestScore   float64
	Attempts    int
	LastAttempt time.Time
}

type UserSubjectProgress struct {
	gorm.Model
	UserID           uint
	SubjectID        uint
	CompletionRate   float64
	LessonsCompleted int
	LastAccessed     time.Time
}
