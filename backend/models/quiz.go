package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	SubjectID uint
	Title     string
	Questions []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint
	Kind          string // single_choice, multiple_choice, true_false, fill_blank
	Text          string
	Weight        float64 `gorm:"default:1"`
	SequenceOrder int
	Choices       []QuizChoice `gorm:"foreignKey:QuestionID"`
}

type QuizChoice struct {
	gorm.Model
	QuestionID uint
	Text       string
	IsCorrect  bool
}

// QuizAttemptRecord is one persisted submission. Attempts are append-only;
// the most recent row is authoritative, older rows stay for audit display.
type QuizAttemptRecord struct {
	ID          string `gorm:"primaryKey"` // uuid
	UserID      uint
	QuizID      uint
	SubjectID   uint
	Score       float64
	MaxScore    float64
	Percentage  float64
	Passed      bool
	Status      string // submitted, awaiting_review
	SubmittedAt time.Time
	Answers     []QuizAnswerRecord `gorm:"foreignKey:AttemptID"`
}

type QuizAnswerRecord struct {
	gorm.Model
	AttemptID   string
	QuestionID  uint
	ChoiceIDs   string // JSON array of selected choice IDs
	Text        string
	Attachments string // JSON array of attachment refs
}
