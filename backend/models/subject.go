package models

import "gorm.io/gorm"

type Subject struct {
	gorm.Model
	Title          string
	ShortDesc      string
	Description    string
	AuthorID       uint
	PreTestQuizID  *uint
	PostTestQuizID *uint
	Lessons        []Lesson
}

type Lesson struct {
	gorm.Model
	SubjectID     uint
	Title         string
	Content       string
	VideoSource   string
	ChapterNumber int
	OrderNumber   int
	QuizID        *uint
	ChapterQuiz   bool // quiz covers the whole chapter, not just this lesson
}
