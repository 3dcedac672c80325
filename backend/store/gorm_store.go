package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"project/backend/engine"
	"project/backend/models"

	"gorm.io/gorm"
)

// GormStore implements engine.Store over the relational models.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var _ engine.Store = (*GormStore)(nil)

func (s *GormStore) GetSubjectStructure(ctx context.Context, subjectID uint) (engine.SubjectStructure, error) {
	var subject models.Subject
	if err := s.DB.WithContext(ctx).Preload("Lessons").First(&subject, subjectID).Error; err != nil {
		return engine.SubjectStructure{}, err
	}

	out := engine.SubjectStructure{
		SubjectID: subject.ID,
		Title:     subject.Title,
	}
	if subject.PreTestQuizID != nil {
		out.PreTestQuizID = *subject.PreTestQuizID
	}
	if subject.PostTestQuizID != nil {
		out.PostTestQuizID = *subject.PostTestQuizID
	}
	for _, l := range subject.Lessons {
		info := engine.LessonInfo{
			ID:            l.ID,
			Title:         l.Title,
			ChapterNumber: l.ChapterNumber,
			OrderNumber:   l.OrderNumber,
			ChapterQuiz:   l.ChapterQuiz,
		}
		if l.QuizID != nil {
			info.QuizID = *l.QuizID
		}
		out.Lessons = append(out.Lessons, info)
	}
	return out, nil
}

func (s *GormStore) GetProgress(ctx context.Context, userID, subjectID uint) (engine.ProgressSnapshot, error) {
	snap := engine.ProgressSnapshot{
		Lessons:       make(map[uint]bool),
		LessonPercent: make(map[uint]int),
		Quizzes:       make(map[uint]engine.QuizProgress),
	}

	var lessonRows []models.UserLessonProgress
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Find(&lessonRows).Error; err != nil {
		return snap, err
	}
	for _, row := range lessonRows {
		snap.Lessons[row.LessonID] = row.Completed
		snap.LessonPercent[row.LessonID] = row.WatchedPercent
	}

	var quizRows []models.UserQuizProgress
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Find(&quizRows).Error; err != nil {
		return snap, err
	}
	for _, row := range quizRows {
		snap.Quizzes[row.QuizID] = engine.QuizProgress{
			Completed: row.Completed,
			Passed:    row.Passed,
			Status:    engine.AttemptStatus(row.Status),
		}
	}

	var overall models.UserSubjectProgress
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		First(&overall).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return snap, err
	}
	snap.OverallPercent = int(math.Round(overall.CompletionRate))
	return snap, nil
}

func (s *GormStore) GetLesson(ctx context.Context, lessonID uint) (engine.LessonDetail, error) {
	var lesson models.Lesson
	if err := s.DB.WithContext(ctx).First(&lesson, lessonID).Error; err != nil {
		return engine.LessonDetail{}, err
	}
	return engine.LessonDetail{
		ID:          lesson.ID,
		Title:       lesson.Title,
		Content:     lesson.Content,
		VideoSource: lesson.VideoSource,
	}, nil
}

func (s *GormStore) GetQuiz(ctx context.Context, quizID uint) ([]engine.Question, error) {
	var quiz models.Quiz
	if err := s.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC, id ASC")
		}).
		Preload("Questions.Choices").
		First(&quiz, quizID).Error; err != nil {
		return nil, err
	}

	questions := make([]engine.Question, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		question := engine.Question{
			ID:     q.ID,
			Kind:   engine.QuestionKind(q.Kind),
			Text:   q.Text,
			Weight: q.Weight,
		}
		for _, c := range q.Choices {
			question.Choices = append(question.Choices, engine.Choice{
				ID:      c.ID,
				Text:    c.Text,
				Correct: c.IsCorrect,
			})
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (s *GormStore) CompleteLesson(ctx context.Context, userID, subjectID, lessonID uint) error {
	db := s.DB.WithContext(ctx)

	var row models.UserLessonProgress
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.UserLessonProgress{UserID: userID, SubjectID: subjectID, LessonID: lessonID}
	} else if err != nil {
		return err
	}
	row.Completed = true
	row.WatchedPercent = 100
	if err := db.Save(&row).Error; err != nil {
		return err
	}
	return s.refreshSubjectProgress(ctx, userID, subjectID)
}

func (s *GormStore) SubmitQuiz(ctx context.Context, userID, subjectID uint, attempt engine.QuizAttempt, answers []engine.Answer) error {
	db := s.DB.WithContext(ctx)

	record := models.QuizAttemptRecord{
		ID:          attempt.ID,
		UserID:      userID,
		QuizID:      attempt.QuizID,
		SubjectID:   subjectID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage,
		Passed:      attempt.Passed,
		Status:      string(attempt.Status),
		SubmittedAt: attempt.SubmittedAt,
	}
	for _, a := range answers {
		choiceIDs, _ := json.Marshal(a.ChoiceIDs)
		attachments, _ := json.Marshal(a.Attachments)
		record.Answers = append(record.Answers, models.QuizAnswerRecord{
			QuestionID:  a.QuestionID,
			ChoiceIDs:   string(choiceIDs),
			Text:        a.Text,
			Attachments: string(attachments),
		})
	}
	if err := db.Create(&record).Error; err != nil {
		return err
	}

	var progress models.UserQuizProgress
	err := db.Where("user_id = ? AND quiz_id = ?", userID, attempt.QuizID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.UserQuizProgress{UserID: userID, SubjectID: subjectID, QuizID: attempt.QuizID}
	} else if err != nil {
		return err
	}

	// The most recent attempt is authoritative for status, but a pass is
	// never revoked by a later worse attempt.
	progress.Attempts++
	progress.Status = string(attempt.Status)
	progress.LastAttempt = attempt.SubmittedAt
	if attempt.Percentage > progress.BestScore {
		progress.BestScore = attempt.Percentage
	}
	if attempt.Passed {
		progress.Passed = true
		progress.Completed = true
	}
	if err := db.Save(&progress).Error; err != nil {
		return err
	}
	return s.refreshSubjectProgress(ctx, userID, subjectID)
}

func (s *GormStore) SaveVideoProgress(ctx context.Context, userID, lessonID uint, position, duration float64) error {
	db := s.DB.WithContext(ctx)

	var lesson models.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		return err
	}

	var row models.UserLessonProgress
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.UserLessonProgress{UserID: userID, SubjectID: lesson.SubjectID, LessonID: lessonID}
	} else if err != nil {
		return err
	}
	row.PositionSeconds = position
	row.DurationSeconds = duration
	if duration > 0 && !row.Completed {
		percent := int(100 * position / duration)
		if percent > 100 {
			percent = 100
		}
		row.WatchedPercent = percent
	}
	return db.Save(&row).Error
}

// refreshSubjectProgress recomputes the stored per-subject completion rate
// from the lesson and quiz rows.
func (s *GormStore) refreshSubjectProgress(ctx context.Context, userID, subjectID uint) error {
	db := s.DB.WithContext(ctx)

	var lessonTotal, quizTotal int64
	if err := db.Model(&models.Lesson{}).Where("subject_id = ?", subjectID).Count(&lessonTotal).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Quiz{}).Where("subject_id = ?", subjectID).Count(&quizTotal).Error; err != nil {
		return err
	}

	var lessonsDone, quizzesDone int64
	if err := db.Model(&models.UserLessonProgress{}).
		Where("user_id = ? AND subject_id = ? AND completed = true", userID, subjectID).
		Count(&lessonsDone).Error; err != nil {
		return err
	}
	if err := db.Model(&models.UserQuizProgress{}).
		Where("user_id = ? AND subject_id = ? AND completed = true", userID, subjectID).
		Count(&quizzesDone).Error; err != nil {
		return err
	}

	rate := 0.0
	if total := lessonTotal + quizTotal; total > 0 {
		rate = 100 * float64(lessonsDone+quizzesDone) / float64(total)
	}

	var row models.UserSubjectProgress
	err := db.Where("user_id = ? AND subject_id = ?", userID, subjectID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.UserSubjectProgress{UserID: userID, SubjectID: subjectID}
	} else if err != nil {
		return err
	}
	row.CompletionRate = rate
	row.LessonsCompleted = int(lessonsDone)
	row.LastAccessed = time.Now()
	return db.Save(&row).Error
}
