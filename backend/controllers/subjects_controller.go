package controllers

import (
	"errors"
	"strconv"

	"project/backend/config"
	"project/backend/engine"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubjectsController exposes the learner-facing surface of the
// progression engine: the annotated course tree, item selection, video
// position reporting and quiz submission.
type SubjectsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Sessions *SessionManager
}

func NewSubjectsController(db *gorm.DB, cfg *config.Config, sessions *SessionManager) *SubjectsController {
	return &SubjectsController{DB: db, Cfg: cfg, Sessions: sessions}
}

func (sc *SubjectsController) GetSubjects(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var subjects []models.Subject
	if err := sc.DB.Preload("Lessons").Find(&subjects).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(subjects))
	for _, subject := range subjects {
		var progress models.UserSubjectProgress
		sc.DB.Where("user_id = ? AND subject_id = ?", userID, subject.ID).First(&progress)

		result = append(result, fiber.Map{
			"id":            subject.ID,
			"title":         subject.Title,
			"description":   subject.ShortDesc,
			"lessons":       len(subject.Lessons),
			"progress":      progress.CompletionRate,
			"completed":     progress.LessonsCompleted,
			"last_accessed": progress.LastAccessed,
		})
	}
	return c.JSON(result)
}

// GetCourseTree returns the annotated tree plus the default or currently
// active item. The tree is built on first access and served from the
// session afterwards.
func (sc *SubjectsController) GetCourseTree(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}

	session, existed := sc.Sessions.Get(userID, uint(subjectID))
	if !existed {
		if err := session.Load(c.Context()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				sc.Sessions.Drop(userID, uint(subjectID))
				return utils.Error(c, fiber.StatusNotFound, "Subject not found")
			}
			if !errors.Is(err, engine.ErrSuperseded) {
				sc.Sessions.Drop(userID, uint(subjectID))
				return utils.Error(c, fiber.StatusInternalServerError, "Could not load course")
			}
		}
	}

	tree, err := session.Tree()
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "Course has no content")
	}
	return c.JSON(fiber.Map{
		"tree":   tree,
		"active": session.Active(),
	})
}

// RefreshCourseTree re-fetches the authoritative progress snapshot. Server
// state replaces any local cascades.
func (sc *SubjectsController) RefreshCourseTree(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}

	session, _ := sc.Sessions.Get(userID, uint(subjectID))
	if err := session.Refresh(c.Context()); err != nil && !errors.Is(err, engine.ErrSuperseded) {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not refresh course")
	}

	tree, err := session.Tree()
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "Course has no content")
	}
	return c.JSON(fiber.Map{
		"tree":   tree,
		"active": session.Active(),
	})
}

type SelectInput struct {
	SectionID uint `json:"section_id" validate:"required"`
	ItemID    uint `json:"item_id" validate:"required"`
}

// SelectItem handles an explicit selection. A locked target answers 423
// with the unmet prerequisite so the client can render the explanation.
func (sc *SubjectsController) SelectItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}

	var input SelectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	session, _ := sc.Sessions.Get(userID, uint(subjectID))
	ref, err := session.Select(input.SectionID, input.ItemID)
	if err != nil {
		var locked *engine.LockedError
		switch {
		case errors.As(err, &locked):
			return utils.Error(c, fiber.StatusLocked, "Item is locked", fiber.Map{
				"reason":   locked.Reason.Kind.String(),
				"blocking": locked.Reason.Blocking,
				"percent":  locked.Reason.Percentage,
			})
		case errors.Is(err, engine.ErrItemNotFound):
			return utils.Error(c, fiber.StatusNotFound, "Item not found")
		case errors.Is(err, engine.ErrNoContent):
			return utils.Error(c, fiber.StatusNotFound, "Course has no content")
		default:
			return utils.Error(c, fiber.StatusInternalServerError, "Could not select item")
		}
	}
	return c.JSON(fiber.Map{"active": ref})
}

// GetLesson returns lesson detail with the resolved playable video id.
func (sc *SubjectsController) GetLesson(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}

	session, _ := sc.Sessions.Get(userID, uint(subjectID))
	detail, err := session.Lesson(c.Context(), uint(lessonID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Lesson not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Could not load lesson")
	}
	return c.JSON(detail)
}

type VideoProgressInput struct {
	Position float64 `json:"position" validate:"gte=0"`
	Duration float64 `json:"duration" validate:"gte=0"`
}

// ReportVideoProgress feeds a playback position into the watch tracker.
// The response reports whether this update completed the lesson and the
// tree that resulted.
func (sc *SubjectsController) ReportVideoProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}

	var input VideoProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	session, _ := sc.Sessions.Get(userID, uint(subjectID))
	completed, err := session.ReportVideoProgress(c.Context(), uint(lessonID), input.Position, input.Duration)
	if err != nil {
		if errors.Is(err, engine.ErrItemNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Lesson not part of this course")
		}
		if errors.Is(err, engine.ErrNoContent) {
			return utils.Error(c, fiber.StatusConflict, "Course not loaded")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Could not record progress")
	}

	resp := fiber.Map{"completed": completed}
	if completed {
		if tree, err := session.Tree(); err == nil {
			resp["tree"] = tree
		}
	}
	return c.JSON(resp)
}

// GetQuiz returns the question list for display. Correct-answer flags are
// not serialized.
func (sc *SubjectsController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := sc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC, id ASC")
		}).
		Preload("Questions.Choices").
		First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Quiz not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Could not query database")
	}

	questions := make([]fiber.Map, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		choices := make([]fiber.Map, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, fiber.Map{"id": ch.ID, "text": ch.Text})
		}
		questions = append(questions, fiber.Map{
			"id":      q.ID,
			"kind":    q.Kind,
			"text":    q.Text,
			"weight":  q.Weight,
			"choices": choices,
		})
	}
	return c.JSON(fiber.Map{
		"id":        quiz.ID,
		"title":     quiz.Title,
		"questions": questions,
	})
}

type SubmitQuizInput struct {
	Answers []engine.Answer `json:"answers" validate:"required,min=1"`
}

// SubmitQuiz scores an attempt. A pass cascades the quiz item's completion
// through the tree; an attempt awaiting review leaves it incomplete.
func (sc *SubjectsController) SubmitQuiz(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}
	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid quiz ID")
	}

	var input SubmitQuizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	session, _ := sc.Sessions.Get(userID, uint(subjectID))
	attempt, err := session.SubmitQuiz(c.Context(), uint(quizID), input.Answers)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Quiz not found")
		}
		if errors.Is(err, engine.ErrNoContent) {
			return utils.Error(c, fiber.StatusConflict, "Course not loaded")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Could not submit quiz")
	}

	resp := fiber.Map{"attempt": attempt}
	if attempt.Passed {
		if tree, err := session.Tree(); err == nil {
			resp["tree"] = tree
		}
	}
	return c.JSON(resp)
}

// GetAttempts returns the persisted attempt history for a quiz, newest
// first.
func (sc *SubjectsController) GetAttempts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	quizID, err := strconv.Atoi(c.Params("quizId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid quiz ID")
	}

	var records []models.QuizAttemptRecord
	if err := sc.DB.
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at DESC").
		Find(&records).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(records))
	for _, rec := range records {
		result = append(result, fiber.Map{
			"id":           rec.ID,
			"score":        rec.Score,
			"max_score":    rec.MaxScore,
			"percentage":   rec.Percentage,
			"passed":       rec.Passed,
			"status":       rec.Status,
			"submitted_at": rec.SubmittedAt,
		})
	}
	return c.JSON(result)
}
