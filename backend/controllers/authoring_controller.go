package controllers

import (
	"errors"
	"strconv"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthoringController carries the admin endpoints that build course
// structure: subjects, lessons with chapter/order placement, quizzes with
// their questions and answer keys.
type AuthoringController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthoringController(db *gorm.DB, cfg *config.Config) *AuthoringController {
	return &AuthoringController{DB: db, Cfg: cfg}
}

type CreateSubjectInput struct {
	Title       string `json:"title" validate:"required"`
	ShortDesc   string `json:"short_desc"`
	Description string `json:"description"`
}

func (ac *AuthoringController) CreateSubject(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input CreateSubjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	subject := models.Subject{
		Title:       input.Title,
		ShortDesc:   input.ShortDesc,
		Description: input.Description,
		AuthorID:    userID,
	}
	if err := ac.DB.Create(&subject).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not create subject")
	}
	return c.JSON(fiber.Map{"message": "Subject created", "subject": subject})
}

type AddLessonInput struct {
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content"`
	VideoSource   string `json:"video_source"`
	ChapterNumber int    `json:"chapter_number"`
	OrderNumber   int    `json:"order_number"`
	QuizID        *uint  `json:"quiz_id"`
	ChapterQuiz   bool   `json:"chapter_quiz"`
}

func (ac *AuthoringController) AddLesson(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}

	var input AddLessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var subject models.Subject
	if err := ac.DB.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Subject not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Could not query database")
	}

	lesson := models.Lesson{
		SubjectID:     subject.ID,
		Title:         input.Title,
		Content:       input.Content,
		VideoSource:   input.VideoSource,
		ChapterNumber: input.ChapterNumber,
		OrderNumber:   input.OrderNumber,
		QuizID:        input.QuizID,
		ChapterQuiz:   input.ChapterQuiz,
	}
	if err := ac.DB.Create(&lesson).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not create lesson")
	}
	return c.JSON(fiber.Map{"message": "Lesson added", "lesson": lesson})
}

type CreateQuizInput struct {
	Title     string               `json:"title" validate:"required"`
	Questions []CreateQuestionSpec `json:"questions" validate:"dive"`
}

type CreateQuestionSpec struct {
	Kind    string             `json:"kind" validate:"required,oneof=single_choice multiple_choice true_false fill_blank"`
	Text    string             `json:"text" validate:"required"`
	Weight  float64            `json:"weight"`
	Choices []CreateChoiceSpec `json:"choices" validate:"dive"`
}

type CreateChoiceSpec struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

func (ac *AuthoringController) CreateQuiz(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}

	var input CreateQuizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	quiz := models.Quiz{SubjectID: uint(subjectID), Title: input.Title}
	for i, q := range input.Questions {
		weight := q.Weight
		if weight <= 0 {
			weight = 1
		}
		question := models.QuizQuestion{
			Kind:          q.Kind,
			Text:          q.Text,
			Weight:        weight,
			SequenceOrder: i + 1,
		}
		for _, ch := range q.Choices {
			question.Choices = append(question.Choices, models.QuizChoice{
				Text:      ch.Text,
				IsCorrect: ch.Correct,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	if err := ac.DB.Create(&quiz).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not create quiz")
	}
	return c.JSON(fiber.Map{"message": "Quiz created", "quiz": quiz})
}

type SetSubjectTestsInput struct {
	PreTestQuizID  *uint `json:"pre_test_quiz_id"`
	PostTestQuizID *uint `json:"post_test_quiz_id"`
}

// SetSubjectTests attaches the pre-test and post-test quizzes that become
// the sentinel sections of the course tree.
func (ac *AuthoringController) SetSubjectTests(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid subject ID")
	}

	var input SetSubjectTestsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	var subject models.Subject
	if err := ac.DB.First(&subject, subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Subject not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Could not query database")
	}

	if input.PreTestQuizID != nil {
		subject.PreTestQuizID = input.PreTestQuizID
	}
	if input.PostTestQuizID != nil {
		subject.PostTestQuizID = input.PostTestQuizID
	}
	if err := ac.DB.Save(&subject).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Could not update subject")
	}
	return c.JSON(fiber.Map{"message": "Subject tests updated", "subject": subject})
}
