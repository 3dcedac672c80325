package engine_test

import (
	"fmt"
	"testing"

	"project/backend/engine"

	"github.com/stretchr/testify/assert"
)

func singleChoiceQuestion(id uint, weight float64) engine.Question {
	return engine.Question{
		ID: id, Kind: engine.SingleChoice, Weight: weight,
		Choices: []engine.Choice{
			{ID: id*10 + 1, Text: "right", Correct: true},
			{ID: id*10 + 2, Text: "wrong"},
		},
	}
}

func correctAnswer(q engine.Question) engine.Answer {
	return engine.Answer{QuestionID: q.ID, ChoiceIDs: []uint{q.ID*10 + 1}}
}

func wrongAnswer(q engine.Question) engine.Answer {
	return engine.Answer{QuestionID: q.ID, ChoiceIDs: []uint{q.ID*10 + 2}}
}

func TestScoreAttempt_SingleChoice(t *testing.T) {
	q := singleChoiceQuestion(1, 2)

	attempt := engine.ScoreAttempt(7, []engine.Question{q}, []engine.Answer{correctAnswer(q)})
	assert.Equal(t, 2.0, attempt.Score)
	assert.Equal(t, 2.0, attempt.MaxScore)
	assert.True(t, attempt.Passed)
	assert.Equal(t, engine.StatusSubmitted, attempt.Status)

	attempt = engine.ScoreAttempt(7, []engine.Question{q}, []engine.Answer{wrongAnswer(q)})
	assert.Equal(t, 0.0, attempt.Score)
	assert.False(t, attempt.Passed)
}

func TestScoreAttempt_TrueFalse(t *testing.T) {
	q := engine.Question{
		ID: 1, Kind: engine.TrueFalse, Weight: 1,
		Choices: []engine.Choice{
			{ID: 11, Text: "true", Correct: true},
			{ID: 12, Text: "false"},
		},
	}

	attempt := engine.ScoreAttempt(7, []engine.Question{q},
		[]engine.Answer{{QuestionID: 1, ChoiceIDs: []uint{11}}})
	assert.Equal(t, 1.0, attempt.Score)

	attempt = engine.ScoreAttempt(7, []engine.Question{q},
		[]engine.Answer{{QuestionID: 1, ChoiceIDs: []uint{12}}})
	assert.Equal(t, 0.0, attempt.Score)
}

func TestScoreAttempt_MultipleChoiceExactness(t *testing.T) {
	q := engine.Question{
		ID: 1, Kind: engine.MultipleChoice, Weight: 1,
		Choices: []engine.Choice{
			{ID: 11, Correct: true},
			{ID: 12, Correct: true},
			{ID: 13},
		},
	}

	cases := []struct {
		selected []uint
		score    float64
	}{
		{[]uint{11, 12}, 1},     // exact set
		{[]uint{12, 11}, 1},     // order irrelevant
		{[]uint{11}, 0},         // subset
		{[]uint{11, 12, 13}, 0}, // superset
		{[]uint{13}, 0},
		{nil, 0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v", tc.selected), func(t *testing.T) {
			attempt := engine.ScoreAttempt(7, []engine.Question{q},
				[]engine.Answer{{QuestionID: 1, ChoiceIDs: tc.selected}})
			assert.Equal(t, tc.score, attempt.Score)
		})
	}
}

func TestScoreAttempt_PassThresholdBoundary(t *testing.T) {
	// 20 one-point questions: 13 correct is exactly 65%, 12 is 60%.
	questions := make([]engine.Question, 20)
	for i := range questions {
		questions[i] = singleChoiceQuestion(uint(i+1), 1)
	}

	answersWithCorrect := func(n int) []engine.Answer {
		answers := make([]engine.Answer, 0, len(questions))
		for i, q := range questions {
			if i < n {
				answers = append(answers, correctAnswer(q))
			} else {
				answers = append(answers, wrongAnswer(q))
			}
		}
		return answers
	}

	attempt := engine.ScoreAttempt(7, questions, answersWithCorrect(13))
	assert.Equal(t, 65.0, attempt.Percentage)
	assert.True(t, attempt.Passed, "exactly 65%% passes")

	attempt = engine.ScoreAttempt(7, questions, answersWithCorrect(12))
	assert.False(t, attempt.Passed)
}

func TestScoreAttempt_FillBlankDominance(t *testing.T) {
	questions := []engine.Question{
		singleChoiceQuestion(1, 1),
		{ID: 2, Kind: engine.FillBlank, Weight: 1},
	}

	// All choice questions correct, fill-blank answered with text: the
	// whole attempt is held for review and not passed.
	attempt := engine.ScoreAttempt(7, questions, []engine.Answer{
		correctAnswer(questions[0]),
		{QuestionID: 2, Text: "an essay"},
	})
	assert.Equal(t, engine.StatusAwaitingReview, attempt.Status)
	assert.False(t, attempt.Passed)

	// An attachment counts the same as text.
	attempt = engine.ScoreAttempt(7, questions, []engine.Answer{
		correctAnswer(questions[0]),
		{QuestionID: 2, Attachments: []string{"scan.pdf"}},
	})
	assert.Equal(t, engine.StatusAwaitingReview, attempt.Status)

	// A blank fill-blank answer does not hold the attempt.
	attempt = engine.ScoreAttempt(7, questions, []engine.Answer{
		correctAnswer(questions[0]),
		{QuestionID: 2, Text: "   "},
	})
	assert.Equal(t, engine.StatusSubmitted, attempt.Status)
}

func TestScoreAttempt_UnansweredQuestionsScoreZero(t *testing.T) {
	questions := []engine.Question{
		singleChoiceQuestion(1, 1),
		singleChoiceQuestion(2, 1),
	}
	attempt := engine.ScoreAttempt(7, questions, []engine.Answer{correctAnswer(questions[0])})
	assert.Equal(t, 1.0, attempt.Score)
	assert.Equal(t, 2.0, attempt.MaxScore)
	assert.Equal(t, 50.0, attempt.Percentage)
}
