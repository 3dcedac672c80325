package engine

import (
	"strings"
	"time"
)

// PassThreshold is the percentage a scored attempt must reach to pass.
// Fixed for every course today; kept as one exported constant so a
// per-course setting can replace it later.
const PassThreshold = 65.0

type QuestionKind string

const (
	SingleChoice   QuestionKind = "single_choice"
	MultipleChoice QuestionKind = "multiple_choice"
	TrueFalse      QuestionKind = "true_false"
	FillBlank      QuestionKind = "fill_blank"
)

type Choice struct {
	ID      uint   `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"-"`
}

type Question struct {
	ID      uint         `json:"id"`
	Kind    QuestionKind `json:"kind"`
	Text    string       `json:"text"`
	Weight  float64      `json:"weight"`
	Choices []Choice     `json:"choices,omitempty"`
}

// Answer is one submitted answer: a choice set for choice questions, or
// free text with optional attachments for fill-blank questions.
type Answer struct {
	QuestionID  uint     `json:"question_id"`
	ChoiceIDs   []uint   `json:"choice_ids,omitempty"`
	Text        string   `json:"text,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

func (a Answer) blank() bool {
	return strings.TrimSpace(a.Text) == "" && len(a.Attachments) == 0
}

type AttemptStatus string

const (
	StatusSubmitted      AttemptStatus = "submitted"
	StatusAwaitingReview AttemptStatus = "awaiting_review"
)

// QuizAttempt is one scored submission. When Status is awaiting_review the
// pass verdict is not yet determined; a human reviewer settles it outside
// this engine.
type QuizAttempt struct {
	ID          string        `json:"id"`
	QuizID      uint          `json:"quiz_id"`
	Score       float64       `json:"score"`
	MaxScore    float64       `json:"max_score"`
	Percentage  float64       `json:"percentage"`
	Passed      bool          `json:"passed"`
	Status      AttemptStatus `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// ScoreAttempt grades submitted answers against the question set.
//
// SingleChoice and TrueFalse award the full weight iff the selected choice
// is the flagged one. MultipleChoice requires the submitted set to equal
// the correct set exactly; supersets and subsets score zero. FillBlank is
// never auto-scored: any non-blank answer holds the whole attempt in
// awaiting_review regardless of the other questions.
func ScoreAttempt(quizID uint, questions []Question, answers []Answer) QuizAttempt {
	byQuestion := make(map[uint]Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	var score, maxScore float64
	needsReview := false
	for _, q := range questions {
		maxScore += q.Weight
		ans, answered := byQuestion[q.ID]

		switch q.Kind {
		case FillBlank:
			if answered && !ans.blank() {
				needsReview = true
			}
		case MultipleChoice:
			if answered && exactChoiceMatch(q.Choices, ans.ChoiceIDs) {
				score += q.Weight
			}
		default: // SingleChoice, TrueFalse
			if answered && singleChoiceCorrect(q.Choices, ans.ChoiceIDs) {
				score += q.Weight
			}
		}
	}

	attempt := QuizAttempt{
		QuizID:      quizID,
		Score:       score,
		MaxScore:    maxScore,
		Percentage:  100,
		SubmittedAt: time.Now(),
	}
	if maxScore > 0 {
		attempt.Percentage = 100 * score / maxScore
	}

	if needsReview {
		attempt.Status = StatusAwaitingReview
		return attempt
	}
	attempt.Status = StatusSubmitted
	attempt.Passed = attempt.Percentage >= PassThreshold
	return attempt
}

func singleChoiceCorrect(choices []Choice, selected []uint) bool {
	if len(selected) != 1 {
		return false
	}
	for _, c := range choices {
		if c.ID == selected[0] {
			return c.Correct
		}
	}
	return false
}

func exactChoiceMatch(choices []Choice, selected []uint) bool {
	want := make(map[uint]bool)
	for _, c := range choices {
		if c.Correct {
			want[c.ID] = true
		}
	}
	got := make(map[uint]bool, len(selected))
	for _, id := range selected {
		got[id] = true
	}
	if len(got) != len(want) {
		return false
	}
	for id := range got {
		if !want[id] {
			return false
		}
	}
	return true
}
