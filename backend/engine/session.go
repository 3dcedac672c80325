package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// LessonDetail is the full lesson record fetched for display.
type LessonDetail struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	VideoSource string `json:"video_source"`
	VideoID     string `json:"video_id"`
}

// Store is the persistence collaborator. Everything the engine knows about
// the outside world goes through it; the engine owns none of this state.
type Store interface {
	GetProgress(ctx context.Context, userID, subjectID uint) (ProgressSnapshot, error)
	GetSubjectStructure(ctx context.Context, subjectID uint) (SubjectStructure, error)
	GetLesson(ctx context.Context, lessonID uint) (LessonDetail, error)
	GetQuiz(ctx context.Context, quizID uint) ([]Question, error)
	CompleteLesson(ctx context.Context, userID, subjectID, lessonID uint) error
	SubmitQuiz(ctx context.Context, userID, subjectID uint, attempt QuizAttempt, answers []Answer) error
	SaveVideoProgress(ctx context.Context, userID, lessonID uint, position, duration float64) error
}

// Session owns the course tree of one learner viewing one subject. Every
// public operation serializes on the session mutex, so completion events
// are fully applied (cascade plus resolver re-run) before the next one is
// processed.
type Session struct {
	mu sync.Mutex

	store  Store
	logger *log.Logger

	userID    uint
	subjectID uint

	epoch    uint64
	tree     *CourseTree
	active   ItemRef
	watches  map[uint]*WatchSession
	attempts map[uint][]QuizAttempt
}

func NewSession(store Store, logger *log.Logger, userID, subjectID uint) *Session {
	return &Session{
		store:     store,
		logger:    logger,
		userID:    userID,
		subjectID: subjectID,
		watches:   make(map[uint]*WatchSession),
		attempts:  make(map[uint][]QuizAttempt),
	}
}

// Load fetches the subject structure and progress snapshot and rebuilds the
// tree. A Load that finishes after a newer Load started is discarded and
// reported as ErrSuperseded.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	structure, err := s.store.GetSubjectStructure(ctx, s.subjectID)
	if err != nil {
		return fmt.Errorf("fetching subject structure: %w", err)
	}
	snapshot, err := s.store.GetProgress(ctx, s.userID, s.subjectID)
	if err != nil {
		return fmt.Errorf("fetching progress: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		s.logger.Printf("stale load for subject %d discarded", s.subjectID)
		return ErrSuperseded
	}
	s.installTree(BuildTree(structure, snapshot))
	return nil
}

// Refresh re-fetches the authoritative snapshot and rebuilds. The fetched
// state replaces any locally cascaded state wholesale; it never merges.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// installTree swaps in a freshly built tree, resolves locks and restores a
// valid active item. Callers hold the mutex.
func (s *Session) installTree(tree *CourseTree) {
	ResolveLocks(tree)
	s.tree = tree

	// Keep the current selection when it is still present and unlocked;
	// fall back to the default pick otherwise.
	if it := tree.Item(s.active.SectionID, s.active.ItemID); it == nil || it.Locked {
		ref, err := DefaultItem(tree)
		if err != nil {
			s.active = ItemRef{}
			return
		}
		s.active = ref
	}
}

// Tree returns a deep copy of the annotated tree for rendering.
func (s *Session) Tree() (*CourseTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return nil, ErrNoContent
	}
	return s.tree.Clone(), nil
}

// Active returns the currently selected item.
func (s *Session) Active() ItemRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Select handles an explicit selection request, rejecting locked targets
// with a LockedError.
func (s *Session) Select(sectionID, itemID uint) (ItemRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return ItemRef{}, ErrNoContent
	}
	ref, err := SelectItem(s.tree, sectionID, itemID)
	if err != nil {
		return ItemRef{}, err
	}
	s.active = ref
	return ref, nil
}

// Lesson fetches lesson detail and resolves its playable video id,
// substituting the fixed fallback when extraction fails.
func (s *Session) Lesson(ctx context.Context, lessonID uint) (LessonDetail, error) {
	detail, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return LessonDetail{}, err
	}
	id, ok := ExtractVideoID(detail.VideoSource)
	if !ok {
		s.logger.Printf("no playable id in video source of lesson %d, using fallback", lessonID)
	}
	detail.VideoID = id
	return detail, nil
}

// ReportVideoProgress feeds a playback position into the lesson's watch
// session. Position and duration are persisted fire-and-forget; a persist
// failure is logged and does not block completion. When the watch
// threshold is crossed for the first time this session, the lesson is
// completed remotely and the completion cascades through the tree. The
// returned flag reports whether this update completed the lesson.
func (s *Session) ReportVideoProgress(ctx context.Context, lessonID uint, position, duration float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return false, ErrNoContent
	}

	w, ok := s.watches[lessonID]
	if !ok {
		w = NewWatchSession(lessonID)
		s.watches[lessonID] = w
	}
	crossed := w.Update(position, duration)

	if err := s.store.SaveVideoProgress(ctx, s.userID, lessonID, position, duration); err != nil {
		s.logger.Printf("saving video position for lesson %d: %v", lessonID, err)
	}

	if !crossed {
		return false, nil
	}

	ref, found := s.tree.FindByLesson(lessonID)
	if !found {
		s.logger.Printf("watched lesson %d has no item in subject %d", lessonID, s.subjectID)
		return false, ErrItemNotFound
	}

	if err := s.store.CompleteLesson(ctx, s.userID, s.subjectID, lessonID); err != nil {
		return false, fmt.Errorf("completing lesson %d: %w", lessonID, err)
	}
	if err := ApplyCompletion(s.tree, CompletionEvent{SectionID: ref.SectionID, ItemID: ref.ItemID, Kind: KindVideo}, s.logger); err != nil {
		return false, err
	}
	return true, nil
}

// SubmitQuiz scores an attempt, persists it and, on a pass, cascades the
// quiz item's completion. Attempts awaiting review leave the item
// incomplete; the review badge comes from the attempt status. Each attempt
// is appended to the session history with the most recent authoritative.
func (s *Session) SubmitQuiz(ctx context.Context, quizID uint, answers []Answer) (QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return QuizAttempt{}, ErrNoContent
	}

	questions, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return QuizAttempt{}, fmt.Errorf("fetching quiz %d: %w", quizID, err)
	}

	attempt := ScoreAttempt(quizID, questions, answers)
	attempt.ID = uuid.NewString()
	if err := s.store.SubmitQuiz(ctx, s.userID, s.subjectID, attempt, answers); err != nil {
		return QuizAttempt{}, fmt.Errorf("submitting quiz %d: %w", quizID, err)
	}
	s.attempts[quizID] = append(s.attempts[quizID], attempt)

	ref, found := s.tree.FindByQuiz(quizID)
	if !found {
		s.logger.Printf("submitted quiz %d has no item in subject %d", quizID, s.subjectID)
		return attempt, nil
	}

	item := s.tree.Item(ref.SectionID, ref.ItemID)
	switch {
	case attempt.Passed:
		if err := ApplyCompletion(s.tree, CompletionEvent{SectionID: ref.SectionID, ItemID: ref.ItemID, Kind: KindQuiz}, s.logger); err != nil && !errors.Is(err, ErrItemNotFound) {
			return attempt, err
		}
	case attempt.Status == StatusAwaitingReview:
		item.ReviewPending = true
	}
	return attempt, nil
}

// Attempts returns the session's attempt history for a quiz, oldest first.
func (s *Session) Attempts(quizID uint) []QuizAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QuizAttempt, len(s.attempts[quizID]))
	copy(out, s.attempts[quizID])
	return out
}
