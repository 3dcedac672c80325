package engine

import (
	"fmt"
	"sort"
)

// SubjectStructure is the raw course data fetched from the store.
type SubjectStructure struct {
	SubjectID      uint
	Title          string
	PreTestQuizID  uint // 0 = no pre-test
	PostTestQuizID uint // 0 = no post-test
	Lessons        []LessonInfo
}

// LessonInfo is one raw lesson record. ChapterQuiz marks a quiz that covers
// the whole chapter rather than just its own lesson.
type LessonInfo struct {
	ID            uint
	Title         string
	ChapterNumber int // 0 = missing, defaults to chapter 1
	OrderNumber   int // 0 = missing, falls back to lesson ID ordering
	QuizID        uint
	ChapterQuiz   bool
}

// QuizProgress is the per-quiz slice of a progress snapshot.
type QuizProgress struct {
	Completed bool
	Passed    bool
	Status    AttemptStatus
}

// ProgressSnapshot is the server-owned completion state projected into a
// tree. The engine never mutates it.
type ProgressSnapshot struct {
	OverallPercent int
	Lessons        map[uint]bool // lesson ID -> completed
	LessonPercent  map[uint]int  // lesson ID -> partial watch percent
	Quizzes        map[uint]QuizProgress
}

// BuildTree assembles the ordered section/item structure for a subject and
// projects snapshot completion onto it. Lock flags are left unset; callers
// run ResolveLocks on the result.
func BuildTree(s SubjectStructure, snap ProgressSnapshot) *CourseTree {
	tree := &CourseTree{SubjectID: s.SubjectID, Title: s.Title}

	if s.PreTestQuizID != 0 {
		item := Item{
			ID:      1,
			Kind:    KindQuiz,
			Role:    RolePreTest,
			Title:   "Pre-test",
			QuizRef: s.PreTestQuizID,
		}
		applyQuizProgress(&item, snap)
		tree.Sections = append(tree.Sections, Section{
			ID:    PreTestSectionID,
			Title: "Pre-test",
			Items: []Item{item},
		})
	}

	for _, ch := range groupChapters(s.Lessons) {
		sec := Section{
			ID:    uint(ch.number) + 1,
			Title: fmt.Sprintf("Chapter %d", ch.number),
		}
		for idx, lesson := range ch.lessons {
			video := Item{
				ID:        uint(len(sec.Items)) + 1,
				Kind:      KindVideo,
				Title:     lesson.Title,
				LessonRef: lesson.ID,
			}
			if snap.Lessons[lesson.ID] {
				video.Completed = true
				video.ProgressPercent = 100
			} else {
				video.ProgressPercent = snap.LessonPercent[lesson.ID]
			}
			sec.Items = append(sec.Items, video)

			if lesson.QuizID != 0 {
				role := RoleLessonQuiz
				if lesson.ChapterQuiz {
					role = RoleChapterQuiz
				}
				quiz := Item{
					ID:        uint(len(sec.Items)) + 1,
					Kind:      KindQuiz,
					Role:      role,
					Title:     fmt.Sprintf("%d.%d %s", ch.number, idx+1, lesson.Title),
					QuizRef:   lesson.QuizID,
					LessonRef: lesson.ID,
				}
				applyQuizProgress(&quiz, snap)
				sec.Items = append(sec.Items, quiz)
			}
		}
		tree.Sections = append(tree.Sections, sec)
	}

	if s.PostTestQuizID != 0 {
		item := Item{
			ID:      1,
			Kind:    KindQuiz,
			Role:    RolePostTest,
			Title:   "Post-test",
			QuizRef: s.PostTestQuizID,
		}
		applyQuizProgress(&item, snap)
		tree.Sections = append(tree.Sections, Section{
			ID:    PostTestSectionID,
			Title: "Post-test",
			Items: []Item{item},
		})
	}

	tree.RecomputeProgress()
	return tree
}

func applyQuizProgress(item *Item, snap ProgressSnapshot) {
	qp, ok := snap.Quizzes[item.QuizRef]
	if !ok {
		return
	}
	if qp.Completed {
		item.Completed = true
		item.ProgressPercent = 100
		return
	}
	if qp.Status == StatusAwaitingReview {
		item.ReviewPending = true
	}
}

type chapter struct {
	number  int
	lessons []LessonInfo
}

// groupChapters buckets lessons by chapter number (missing defaults to 1),
// orders chapters ascending and lessons by (order number, lesson ID).
func groupChapters(lessons []LessonInfo) []chapter {
	byNumber := make(map[int][]LessonInfo)
	for _, l := range lessons {
		n := l.ChapterNumber
		if n <= 0 {
			n = 1
		}
		byNumber[n] = append(byNumber[n], l)
	}

	numbers := make([]int, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	out := make([]chapter, 0, len(numbers))
	for _, n := range numbers {
		ls := byNumber[n]
		sort.SliceStable(ls, func(i, j int) bool {
			oi, oj := ls[i].OrderNumber, ls[j].OrderNumber
			if oi <= 0 {
				oi = int(ls[i].ID)
			}
			if oj <= 0 {
				oj = int(ls[j].ID)
			}
			if oi != oj {
				return oi < oj
			}
			return ls[i].ID < ls[j].ID
		})
		out = append(out, chapter{number: n, lessons: ls})
	}
	return out
}
