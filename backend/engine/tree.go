package engine

import "math"

// Sentinel section IDs. Chapter sections occupy the range in between,
// keyed as chapter number + 1 so chapter 1 becomes section 2.
const (
	PreTestSectionID  uint = 1
	PostTestSectionID uint = 9999
)

type ItemKind int

const (
	KindVideo ItemKind = iota
	KindQuiz
)

func (k ItemKind) String() string {
	if k == KindQuiz {
		return "quiz"
	}
	return "video"
}

// QuizRole classifies a quiz item by what it covers. It is assigned once
// by the builder from structural data and never re-derived from titles.
type QuizRole int

const (
	RoleNone QuizRole = iota
	RolePreTest
	RolePostTest
	RoleLessonQuiz  // attached to a single lesson
	RoleChapterQuiz // covers all lessons of its chapter
)

func (r QuizRole) String() string {
	switch r {
	case RolePreTest:
		return "pre_test"
	case RolePostTest:
		return "post_test"
	case RoleLessonQuiz:
		return "lesson_quiz"
	case RoleChapterQuiz:
		return "chapter_quiz"
	default:
		return "none"
	}
}

// Item is a single video lesson or quiz within a section. ID is the item's
// 1-based position within its section; LessonRef/QuizRef carry the natural
// keys into the persistence layer. Locked is derived state owned by the
// lock resolver; nothing else writes it.
type Item struct {
	ID              uint     `json:"id"`
	Kind            ItemKind `json:"kind"`
	Role            QuizRole `json:"role"`
	Title           string   `json:"title"`
	Locked          bool     `json:"locked"`
	Completed       bool     `json:"completed"`
	ProgressPercent int      `json:"progress_percent"`
	LessonRef       uint     `json:"lesson_ref,omitempty"`
	QuizRef         uint     `json:"quiz_ref,omitempty"`
	ReviewPending   bool     `json:"review_pending,omitempty"`
}

type Section struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Items           []Item `json:"items"`
	ProgressPercent int    `json:"progress_percent"`
}

// Chapter reports whether the section is a regular chapter section rather
// than one of the pre/post-test sentinels.
func (s *Section) Chapter() bool {
	return s.ID != PreTestSectionID && s.ID != PostTestSectionID
}

// AllCompleted reports whether every item in the section is completed.
// Empty sections count as completed.
func (s *Section) AllCompleted() bool {
	for i := range s.Items {
		if !s.Items[i].Completed {
			return false
		}
	}
	return true
}

func (s *Section) recomputeProgress() {
	if len(s.Items) == 0 {
		s.ProgressPercent = 0
		return
	}
	done := 0
	for i := range s.Items {
		if s.Items[i].Completed {
			done++
		}
	}
	s.ProgressPercent = int(math.Round(100 * float64(done) / float64(len(s.Items))))
}

// CourseTree is the annotated structure of one subject for one learner.
// It is rebuilt wholesale whenever the raw structure or an authoritative
// progress snapshot changes.
type CourseTree struct {
	SubjectID uint      `json:"subject_id"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
}

// Empty reports whether the tree has no items at all.
func (t *CourseTree) Empty() bool {
	for i := range t.Sections {
		if len(t.Sections[i].Items) > 0 {
			return false
		}
	}
	return true
}

// Section returns the section with the given ID, or nil.
func (t *CourseTree) Section(id uint) *Section {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i]
		}
	}
	return nil
}

// Item returns the item at (sectionID, itemID), or nil.
func (t *CourseTree) Item(sectionID, itemID uint) *Item {
	sec := t.Section(sectionID)
	if sec == nil {
		return nil
	}
	for i := range sec.Items {
		if sec.Items[i].ID == itemID {
			return &sec.Items[i]
		}
	}
	return nil
}

// ItemRef addresses an item within a tree.
type ItemRef struct {
	SectionID uint   `json:"section_id"`
	ItemID    uint   `json:"item_id"`
	Title     string `json:"title,omitempty"`
}

// FindByLesson locates the video item backed by the given lesson.
func (t *CourseTree) FindByLesson(lessonID uint) (ItemRef, bool) {
	for si := range t.Sections {
		for ii := range t.Sections[si].Items {
			it := &t.Sections[si].Items[ii]
			if it.Kind == KindVideo && it.LessonRef == lessonID {
				return ItemRef{SectionID: t.Sections[si].ID, ItemID: it.ID, Title: it.Title}, true
			}
		}
	}
	return ItemRef{}, false
}

// FindByQuiz locates the quiz item backed by the given quiz.
func (t *CourseTree) FindByQuiz(quizID uint) (ItemRef, bool) {
	for si := range t.Sections {
		for ii := range t.Sections[si].Items {
			it := &t.Sections[si].Items[ii]
			if it.Kind == KindQuiz && it.QuizRef == quizID {
				return ItemRef{SectionID: t.Sections[si].ID, ItemID: it.ID, Title: it.Title}, true
			}
		}
	}
	return ItemRef{}, false
}

// RecomputeProgress refreshes every section's aggregate percentage.
func (t *CourseTree) RecomputeProgress() {
	for i := range t.Sections {
		t.Sections[i].recomputeProgress()
	}
}

// Clone returns a deep copy, used to hand read-only snapshots to callers.
func (t *CourseTree) Clone() *CourseTree {
	out := &CourseTree{SubjectID: t.SubjectID, Title: t.Title}
	out.Sections = make([]Section, len(t.Sections))
	for i := range t.Sections {
		sec := t.Sections[i]
		items := make([]Item, len(sec.Items))
		copy(items, sec.Items)
		sec.Items = items
		out.Sections[i] = sec
	}
	return out
}
