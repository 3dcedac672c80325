package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound signals a completion event or selection targeting an
	// item that is not in the tree.
	ErrItemNotFound = errors.New("item not found in course tree")

	// ErrNoContent signals selection over a tree with no items.
	ErrNoContent = errors.New("course tree has no content")

	// ErrSuperseded signals that an in-flight fetch finished after a newer
	// load replaced the session state; its result was discarded.
	ErrSuperseded = errors.New("fetch superseded by a newer load")
)

// LockReasonKind names the unmet prerequisite behind a locked item.
type LockReasonKind int

const (
	ReasonPreTest         LockReasonKind = iota // pre-test not completed
	ReasonPreviousChapter                       // an earlier chapter has incomplete items
	ReasonPreviousItem                          // the immediately preceding item is incomplete
	ReasonChapterItems                          // chapter quiz: chapter items incomplete
	ReasonPostTestGate                          // post-test: not all chapters complete
)

func (k LockReasonKind) String() string {
	switch k {
	case ReasonPreTest:
		return "pre_test_incomplete"
	case ReasonPreviousChapter:
		return "previous_chapter_incomplete"
	case ReasonPreviousItem:
		return "previous_item_incomplete"
	case ReasonChapterItems:
		return "chapter_items_incomplete"
	case ReasonPostTestGate:
		return "post_test_gated"
	default:
		return "unknown"
	}
}

// LockReason carries the diagnostic context for a locked item: which
// prerequisite is unmet and, where relevant, the incomplete items behind it.
type LockReason struct {
	Kind       LockReasonKind `json:"kind"`
	Blocking   []ItemRef      `json:"blocking,omitempty"`
	Percentage int            `json:"percentage,omitempty"` // section progress behind a gate
}

// LockedError rejects an explicit selection of a locked item. It is an
// expected outcome, not a failure.
type LockedError struct {
	Target ItemRef
	Reason LockReason
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("item %d in section %d is locked: %s", e.Target.ItemID, e.Target.SectionID, e.Reason.Kind)
}
