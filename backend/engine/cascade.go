package engine

import "log"

// CompletionEvent records that the learner finished an item: a video
// crossed the watch threshold or a quiz attempt passed.
type CompletionEvent struct {
	SectionID uint     `json:"section_id"`
	ItemID    uint     `json:"item_id"`
	Kind      ItemKind `json:"kind"`
}

// ApplyCompletion marks the event's item completed and propagates unlock
// state. Completing an already-completed item is a no-op; an unknown item
// is logged and reported as ErrItemNotFound without touching the tree.
//
// The adjacent unlock is only a fast path. The full lock resolver re-runs
// afterwards and is the source of truth; for previously-unlocked items its
// result never disagrees with the fast path, because completing an item
// only ever relaxes the lock rules.
func ApplyCompletion(t *CourseTree, ev CompletionEvent, logger *log.Logger) error {
	item := t.Item(ev.SectionID, ev.ItemID)
	if item == nil {
		if logger != nil {
			logger.Printf("completion event dropped: no item %d in section %d", ev.ItemID, ev.SectionID)
		}
		return ErrItemNotFound
	}
	if item.Completed {
		return nil
	}

	item.Completed = true
	item.ProgressPercent = 100
	item.ReviewPending = false

	fastPathUnlock(t, ev.SectionID, ev.ItemID)

	t.RecomputeProgress()
	ResolveLocks(t)
	return nil
}

func fastPathUnlock(t *CourseTree, sectionID, itemID uint) {
	// Completing the pre-test always opens the first chapter item.
	if sectionID == PreTestSectionID {
		unlockFirstChapterItem(t)
		return
	}

	for si := range t.Sections {
		sec := &t.Sections[si]
		if sec.ID != sectionID {
			continue
		}
		for ii := range sec.Items {
			if sec.Items[ii].ID != itemID {
				continue
			}
			if ii+1 < len(sec.Items) {
				sec.Items[ii+1].Locked = false
				return
			}
			// Last item: open the next section's first item. The post-test
			// sentinel is governed solely by the all-chapters rule, which
			// the resolver re-run applies.
			if si+1 < len(t.Sections) {
				next := &t.Sections[si+1]
				if next.ID != PostTestSectionID && len(next.Items) > 0 {
					next.Items[0].Locked = false
				}
			}
			return
		}
	}
}

func unlockFirstChapterItem(t *CourseTree) {
	for si := range t.Sections {
		sec := &t.Sections[si]
		if sec.Chapter() && len(sec.Items) > 0 {
			sec.Items[0].Locked = false
			return
		}
	}
}
