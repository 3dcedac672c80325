package engine

// ResolveLocks recomputes the Locked flag of every item in the tree. It is
// the only writer of that flag. The walk is deterministic (section order,
// then item order) and idempotent: resolving an already-resolved tree
// changes nothing.
func ResolveLocks(t *CourseTree) {
	for si := range t.Sections {
		sec := &t.Sections[si]
		for ii := range sec.Items {
			locked, _ := lockState(t, si, ii)
			sec.Items[ii].Locked = locked
		}
	}
}

// ExplainLock returns the diagnostic reason an item is locked. The second
// return is false when the item is not locked or does not exist.
func ExplainLock(t *CourseTree, sectionID, itemID uint) (LockReason, bool) {
	for si := range t.Sections {
		if t.Sections[si].ID != sectionID {
			continue
		}
		for ii := range t.Sections[si].Items {
			if t.Sections[si].Items[ii].ID != itemID {
				continue
			}
			locked, reason := lockState(t, si, ii)
			return reason, locked
		}
	}
	return LockReason{}, false
}

// lockState evaluates the lock rule for the item at position (si, ii).
func lockState(t *CourseTree, si, ii int) (bool, LockReason) {
	sec := &t.Sections[si]
	item := &sec.Items[ii]

	if item.Role == RolePreTest {
		return false, LockReason{}
	}

	if item.Role == RolePostTest {
		blocking := incompleteChapterItems(t)
		if len(blocking) > 0 {
			return true, LockReason{
				Kind:       ReasonPostTestGate,
				Blocking:   blocking,
				Percentage: chapterCompletionPercent(t),
			}
		}
		return false, LockReason{}
	}

	// Chapter section items from here on.
	if pre := t.Section(PreTestSectionID); pre != nil && !pre.AllCompleted() {
		return true, LockReason{
			Kind:     ReasonPreTest,
			Blocking: sectionRefs(pre, false),
		}
	}

	for pi := 0; pi < si; pi++ {
		prev := &t.Sections[pi]
		if !prev.Chapter() || prev.AllCompleted() {
			continue
		}
		return true, LockReason{
			Kind:     ReasonPreviousChapter,
			Blocking: sectionRefs(prev, false),
		}
	}

	if item.Role == RoleChapterQuiz {
		var blocking []ItemRef
		for i := range sec.Items {
			other := &sec.Items[i]
			if other.ID == item.ID || other.Completed {
				continue
			}
			blocking = append(blocking, ItemRef{SectionID: sec.ID, ItemID: other.ID, Title: other.Title})
		}
		if len(blocking) > 0 {
			return true, LockReason{Kind: ReasonChapterItems, Blocking: blocking}
		}
		return false, LockReason{}
	}

	if ii > 0 && !sec.Items[ii-1].Completed {
		prev := &sec.Items[ii-1]
		return true, LockReason{
			Kind:     ReasonPreviousItem,
			Blocking: []ItemRef{{SectionID: sec.ID, ItemID: prev.ID, Title: prev.Title}},
		}
	}
	return false, LockReason{}
}

// incompleteChapterItems lists every incomplete item across chapter
// sections, skipping the sentinels.
func incompleteChapterItems(t *CourseTree) []ItemRef {
	var out []ItemRef
	for si := range t.Sections {
		sec := &t.Sections[si]
		if !sec.Chapter() {
			continue
		}
		out = append(out, sectionRefs(sec, false)...)
	}
	return out
}

// sectionRefs lists the section's items as refs; completed selects whether
// completed or incomplete items are returned.
func sectionRefs(sec *Section, completed bool) []ItemRef {
	var out []ItemRef
	for i := range sec.Items {
		if sec.Items[i].Completed != completed {
			continue
		}
		out = append(out, ItemRef{SectionID: sec.ID, ItemID: sec.Items[i].ID, Title: sec.Items[i].Title})
	}
	return out
}

// chapterCompletionPercent is the completion percentage over chapter
// sections only, used in post-test gate diagnostics.
func chapterCompletionPercent(t *CourseTree) int {
	total, done := 0, 0
	for si := range t.Sections {
		sec := &t.Sections[si]
		if !sec.Chapter() {
			continue
		}
		for i := range sec.Items {
			total++
			if sec.Items[i].Completed {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * done / total
}
