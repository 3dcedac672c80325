package engine

// DefaultItem picks the item to display when nothing was requested: the
// first incomplete unlocked item in section-then-item order, else the
// first unlocked item (everything-completed case), else ErrNoContent.
func DefaultItem(t *CourseTree) (ItemRef, error) {
	if t == nil || t.Empty() {
		return ItemRef{}, ErrNoContent
	}

	for si := range t.Sections {
		sec := &t.Sections[si]
		for ii := range sec.Items {
			it := &sec.Items[ii]
			if !it.Completed && !it.Locked {
				return ItemRef{SectionID: sec.ID, ItemID: it.ID, Title: it.Title}, nil
			}
		}
	}
	for si := range t.Sections {
		sec := &t.Sections[si]
		for ii := range sec.Items {
			it := &sec.Items[ii]
			if !it.Locked {
				return ItemRef{SectionID: sec.ID, ItemID: it.ID, Title: it.Title}, nil
			}
		}
	}
	return ItemRef{}, ErrNoContent
}

// SelectItem validates an explicit selection request. A locked target is
// rejected with a LockedError carrying the unmet prerequisite; an unknown
// target with ErrItemNotFound.
func SelectItem(t *CourseTree, sectionID, itemID uint) (ItemRef, error) {
	item := t.Item(sectionID, itemID)
	if item == nil {
		return ItemRef{}, ErrItemNotFound
	}
	ref := ItemRef{SectionID: sectionID, ItemID: itemID, Title: item.Title}
	if item.Locked {
		reason, _ := ExplainLock(t, sectionID, itemID)
		return ItemRef{}, &LockedError{Target: ref, Reason: reason}
	}
	return ref, nil
}
