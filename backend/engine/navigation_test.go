package engine_test

import (
	"testing"

	"project/backend/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultItem_FirstIncompleteUnlocked(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	ref, err := engine.DefaultItem(tree)
	require.NoError(t, err)
	assert.Equal(t, engine.PreTestSectionID, ref.SectionID)
	assert.Equal(t, uint(1), ref.ItemID)
}

func TestDefaultItem_SkipsCompleted(t *testing.T) {
	snap := emptySnapshot()
	snap.Quizzes[100] = engine.QuizProgress{Completed: true, Passed: true}
	snap.Lessons[11] = true
	tree := resolvedTree(twoChapterStructure(), snap)

	ref, err := engine.DefaultItem(tree)
	require.NoError(t, err)
	assert.Equal(t, uint(2), ref.SectionID)
	assert.Equal(t, uint(2), ref.ItemID, "chapter 1 quiz is next")
}

func TestDefaultItem_AllCompleted(t *testing.T) {
	snap := emptySnapshot()
	snap.Quizzes[100] = engine.QuizProgress{Completed: true, Passed: true}
	snap.Lessons[11] = true
	snap.Quizzes[101] = engine.QuizProgress{Completed: true, Passed: true}
	snap.Lessons[21] = true
	snap.Quizzes[201] = engine.QuizProgress{Completed: true, Passed: true}
	snap.Quizzes[200] = engine.QuizProgress{Completed: true, Passed: true}
	tree := resolvedTree(twoChapterStructure(), snap)

	ref, err := engine.DefaultItem(tree)
	require.NoError(t, err)
	assert.Equal(t, engine.PreTestSectionID, ref.SectionID, "falls back to first unlocked")
}

func TestDefaultItem_EmptyTree(t *testing.T) {
	tree := engine.BuildTree(engine.SubjectStructure{SubjectID: 1}, emptySnapshot())

	_, err := engine.DefaultItem(tree)
	assert.ErrorIs(t, err, engine.ErrNoContent)
}

func TestSelectItem_AcceptsUnlocked(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	ref, err := engine.SelectItem(tree, engine.PreTestSectionID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pre-test", ref.Title)
}

func TestSelectItem_RejectsLockedWithReason(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	_, err := engine.SelectItem(tree, 2, 1)
	var locked *engine.LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, engine.ReasonPreTest, locked.Reason.Kind)
	require.NotEmpty(t, locked.Reason.Blocking)
	assert.Equal(t, "Pre-test", locked.Reason.Blocking[0].Title)
}

func TestSelectItem_UnknownItem(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	_, err := engine.SelectItem(tree, 2, 99)
	assert.ErrorIs(t, err, engine.ErrItemNotFound)
}
