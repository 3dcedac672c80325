package engine_test

import (
	"log"
	"os"
	"testing"

	"project/backend/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = log.New(os.Stderr, "", 0)

func TestApplyCompletion_PreTestOpensFirstChapter(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	err := engine.ApplyCompletion(tree, engine.CompletionEvent{
		SectionID: engine.PreTestSectionID, ItemID: 1, Kind: engine.KindQuiz,
	}, testLogger)
	require.NoError(t, err)

	assert.True(t, tree.Item(engine.PreTestSectionID, 1).Completed)
	assert.False(t, tree.Item(2, 1).Locked)
	assert.True(t, tree.Item(2, 2).Locked)
	assert.Equal(t, 100, tree.Section(engine.PreTestSectionID).ProgressPercent)
}

func TestApplyCompletion_AdjacentUnlock(t *testing.T) {
	s := twoChapterStructure()
	s.PreTestQuizID = 0
	s.PostTestQuizID = 0
	tree := resolvedTree(s, emptySnapshot())

	require.NoError(t, engine.ApplyCompletion(tree, engine.CompletionEvent{
		SectionID: 2, ItemID: 1, Kind: engine.KindVideo,
	}, testLogger))
	assert.False(t, tree.Item(2, 2).Locked, "quiz after its video")
	assert.Equal(t, 50, tree.Section(2).ProgressPercent)

	require.NoError(t, engine.ApplyCompletion(tree, engine.CompletionEvent{
		SectionID: 2, ItemID: 2, Kind: engine.KindQuiz,
	}, testLogger))
	assert.False(t, tree.Item(3, 1).Locked, "next chapter after last item")
	assert.Equal(t, 100, tree.Section(2).ProgressPercent)
}

func TestApplyCompletion_Idempotent(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	ev := engine.CompletionEvent{SectionID: engine.PreTestSectionID, ItemID: 1, Kind: engine.KindQuiz}
	require.NoError(t, engine.ApplyCompletion(tree, ev, testLogger))
	once := tree.Clone()

	require.NoError(t, engine.ApplyCompletion(tree, ev, testLogger))
	assert.Equal(t, once, tree.Clone())
}

func TestApplyCompletion_UnknownItemIsNoOp(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())
	before := tree.Clone()

	err := engine.ApplyCompletion(tree, engine.CompletionEvent{
		SectionID: 42, ItemID: 7, Kind: engine.KindVideo,
	}, testLogger)
	assert.ErrorIs(t, err, engine.ErrItemNotFound)
	assert.Equal(t, before, tree.Clone())
}

func TestApplyCompletion_PostTestOnlyByChapterRule(t *testing.T) {
	// Completing the last item of the final chapter must not unlock the
	// post-test by adjacency while another chapter is open.
	s := twoChapterStructure()
	snap := emptySnapshot()
	snap.Quizzes[100] = engine.QuizProgress{Completed: true, Passed: true}
	snap.Lessons[21] = true
	tree := resolvedTree(s, snap)

	require.NoError(t, engine.ApplyCompletion(tree, engine.CompletionEvent{
		SectionID: 3, ItemID: 2, Kind: engine.KindQuiz,
	}, testLogger))
	assert.True(t, tree.Item(engine.PostTestSectionID, 1).Locked,
		"chapter 1 is still incomplete")
}

// Applying completions never re-locks an item that was already unlocked.
func TestApplyCompletion_MonotonicUnlock(t *testing.T) {
	tree := resolvedTree(twoChapterStructure(), emptySnapshot())

	events := []engine.CompletionEvent{
		{SectionID: engine.PreTestSectionID, ItemID: 1, Kind: engine.KindQuiz},
		{SectionID: 2, ItemID: 1, Kind: engine.KindVideo},
		{SectionID: 2, ItemID: 2, Kind: engine.KindQuiz},
		{SectionID: 3, ItemID: 1, Kind: engine.KindVideo},
		{SectionID: 3, ItemID: 2, Kind: engine.KindQuiz},
	}

	unlocked := map[[2]uint]bool{}
	record := func() {
		for _, sec := range tree.Sections {
			for _, it := range sec.Items {
				key := [2]uint{sec.ID, it.ID}
				if unlocked[key] {
					assert.False(t, it.Locked, "section %d item %d re-locked", sec.ID, it.ID)
				}
				if !it.Locked {
					unlocked[key] = true
				}
			}
		}
	}

	record()
	for _, ev := range events {
		require.NoError(t, engine.ApplyCompletion(tree, ev, testLogger))
		record()
	}
	assert.False(t, tree.Item(engine.PostTestSectionID, 1).Locked)
}
