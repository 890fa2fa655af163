package sysctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

type budget struct{ remaining int }
type scratch struct{ note string }

func TestChildSeesParentResources(t *testing.T) {
	parent := sysctx.New()
	sysctx.InsertResource(parent, budget{remaining: 10})
	child := parent.Child()

	got, err := sysctx.GetResource[budget](child)
	assert.NoError(t, err)
	assert.Equal(t, 10, got.remaining)
}

func TestChildCanShadowParent(t *testing.T) {
	parent := sysctx.New()
	sysctx.InsertResource(parent, budget{remaining: 10})
	child := parent.Child()
	sysctx.InsertResource(child, budget{remaining: 1})

	got, err := sysctx.GetResource[budget](child)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.remaining)

	parentGot, err := sysctx.GetResource[budget](parent)
	assert.NoError(t, err)
	assert.Equal(t, 10, parentGot.remaining)
}

func TestMutationOnlyInCurrentScope(t *testing.T) {
	parent := sysctx.New()
	sysctx.InsertResource(parent, budget{remaining: 10})
	child := parent.Child()

	_, err := sysctx.GetResourceMut[budget](child)
	assert.Error(t, err)
}

func TestChildCanMutateOwnResources(t *testing.T) {
	child := sysctx.New()
	sysctx.InsertResource(child, budget{remaining: 4})

	got, err := sysctx.GetResourceMut[budget](child)
	assert.NoError(t, err)
	assert.Equal(t, 4, got.remaining)
}

func TestDeepHierarchyWithShadowing(t *testing.T) {
	root := sysctx.New()
	sysctx.InsertResource(root, budget{remaining: 100})
	mid := root.Child()
	leaf := mid.Child()
	sysctx.InsertResource(leaf, budget{remaining: 1})

	got, err := sysctx.GetResource[budget](leaf)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.remaining)

	got, err = sysctx.GetResource[budget](mid)
	assert.NoError(t, err)
	assert.Equal(t, 100, got.remaining)
}

func TestGlobalsAreSharedAcrossChildren(t *testing.T) {
	globals := resource.NewStore()
	resource.Insert(globals, scratch{note: "shared"})

	root := sysctx.WithGlobals(globals)
	childA := root.Child()
	childB := root.Child()

	gotA, err := sysctx.GetResource[scratch](childA)
	assert.NoError(t, err)
	gotB, err := sysctx.GetResource[scratch](childB)
	assert.NoError(t, err)
	assert.Equal(t, gotA.note, gotB.note)
}

func TestOutputNotFoundReturnsErrorAndTryOutputReturnsFalse(t *testing.T) {
	c := sysctx.New()
	_, err := sysctx.GetOutput[scratch](c)
	assert.Error(t, err)

	_, ok := sysctx.TryOutput[scratch](c)
	assert.False(t, ok)
}

func TestTakeOutputsAndMergeIntoParent(t *testing.T) {
	parent := sysctx.New()
	branch := parent.Child()
	sysctx.InsertOutput(branch, scratch{note: "from-branch"})

	taken := branch.TakeOutputs()
	parent.Outputs().MergeFrom(taken)

	got, err := sysctx.GetOutput[scratch](parent)
	assert.NoError(t, err)
	assert.Equal(t, "from-branch", got.note)

	_, err = sysctx.GetOutput[scratch](branch)
	assert.Error(t, err, "branch outputs were taken and must now be empty")
}
