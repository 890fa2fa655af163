package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TeamRadiantAI/polaris-sub000/access"
)

type counter struct{}
type report struct{}

func TestReadReadDoesNotConflict(t *testing.T) {
	a := access.WithRead[counter](access.New(), access.KindResource)
	b := access.WithRead[counter](access.New(), access.KindResource)
	assert.False(t, access.Conflict(a, b))
}

func TestReadWriteConflicts(t *testing.T) {
	a := access.WithRead[counter](access.New(), access.KindResource)
	b := access.WithWrite[counter](access.New())
	assert.True(t, access.Conflict(a, b))
}

func TestWriteWriteConflicts(t *testing.T) {
	a := access.WithWrite[counter](access.New())
	b := access.WithWrite[counter](access.New())
	assert.True(t, access.Conflict(a, b))
}

func TestResourceAndOutputOfSameTypeDoNotConflict(t *testing.T) {
	a := access.WithWrite[counter](access.New())
	b := access.WithRead[counter](access.New(), access.KindOutput)
	assert.False(t, access.Conflict(a, b))
}

func TestDistinctTypesDoNotConflict(t *testing.T) {
	a := access.WithWrite[counter](access.New())
	b := access.WithWrite[report](access.New())
	assert.False(t, access.Conflict(a, b))
}

func TestMergePreservesOrder(t *testing.T) {
	a := access.WithRead[counter](access.New(), access.KindResource)
	b := access.WithWrite[report](access.New())
	merged := access.Merge(a, b)
	assert.Len(t, merged.Records(), 2)
	assert.Equal(t, access.ModeRead, merged.Records()[0].Mode)
	assert.Equal(t, access.ModeWrite, merged.Records()[1].Mode)
}
