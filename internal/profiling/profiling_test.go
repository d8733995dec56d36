package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTopNOrdersByCost(t *testing.T) {
	ResetTick()
	Add("meshing.RebuildDirty", 2*time.Millisecond)
	Add("world.UpdateStreaming", 400*time.Microsecond)
	Add("entity.Step", 100*time.Microsecond)
	Add("world.UpdateStreaming", 100*time.Microsecond)

	assert.Equal(t, "meshing.RebuildDirty:2.0ms, world.UpdateStreaming:0.5ms", TopN(2))
	assert.Len(t, Snapshot(), 3)

	ResetTick()
	assert.Empty(t, Snapshot())
	assert.Empty(t, TopN(5))
}
