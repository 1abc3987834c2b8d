package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeChunkPlan_MatchesWorkedExample(t *testing.T) {
	plan := ComputeChunkPlan(100, 50, 10)
	assert.Equal(t, 10, plan.Chunks)
	assert.Equal(t, int64(5), plan.RowsPerChunk)
}

func TestComputeChunkPlan_SmallTableIsOneChunk(t *testing.T) {
	plan := ComputeChunkPlan(0.5, 3, 10)
	assert.Equal(t, 1, plan.Chunks)
	assert.Equal(t, int64(3), plan.RowsPerChunk)
}

func TestComputeChunkPlan_EmptyTableHasZeroRowsPerChunk(t *testing.T) {
	plan := ComputeChunkPlan(1, 0, 10)
	assert.Equal(t, int64(0), plan.RowsPerChunk)
}
