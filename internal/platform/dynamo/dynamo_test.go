package dynamo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	values := make([]string, 0, 251)
	for i := 0; i < 250; i++ {
		values = append(values, fmt.Sprintf("v-%d", i))
	}
	values = append(values, "v-0")

	batches := Chunk(values, MaxInOperands)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 100)
	assert.Len(t, batches[2], 50)
	assert.Equal(t, "v-100", batches[1][0])

	assert.Empty(t, Chunk(nil, MaxInOperands))
	assert.Len(t, Chunk([]string{"a", "b"}, 0), 1)
}

func TestIn(t *testing.T) {
	expr, values := In("#animal", "animal", []string{"a-1", "a-2"})
	assert.Equal(t, "#animal IN (:animal0, :animal1)", expr)
	assert.Equal(t, S("a-2"), values[":animal1"])
	assert.Len(t, values, 2)
}
