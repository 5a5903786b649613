package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	t.Parallel()

	var gen StringID = NewUUID()
	a, b := gen.Generate(), gen.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.EqualValues(t, 7, parsed.Version())
}

func TestSnowflake_Generate(t *testing.T) {
	t.Parallel()

	sf, err := NewSnowflake(1)
	require.NoError(t, err)

	var gen NumberID = sf

	prev := gen.Generate()
	for range 100 {
		next := gen.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}

	_, err = NewSnowflake(2048)
	assert.Error(t, err)
}
