package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	bare := NewUUID("").Generate()
	_, err := uuid.Parse(bare)
	require.NoError(t, err)

	gen := NewUUID("match")
	a, b := gen.Generate(), gen.Generate()
	assert.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "match_"))
	_, err = uuid.Parse(strings.TrimPrefix(a, "match_"))
	assert.NoError(t, err)
}

func TestSequentialGenerator(t *testing.T) {
	gen := NewSequential("m")
	assert.Equal(t, "m_1", gen.Generate())
	assert.Equal(t, "m_2", gen.Generate())
	assert.Equal(t, "1", NewSequential("").Generate())
}
