package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_Length(t *testing.T) {
	code, err := GenerateCode(24)
	require.NoError(t, err)
	assert.Len(t, code, 48) // hex doubles the byte count
}

func TestGenerateCode_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(16)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}
