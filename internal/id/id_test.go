package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate("run")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{"run", "watch", "x"} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, prefix+"-"))
			tail := strings.TrimPrefix(id, prefix+"-")
			assert.Len(t, tail, Length)
			for _, r := range tail {
				assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected character %q in %s", r, id)
			}
		})
	}
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()

	assert.True(t, strings.HasPrefix(id, RunPrefix+"-"))
	assert.Len(t, id, len(RunPrefix)+1+Length)
}
