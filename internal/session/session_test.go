package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_StartsClean(t *testing.T) {
	s := New()
	assert.False(t, s.Dirty)
	assert.Empty(t, s.Jobs)
}

func TestMarkDirty(t *testing.T) {
	s := New()
	s.MarkDirty()
	assert.True(t, s.Dirty)
}
