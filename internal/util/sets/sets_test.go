package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_Basics(t *testing.T) {
	s := New("aux", "log")
	s.Add("toc")
	s.Add("aux")

	assert.True(t, s.Has("aux"))
	assert.False(t, s.Has("tex"))
	assert.Equal(t, 3, s.Len())

	s.Delete("log")
	assert.False(t, s.Has("log"))
	assert.Equal(t, []string{"aux", "toc"}, Sorted(s))
}
