package tempdatahandlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := New()
	s.SetTemporaryData(1, "action", "TRY")
	s.SetTemporaryData(1, "match", "m1")

	v, ok := s.Take(1, "action")
	assert.True(t, ok)
	assert.Equal(t, "TRY", v)
	_, ok = s.Take(1, "action")
	assert.False(t, ok)

	s.DeleteTemporaryData(1)
	_, ok = s.Take(1, "match")
	assert.False(t, ok)
	_, ok = s.Take(2, "match")
	assert.False(t, ok)
}
