package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocatorMonotonic(t *testing.T) {
	a := New(0)
	require.Equal(t, uint64(1), a.Next())
	require.Equal(t, uint64(2), a.Next())
	require.Equal(t, uint64(2), a.Current())
}

func TestAllocatorResumesAfterReplay(t *testing.T) {
	a := New(0)
	a.Reset(41)
	require.Equal(t, uint64(42), a.Next())
}
