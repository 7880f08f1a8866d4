package outbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutNewThenMarkSentThenAcked(t *testing.T) {
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	defer ob.Close()

	require.NoError(t, ob.PutNew(1, []byte("event-1")))

	rec, err := ob.Get(1)
	require.NoError(t, err)
	require.Equal(t, StateNew, rec.State)
	require.Equal(t, []byte("event-1"), rec.Payload)

	require.NoError(t, ob.MarkSent(1, 0))
	rec, err = ob.Get(1)
	require.NoError(t, err)
	require.Equal(t, StateSent, rec.State)

	require.NoError(t, ob.MarkAcked(1, 0))
	rec, err = ob.Get(1)
	require.NoError(t, err)
	require.Equal(t, StateAcked, rec.State)
	require.Equal(t, []byte("event-1"), rec.Payload) // payload survives state transitions
}

func TestScanByStateFindsOnlyMatchingEntries(t *testing.T) {
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	defer ob.Close()

	require.NoError(t, ob.PutNew(1, []byte("a")))
	require.NoError(t, ob.PutNew(2, []byte("b")))
	require.NoError(t, ob.MarkSent(2, 1))

	var newSeqs []uint64
	require.NoError(t, ob.ScanByState(StateNew, func(seq uint64, rec Record) error {
		newSeqs = append(newSeqs, seq)
		return nil
	}))
	require.Equal(t, []uint64{1}, newSeqs)
}

func TestDeleteRemovesEntry(t *testing.T) {
	ob, err := Open(t.TempDir())
	require.NoError(t, err)
	defer ob.Close()

	require.NoError(t, ob.PutNew(5, []byte("x")))
	require.NoError(t, ob.Delete(5))
	_, err = ob.Get(5)
	require.Error(t, err)
}
