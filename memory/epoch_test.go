package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetireRingEnqueueDequeueFIFO(t *testing.T) {
	r := NewRetireRing(4)
	require.True(t, r.Enqueue("a"))
	require.True(t, r.Enqueue("b"))

	a, ok := r.Dequeue()
	require.True(t, ok)
	require.Equal(t, "a", a.Value)

	b, ok := r.Dequeue()
	require.True(t, ok)
	require.Equal(t, "b", b.Value)

	_, ok = r.Dequeue()
	require.False(t, ok)
}

func TestRetireRingFullReturnsFalse(t *testing.T) {
	r := NewRetireRing(2)
	require.True(t, r.Enqueue(1))
	require.True(t, r.Enqueue(2))
	require.False(t, r.Enqueue(3))
}

func TestAdvanceEpochAndReclaimWaitsForActiveReader(t *testing.T) {
	ring := NewRetireRing(4)
	pool := NewPool(func() *int { v := 0; return &v })

	var reader ReaderEpoch
	reader.Enter()

	obj := 7
	ring.Enqueue(&obj)

	AdvanceEpochAndReclaim(ring, pool, &reader)
	// reader entered before retirement advanced the epoch; still unsafe.
	entry, ok := ring.Dequeue()
	require.True(t, ok)
	require.Equal(t, &obj, entry.Value.(*int))

	ring.Enqueue(&obj)
	reader.Exit()
	AdvanceEpochAndReclaim(ring, pool, &reader)
	_, ok = ring.Dequeue()
	require.False(t, ok)
}

// TestAdvanceEpochAndReclaimBlocksOnlyReadersOlderThanRetirement exercises
// the epoch-ordering rule directly: a reader that entered before an
// object was retired must block its reclamation, but a reader that
// enters only after the retirement never observed the object and must
// not block it, even though both readers are "active" at reclaim time.
func TestAdvanceEpochAndReclaimBlocksOnlyReadersOlderThanRetirement(t *testing.T) {
	pool := NewPool(func() *int { v := 0; return &v })

	t.Run("reader older than retirement blocks reclaim", func(t *testing.T) {
		ring := NewRetireRing(4)

		var reader ReaderEpoch
		reader.Enter() // reader's epoch predates the retirement below.

		GlobalEpoch.Add(1) // some unrelated activity advances the clock.

		obj := 1
		ring.Enqueue(&obj) // retired at the new, later epoch.

		AdvanceEpochAndReclaim(ring, pool, &reader)
		entry, ok := ring.Dequeue()
		require.True(t, ok, "object retired after an older reader entered must not be reclaimed")
		require.Equal(t, &obj, entry.Value.(*int))
	})

	t.Run("reader newer than retirement does not block reclaim", func(t *testing.T) {
		ring := NewRetireRing(4)

		obj := 2
		ring.Enqueue(&obj) // retired at the current epoch.

		GlobalEpoch.Add(1) // clock advances before the reader below ever starts.

		var reader ReaderEpoch
		reader.Enter() // reader's epoch postdates the retirement above.

		AdvanceEpochAndReclaim(ring, pool, &reader)
		_, ok := ring.Dequeue()
		require.False(t, ok, "object retired before an active reader even entered must be reclaimed")
	})
}

func TestOrderPoolGetReturnsZeroedOrder(t *testing.T) {
	p := NewOrderPool(8)
	o := p.Get()
	require.Equal(t, int64(0), o.Qty)
	o.Qty = 5
	p.RetireOrder(o)
	p.Reclaim()
}
