package memory

import "clobengine/orderbook"

// OrderPool is the engine's pool of *orderbook.Order values, plus the
// retire ring that defers returning a removed order to the pool until
// no concurrent snapshot reader can still observe it.
type OrderPool struct {
	pool   *Pool[orderbook.Order]
	Retire *RetireRing
}

// NewOrderPool constructs an OrderPool with the given retire-ring capacity.
func NewOrderPool(retireCapacity uint64) *OrderPool {
	return &OrderPool{
		pool:   NewPool(func() *orderbook.Order { return &orderbook.Order{} }),
		Retire: NewRetireRing(retireCapacity),
	}
}

// Get returns a zeroed *orderbook.Order, reused from the pool when possible.
func (p *OrderPool) Get() *orderbook.Order {
	o := p.pool.Get()
	o.Reset()
	return o
}

// RetireOrder defers o for reuse until the current epoch has fully drained
// (i.e. every reader that might still be walking the level o was
// removed from has exited). Call after unlinking o from its PriceLevel.
func (p *OrderPool) RetireOrder(o *orderbook.Order) {
	if !p.Retire.Enqueue(o) {
		// Ring full: drop it: the GC reclaims it instead of the pool.
		// Backpressure on the engine thread would be worse than one
		// extra allocation on the next Get.
		return
	}
}

// Reclaim drains whatever in Retire is now safe to reuse back into
// the pool. Call from the engine's epoch-reclaim tick.
func (p *OrderPool) Reclaim(readers ...*ReaderEpoch) {
	AdvanceEpochAndReclaim(p.Retire, p.pool, readers...)
}
