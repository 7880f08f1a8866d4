package orderbook

// OrderIndex is the internal locator for a resting order: which side,
// which price level, and which memo within that level. It never owns
// the order itself — PriceLevel does — so invalidating an index by
// removing an order can never dangle a pointer (spec §9).
type OrderIndex struct {
	Side  Side
	Price int64
	Memo  uint64
}

// IndexMap maps external OrderId to OrderIndex so cancels/amends are
// O(log L + k): binary search across L levels, linear scan of k
// orders at that level (spec §3).
type IndexMap struct {
	m map[OrderId]OrderIndex
}

// NewIndexMap constructs an empty locator map.
func NewIndexMap() *IndexMap {
	return &IndexMap{m: make(map[OrderId]OrderIndex)}
}

func (m *IndexMap) Put(id OrderId, idx OrderIndex) { m.m[id] = idx }

func (m *IndexMap) Get(id OrderId) (OrderIndex, bool) {
	idx, ok := m.m[id]
	return idx, ok
}

func (m *IndexMap) Delete(id OrderId) { delete(m.m, id) }

func (m *IndexMap) Len() int { return len(m.m) }
