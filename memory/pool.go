package memory

import "sync"

// Pool is a typed object pool backed by sync.Pool. Get/Put are safe
// for the engine's single writer thread to call directly; PutAny
// exists only so Pool[T] can satisfy ReclaimablePool for the
// type-erased epoch reclaimer in epoch.go.
type Pool[T any] struct {
	inner *sync.Pool
}

// NewPool constructs a Pool whose backing objects are produced by ctor.
func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{inner: &sync.Pool{New: func() any { return ctor() }}}
}

func (p *Pool[T]) Get() *T {
	return p.inner.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	p.inner.Put(v)
}

// PutAny is the explicit, safe bridge between the typed pool and the
// type-erased RetireRing/AdvanceEpochAndReclaim machinery.
func (p *Pool[T]) PutAny(v any) {
	obj, ok := v.(*T)
	if !ok {
		panic("memory.Pool: PutAny received a value of the wrong type")
	}
	p.Put(obj)
}
