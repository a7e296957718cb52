package gpu

// registry maps the opaque handles handed to the display layer onto the
// driver objects behind them. Handle zero is never issued.
type registry[T any] struct {
	next  uint64
	items map[uint64]T
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{items: make(map[uint64]T)}
}

func (r *registry[T]) put(v T) uint64 {
	r.next++
	r.items[r.next] = v
	return r.next
}

func (r *registry[T]) get(h uint64) (T, bool) {
	v, ok := r.items[h]
	return v, ok
}

func (r *registry[T]) set(h uint64, v T) {
	if _, ok := r.items[h]; ok {
		r.items[h] = v
	}
}

// take removes h and returns what it referred to.
func (r *registry[T]) take(h uint64) (T, bool) {
	v, ok := r.items[h]
	if ok {
		delete(r.items, h)
	}
	return v, ok
}

func (r *registry[T]) len() int {
	return len(r.items)
}

// drain removes and returns every live object.
func (r *registry[T]) drain() []T {
	out := make([]T, 0, len(r.items))
	for h, v := range r.items {
		out = append(out, v)
		delete(r.items, h)
	}
	return out
}
