/*
Package ring implements a fixed-capacity circular buffer that keeps the most recent items.
*/
package ring

// Buffer holds at most Cap() items. Once full, each Add overwrites the oldest item.
//
// Buffer is not safe for concurrent use; callers serialize access.
type Buffer[T any] struct {
	items []T

	// head is the index of the oldest item once the buffer is full.
	head int
}

// New returns an empty Buffer with the given capacity. Capacity below 1 is raised to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Buffer[T]{
		items: make([]T, 0, capacity),
	}
}

// Add appends item, dropping the oldest item when the buffer is full.
func (b *Buffer[T]) Add(item T) {
	if len(b.items) < cap(b.items) {
		b.items = append(b.items, item)
		return
	}

	b.items[b.head] = item
	b.head = (b.head + 1) % len(b.items)
}

// Get returns a copy of the held items ordered oldest to newest.
// The result is empty, not nil, when nothing has been added.
func (b *Buffer[T]) Get() []T {
	out := make([]T, 0, len(b.items))
	out = append(out, b.items[b.head:]...)
	out = append(out, b.items[:b.head]...)
	return out
}

// Len returns the number of items held.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Cap returns the maximum number of items the buffer keeps.
func (b *Buffer[T]) Cap() int {
	return cap(b.items)
}
