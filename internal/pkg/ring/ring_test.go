package ring

import (
	"fmt"
	"testing"
)

func TestBufferEmpty(t *testing.T) {
	b := New[string](3)

	got := b.Get()
	if got == nil || len(got) != 0 {
		t.Errorf("Get() on empty buffer = %v, want empty non-nil slice", got)
	}
	if b.Len() != 0 || b.Cap() != 3 {
		t.Errorf("Len() = %d, Cap() = %d, want 0, 3", b.Len(), b.Cap())
	}
}

func TestBufferOrdering(t *testing.T) {
	const capacity = 5

	for inserted := 1; inserted <= 3*capacity; inserted++ {
		t.Run(fmt.Sprintf("inserted=%d", inserted), func(t *testing.T) {
			b := New[int](capacity)
			for i := 1; i <= inserted; i++ {
				b.Add(i)
			}

			got := b.Get()

			first := 1
			if inserted > capacity {
				first = inserted - capacity + 1
			}
			wantLen := inserted - first + 1

			if len(got) != wantLen {
				t.Fatalf("Get() returned %d items %v, want %d", len(got), got, wantLen)
			}
			for i, v := range got {
				if v != first+i {
					t.Fatalf("Get() = %v, want %d..%d in order", got, first, inserted)
				}
			}
		})
	}
}

func TestBufferGetReturnsCopy(t *testing.T) {
	b := New[string](2)
	b.Add("a")
	b.Add("b")

	got := b.Get()
	got[0] = "mutated"

	if again := b.Get(); again[0] != "a" {
		t.Errorf("mutating Get() result changed the buffer: %v", again)
	}
}

func TestBufferMinimumCapacity(t *testing.T) {
	b := New[string](0)
	b.Add("x")
	b.Add("y")

	got := b.Get()
	if len(got) != 1 || got[0] != "y" {
		t.Errorf("Get() = %v, want [y]", got)
	}
}
