package column

import (
	"testing"
	"unsafe"
)

func TestAppendAndAt(t *testing.T) {
	c := New(unsafe.Sizeof(int64(0)), nil)
	for i := int64(0); i < 5; i++ {
		ptr := c.AppendUninitialized()
		*(*int64)(ptr) = i * 10
	}
	if c.Count() != 5 {
		t.Fatalf("Count() = %d, want 5", c.Count())
	}
	for i := 0; i < 5; i++ {
		got := *(*int64)(c.At(i))
		if got != int64(i)*10 {
			t.Errorf("At(%d) = %d, want %d", i, got, int64(i)*10)
		}
	}
}

func TestSwapRemoveWithoutDestruct(t *testing.T) {
	destructCount := 0
	c := New(unsafe.Sizeof(int64(0)), func(unsafe.Pointer) { destructCount++ })
	for i := int64(0); i < 3; i++ {
		ptr := c.AppendUninitialized()
		*(*int64)(ptr) = i
	}
	c.SwapRemoveWithoutDestruct(0)
	if destructCount != 0 {
		t.Fatalf("destructor ran %d times, want 0", destructCount)
	}
	if c.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", c.Count())
	}
	if got := *(*int64)(c.At(0)); got != 2 {
		t.Errorf("At(0) after swap-remove = %d, want 2 (last row moved in)", got)
	}
}

func TestSwapRemoveDestruct(t *testing.T) {
	destructed := []int64{}
	c := New(unsafe.Sizeof(int64(0)), func(p unsafe.Pointer) {
		destructed = append(destructed, *(*int64)(p))
	})
	for i := int64(0); i < 3; i++ {
		ptr := c.AppendUninitialized()
		*(*int64)(ptr) = i
	}
	c.SwapRemoveDestruct(1)
	if len(destructed) != 1 || destructed[0] != 1 {
		t.Fatalf("destructed = %v, want [1]", destructed)
	}
	if c.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", c.Count())
	}
}

func TestDestroyAll(t *testing.T) {
	count := 0
	c := New(unsafe.Sizeof(int64(0)), func(unsafe.Pointer) { count++ })
	for i := 0; i < 10; i++ {
		c.AppendUninitialized()
	}
	c.DestroyAll()
	if count != 10 {
		t.Fatalf("destructor ran %d times, want 10", count)
	}
	if c.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", c.Count())
	}
}

func TestZeroSizedComponent(t *testing.T) {
	count := 0
	c := New(0, func(unsafe.Pointer) { count++ })
	for i := 0; i < 4; i++ {
		c.AppendUninitialized()
	}
	if c.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", c.Count())
	}
	c.SwapRemoveDestruct(0)
	if count != 1 {
		t.Fatalf("destructor ran %d times, want 1", count)
	}
	if c.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", c.Count())
	}
	c.DestroyAll()
	if count != 4 {
		t.Fatalf("destructor ran %d times total, want 4", count)
	}
}
