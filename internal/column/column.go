// Package column implements the type-erased, columnar byte storage that
// backs a single component type within one archetype. A Column never knows
// the static type of what it stores; it only knows an element size and a
// destructor to invoke on raw bytes.
package column

import "unsafe"

// Destructor runs a component type's destruction logic on one instance,
// addressed by a pointer to its raw bytes. It may be nil for types that
// need no cleanup beyond being overwritten.
type Destructor func(unsafe.Pointer)

// Column is a contiguous byte array holding Count() instances of one
// component type. Row i addresses the i-th live instance; rows are not
// stable across SwapRemove calls (the last row may move into a removed
// slot).
type Column struct {
	elemSize   uintptr
	destructor Destructor
	count      int
	bytes      []byte
}

// New allocates an empty column for a component of the given size. elemSize
// may be zero for tag components that carry no data; the column then just
// tracks a row count.
func New(elemSize uintptr, destructor Destructor) *Column {
	return &Column{elemSize: elemSize, destructor: destructor}
}

// Count returns the number of live rows.
func (c *Column) Count() int { return c.count }

// ElemSize returns the byte size of one instance.
func (c *Column) ElemSize() uintptr { return c.elemSize }

// Destructor returns the destructor registered for this column's type.
func (c *Column) Destructor() Destructor { return c.destructor }

func (c *Column) ptr(row int) unsafe.Pointer {
	if c.elemSize == 0 {
		// No bytes back a zero-sized component; any stable non-nil pointer
		// is safe since it is never dereferenced for a non-zero length.
		return unsafe.Pointer(c)
	}
	return unsafe.Pointer(&c.bytes[uintptr(row)*c.elemSize])
}

// AppendUninitialized grows the column by one row and returns a pointer to
// that row's (uninitialized) bytes for the caller to populate.
func (c *Column) AppendUninitialized() unsafe.Pointer {
	if c.elemSize > 0 {
		c.bytes = append(c.bytes, make([]byte, c.elemSize)...)
	}
	c.count++
	return c.ptr(c.count - 1)
}

// At returns a pointer to row's bytes. row must be < Count().
func (c *Column) At(row int) unsafe.Pointer {
	if row < 0 || row >= c.count {
		panic("column: row out of range")
	}
	return c.ptr(row)
}

// Overwrite copies ElemSize() bytes from src into row. src must not alias
// row's own storage unless it is the column's own last row, as used by
// swap-remove.
func (c *Column) Overwrite(row int, src unsafe.Pointer) {
	if c.elemSize == 0 {
		return
	}
	if row < 0 || row >= c.count {
		panic("column: row out of range")
	}
	dst := c.ptr(row)
	copy(unsafe.Slice((*byte)(dst), c.elemSize), unsafe.Slice((*byte)(src), c.elemSize))
}

// SwapRemoveWithoutDestruct removes row by moving the last row's bytes into
// it (if row isn't already last) and shrinking by one, without invoking the
// destructor. Used when the row's bytes have already been relocated
// elsewhere by the caller (archetype migration).
func (c *Column) SwapRemoveWithoutDestruct(row int) {
	c.swapRemove(row, false)
}

// SwapRemoveDestruct is SwapRemoveWithoutDestruct but runs the destructor on
// row's bytes first.
func (c *Column) SwapRemoveDestruct(row int) {
	c.swapRemove(row, true)
}

func (c *Column) swapRemove(row int, destruct bool) {
	if row < 0 || row >= c.count {
		panic("column: row out of range")
	}
	if destruct && c.destructor != nil {
		c.destructor(c.ptr(row))
	}
	last := c.count - 1
	if row < last && c.elemSize > 0 {
		copy(unsafe.Slice((*byte)(c.ptr(row)), c.elemSize), unsafe.Slice((*byte)(c.ptr(last)), c.elemSize))
	}
	c.count--
	if c.elemSize > 0 {
		c.bytes = c.bytes[:uintptr(c.count)*c.elemSize]
	}
}

// DestroyAll runs the destructor over every live row and clears the column.
func (c *Column) DestroyAll() {
	if c.destructor != nil {
		for i := 0; i < c.count; i++ {
			c.destructor(c.ptr(i))
		}
	}
	c.count = 0
	c.bytes = c.bytes[:0]
}
