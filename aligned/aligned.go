// Package aligned allocates complex128 buffers whose base address sits on a
// fixed byte boundary, as required by the lane kernels' vector loads.
//
// A buffer is obtained with [Allocator.Alloc] and released with
// [Buffer.Free]. Allocation failures are reported as [ErrOutOfMemory]
// before any memory is reserved or written.
package aligned

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/cwbudde/algo-qsim/internal/cpu"
)

// elemSize is the size of one complex128 amplitude in bytes.
const elemSize = 16

// MinAlignment is the smallest accepted alignment: one complex128.
const MinAlignment = 16

var (
	// ErrOutOfMemory is returned when a buffer of the requested size and
	// alignment cannot be obtained.
	ErrOutOfMemory = errors.New("aligned: out of memory")

	// ErrInvalidCount is returned for non-positive element counts.
	ErrInvalidCount = errors.New("aligned: element count must be positive")
)

// Allocator hands out aligned complex128 buffers.
//
// Allocators are values. Two allocators with the same alignment are
// interchangeable, see [Allocator.Equal].
type Allocator struct {
	alignment int
	budget    *Budget
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithAlignment sets the byte alignment. Values that are not a power of two or
// smaller than MinAlignment are ignored.
func WithAlignment(bytes int) Option {
	return func(a *Allocator) {
		if bytes >= MinAlignment && bytes&(bytes-1) == 0 {
			a.alignment = bytes
		}
	}
}

// WithBudget limits the total bytes outstanding across the allocator's buffers.
func WithBudget(b *Budget) Option {
	return func(a *Allocator) {
		a.budget = b
	}
}

// DefaultAlignment returns the widest vector register width of the current
// CPU in bytes, but at least 32.
func DefaultAlignment() int {
	w := cpu.DetectFeatures().VectorBytes()
	if w < 32 {
		w = 32
	}
	return w
}

// New returns an Allocator configured by opts.
func New(opts ...Option) Allocator {
	a := Allocator{alignment: DefaultAlignment()}
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	return a
}

// Alignment returns the byte boundary of every buffer this allocator returns.
func (a Allocator) Alignment() int {
	if a.alignment == 0 {
		return DefaultAlignment()
	}
	return a.alignment
}

// Equal reports whether a and b belong to the same alignment class.
func (a Allocator) Equal(b Allocator) bool {
	return a.Alignment() == b.Alignment()
}

// Alloc returns a zeroed buffer of count complex128 values.
func (a Allocator) Alloc(count int) (*Buffer, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	align := a.Alignment()
	if count > (math.MaxInt-align)/elemSize {
		return nil, fmt.Errorf("%w: %d elements overflow the address space", ErrOutOfMemory, count)
	}
	size := count * elemSize

	if err := a.budget.reserve(int64(size)); err != nil {
		return nil, err
	}

	raw, err := allocRaw(size + align)
	if err != nil {
		a.budget.release(int64(size))
		return nil, err
	}

	addr := uintptr(unsafe.Pointer(&raw[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := int((uintptr(align) - addr&uintptr(align-1)) & uintptr(align-1))
	ptr := unsafe.Pointer(&raw[offset]) //nolint:gosec // unsafe is required for memory alignment

	return &Buffer{
		data:      unsafe.Slice((*complex128)(ptr), count), //nolint:gosec // unsafe is required for memory alignment
		raw:       raw,
		alignment: align,
		size:      int64(size),
		budget:    a.budget,
	}, nil
}

// allocRaw converts a runtime allocation panic into ErrOutOfMemory.
func allocRaw(n int) (raw []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("%w: %v", ErrOutOfMemory, r)
		}
	}()
	return make([]byte, n), nil
}

// Buffer is an aligned block of complex128 values.
type Buffer struct {
	data      []complex128
	raw       []byte
	alignment int
	size      int64
	budget    *Budget
	freed     atomic.Bool
}

// Data returns the aligned amplitudes. It is nil after Free.
func (b *Buffer) Data() []complex128 {
	return b.data
}

// Len returns the number of elements, 0 after Free.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Alignment returns the byte boundary the buffer was allocated with.
func (b *Buffer) Alignment() int {
	return b.alignment
}

// Free releases the buffer and its budget reservation. Calling Free more than
// once has no effect.
func (b *Buffer) Free() {
	if b == nil || !b.freed.CompareAndSwap(false, true) {
		return
	}
	b.budget.release(b.size)
	b.data = nil
	b.raw = nil
}

// IsAligned reports whether the first element of s starts on an alignment
// boundary. Empty slices are reported as aligned.
func IsAligned(s []complex128, alignment int) bool {
	if len(s) == 0 {
		return true
	}
	addr := uintptr(unsafe.Pointer(&s[0])) //nolint:gosec // address inspection only
	return addr%uintptr(alignment) == 0
}
