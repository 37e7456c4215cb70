// Package registry holds the gate kernel backends.
//
// Backend packages (arch/generic, arch/lanes) register an OpEntry from
// init(). The kernel package looks up the highest-priority entry the current
// CPU supports, or a named entry when the caller forces a backend.
package registry

import (
	"sync"

	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/parallel"
)

// MaxArity is the largest number of target qubits a kernel accepts.
const MaxArity = 5

// Task is one gate application.
type Task struct {
	// Psi is the state vector, modified in place.
	Psi []complex128

	// IDs are the target qubits, most significant matrix bit first.
	IDs []uint

	// Matrix is the 2^k x 2^k gate, row-major.
	Matrix [][]complex128

	// CtrlMask restricts the update to groups whose masked bits are all set.
	CtrlMask uint64

	// Collapse is the number of nested loop levels shared among workers.
	Collapse int

	// Runner executes the collapsed iteration space.
	Runner parallel.Runner
}

// KernelFn applies a gate of one fixed arity.
type KernelFn func(t *Task)

// OpEntry is one registered backend.
type OpEntry struct {
	Name      string
	SIMDLevel cpu.SIMDLevel
	Priority  int

	// Kernels is indexed by arity; index 0 is unused.
	Kernels [MaxArity + 1]KernelFn
}

// Complete reports whether the entry provides every arity 1..MaxArity.
func (e *OpEntry) Complete() bool {
	for k := 1; k <= MaxArity; k++ {
		if e.Kernels[k] == nil {
			return false
		}
	}
	return true
}

// OpRegistry stores available backends.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
	sorted  bool
}

// Global is the default kernel registry.
var Global = &OpRegistry{}

// Register adds a backend entry.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.sorted = false
}

// Lookup returns the highest-priority backend supported by features.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	if !r.sorted {
		r.sortByPriority()
		r.sorted = true
	}
	r.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		entry := &r.entries[i]
		if cpu.Supports(features, entry.SIMDLevel) {
			return entry
		}
	}

	return nil
}

// LookupName returns the backend registered under name, regardless of CPU
// support. Pure Go backends run everywhere; the SIMD level only ranks them.
func (r *OpRegistry) LookupName(name string) *OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		if r.entries[i].Name == name {
			return &r.entries[i]
		}
	}
	return nil
}

func (r *OpRegistry) sortByPriority() {
	for i := 1; i < len(r.entries); i++ {
		key := r.entries[i]
		j := i - 1
		for j >= 0 && r.entries[j].Priority < key.Priority {
			r.entries[j+1] = r.entries[j]
			j--
		}
		r.entries[j+1] = key
	}
}

// ListEntries returns a copy of entries for tests/debugging.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Reset clears all entries. Intended for tests.
func (r *OpRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.sorted = false
}
