// Package kernel applies dense gate matrices to state vectors.
//
// A gate of arity k (1 to MaxArity target qubits) is a 2^k x 2^k matrix. The
// first target is the most significant bit of the matrix index, so for
// targets {2, 0} row 0b10 belongs to the amplitudes with qubit 2 set and
// qubit 0 clear. Apply updates the state in place:
//
//	for every group base I with all target bits zero:
//	    v[c]          = psi[I + off(c)]
//	    psi[I+off(r)] = sum_c m[r][c] * v[c]
//
// A non-zero control mask restricts the update to groups where every masked
// bit of I is set.
//
// Kernels come from the backend registry: a scalar reference backend
// ("generic") and a two-complex lane backend ("lanes"). The Engine picks the
// highest-priority backend the CPU supports unless one is forced with
// WithBackend or the QSIM_KERNEL environment variable.
package kernel

import (
	"sync"

	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
)

// MaxArity is the largest supported number of target qubits.
const MaxArity = registry.MaxArity

// Matrix is a row-major 2^k x 2^k gate matrix.
type Matrix = [][]complex128

// CollapseDepth returns the number of nested loop levels a kernel of arity k
// folds into its parallel iteration space. All k+1 levels are collapsed.
func CollapseDepth(k int) int {
	return k + 1
}

// ControlMask returns the mask with bit q set for every control qubit q.
func ControlMask(ids ...uint) uint64 {
	var mask uint64
	for _, id := range ids {
		mask |= 1 << id
	}
	return mask
}

var (
	defaultEngine *Engine
	defaultOnce   sync.Once
)

// Default returns the shared engine built from DefaultConfig. If the
// environment names an unusable backend, automatic selection is used.
func Default() *Engine {
	defaultOnce.Do(func() {
		e, err := New()
		if err != nil {
			e, err = New(WithBackend(BackendAuto))
		}
		if err != nil {
			panic("kernel: no backend registered")
		}
		defaultEngine = e
	})
	return defaultEngine
}

// Apply applies m to targets of psi on the default engine.
func Apply(psi []complex128, targets []uint, m Matrix, ctrlMask uint64) {
	Default().Apply(psi, targets, m, ctrlMask)
}
