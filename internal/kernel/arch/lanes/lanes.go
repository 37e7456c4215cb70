// Package lanes provides gate kernels written against the two-complex lane
// primitive.
//
// Matrix entries are packed column-wise in row pairs: for rows 2r and 2r+1
// and column c the kernel keeps Pack(m[2r][c], m[2r+1][c]) and its twisted
// form, both computed once per application. A group is processed by
// broadcasting each gathered amplitude across both slots, accumulating the
// lane products over all columns, and storing each row pair's result to the
// two amplitudes it belongs to. One group therefore needs 2^(2k-1) packed
// entries per operand.
package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/lane"
)

// packRows packs m into dim/2 row pairs of dim columns each, writing the
// entries into mm and their twisted forms into mt at index r*dim+c.
func packRows(m [][]complex128, dim int, mm, mt []lane.Pair) {
	for r := 0; r < dim/2; r++ {
		for c := 0; c < dim; c++ {
			p := lane.Pack(m[2*r][c], m[2*r+1][c])
			mm[r*dim+c] = p
			mt[r*dim+c] = p.Twist()
		}
	}
}

// Name is the registry name of this backend.
const Name = "lanes"

// entry returns the registry entry for this backend at the given level.
func entry(level cpu.SIMDLevel, priority int) registry.OpEntry {
	return registry.OpEntry{
		Name:      Name,
		SIMDLevel: level,
		Priority:  priority,
		Kernels: [registry.MaxArity + 1]registry.KernelFn{
			1: Kernel1,
			2: Kernel2,
			3: Kernel3,
			4: Kernel4,
			5: Kernel5,
		},
	}
}
