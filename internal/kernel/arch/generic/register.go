// Package generic provides the portable scalar gate kernels.
//
// Each kernel gathers the 2^k amplitudes of one group into locals, forms the
// matrix-vector product with complex128 arithmetic and scatters the result
// back. It is always registered and serves as the reference for the other
// backends.
package generic

import (
	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "generic",
		SIMDLevel: cpu.SIMDNone,
		Priority:  0,
		Kernels: [registry.MaxArity + 1]registry.KernelFn{
			1: Kernel1,
			2: Kernel2,
			3: Kernel3,
			4: Kernel4,
			5: Kernel5,
		},
	})
}
