package generic

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel3 applies a three-qubit gate.
func Kernel3(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)

	var off [8]int
	copy(off[:], p.Offsets())
	var m [8][8]complex128
	for r := range m {
		copy(m[r][:], t.Matrix[r])
	}
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		var v [8]complex128
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				for c := range v {
					v[c] = psi[base+off[c]]
				}
				for r := range m {
					var acc complex128
					for c := range v {
						acc += m[r][c] * v[c]
					}
					psi[base+off[r]] = acc
				}
			}
			base = p.Next(base)
		}
	})
}
