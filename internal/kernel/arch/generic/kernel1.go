package generic

import (
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/stride"
)

// Kernel1 applies a one-qubit gate.
func Kernel1(t *registry.Task) {
	psi := t.Psi
	p := stride.New(len(psi), t.IDs, t.Collapse)
	d0 := p.Offsets()[1]
	m00, m01 := t.Matrix[0][0], t.Matrix[0][1]
	m10, m11 := t.Matrix[1][0], t.Matrix[1][1]
	ctrl := int(t.CtrlMask)

	t.Runner.For(p.Outer(), func(lo, hi int) {
		first, last := p.Range(lo, hi)
		base := p.Base(first)
		for g := first; g < last; g++ {
			if base&ctrl == ctrl {
				v0, v1 := psi[base], psi[base+d0]
				psi[base] = m00*v0 + m01*v1
				psi[base+d0] = m10*v0 + m11*v1
			}
			base = p.Next(base)
		}
	})
}
