//go:build amd64 && !purego

package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
)

func init() {
	registry.Global.Register(entry(cpu.SIMDAVX, 20))
}
