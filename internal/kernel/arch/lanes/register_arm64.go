//go:build arm64 && !purego

package lanes

import (
	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
)

func init() {
	registry.Global.Register(entry(cpu.SIMDNEON, 15))
}
