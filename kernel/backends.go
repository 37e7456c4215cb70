package kernel

// Backend packages register their kernels from init().
import (
	_ "github.com/cwbudde/algo-qsim/internal/kernel/arch/generic"
	_ "github.com/cwbudde/algo-qsim/internal/kernel/arch/lanes"
)
