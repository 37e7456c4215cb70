package kernel

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/parallel"
)

// ErrUnknownBackend is returned by New when the requested backend is not
// registered in this build.
var ErrUnknownBackend = errors.New("kernel: unknown backend")

// Engine applies gates with one selected backend. It is safe for concurrent
// use on distinct state vectors.
type Engine struct {
	name     string
	level    cpu.SIMDLevel
	kernels  [MaxArity + 1]registry.KernelFn
	runner   parallel.Runner
	workers  int
	collapse int
	metrics  MetricsCollector
	noop     bool
}

// New builds an engine from opts.
func New(opts ...Option) (*Engine, error) {
	cfg := ApplyOptions(opts...)

	name := cfg.Backend
	if name == "" {
		name = os.Getenv(EnvBackend)
	}

	var entry *registry.OpEntry
	if name == "" || name == BackendAuto {
		entry = registry.Global.Lookup(cpu.DetectFeatures())
	} else {
		entry = registry.Global.LookupName(name)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if !entry.Complete() {
		return nil, fmt.Errorf("kernel: backend %q does not provide every arity", entry.Name)
	}

	e := &Engine{
		name:     entry.Name,
		level:    entry.SIMDLevel,
		kernels:  entry.Kernels,
		workers:  cfg.Workers,
		collapse: cfg.Collapse,
		metrics:  cfg.Metrics,
	}
	_, e.noop = cfg.Metrics.(NoopMetricsCollector)

	if cfg.Workers <= 1 {
		e.workers = 1
		e.runner = parallel.Serial{}
	} else {
		e.runner = parallel.NewPool(cfg.Workers, cfg.MinGroupsPerTask)
	}

	cfg.Logger.Debug("kernel engine ready",
		"backend", e.name,
		"simd", e.level.String(),
		"workers", e.workers,
		"min_groups", cfg.MinGroupsPerTask,
	)
	return e, nil
}

// Backend returns the name of the selected backend.
func (e *Engine) Backend() string { return e.name }

// Workers returns the number of workers one Apply may use.
func (e *Engine) Workers() int { return e.workers }

// Collapse returns the collapse depth used for arity k.
func (e *Engine) Collapse(k int) int {
	if e.collapse > 0 && e.collapse < k+1 {
		return e.collapse
	}
	return CollapseDepth(k)
}

// Apply applies the 2^k x 2^k matrix m to the k = len(targets) target qubits
// of psi, restricted to groups matching ctrlMask. Inputs are not validated
// beyond the arity; see Validate.
func (e *Engine) Apply(psi []complex128, targets []uint, m Matrix, ctrlMask uint64) {
	k := len(targets)
	if k < 1 || k > MaxArity {
		panic(fmt.Sprintf("kernel: arity %d outside [1, %d]", k, MaxArity))
	}

	var start time.Time
	if !e.noop {
		start = time.Now()
	}

	e.kernels[k](&registry.Task{
		Psi:      psi,
		IDs:      targets,
		Matrix:   m,
		CtrlMask: ctrlMask,
		Collapse: e.Collapse(k),
		Runner:   e.runner,
	})

	if !e.noop {
		e.metrics.RecordApply(k, e.name, len(psi), time.Since(start))
	}
}

// ApplyChecked validates its arguments and then applies the gate.
func (e *Engine) ApplyChecked(psi []complex128, targets []uint, m Matrix, ctrlMask uint64) error {
	if err := Validate(len(psi), targets, m, ctrlMask); err != nil {
		return err
	}
	e.Apply(psi, targets, m, ctrlMask)
	return nil
}
