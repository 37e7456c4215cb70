package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-qsim/fusion"
	"github.com/cwbudde/algo-qsim/gate"
	"github.com/cwbudde/algo-qsim/hist"
	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/kernel"
	"github.com/cwbudde/algo-qsim/qft"
	"github.com/cwbudde/algo-qsim/statevec"
)

func printBackends(w io.Writer) {
	features := cpu.DetectFeatures()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Backend\tSIMD\tPriority\tSupported\n")
	fmt.Fprintf(tw, "-------\t----\t--------\t---------\n")
	for _, e := range registry.Global.ListEntries() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n", e.Name, e.SIMDLevel, e.Priority, cpu.Supports(features, e.SIMDLevel))
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

// benchTargets spreads k targets over n qubits, highest first.
func benchTargets(n, k int) []uint {
	ids := make([]uint, k)
	step := n / k
	for j := range ids {
		ids[j] = uint(n - 1 - j*step)
	}
	return ids
}

func runBench(w io.Writer, state *statevec.State, o options, engOpts []kernel.Option) error {
	if o.arity < 1 || o.arity > kernel.MaxArity || o.arity > state.Qubits() {
		return fmt.Errorf("arity must be in [1, %d] and at most the qubit count", kernel.MaxArity)
	}
	iters := max(o.iters, 1)

	names := []string{o.backend}
	if o.backend == "" {
		names = names[:0]
		for _, e := range registry.Global.ListEntries() {
			names = append(names, e.Name)
		}
	}

	psi := state.Amplitudes()
	ids := benchTargets(state.Qubits(), o.arity)
	m := gate.QFT(o.arity)
	bytesPerApply := float64(2 * 16 * len(psi))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Backend\tWorkers\tQubits\tArity\tTargets\tIters\tTime/Apply\tGB/s\n")
	fmt.Fprintf(tw, "-------\t-------\t------\t-----\t-------\t-----\t----------\t----\n")

	for _, name := range names {
		eng, err := kernel.New(append(engOpts, kernel.WithBackend(name))...)
		if err != nil {
			return err
		}

		eng.Apply(psi, ids, m, 0) // warm up
		start := time.Now()
		for i := 0; i < iters; i++ {
			eng.Apply(psi, ids, m, 0)
		}
		per := time.Since(start) / time.Duration(iters)

		gbps := 0.0
		if per > 0 {
			gbps = bytesPerApply / per.Seconds() / 1e9
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%v\t%d\t%v\t%.2f\n",
			eng.Backend(), eng.Workers(), state.Qubits(), o.arity, ids, iters, per, gbps)
	}
	return tw.Flush()
}

func histQubits(n, show int) []uint {
	if show <= 0 {
		show = min(n, hist.ReadableQubits)
	}
	show = min(show, n)
	qs := make([]uint, show)
	for i := range qs {
		qs[i] = uint(i)
	}
	return qs
}

func renderHistogram(w io.Writer, state *statevec.State, show int) error {
	qs := histQubits(state.Qubits(), show)
	if hist.Crowded(len(qs)) {
		fmt.Fprintf(os.Stderr, "warning: %d qubits give %d outcomes; consider -show %d\n",
			len(qs), 1<<len(qs), hist.ReadableQubits)
	}
	return hist.Render(w, hist.Marginals(state.Amplitudes(), qs), 40)
}

// runGHZ prepares (|0...0> + |1...1>)/sqrt(2) with fused gates.
func runGHZ(w io.Writer, state *statevec.State, o options, engOpts []kernel.Option) error {
	eng, err := kernel.New(append(engOpts, kernel.WithBackend(o.backend))...)
	if err != nil {
		return err
	}

	state.Reset()
	f := fusion.New(eng, state.Amplitudes())
	if err := f.Add([]uint{0}, gate.H(), 0); err != nil {
		return err
	}
	for q := 1; q < state.Qubits(); q++ {
		if err := f.Add([]uint{uint(q - 1), uint(q)}, gate.CNOT(), 0); err != nil {
			return err
		}
	}
	f.Flush()

	fmt.Fprintf(w, "GHZ on %d qubits: %d gates, %d kernel calls, norm %.12f\n",
		state.Qubits(), f.Added(), f.Applied(), state.Norm())
	return renderHistogram(w, state, o.show)
}

// runQFT transforms |1> over the whole register.
func runQFT(w io.Writer, state *statevec.State, o options, _ []kernel.Option) error {
	psi := state.Amplitudes()
	clear(psi)
	psi[1] = 1

	start := time.Now()
	if err := qft.Apply(psi, state.Qubits()); err != nil {
		return err
	}
	fmt.Fprintf(w, "QFT on %d qubits in %v, norm %.12f\n", state.Qubits(), time.Since(start), state.Norm())
	return renderHistogram(w, state, o.show)
}
