// Package kerneltest is a conformance suite shared by the kernel backends.
//
// Run checks one backend's kernels against testutil.ApplyReference over all
// arities, collapse depths, serial and pooled runners, and control masks.
package kerneltest

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/parallel"
	"github.com/cwbudde/algo-qsim/internal/testutil"
)

const (
	qubits    = 7
	matchEps  = 1e-12
	unitarity = 1e-9
)

// runners returns the execution strategies every kernel must agree under.
func runners() map[string]parallel.Runner {
	return map[string]parallel.Runner{
		"serial": parallel.Serial{},
		"pool":   parallel.NewPool(4, 1),
	}
}

// Run exercises kernels[1..registry.MaxArity].
func Run(t *testing.T, kernels [registry.MaxArity + 1]registry.KernelFn) {
	t.Helper()
	for k := 1; k <= registry.MaxArity; k++ {
		fn := kernels[k]
		if fn == nil {
			t.Fatalf("arity %d: kernel missing", k)
		}
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			t.Run("reference", func(t *testing.T) { testReference(t, fn, k) })
			t.Run("control", func(t *testing.T) { testControl(t, fn, k) })
			t.Run("identity", func(t *testing.T) { testIdentity(t, fn, k) })
			t.Run("inverse", func(t *testing.T) { testInverse(t, fn, k) })
			t.Run("all-qubits", func(t *testing.T) { testAllQubits(t, fn, k) })
		})
	}
}

func apply(fn registry.KernelFn, psi []complex128, ids []uint, m [][]complex128, ctrl uint64, collapse int, r parallel.Runner) {
	fn(&registry.Task{
		Psi:      psi,
		IDs:      ids,
		Matrix:   m,
		CtrlMask: ctrl,
		Collapse: collapse,
		Runner:   r,
	})
}

func targets(seed int64, n, k int) []uint {
	perm := testutil.NewRand(seed).Perm(n)
	ids := make([]uint, k)
	for i := range ids {
		ids[i] = uint(perm[i])
	}
	return ids
}

func testReference(t *testing.T, fn registry.KernelFn, k int) {
	rng := testutil.NewRand(int64(100 + k))
	u := testutil.RandomUnitary(rng, 1<<k)
	psi := testutil.RandomState(rng, 1<<qubits)

	cases := [][]uint{
		targets(int64(k), qubits, k),
		targets(int64(k+10), qubits, k),
	}
	// Adjacent low qubits and adjacent high qubits in both orders.
	low, high := make([]uint, k), make([]uint, k)
	for i := range low {
		low[i] = uint(i)
		high[i] = uint(qubits - 1 - i)
	}
	cases = append(cases, low, high)

	for _, ids := range cases {
		want := testutil.ApplyReference(psi, ids, u, 0)
		for name, r := range runners() {
			for collapse := 1; collapse <= k+1; collapse++ {
				got := append([]complex128(nil), psi...)
				apply(fn, got, ids, u, 0, collapse, r)
				diff, err := testutil.MaxAbsDiff(got, want)
				if err != nil {
					t.Fatal(err)
				}
				if diff > matchEps {
					t.Fatalf("ids %v %s collapse %d: max diff %g", ids, name, collapse, diff)
				}
			}
		}
	}
}

func testControl(t *testing.T, fn registry.KernelFn, k int) {
	rng := testutil.NewRand(int64(200 + k))
	u := testutil.RandomUnitary(rng, 1<<k)
	psi := testutil.RandomState(rng, 1<<qubits)
	ids := targets(int64(300+k), qubits, k)

	var free []uint
	for q := uint(0); q < qubits; q++ {
		used := false
		for _, id := range ids {
			used = used || id == q
		}
		if !used {
			free = append(free, q)
		}
	}

	masks := []uint64{1 << free[0]}
	if len(free) > 1 {
		masks = append(masks, 1<<free[0]|1<<free[len(free)-1])
	}

	for _, ctrl := range masks {
		want := testutil.ApplyReference(psi, ids, u, ctrl)
		got := append([]complex128(nil), psi...)
		apply(fn, got, ids, u, ctrl, k+1, parallel.NewPool(3, 1))

		for i := range got {
			if uint64(i)&ctrl != ctrl {
				if got[i] != psi[i] {
					t.Fatalf("ctrl %b: unselected amplitude %d changed", ctrl, i)
				}
			}
		}
		diff, _ := testutil.MaxAbsDiff(got, want)
		if diff > matchEps {
			t.Fatalf("ctrl %b: max diff %g", ctrl, diff)
		}
	}
}

func testIdentity(t *testing.T, fn registry.KernelFn, k int) {
	psi := testutil.RandomState(testutil.NewRand(int64(400+k)), 1<<qubits)
	got := append([]complex128(nil), psi...)
	apply(fn, got, targets(int64(k), qubits, k), testutil.Identity(1<<k), 0, k+1, parallel.Serial{})
	testutil.RequireStateNearlyEqual(t, got, psi, matchEps)
}

func testInverse(t *testing.T, fn registry.KernelFn, k int) {
	rng := testutil.NewRand(int64(500 + k))
	u := testutil.RandomUnitary(rng, 1<<k)
	psi := testutil.RandomState(rng, 1<<qubits)
	ids := targets(int64(600+k), qubits, k)

	got := append([]complex128(nil), psi...)
	apply(fn, got, ids, u, 0, 1, parallel.NewPool(2, 1))
	if n := testutil.Norm2(got); math.Abs(n-1) > unitarity {
		t.Fatalf("norm after U = %v", n)
	}
	apply(fn, got, ids, testutil.Dagger(u), 0, k+1, parallel.Serial{})
	testutil.RequireStateNearlyEqual(t, got, psi, unitarity)
}

func testAllQubits(t *testing.T, fn registry.KernelFn, k int) {
	rng := testutil.NewRand(int64(700 + k))
	u := testutil.RandomUnitary(rng, 1<<k)
	psi := testutil.RandomState(rng, 1<<k)
	ids := targets(int64(800+k), k, k)

	want := testutil.ApplyReference(psi, ids, u, 0)
	got := append([]complex128(nil), psi...)
	apply(fn, got, ids, u, 0, k+1, parallel.NewPool(4, 1))
	testutil.RequireStateNearlyEqual(t, got, want, matchEps)
}
