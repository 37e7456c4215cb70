package kernel

import (
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-qsim/internal/cpu"
	"github.com/cwbudde/algo-qsim/internal/kernel/registry"
	"github.com/cwbudde/algo-qsim/internal/testutil"
)

var pauliX = Matrix{{0, 1}, {1, 0}}

var cnot = Matrix{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 0, 1},
	{0, 0, 1, 0},
}

// engines returns one engine per registered backend with several workers
// and a small chunk size, so that small states still fan out.
func engines(t *testing.T) map[string]*Engine {
	t.Helper()
	out := map[string]*Engine{}
	for _, entry := range registry.Global.ListEntries() {
		e, err := New(WithBackend(entry.Name), WithWorkers(4), WithMinGroupsPerTask(2))
		require.NoError(t, err)
		out[entry.Name] = e
	}
	require.Contains(t, out, "generic")
	return out
}

func TestPauliXFlipsBasisState(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			psi := []complex128{1, 0, 0, 0}
			e.Apply(psi, []uint{0}, pauliX, 0)
			testutil.RequireStateEqual(t, psi, []complex128{0, 1, 0, 0})
		})
	}
}

func TestCNOT(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			// |10> -> |11> with qubit 1 as control.
			psi := []complex128{0, 0, 1, 0}
			e.Apply(psi, []uint{1, 0}, cnot, 0)
			testutil.RequireStateEqual(t, psi, []complex128{0, 0, 0, 1})

			// |01> is unchanged.
			psi = []complex128{0, 1, 0, 0}
			e.Apply(psi, []uint{1, 0}, cnot, 0)
			testutil.RequireStateEqual(t, psi, []complex128{0, 1, 0, 0})
		})
	}
}

func TestControlledPauliX(t *testing.T) {
	for name, e := range engines(t) {
		t.Run(name, func(t *testing.T) {
			psi := testutil.SequentialState(8)
			orig := append([]complex128(nil), psi...)
			e.Apply(psi, []uint{0}, pauliX, ControlMask(2))

			for i := range psi {
				if i&0b100 == 0 {
					assert.Equal(t, orig[i], psi[i], "amplitude %d", i)
				} else {
					assert.Equal(t, orig[i^1], psi[i], "amplitude %d", i)
				}
			}
		})
	}
}

func TestIdentityPreservesState(t *testing.T) {
	const n = 8
	psi := testutil.RandomState(testutil.NewRand(3), 1<<n)
	for name, e := range engines(t) {
		for k := 1; k <= MaxArity; k++ {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				got := append([]complex128(nil), psi...)
				e.Apply(got, highTargets(n, k), testutil.Identity(1<<k), 0)
				testutil.RequireStateNearlyEqual(t, got, psi, 1e-12)
			})
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	const n = 9
	rng := testutil.NewRand(5)
	for name, e := range engines(t) {
		for k := 1; k <= MaxArity; k++ {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				psi := testutil.RandomState(rng, 1<<n)
				u := testutil.RandomUnitary(rng, 1<<k)
				ids := spreadTargets(k)

				got := append([]complex128(nil), psi...)
				e.Apply(got, ids, u, 0)
				assert.InDelta(t, 1.0, testutil.Norm2(got), 1e-9)
				e.Apply(got, ids, testutil.Dagger(u), 0)
				testutil.RequireStateNearlyEqual(t, got, psi, 1e-9)
			})
		}
	}
}

func TestEveryAmplitudeUpdatedOnce(t *testing.T) {
	const n = 8
	for name, e := range engines(t) {
		for k := 1; k <= MaxArity; k++ {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				psi := make([]complex128, 1<<n)
				for i := range psi {
					psi[i] = 1
				}
				double := testutil.Identity(1 << k)
				for r := range double {
					double[r][r] = 2
				}
				e.Apply(psi, spreadTargets(k), double, 0)
				for i, v := range psi {
					require.Equal(t, complex(2, 0), v, "amplitude %d", i)
				}
			})
		}
	}
}

func TestMatchesReference(t *testing.T) {
	const n = 10
	rng := testutil.NewRand(11)
	for name, e := range engines(t) {
		for k := 1; k <= MaxArity; k++ {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				psi := testutil.RandomState(rng, 1<<n)
				u := testutil.RandomUnitary(rng, 1<<k)
				ids := spreadTargets(k)
				ctrl := ControlMask(n - 1)

				want := testutil.ApplyReference(psi, ids, u, ctrl)
				got := append([]complex128(nil), psi...)
				e.Apply(got, ids, u, ctrl)
				testutil.RequireStateNearlyEqual(t, got, want, 1e-12)
			})
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	const n = 12
	rng := testutil.NewRand(13)
	serial, err := New(WithBackend("generic"), WithWorkers(1))
	require.NoError(t, err)
	pooled, err := New(WithBackend("generic"), WithWorkers(8), WithMinGroupsPerTask(1))
	require.NoError(t, err)

	for k := 1; k <= MaxArity; k++ {
		psi := testutil.RandomState(rng, 1<<n)
		u := testutil.RandomUnitary(rng, 1<<k)
		ids := spreadTargets(k)

		a := append([]complex128(nil), psi...)
		b := append([]complex128(nil), psi...)
		serial.Apply(a, ids, u, 0)
		pooled.Apply(b, ids, u, 0)
		testutil.RequireStateEqual(t, b, a)
	}
}

func TestCollapseOverride(t *testing.T) {
	const n = 9
	rng := testutil.NewRand(17)
	psi := testutil.RandomState(rng, 1<<n)
	u := testutil.RandomUnitary(rng, 8)
	ids := []uint{6, 3, 1}
	want := testutil.ApplyReference(psi, ids, u, 0)

	for depth := 1; depth <= 4; depth++ {
		e, err := New(WithBackend("generic"), WithCollapse(depth), WithWorkers(3), WithMinGroupsPerTask(1))
		require.NoError(t, err)
		assert.Equal(t, depth, e.Collapse(3))

		got := append([]complex128(nil), psi...)
		e.Apply(got, ids, u, 0)
		testutil.RequireStateNearlyEqual(t, got, want, 1e-12)
	}
}

func TestCollapseDepth(t *testing.T) {
	for k := 1; k <= MaxArity; k++ {
		assert.Equal(t, k+1, CollapseDepth(k))
	}
	e, err := New(WithCollapse(10))
	require.NoError(t, err)
	assert.Equal(t, 3, e.Collapse(2))
}

func TestApplyPanicsOnArity(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	psi := make([]complex128, 1<<7)

	assert.Panics(t, func() { e.Apply(psi, nil, Matrix{{1}}, 0) })
	assert.Panics(t, func() {
		e.Apply(psi, []uint{0, 1, 2, 3, 4, 5}, testutil.Identity(64), 0)
	})
}

func TestUnknownBackend(t *testing.T) {
	_, err := New(WithBackend("quantum-annealer"))
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestBackendFromEnvironment(t *testing.T) {
	t.Setenv(EnvBackend, "generic")
	e, err := New()
	require.NoError(t, err)
	assert.Equal(t, "generic", e.Backend())

	// An explicit option wins over the environment.
	t.Setenv(EnvBackend, "does-not-exist")
	e, err = New(WithBackend(BackendAuto))
	require.NoError(t, err)
	assert.NotEmpty(t, e.Backend())
}

func TestForcedGenericDispatch(t *testing.T) {
	cpu.SetForcedFeatures(cpu.Features{ForceGeneric: true, Architecture: runtime.GOARCH})
	defer cpu.ResetDetection()

	e, err := New(WithBackend(BackendAuto))
	require.NoError(t, err)
	assert.Equal(t, "generic", e.Backend())
}

func TestDefaultWorkers(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	if runtime.GOMAXPROCS(0) > 1 {
		assert.Equal(t, runtime.GOMAXPROCS(0), e.Workers())
	} else {
		assert.Equal(t, 1, e.Workers())
	}

	e, err = New(WithWorkers(1))
	require.NoError(t, err)
	assert.Equal(t, 1, e.Workers())
}

func TestPackageApply(t *testing.T) {
	psi := []complex128{1, 0}
	Apply(psi, []uint{0}, pauliX, 0)
	testutil.RequireStateEqual(t, psi, []complex128{0, 1})
}

func TestMetricsRecorded(t *testing.T) {
	var m BasicMetricsCollector
	e, err := New(WithBackend("generic"), WithMetrics(&m))
	require.NoError(t, err)

	psi := make([]complex128, 16)
	psi[0] = 1
	e.Apply(psi, []uint{0}, pauliX, 0)
	e.Apply(psi, []uint{3, 1}, cnot, 0)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.ApplyCount)
	assert.Equal(t, int64(32), stats.AmplitudesTotal)
	assert.Equal(t, int64(1), stats.ByArity[1])
	assert.Equal(t, int64(1), stats.ByArity[2])
}

func TestApplyChecked(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	psi := []complex128{1, 0, 0, 0}
	require.NoError(t, e.ApplyChecked(psi, []uint{1}, pauliX, 0))
	testutil.RequireStateEqual(t, psi, []complex128{0, 0, 1, 0})

	err = e.ApplyChecked(psi, []uint{2}, pauliX, 0)
	assert.ErrorIs(t, err, ErrTargetRange)
	testutil.RequireStateEqual(t, psi, []complex128{0, 0, 1, 0})
}

func highTargets(n, k int) []uint {
	ids := make([]uint, k)
	for i := range ids {
		ids[i] = uint(n - 1 - i)
	}
	return ids
}

func spreadTargets(k int) []uint {
	all := []uint{1, 7, 4, 0, 5}
	return all[:k]
}

func BenchmarkApply(b *testing.B) {
	const n = 18
	rng := testutil.NewRand(1)
	psi := testutil.RandomState(rng, 1<<n)
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}

	for k := 1; k <= MaxArity; k++ {
		u := testutil.RandomUnitary(rng, 1<<k)
		ids := spreadTargets(k)
		b.Run(fmt.Sprintf("%s/k=%d", e.Backend(), k), func(b *testing.B) {
			b.SetBytes(int64(len(psi) * 16))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				e.Apply(psi, ids, u, 0)
			}
		})
	}
}

