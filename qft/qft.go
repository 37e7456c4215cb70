// Package qft emulates the quantum Fourier transform with a classical FFT.
//
// On a register made of the lowest m qubits, the register value is the
// amplitude index modulo 2^m, so every setting of the remaining qubits owns a
// contiguous block of 2^m amplitudes. The QFT maps each block v to
//
//	w[r] = 2^(-m/2) sum_c e^{2 pi i r c / 2^m} v[c]
//
// which is sqrt(2^m) times the normalized inverse DFT. This replaces the
// O(m^2) gate sequence of a QFT circuit by one FFT per block.
package qft

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"golang.org/x/sync/errgroup"
)

// ErrRegisterSize is returned when the register does not fit the state.
var ErrRegisterSize = errors.New("qft: register size out of range")

// Apply applies the QFT to the lowest m qubits of psi in place.
func Apply(psi []complex128, m int) error {
	return transform(psi, m, false)
}

// Inverse applies the inverse QFT to the lowest m qubits of psi in place.
func Inverse(psi []complex128, m int) error {
	return transform(psi, m, true)
}

func transform(psi []complex128, m int, inverse bool) error {
	n := len(psi)
	if n < 2 || n&(n-1) != 0 {
		return fmt.Errorf("%w: state length %d", ErrRegisterSize, n)
	}
	if m < 1 || m > bits.TrailingZeros(uint(n)) {
		return fmt.Errorf("%w: %d qubits in a state of %d amplitudes", ErrRegisterSize, m, n)
	}

	size := 1 << m
	blocks := n / size
	pool, err := workers(size)
	if err != nil {
		return err
	}

	run := func(lo, hi int) error {
		w := pool.Get().(*worker)
		defer pool.Put(w)
		for b := lo; b < hi; b++ {
			if err := w.do(psi[b*size:(b+1)*size], inverse); err != nil {
				return err
			}
		}
		return nil
	}

	chunks := min(runtime.GOMAXPROCS(0), blocks)
	if chunks <= 1 || n < parallelThreshold {
		return run(0, blocks)
	}

	var g errgroup.Group
	per := (blocks + chunks - 1) / chunks
	for lo := 0; lo < blocks; lo += per {
		hi := min(lo+per, blocks)
		g.Go(func() error { return run(lo, hi) })
	}
	return g.Wait()
}

// parallelThreshold is the state length below which blocks run inline.
const parallelThreshold = 1 << 14

// worker owns one plan and its scratch buffer.
type worker struct {
	plan  *algofft.Plan[complex128]
	buf   []complex128
	scale complex128
}

func (w *worker) do(block []complex128, inverse bool) error {
	if inverse {
		if err := w.plan.Forward(w.buf, block); err != nil {
			return fmt.Errorf("qft: forward FFT failed: %w", err)
		}
		s := 1 / w.scale
		for i, v := range w.buf {
			block[i] = v * s
		}
		return nil
	}
	if err := w.plan.Inverse(w.buf, block); err != nil {
		return fmt.Errorf("qft: inverse FFT failed: %w", err)
	}
	for i, v := range w.buf {
		block[i] = v * w.scale
	}
	return nil
}

var (
	poolsMu sync.Mutex
	pools   = map[int]*sync.Pool{}
)

// workers returns the worker pool for one transform size, creating the
// first plan eagerly so that planning errors surface here.
func workers(size int) (*sync.Pool, error) {
	poolsMu.Lock()
	defer poolsMu.Unlock()

	if p, ok := pools[size]; ok {
		return p, nil
	}

	first, err := newWorker(size)
	if err != nil {
		return nil, err
	}
	p := &sync.Pool{
		New: func() any {
			w, err := newWorker(size)
			if err != nil {
				// Planning this size already succeeded once.
				panic(err)
			}
			return w
		},
	}
	p.Put(first)
	pools[size] = p
	return p, nil
}

func newWorker(size int) (*worker, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("qft: plan %d-point FFT: %w", size, err)
	}
	return &worker{
		plan:  plan,
		buf:   make([]complex128, size),
		scale: complex(math.Sqrt(float64(size)), 0),
	}, nil
}
