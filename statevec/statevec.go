// Package statevec holds an n-qubit state vector in an aligned buffer and
// provides the readers a simulator needs around the gate kernels: amplitude
// and probability readout, norm and renormalisation.
//
// Amplitude i is the coefficient of the basis state whose binary digits are
// the qubit values, qubit 0 being the least significant bit.
package statevec

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"
	"unsafe"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-qsim/aligned"
)

// MaxQubits is the largest register New accepts.
const MaxQubits = 40

var (
	// ErrQubitCount is returned for a qubit count outside [1, MaxQubits].
	ErrQubitCount = errors.New("statevec: qubit count out of range")

	// ErrNotPowerOfTwo is returned when an amplitude slice cannot be a
	// register state.
	ErrNotPowerOfTwo = errors.New("statevec: amplitude count is not a power of two")

	// ErrZeroNorm is returned by Normalize on the zero vector.
	ErrZeroNorm = errors.New("statevec: state has zero norm")
)

// State is an n-qubit state vector. It is not safe for concurrent mutation.
type State struct {
	qubits int
	buf    *aligned.Buffer
}

// New allocates |0...0> over n qubits.
func New(alloc aligned.Allocator, n int) (*State, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("%w: %d", ErrQubitCount, n)
	}
	buf, err := alloc.Alloc(1 << n)
	if err != nil {
		return nil, fmt.Errorf("statevec: allocate %d qubits: %w", n, err)
	}
	buf.Data()[0] = 1
	return &State{qubits: n, buf: buf}, nil
}

// FromAmplitudes copies amps into a new aligned state. amps is used as is,
// without normalisation.
func FromAmplitudes(alloc aligned.Allocator, amps []complex128) (*State, error) {
	n := len(amps)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}
	qubits := 0
	for 1<<qubits < n {
		qubits++
	}
	if qubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d", ErrQubitCount, qubits)
	}
	buf, err := alloc.Alloc(n)
	if err != nil {
		return nil, fmt.Errorf("statevec: allocate %d qubits: %w", qubits, err)
	}
	copy(buf.Data(), amps)
	return &State{qubits: qubits, buf: buf}, nil
}

// Qubits returns the register size.
func (s *State) Qubits() int { return s.qubits }

// Len returns the number of amplitudes, 2^Qubits.
func (s *State) Len() int { return s.buf.Len() }

// Amplitudes returns the backing slice. Kernels mutate it in place.
func (s *State) Amplitudes() []complex128 { return s.buf.Data() }

// Alignment returns the byte alignment of the amplitude storage.
func (s *State) Alignment() int { return s.buf.Alignment() }

// Amplitude returns amplitude i.
func (s *State) Amplitude(i int) complex128 { return s.buf.Data()[i] }

// Probability returns |amplitude i|^2.
func (s *State) Probability(i int) float64 {
	a := s.buf.Data()[i]
	return real(a)*real(a) + imag(a)*imag(a)
}

// Probabilities returns |a_i|^2 for every amplitude.
func (s *State) Probabilities() []float64 {
	amps := s.buf.Data()
	out := make([]float64, len(amps))
	re, im, scratch := getScratch(min(len(amps), blockSize))
	defer putScratch(scratch)

	for lo := 0; lo < len(amps); lo += blockSize {
		hi := min(lo+blockSize, len(amps))
		n := split(amps[lo:hi], re, im)
		vecmath.Power(out[lo:hi], re[:n], im[:n])
	}
	return out
}

// Norm returns the sum of squared amplitude moduli. It is 1 for a
// normalized state.
func (s *State) Norm() float64 {
	amps := s.buf.Data()
	re, im, scratch := getScratch(min(len(amps), blockSize))
	defer putScratch(scratch)

	sum := 0.0
	for lo := 0; lo < len(amps); lo += blockSize {
		hi := min(lo+blockSize, len(amps))
		n := split(amps[lo:hi], re, im)
		// re doubles as the power output.
		vecmath.Power(re[:n], re[:n], im[:n])
		for _, p := range re[:n] {
			sum += p
		}
	}
	return sum
}

// Normalize rescales the state to unit norm.
func (s *State) Normalize() error {
	norm := s.Norm()
	if norm == 0 || math.IsNaN(norm) {
		return ErrZeroNorm
	}
	flat := floats(s.buf.Data())
	vecmath.ScaleBlock(flat, flat, 1/math.Sqrt(norm))
	return nil
}

// Fidelity returns |<s|o>|^2. Both states must have the same size.
func (s *State) Fidelity(o *State) float64 {
	a, b := s.buf.Data(), o.buf.Data()
	var dot complex128
	for i := range a {
		dot += cmplx.Conj(a[i]) * b[i]
	}
	return real(dot)*real(dot) + imag(dot)*imag(dot)
}

// Clone copies the state into a new buffer from alloc.
func (s *State) Clone(alloc aligned.Allocator) (*State, error) {
	return FromAmplitudes(alloc, s.buf.Data())
}

// Reset sets the state back to |0...0>.
func (s *State) Reset() {
	amps := s.buf.Data()
	clear(amps)
	amps[0] = 1
}

// Free releases the amplitude buffer. The state must not be used afterwards.
func (s *State) Free() {
	s.buf.Free()
}

// floats reinterprets amplitudes as interleaved (re, im) float64 values.
func floats(amps []complex128) []float64 {
	if len(amps) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&amps[0])), 2*len(amps)) //nolint:gosec // complex128 is two float64
}

// blockSize bounds the scratch used by the vectorised readers.
const blockSize = 4096

// split copies the real and imaginary parts of amps into re and im and
// returns the count.
func split(amps []complex128, re, im []float64) int {
	for i, c := range amps {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return len(amps)
}

// scratchBuf holds pooled scratch memory for re/im unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}
