package testutil

import (
	"math"
	"math/cmplx"
	"math/rand"
)

// NewRand returns a deterministic source for reproducible fixtures.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
}

// RandomState returns a normalized random state of dim amplitudes.
func RandomState(rng *rand.Rand, dim int) []complex128 {
	psi := make([]complex128, dim)
	for i := range psi {
		psi[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	scale := complex(1/math.Sqrt(Norm2(psi)), 0)
	for i := range psi {
		psi[i] *= scale
	}
	return psi
}

// SequentialState returns amplitudes psi[i] = i + 0.5i, unnormalized. Every
// entry is distinct, which makes index mix-ups visible.
func SequentialState(dim int) []complex128 {
	psi := make([]complex128, dim)
	for i := range psi {
		psi[i] = complex(float64(i), 0.5*float64(i))
	}
	return psi
}

// BasisState returns |index> over dim amplitudes.
func BasisState(dim, index int) []complex128 {
	psi := make([]complex128, dim)
	psi[index] = 1
	return psi
}

// RandomUnitary returns a dim x dim unitary obtained by Gram-Schmidt
// orthonormalization of a random complex Gaussian matrix.
func RandomUnitary(rng *rand.Rand, dim int) [][]complex128 {
	cols := make([][]complex128, dim)
	for c := range cols {
		v := make([]complex128, dim)
		for {
			for i := range v {
				v[i] = complex(rng.NormFloat64(), rng.NormFloat64())
			}
			for _, q := range cols[:c] {
				var dot complex128
				for i := range v {
					dot += cmplx.Conj(q[i]) * v[i]
				}
				for i := range v {
					v[i] -= dot * q[i]
				}
			}
			n := math.Sqrt(Norm2(v))
			if n > 1e-6 {
				for i := range v {
					v[i] /= complex(n, 0)
				}
				break
			}
		}
		cols[c] = v
	}

	m := make([][]complex128, dim)
	for r := range m {
		m[r] = make([]complex128, dim)
		for c := range m[r] {
			m[r][c] = cols[c][r]
		}
	}
	return m
}

// Identity returns the dim x dim identity matrix.
func Identity(dim int) [][]complex128 {
	m := make([][]complex128, dim)
	for r := range m {
		m[r] = make([]complex128, dim)
		m[r][r] = 1
	}
	return m
}

// Dagger returns the conjugate transpose of m.
func Dagger(m [][]complex128) [][]complex128 {
	out := make([][]complex128, len(m))
	for r := range out {
		out[r] = make([]complex128, len(m))
		for c := range out[r] {
			out[r][c] = cmplx.Conj(m[c][r])
		}
	}
	return out
}

// ApplyReference applies m to the targets ids of psi by direct summation and
// returns the result in a new slice. ids[0] is the most significant bit of
// the matrix index. Amplitudes whose ctrlMask bits are not all set are
// copied unchanged.
func ApplyReference(psi []complex128, ids []uint, m [][]complex128, ctrlMask uint64) []complex128 {
	k := len(ids)
	dim := 1 << k
	out := make([]complex128, len(psi))
	copy(out, psi)

	var targetMask uint64
	for _, id := range ids {
		targetMask |= 1 << id
	}

	for i := range psi {
		idx := uint64(i)
		if idx&ctrlMask != ctrlMask {
			continue
		}
		row := 0
		for j, id := range ids {
			if idx&(1<<id) != 0 {
				row |= 1 << (k - 1 - j)
			}
		}
		base := idx &^ targetMask
		var acc complex128
		for c := 0; c < dim; c++ {
			src := base
			for j, id := range ids {
				if c&(1<<(k-1-j)) != 0 {
					src |= 1 << id
				}
			}
			acc += m[row][c] * psi[src]
		}
		out[i] = acc
	}
	return out
}
