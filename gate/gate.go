// Package gate provides standard gate matrices in the layout the kernel
// package expects: row-major, with the first target as the most significant
// bit of the row and column index.
//
// Every function returns a fresh matrix the caller may modify.
package gate

import (
	"math"
	"math/cmplx"
)

// Matrix is a row-major square gate matrix.
type Matrix = [][]complex128

var invSqrt2 = complex(1/math.Sqrt2, 0)

func square(rows ...[]complex128) Matrix {
	return Matrix(rows)
}

// X is the Pauli-X (NOT) gate.
func X() Matrix { return square([]complex128{0, 1}, []complex128{1, 0}) }

// Y is the Pauli-Y gate.
func Y() Matrix { return square([]complex128{0, -1i}, []complex128{1i, 0}) }

// Z is the Pauli-Z gate.
func Z() Matrix { return square([]complex128{1, 0}, []complex128{0, -1}) }

// H is the Hadamard gate.
func H() Matrix {
	return square([]complex128{invSqrt2, invSqrt2}, []complex128{invSqrt2, -invSqrt2})
}

// S is the phase gate diag(1, i).
func S() Matrix { return square([]complex128{1, 0}, []complex128{0, 1i}) }

// Sdag is the inverse of S.
func Sdag() Matrix { return square([]complex128{1, 0}, []complex128{0, -1i}) }

// T is the pi/8 gate diag(1, e^{i pi/4}).
func T() Matrix { return R(math.Pi / 4) }

// Tdag is the inverse of T.
func Tdag() Matrix { return R(-math.Pi / 4) }

// SqrtX is the square root of Pauli-X.
func SqrtX() Matrix {
	a, b := complex(0.5, 0.5), complex(0.5, -0.5)
	return square([]complex128{a, b}, []complex128{b, a})
}

// Identity returns the identity on k qubits.
func Identity(k int) Matrix {
	dim := 1 << k
	m := make(Matrix, dim)
	for r := range m {
		m[r] = make([]complex128, dim)
		m[r][r] = 1
	}
	return m
}

// Rx rotates about the X axis by theta.
func Rx(theta float64) Matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return square([]complex128{c, s}, []complex128{s, c})
}

// Ry rotates about the Y axis by theta.
func Ry(theta float64) Matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return square([]complex128{c, -s}, []complex128{s, c})
}

// Rz rotates about the Z axis by theta.
func Rz(theta float64) Matrix {
	return square(
		[]complex128{cmplx.Exp(complex(0, -theta/2)), 0},
		[]complex128{0, cmplx.Exp(complex(0, theta/2))},
	)
}

// Ph multiplies a qubit by the global phase e^{i theta}.
func Ph(theta float64) Matrix {
	p := cmplx.Exp(complex(0, theta))
	return square([]complex128{p, 0}, []complex128{0, p})
}

// R is the relative phase gate diag(1, e^{i theta}).
func R(theta float64) Matrix {
	return square([]complex128{1, 0}, []complex128{0, cmplx.Exp(complex(0, theta))})
}

// CNOT flips the second target when the first is set.
func CNOT() Matrix { return Controlled(X()) }

// CZ applies Z to the second target when the first is set.
func CZ() Matrix { return Controlled(Z()) }

// SWAP exchanges two qubits.
func SWAP() Matrix {
	return square(
		[]complex128{1, 0, 0, 0},
		[]complex128{0, 0, 1, 0},
		[]complex128{0, 1, 0, 0},
		[]complex128{0, 0, 0, 1},
	)
}

// SqrtSWAP is the square root of SWAP.
func SqrtSWAP() Matrix {
	a, b := complex(0.5, 0.5), complex(0.5, -0.5)
	return square(
		[]complex128{1, 0, 0, 0},
		[]complex128{0, a, b, 0},
		[]complex128{0, b, a, 0},
		[]complex128{0, 0, 0, 1},
	)
}

// Toffoli flips the third target when both others are set.
func Toffoli() Matrix { return Controlled(CNOT()) }

// QFT returns the quantum Fourier transform on k qubits,
// F[r][c] = e^{2 pi i r c / 2^k} / sqrt(2^k).
func QFT(k int) Matrix {
	dim := 1 << k
	norm := 1 / math.Sqrt(float64(dim))
	m := make(Matrix, dim)
	for r := range m {
		m[r] = make([]complex128, dim)
		for c := range m[r] {
			phase := 2 * math.Pi * float64((r*c)%dim) / float64(dim)
			m[r][c] = cmplx.Rect(norm, phase)
		}
	}
	return m
}

// Dagger returns the conjugate transpose of m.
func Dagger(m Matrix) Matrix {
	out := make(Matrix, len(m))
	for r := range out {
		out[r] = make([]complex128, len(m))
		for c := range out[r] {
			out[r][c] = cmplx.Conj(m[c][r])
		}
	}
	return out
}

// Kron returns the Kronecker product a (x) b. The qubits of a become the
// most significant targets.
func Kron(a, b Matrix) Matrix {
	na, nb := len(a), len(b)
	out := make(Matrix, na*nb)
	for r := range out {
		out[r] = make([]complex128, na*nb)
		ar, br := r/nb, r%nb
		for c := range out[r] {
			out[r][c] = a[ar][c/nb] * b[br][c%nb]
		}
	}
	return out
}

// Mul returns the matrix product a*b: applying b first, then a.
func Mul(a, b Matrix) Matrix {
	n := len(a)
	out := make(Matrix, n)
	for r := range out {
		out[r] = make([]complex128, n)
		for j := 0; j < n; j++ {
			if a[r][j] == 0 {
				continue
			}
			for c := 0; c < n; c++ {
				out[r][c] += a[r][j] * b[j][c]
			}
		}
	}
	return out
}

// Controlled adds one control qubit to m as the new most significant target.
func Controlled(m Matrix) Matrix {
	n := len(m)
	out := make(Matrix, 2*n)
	for r := range out {
		out[r] = make([]complex128, 2*n)
	}
	for i := 0; i < n; i++ {
		out[i][i] = 1
		copy(out[n+i][n:], m[i])
	}
	return out
}
