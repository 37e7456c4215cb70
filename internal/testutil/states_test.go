package testutil

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestRandomStateNormalized(t *testing.T) {
	psi := RandomState(NewRand(1), 64)
	if math.Abs(Norm2(psi)-1) > 1e-12 {
		t.Fatalf("norm = %v, want 1", Norm2(psi))
	}
}

func TestRandomStateReproducible(t *testing.T) {
	a := RandomState(NewRand(7), 32)
	b := RandomState(NewRand(7), 32)
	RequireStateEqual(t, a, b)
}

func TestRandomUnitary(t *testing.T) {
	for _, dim := range []int{2, 4, 8, 16, 32} {
		u := RandomUnitary(NewRand(int64(dim)), dim)
		ud := Dagger(u)
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				var sum complex128
				for j := 0; j < dim; j++ {
					sum += ud[r][j] * u[j][c]
				}
				want := complex(0, 0)
				if r == c {
					want = 1
				}
				if cmplx.Abs(sum-want) > 1e-12 {
					t.Fatalf("dim %d: (U^dag U)[%d][%d] = %v", dim, r, c, sum)
				}
			}
		}
	}
}

func TestApplyReferencePauliX(t *testing.T) {
	x := [][]complex128{{0, 1}, {1, 0}}
	got := ApplyReference([]complex128{1, 0, 0, 0}, []uint{0}, x, 0)
	RequireStateEqual(t, got, []complex128{0, 1, 0, 0})
}

func TestApplyReferenceBitOrder(t *testing.T) {
	// CNOT with ids {1, 0}: qubit 1 is the matrix MSB and acts as control.
	cnot := [][]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}
	got := ApplyReference([]complex128{0, 0, 1, 0}, []uint{1, 0}, cnot, 0)
	RequireStateEqual(t, got, []complex128{0, 0, 0, 1})

	got = ApplyReference([]complex128{0, 1, 0, 0}, []uint{1, 0}, cnot, 0)
	RequireStateEqual(t, got, []complex128{0, 1, 0, 0})
}

func TestApplyReferenceControl(t *testing.T) {
	x := [][]complex128{{0, 1}, {1, 0}}
	psi := SequentialState(8)
	got := ApplyReference(psi, []uint{0}, x, 0b100)
	want := []complex128{psi[0], psi[1], psi[2], psi[3], psi[5], psi[4], psi[7], psi[6]}
	RequireStateEqual(t, got, want)
}
