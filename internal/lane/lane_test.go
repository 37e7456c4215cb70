package lane

import (
	"math/cmplx"
	"math/rand"
	"testing"
)

const eps = 1e-14

func randComplex(rng *rand.Rand) complex128 {
	return complex(rng.Float64()*2-1, rng.Float64()*2-1)
}

func TestLoadStore(t *testing.T) {
	s := []complex128{1 + 2i, 3 + 4i, 5 + 6i, 7 + 8i}
	p := Load(s, 1, 3)
	if p != (Pair{3, 4, 7, 8}) {
		t.Fatalf("Load = %v", p)
	}

	out := make([]complex128, 4)
	p.Store(out, 2, 0)
	if out[2] != 3+4i || out[0] != 7+8i || out[1] != 0 || out[3] != 0 {
		t.Fatalf("Store wrote %v", out)
	}
	if p.Lane(0) != 3+4i || p.Lane(1) != 7+8i {
		t.Fatalf("Lane = %v, %v", p.Lane(0), p.Lane(1))
	}
}

func TestBroadcastAndPack(t *testing.T) {
	if Broadcast(2-3i) != (Pair{2, -3, 2, -3}) {
		t.Fatalf("Broadcast = %v", Broadcast(2-3i))
	}
	if Pack(1i, 2) != (Pair{0, 1, 2, 0}) {
		t.Fatalf("Pack = %v", Pack(1i, 2))
	}
}

func TestTwist(t *testing.T) {
	got := Pack(1+2i, 3+4i).Twist()
	want := Pair{2, -1, 4, -3}
	if got != want {
		t.Fatalf("Twist = %v, want %v", got, want)
	}
}

func TestMulMatchesComplexProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		a := randComplex(rng)
		c0, c1 := randComplex(rng), randComplex(rng)

		m := Pack(c0, c1)
		got := Mul(Broadcast(a), m, m.Twist())

		if cmplx.Abs(got.Lane(0)-a*c0) > eps || cmplx.Abs(got.Lane(1)-a*c1) > eps {
			t.Fatalf("Mul(%v, (%v, %v)) = (%v, %v), want (%v, %v)",
				a, c0, c1, got.Lane(0), got.Lane(1), a*c0, a*c1)
		}
	}
}

func TestMulFullSlotwise(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		x0, x1 := randComplex(rng), randComplex(rng)
		m0, m1 := randComplex(rng), randComplex(rng)

		got := MulFull(Pack(x0, x1), Pack(m0, m1))
		if cmplx.Abs(got.Lane(0)-x0*m0) > eps || cmplx.Abs(got.Lane(1)-x1*m1) > eps {
			t.Fatalf("MulFull lanes = (%v, %v), want (%v, %v)", got.Lane(0), got.Lane(1), x0*m0, x1*m1)
		}
	}
}

func TestAdd(t *testing.T) {
	got := Add(Pack(1+1i, 2+2i), Pack(-1+3i, 0.5))
	if got != (Pair{0, 4, 2.5, 2}) {
		t.Fatalf("Add = %v", got)
	}
}

func BenchmarkMulAdd(b *testing.B) {
	m := Pack(0.6+0.8i, -0.8+0.6i)
	mt := m.Twist()
	acc := Pair{}
	x := Broadcast(0.3 - 0.1i)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		acc = Add(acc, Mul(x, m, mt))
	}
	_ = acc
}
