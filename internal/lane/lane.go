// Package lane implements the two-complex lane primitive used by the vector
// gate kernels.
//
// A Pair packs two complex128 values into four float64 lanes
// (re0, im0, re1, im1), the layout of one 256-bit register holding two
// adjacent amplitudes. The complex product is built from two elementwise
// multiplies and a horizontal subtract:
//
//	p  = x * m                      (a*c, b*d, ...)
//	q  = x * m.Twist()              (a*d, -b*c, ...)
//	xm = (p0-p1, q0-q1, p2-p3, q2-q3)
//
// with x = (a, b) and m = (c, d) in each slot.
//
// The twisted operand depends only on the matrix, so kernels derive it once
// per gate application instead of once per amplitude.
package lane

// Pair holds two complex values as (re0, im0, re1, im1).
type Pair [4]float64

// Load gathers s[i] into the low slot and s[j] into the high slot.
func Load(s []complex128, i, j int) Pair {
	lo, hi := s[i], s[j]
	return Pair{real(lo), imag(lo), real(hi), imag(hi)}
}

// Pack builds a Pair from two values.
func Pack(lo, hi complex128) Pair {
	return Pair{real(lo), imag(lo), real(hi), imag(hi)}
}

// Broadcast places c in both slots.
func Broadcast(c complex128) Pair {
	re, im := real(c), imag(c)
	return Pair{re, im, re, im}
}

// Store writes the low slot to s[i] and the high slot to s[j].
func (p Pair) Store(s []complex128, i, j int) {
	s[i] = complex(p[0], p[1])
	s[j] = complex(p[2], p[3])
}

// Lane returns slot i (0 or 1) as a complex number.
func (p Pair) Lane(i int) complex128 {
	return complex(p[2*i], p[2*i+1])
}

// Twist swaps real and imaginary parts within each slot and negates the new
// imaginary component: (c, d) -> (d, -c).
func (p Pair) Twist() Pair {
	return Pair{p[1], -p[0], p[3], -p[2]}
}

// Mul returns the slotwise complex product x*m, where mt is m.Twist().
func Mul(x, m, mt Pair) Pair {
	p0, p1, p2, p3 := x[0]*m[0], x[1]*m[1], x[2]*m[2], x[3]*m[3]
	q0, q1, q2, q3 := x[0]*mt[0], x[1]*mt[1], x[2]*mt[2], x[3]*mt[3]
	return Pair{p0 - p1, q0 - q1, p2 - p3, q2 - q3}
}

// MulFull is Mul with the twisted operand derived on the fly.
func MulFull(x, m Pair) Pair {
	return Mul(x, m, m.Twist())
}

// Add returns the elementwise sum a+b.
func Add(a, b Pair) Pair {
	return Pair{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}
