package kernel

import (
	"errors"
	"fmt"
	"math/bits"
)

// Errors reported by Validate.
var (
	// ErrArity means the number of targets is outside [1, MaxArity].
	ErrArity = errors.New("kernel: arity out of range")

	// ErrTargetRange means a target qubit does not exist in the state.
	ErrTargetRange = errors.New("kernel: target qubit out of range")

	// ErrDuplicateTarget means a qubit is listed twice as a target.
	ErrDuplicateTarget = errors.New("kernel: duplicate target qubit")

	// ErrMatrixShape means the matrix is not 2^k x 2^k for k targets.
	ErrMatrixShape = errors.New("kernel: matrix shape does not match arity")

	// ErrControlOverlap means a control bit is also a target.
	ErrControlOverlap = errors.New("kernel: control mask overlaps targets")

	// ErrControlRange means the control mask has bits above the top qubit.
	ErrControlRange = errors.New("kernel: control mask out of range")

	// ErrStateLength means the state has fewer than two amplitudes or a
	// length that is not a power of two.
	ErrStateLength = errors.New("kernel: state length is not a power of two")
)

// Validate checks the preconditions Apply assumes for a state of n
// amplitudes.
func Validate(n int, targets []uint, m Matrix, ctrlMask uint64) error {
	if n < 2 || n&(n-1) != 0 {
		return fmt.Errorf("%w: %d", ErrStateLength, n)
	}
	qubits := uint(bits.TrailingZeros(uint(n)))

	k := len(targets)
	if k < 1 || k > MaxArity {
		return fmt.Errorf("%w: %d", ErrArity, k)
	}

	var targetMask uint64
	for _, id := range targets {
		if id >= qubits {
			return fmt.Errorf("%w: qubit %d in a %d-qubit state", ErrTargetRange, id, qubits)
		}
		if targetMask&(1<<id) != 0 {
			return fmt.Errorf("%w: qubit %d", ErrDuplicateTarget, id)
		}
		targetMask |= 1 << id
	}

	dim := 1 << k
	if len(m) != dim {
		return fmt.Errorf("%w: %d rows, want %d", ErrMatrixShape, len(m), dim)
	}
	for r, row := range m {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrMatrixShape, r, len(row), dim)
		}
	}

	if ctrlMask&targetMask != 0 {
		return fmt.Errorf("%w: %#b", ErrControlOverlap, ctrlMask&targetMask)
	}
	if qubits < 64 && ctrlMask>>qubits != 0 {
		return fmt.Errorf("%w: %#b", ErrControlRange, ctrlMask)
	}
	return nil
}
