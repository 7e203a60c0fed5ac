package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrSingularMatrix is returned when elimination finds no usable pivot.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrDimensionMismatch is the panic value for operands of disagreeing shape.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// Pivot magnitudes outside [pivotMin, pivotMax] count as singular.
const (
	pivotMin = 1e-10
	pivotMax = 1e10
	// normalizeMin is the magnitude below which Normalize picks a random direction.
	normalizeMin = 1e-10
)

func mismatch(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrDimensionMismatch}, args...)...))
}
