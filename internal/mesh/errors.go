package mesh

import "errors"

var (
	ErrTooManyVertices = errors.New("face has more vertices than the mesh dimension")
	ErrForeignVertex   = errors.New("vertex belongs to another mesh")
	ErrVertexIndex     = errors.New("vertex index out of range")
	ErrDimension       = errors.New("dimension mismatch")
	ErrInstanceCycle   = errors.New("instancing would create a cycle")
	ErrMaterial        = errors.New("invalid material")
)
