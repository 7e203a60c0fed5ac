package mesh

const (
	// MaxDim is the largest supported dimension (one sign bit per axis).
	MaxDim = 64
	// DefaultRayMin is the near limit of a fresh ray; lower values cause
	// self-intersection artifacts.
	DefaultRayMin = 1e-4
	// DefaultAbsorbProb is the per-hit absorption chance of a new material.
	DefaultAbsorbProb = 0.01
	// parallelEps is the smallest |dir·normal| (and |dir[i]|) treated as non-parallel.
	parallelEps = 1e-10
	// objPrecision is the number of decimals written for OBJ coordinates.
	objPrecision = 9
)
