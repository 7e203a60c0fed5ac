package ntrace

var (
	Debug    = false // set to true for debug level logging
	Fast     = false // set to true for a preview: colour of the first hit per pixel, no path tracing
	NeverBVH = false // set to true to pick faces by brute force instead of the BVH
	DumpBVH  = false // set to true to print the BVH tree before rendering
	Resume   = false // set to true to continue from the saved render state
	Workers  = 0     // render goroutines, 0 means one per CPU
)

// coverageProbes is the number of primary rays used to detect a scene with
// nothing in view.
const coverageProbes = 10_000
