package render

const (
	DefaultEps          = 1e-8
	DefaultRaysPerPixel = 128
	DefaultMaxBounces   = 16
	DefaultFov          = 90.0
	DefaultTileSize     = 16
	// Gamma is applied only when radiance is quantized for output.
	Gamma = 0.45
	// seedMix spreads tile and pass indices over the seed space.
	seedMix = 0x9e3779b97f4a7c15
)
