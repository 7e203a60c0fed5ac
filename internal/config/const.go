package config

const (
	DefaultDim         = 3
	DefaultWidth       = 320
	DefaultHeight      = 240
	DefaultSphereFaces = 1 << 10
	DefaultOutput      = "out/render.bmp"
	DefaultState       = "out/render.state"
)
