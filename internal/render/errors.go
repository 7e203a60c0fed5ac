package render

import "errors"

var (
	ErrCamera        = errors.New("invalid camera")
	ErrStateMismatch = errors.New("render state does not match the image size")
	ErrImageFormat   = errors.New("unsupported image format")
	ErrBufferSize    = errors.New("pixel buffer size mismatch")
)
