package config

import "errors"

var (
	ErrInvalid         = errors.New("invalid config")
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownMesh     = errors.New("unknown mesh")
	ErrObjectKind      = errors.New("object must set exactly one of cube, sphere, simplex, face, obj, instance")
)
