package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sauerbraten/jsonfile"
	"gopkg.in/yaml.v3"

	"github.com/lukaszgryglicki/ntrace/internal/mesh"
	"github.com/lukaszgryglicki/ntrace/internal/render"
)

// Config is a scene file. Angles are in degrees.
type Config struct {
	Dim          int                    `json:"dim" yaml:"dim"`
	Width        int                    `json:"width" yaml:"width"`
	Height       int                    `json:"height" yaml:"height"`
	RaysPerPixel int                    `json:"raysPerPixel,omitempty" yaml:"raysPerPixel,omitempty"`
	MaxBounces   int                    `json:"maxBounces,omitempty" yaml:"maxBounces,omitempty"`
	Eps          float64                `json:"eps,omitempty" yaml:"eps,omitempty"`
	MinEnergy    float64                `json:"minEnergy,omitempty" yaml:"minEnergy,omitempty"`
	Seed         int64                  `json:"seed,omitempty" yaml:"seed,omitempty"`
	TileSize     int                    `json:"tileSize,omitempty" yaml:"tileSize,omitempty"`
	Camera       CameraCfg              `json:"camera" yaml:"camera"`
	BVH          mesh.BVHParams         `json:"bvh,omitempty" yaml:"bvh,omitempty"`
	Output       OutputCfg              `json:"output" yaml:"output"`
	Materials    map[string]MaterialCfg `json:"materials" yaml:"materials"`
	Meshes       map[string]MeshCfg     `json:"meshes,omitempty" yaml:"meshes,omitempty"`
	Objects      []ObjectCfg            `json:"objects" yaml:"objects"`

	dir string // relative OBJ paths start here
}

type CameraCfg struct {
	Position  []float64 `json:"position,omitempty" yaml:"position,omitempty"`
	AnglesDeg []float64 `json:"anglesDeg,omitempty" yaml:"anglesDeg,omitempty"`
	Fov       float64   `json:"fov,omitempty" yaml:"fov,omitempty"`
}

type OutputCfg struct {
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`   // .bmp or .png
	State string `json:"state,omitempty" yaml:"state,omitempty"` // accumulated samples, for resuming
}

// MaterialCfg mirrors mesh.Material. Pointer fields default to the values
// of mesh.NewMaterial when omitted; scatterLen 0 means no scattering.
type MaterialCfg struct {
	Color        []float64 `json:"color" yaml:"color"`
	Luminosity   float64   `json:"luminosity,omitempty" yaml:"luminosity,omitempty"`
	ReflectProb  *float64  `json:"reflectProb,omitempty" yaml:"reflectProb,omitempty"`
	Diffusion    *float64  `json:"diffusion,omitempty" yaml:"diffusion,omitempty"`
	RefractProb  float64   `json:"refractProb,omitempty" yaml:"refractProb,omitempty"`
	RefractIndex *float64  `json:"refractIndex,omitempty" yaml:"refractIndex,omitempty"`
	ScatterLen   float64   `json:"scatterLen,omitempty" yaml:"scatterLen,omitempty"`
	AbsorbProb   *float64  `json:"absorbProb,omitempty" yaml:"absorbProb,omitempty"`
}

// MeshCfg is a named group of objects that can be instanced.
type MeshCfg struct {
	Objects []ObjectCfg `json:"objects" yaml:"objects"`
}

type TransformCfg struct {
	Offset    []float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	AnglesDeg []float64 `json:"anglesDeg,omitempty" yaml:"anglesDeg,omitempty"`
	Scale     []float64 `json:"scale,omitempty" yaml:"scale,omitempty"` // one value or one per axis
}

// ObjectCfg sets exactly one shape.
type ObjectCfg struct {
	Material  string        `json:"material,omitempty" yaml:"material,omitempty"`
	Transform *TransformCfg `json:"transform,omitempty" yaml:"transform,omitempty"`

	Cube     *CubeCfg    `json:"cube,omitempty" yaml:"cube,omitempty"`
	Sphere   *SphereCfg  `json:"sphere,omitempty" yaml:"sphere,omitempty"`
	Simplex  *SimplexCfg `json:"simplex,omitempty" yaml:"simplex,omitempty"`
	Face     [][]float64 `json:"face,omitempty" yaml:"face,omitempty"` // vertex positions
	OBJ      string      `json:"obj,omitempty" yaml:"obj,omitempty"`   // file path
	Instance string      `json:"instance,omitempty" yaml:"instance,omitempty"`
	Copy     bool        `json:"copy,omitempty" yaml:"copy,omitempty"` // bake the instanced mesh into this one
}

type CubeCfg struct {
	Sides []float64 `json:"sides" yaml:"sides"`
}

type SphereCfg struct {
	Center   []float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Radius   float64   `json:"radius" yaml:"radius"`
	MaxFaces int       `json:"maxFaces,omitempty" yaml:"maxFaces,omitempty"`
}

type SimplexCfg struct {
	Edge float64 `json:"edge" yaml:"edge"`
}

// Load reads a scene file: YAML for .yaml and .yml, JSON with // comment
// lines otherwise. Missing sizes and paths take defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := jsonfile.ParseFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.dir = filepath.Dir(path)
	cfg.applyDefaults()
	slog.Debug("loaded config", "path", path, "dim", cfg.Dim, "width", cfg.Width, "height", cfg.Height,
		"raysPerPixel", cfg.RaysPerPixel, "objects", len(cfg.Objects), "meshes", len(cfg.Meshes))
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Dim <= 0 {
		c.Dim = DefaultDim
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.RaysPerPixel <= 0 {
		c.RaysPerPixel = render.DefaultRaysPerPixel
	}
	if c.MaxBounces <= 0 {
		c.MaxBounces = render.DefaultMaxBounces
	}
	if c.Eps <= 0 {
		c.Eps = render.DefaultEps
	}
	if c.TileSize <= 0 {
		c.TileSize = render.DefaultTileSize
	}
	if c.Camera.Fov <= 0 {
		c.Camera.Fov = render.DefaultFov
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutput
	}
	if c.Output.State == "" {
		c.Output.State = DefaultState
	}
}
