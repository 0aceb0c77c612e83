package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

type Material struct {
	Name                  string     `json:"name"`
	BaseColorFactor       mgl32.Vec4 `json:"base_color_factor"`
	BaseColorTextureIndex int        `json:"base_color_texture_index"`
	EmissiveTextureIndex  int        `json:"emissive_texture_index"`
	EmissiveFactor        mgl32.Vec3 `json:"emissive_factor"`
	AlphaMode             AlphaMode  `json:"alpha_mode"`
	AlphaCutoff           float32    `json:"alpha_cutoff,omitempty"`
}

// Texture points at an image and, optionally, a sampler. SamplerIndex is
// InvalidIndex when the texture uses default sampling.
type Texture struct {
	ImageIndex   int `json:"image_index"`
	SamplerIndex int `json:"sampler_index"`
}

type ImageFormat int

const (
	FormatR8 ImageFormat = iota
	FormatR8G8
	FormatR8G8B8
	FormatR8G8B8A8
	FormatB8G8R8
	FormatB8G8R8A8
	FormatR16F
	FormatR16G16B16A16F
	FormatR32F
	FormatR32G32B32A32F
)

type Image struct {
	Name   string      `json:"name"`
	Pixels []byte      `json:"pixels"`
	Format ImageFormat `json:"format"`
	Width  uint32      `json:"width"`
	Height uint32      `json:"height"`
}

type WrappingMode int

const (
	WrapRepeat WrappingMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

type Sampler struct {
	MinFilter Filter       `json:"min_filter"`
	MagFilter Filter       `json:"mag_filter"`
	WrapS     WrappingMode `json:"wrap_s"`
	WrapT     WrappingMode `json:"wrap_t"`
}
