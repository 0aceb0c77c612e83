package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightKind int

const (
	LightDirectional LightKind = iota
	LightPoint
	LightSpot
)

type Light struct {
	Intensity float32    `json:"intensity"`
	Range     float32    `json:"range"`
	Color     mgl32.Vec3 `json:"color"`
	Kind      LightKind  `json:"kind"`

	// Cone angles apply to spot lights only.
	InnerConeAngle float32 `json:"inner_cone_angle,omitempty"`
	OuterConeAngle float32 `json:"outer_cone_angle,omitempty"`
}

type Skin struct {
	Name   string  `json:"name"`
	Joints []Joint `json:"joints"`
}

type Joint struct {
	TargetNodeIndex   int        `json:"target_node_index"`
	InverseBindMatrix mgl32.Mat4 `json:"inverse_bind_matrix"`
}
