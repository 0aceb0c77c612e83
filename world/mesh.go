package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Position mgl32.Vec3 `json:"position"`
	Normal   mgl32.Vec3 `json:"normal"`
	UV0      mgl32.Vec2 `json:"uv_0"`
	UV1      mgl32.Vec2 `json:"uv_1"`
	Joint0   mgl32.Vec4 `json:"joint_0"`
	Weight0  mgl32.Vec4 `json:"weight_0"`
	Color0   mgl32.Vec3 `json:"color_0"`
}

func NewVertex() Vertex {
	return Vertex{Color0: mgl32.Vec3{1, 1, 1}}
}

type PrimitiveTopology int

const (
	TopologyPoints PrimitiveTopology = iota
	TopologyLines
	TopologyLineLoop
	TopologyLineStrip
	TopologyTriangles
	TopologyTriangleStrip
	TopologyTriangleFan
)

// Primitive is a draw span inside the world's shared vertex/index buffers.
// MaterialIndex is InvalidIndex when the primitive has no material.
type Primitive struct {
	VertexOffset     int               `json:"vertex_offset"`
	IndexOffset      int               `json:"index_offset"`
	NumberOfVertices int               `json:"number_of_vertices"`
	NumberOfIndices  int               `json:"number_of_indices"`
	Topology         PrimitiveTopology `json:"topology"`
	MaterialIndex    int               `json:"material_index"`
}

type Mesh struct {
	Name       string      `json:"name"`
	Primitives []Primitive `json:"primitives"`
}

type AxisAlignedBoundingBox struct {
	Min mgl32.Vec3 `json:"min"`
	Max mgl32.Vec3 `json:"max"`
}

func (b AxisAlignedBoundingBox) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AxisAlignedBoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b *AxisAlignedBoundingBox) ExpandToInclude(other AxisAlignedBoundingBox) {
	b.Min = minVec3(b.Min, other.Min)
	b.Max = maxVec3(b.Max, other.Max)
}

func BoundingBoxFromVertices(vertices []Vertex) AxisAlignedBoundingBox {
	if len(vertices) == 0 {
		return AxisAlignedBoundingBox{}
	}
	box := AxisAlignedBoundingBox{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, vertex := range vertices[1:] {
		box.Min = minVec3(box.Min, vertex.Position)
		box.Max = maxVec3(box.Max, vertex.Position)
	}
	return box
}

func minVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Min(float64(a.X()), float64(b.X()))),
		float32(math.Min(float64(a.Y()), float64(b.Y()))),
		float32(math.Min(float64(a.Z()), float64(b.Z()))),
	}
}

func maxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Max(float64(a.X()), float64(b.X()))),
		float32(math.Max(float64(a.Y()), float64(b.Y()))),
		float32(math.Max(float64(a.Z()), float64(b.Z()))),
	}
}
