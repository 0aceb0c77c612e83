package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

type Camera struct {
	Kind         ProjectionKind     `json:"kind"`
	Perspective  PerspectiveCamera  `json:"perspective"`
	Orthographic OrthographicCamera `json:"orthographic"`
	Orientation  Orientation        `json:"orientation"`
}

func NewCamera() Camera {
	return Camera{
		Perspective: NewPerspectiveCamera(),
		Orientation: NewOrientation(),
	}
}

func (c *Camera) ProjectionMatrix(aspectRatio float32) mgl32.Mat4 {
	if c.Kind == ProjectionOrthographic {
		return c.Orthographic.Matrix()
	}
	return c.Perspective.Matrix(aspectRatio)
}

// PerspectiveCamera projects with zero-to-one depth. A zero AspectRatio
// defers to the viewport; a zero ZFar selects the infinite far plane
// variant.
type PerspectiveCamera struct {
	AspectRatio float32 `json:"aspect_ratio,omitempty"`
	YFovRad     float32 `json:"y_fov_rad"`
	ZFar        float32 `json:"z_far,omitempty"`
	ZNear       float32 `json:"z_near"`
}

func NewPerspectiveCamera() PerspectiveCamera {
	return PerspectiveCamera{
		YFovRad: float32(90 * math.Pi / 180),
		ZNear:   0.01,
	}
}

func (c *PerspectiveCamera) Matrix(viewportAspectRatio float32) mgl32.Mat4 {
	aspectRatio := c.AspectRatio
	if aspectRatio == 0 {
		aspectRatio = viewportAspectRatio
	}
	if c.ZFar != 0 {
		return perspectiveZO(aspectRatio, c.YFovRad, c.ZNear, c.ZFar)
	}
	return infinitePerspectiveZO(aspectRatio, c.YFovRad, c.ZNear)
}

// perspectiveZO is a right-handed perspective projection mapping depth to
// [0, 1] rather than the [-1, 1] of mgl32.Perspective.
func perspectiveZO(aspectRatio, yFovRad, zNear, zFar float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(yFovRad)*0.5))
	var m mgl32.Mat4
	m[0] = f / aspectRatio
	m[5] = f
	m[10] = zFar / (zNear - zFar)
	m[11] = -1
	m[14] = -(zFar * zNear) / (zFar - zNear)
	return m
}

func infinitePerspectiveZO(aspectRatio, yFovRad, zNear float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(yFovRad)*0.5))
	var m mgl32.Mat4
	m[0] = f / aspectRatio
	m[5] = f
	m[10] = -1
	m[11] = -1
	m[14] = -zNear
	return m
}

type OrthographicCamera struct {
	XMag  float32 `json:"x_mag"`
	YMag  float32 `json:"y_mag"`
	ZFar  float32 `json:"z_far"`
	ZNear float32 `json:"z_near"`
}

func (c *OrthographicCamera) Matrix() mgl32.Mat4 {
	zSum := c.ZNear + c.ZFar
	zDiff := c.ZNear - c.ZFar
	return mgl32.Mat4{
		1 / c.XMag, 0, 0, 0,
		0, 1 / c.YMag, 0, 0,
		0, 0, 2 / zDiff, zSum / zDiff,
		0, 0, 0, 1,
	}
}

// Orientation is an orbit rig: a look target offset plus a radius and a
// spherical direction, with pan/rotate/zoom edits.
type Orientation struct {
	MinRadius   float32    `json:"min_radius"`
	MaxRadius   float32    `json:"max_radius"`
	Radius      float32    `json:"radius"`
	Offset      mgl32.Vec3 `json:"offset"`
	Sensitivity mgl32.Vec2 `json:"sensitivity"`
	Direction   mgl32.Vec2 `json:"direction"`
}

func NewOrientation() Orientation {
	return Orientation{
		MinRadius:   1,
		MaxRadius:   100,
		Radius:      5,
		Sensitivity: mgl32.Vec2{1, 1},
		Direction:   mgl32.Vec2{0, 1},
	}
}

func (o *Orientation) DirectionVector() mgl32.Vec3 {
	sinX, cosX := math.Sincos(float64(o.Direction.X()))
	sinY, cosY := math.Sincos(float64(o.Direction.Y()))
	return mgl32.Vec3{
		float32(sinY * sinX),
		float32(cosY),
		float32(sinY * cosX),
	}
}

func (o *Orientation) Rotate(positionDelta mgl32.Vec2) {
	deltaX := positionDelta.X() * o.Sensitivity.X()
	deltaY := positionDelta.Y() * o.Sensitivity.Y()
	o.Direction[0] += deltaX
	o.Direction[1] = mgl32.Clamp(
		o.Direction.Y()+deltaY,
		float32(10*math.Pi/180),
		float32(170*math.Pi/180),
	)
}

func (o *Orientation) Up() mgl32.Vec3 {
	return o.Right().Cross(o.DirectionVector())
}

func (o *Orientation) Right() mgl32.Vec3 {
	return o.DirectionVector().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (o *Orientation) Pan(offset mgl32.Vec2) {
	o.Offset = o.Offset.Add(o.Right().Mul(offset.X()))
	o.Offset = o.Offset.Add(o.Up().Mul(offset.Y()))
}

func (o *Orientation) Position() mgl32.Vec3 {
	return o.DirectionVector().Mul(o.Radius).Add(o.Offset)
}

func (o *Orientation) Zoom(distance float32) {
	o.Radius = mgl32.Clamp(o.Radius-distance, o.MinRadius, o.MaxRadius)
}

func (o *Orientation) LookAtOffset() mgl32.Quat {
	return look(o.Offset.Sub(o.Position()))
}

func (o *Orientation) LookForward() mgl32.Quat {
	return look(o.DirectionVector().Mul(-1))
}

func look(point mgl32.Vec3) mgl32.Quat {
	return mgl32.QuatLookAtV(mgl32.Vec3{}, point, mgl32.Vec3{0, 1, 0}).Conjugate()
}

// CameraMatrices resolves the scene's default camera into an eye position
// and the projection and view matrices consumed per frame by a renderer.
func (w *World) CameraMatrices(scene *Scene, aspectRatio float32) (mgl32.Vec3, mgl32.Mat4, mgl32.Mat4, error) {
	nodeIndex, err := scene.Graph.Payload(scene.DefaultCameraGraphNodeIndex)
	if err != nil {
		return mgl32.Vec3{}, mgl32.Mat4{}, mgl32.Mat4{}, err
	}
	node, err := w.Node(nodeIndex)
	if err != nil {
		return mgl32.Vec3{}, mgl32.Mat4{}, mgl32.Mat4{}, err
	}
	if node.CameraIndex == InvalidIndex {
		return mgl32.Vec3{}, mgl32.Mat4{}, mgl32.Mat4{}, ErrSceneWithoutCamera
	}
	camera := &w.Cameras[node.CameraIndex]

	global, err := w.GlobalTransform(&scene.Graph, scene.DefaultCameraGraphNodeIndex)
	if err != nil {
		return mgl32.Vec3{}, mgl32.Mat4{}, mgl32.Mat4{}, err
	}
	transform := DecomposeMatrix(global)

	eye := transform.Translation
	target := eye.Add(transform.Rotation.Normalize().Rotate(mgl32.Vec3{0, 0, -1}))
	up := transform.Rotation.Normalize().Rotate(mgl32.Vec3{0, 1, 0})

	return eye, camera.ProjectionMatrix(aspectRatio), mgl32.LookAtV(eye, target, up), nil
}
