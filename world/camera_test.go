package world

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPerspectiveDepthRange(t *testing.T) {
	camera := NewPerspectiveCamera()
	camera.ZFar = 100

	project := func(m mgl32.Mat4, z float32) float32 {
		clip := m.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return clip.Z() / clip.W()
	}

	m := camera.Matrix(1)
	if depth := project(m, -camera.ZNear); !mgl32.FloatEqualThreshold(depth, 0, 1e-4) {
		t.Errorf("near plane depth = %v; expected 0", depth)
	}
	if depth := project(m, -camera.ZFar); !mgl32.FloatEqualThreshold(depth, 1, 1e-4) {
		t.Errorf("far plane depth = %v; expected 1", depth)
	}

	// Zero ZFar selects the infinite variant; depth approaches one far
	// away and stays zero at the near plane.
	camera.ZFar = 0
	infinite := camera.Matrix(1)
	if depth := project(infinite, -camera.ZNear); !mgl32.FloatEqualThreshold(depth, 0, 1e-4) {
		t.Errorf("infinite projection near depth = %v; expected 0", depth)
	}
	if depth := project(infinite, -1e6); math.Abs(float64(depth)-1) > 1e-3 {
		t.Errorf("infinite projection far depth = %v; expected ~1", depth)
	}
}

func TestOrientationRig(t *testing.T) {
	o := NewOrientation()

	if radius := o.Position().Sub(o.Offset).Len(); !mgl32.FloatEqualThreshold(radius, o.Radius, epsilon) {
		t.Errorf("eye distance = %v; expected radius %v", radius, o.Radius)
	}

	// Zoom clamps to the configured radius range.
	o.Zoom(1e6)
	if o.Radius != o.MinRadius {
		t.Errorf("radius after max zoom = %v; expected MinRadius %v", o.Radius, o.MinRadius)
	}
	o.Zoom(-1e6)
	if o.Radius != o.MaxRadius {
		t.Errorf("radius after max dolly out = %v; expected MaxRadius %v", o.Radius, o.MaxRadius)
	}

	// Rotation pitch clamps short of the poles so Up never degenerates.
	o.Rotate(mgl32.Vec2{0, 1e3})
	if up := o.Up(); up.Len() < epsilon {
		t.Errorf("up vector degenerated at pitch clamp: %v", up)
	}
}

func TestCameraMatrices(t *testing.T) {
	w := New()
	nodeIndex := w.AddNode()
	if _, err := w.AddCameraToNode(nodeIndex); err != nil {
		t.Fatalf("AddCameraToNode returned error: %v", err)
	}

	w.Scenes = append(w.Scenes, Scene{Name: "Main"})
	scene := &w.Scenes[0]
	scene.DefaultCameraGraphNodeIndex = scene.Graph.AddNode(nodeIndex)

	eye, projection, view, err := w.CameraMatrices(scene, 16.0/9.0)
	if err != nil {
		t.Fatalf("CameraMatrices returned error: %v", err)
	}
	if projection == (mgl32.Mat4{}) || view == (mgl32.Mat4{}) {
		t.Errorf("camera matrices are zero")
	}

	// The eye sits where the orbit rig placed the node's transform.
	transform := w.Transforms[w.Nodes[nodeIndex].TransformIndex]
	if !vecNear(eye, transform.Translation) {
		t.Errorf("eye = %v; expected node translation %v", eye, transform.Translation)
	}
}

func TestCameraMatricesWithoutCamera(t *testing.T) {
	w := New()
	nodeIndex := w.AddNode()
	w.Scenes = append(w.Scenes, Scene{Name: "Main"})
	scene := &w.Scenes[0]
	scene.DefaultCameraGraphNodeIndex = scene.Graph.AddNode(nodeIndex)

	if _, _, _, err := w.CameraMatrices(scene, 1); !errors.Is(err, ErrSceneWithoutCamera) {
		t.Errorf("CameraMatrices error = %v; expected ErrSceneWithoutCamera", err)
	}
}
