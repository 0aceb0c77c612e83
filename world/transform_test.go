package world

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func vecNear(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < epsilon
}

func TestNewTransformIsIdentity(t *testing.T) {
	m := NewTransform().Matrix()
	if !m.ApproxEqualThreshold(mgl32.Ident4(), epsilon) {
		t.Errorf("default transform matrix = %v; expected identity", m)
	}
}

func TestMatrixOrderScaleFirst(t *testing.T) {
	// translate * rotate * scale: a unit X point under scale 2 then
	// translate (1,0,0) must land at (3,0,0).
	transform := NewTransform()
	transform.Translation = mgl32.Vec3{1, 0, 0}
	transform.Scale = mgl32.Vec3{2, 2, 2}

	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, transform.Matrix())
	if !vecNear(p, mgl32.Vec3{3, 0, 0}) {
		t.Errorf("transformed point = %v; expected (3,0,0)", p)
	}
}

func TestDecomposeMatrixRoundTrip(t *testing.T) {
	transform := NewTransform()
	transform.Translation = mgl32.Vec3{1, -2, 3}
	transform.Rotation = mgl32.QuatRotate(float32(math.Pi/3), mgl32.Vec3{0, 1, 0})
	transform.Scale = mgl32.Vec3{2, 3, 4}

	decomposed := DecomposeMatrix(transform.Matrix())
	if !vecNear(decomposed.Translation, transform.Translation) {
		t.Errorf("translation = %v; expected %v", decomposed.Translation, transform.Translation)
	}
	if !vecNear(decomposed.Scale, transform.Scale) {
		t.Errorf("scale = %v; expected %v", decomposed.Scale, transform.Scale)
	}
	if !decomposed.Matrix().ApproxEqualThreshold(transform.Matrix(), 1e-4) {
		t.Errorf("recomposed matrix diverges from original")
	}
}

func TestGlobalTransformComposesAncestors(t *testing.T) {
	w := New()
	parent := w.AddNode()
	child := w.AddNode()
	w.Transforms[w.Nodes[parent].TransformIndex].Translation = mgl32.Vec3{1, 0, 0}
	w.Transforms[w.Nodes[child].TransformIndex].Translation = mgl32.Vec3{0, 2, 0}

	w.Scenes = append(w.Scenes, Scene{Name: "Main"})
	graph := &w.Scenes[0].Graph
	rootGraphNode := graph.AddNode(parent)
	childGraphNode, err := w.AddChildNode(0, rootGraphNode, child)
	if err != nil {
		t.Fatalf("AddChildNode returned error: %v", err)
	}

	global, err := w.GlobalTransform(graph, childGraphNode)
	if err != nil {
		t.Fatalf("GlobalTransform returned error: %v", err)
	}
	translation := DecomposeMatrix(global).Translation
	if !vecNear(translation, mgl32.Vec3{1, 2, 0}) {
		t.Errorf("global translation = %v; expected (1,2,0)", translation)
	}
}

func TestGlobalTransformParentScale(t *testing.T) {
	w := New()
	parent := w.AddNode()
	child := w.AddNode()
	w.Transforms[w.Nodes[parent].TransformIndex].Scale = mgl32.Vec3{2, 2, 2}
	w.Transforms[w.Nodes[child].TransformIndex].Translation = mgl32.Vec3{1, 0, 0}

	w.Scenes = append(w.Scenes, Scene{Name: "Main"})
	graph := &w.Scenes[0].Graph
	rootGraphNode := graph.AddNode(parent)
	childGraphNode, _ := w.AddChildNode(0, rootGraphNode, child)

	global, err := w.GlobalTransform(graph, childGraphNode)
	if err != nil {
		t.Fatalf("GlobalTransform returned error: %v", err)
	}
	origin := mgl32.TransformCoordinate(mgl32.Vec3{}, global)
	if !vecNear(origin, mgl32.Vec3{2, 0, 0}) {
		t.Errorf("child origin in world space = %v; expected (2,0,0)", origin)
	}
}

func TestGlobalTransformDetectsCorruptCycle(t *testing.T) {
	// A graph deserialized with a parent loop must fail instead of
	// spinning; AddEdge cannot produce this shape.
	w := New()
	a := w.AddNode()
	b := w.AddNode()
	graph := &SceneGraph{
		Payloads: []int{a, b},
		Children: [][]int{{1}, {0}},
		Parents:  []int{1, 0},
	}

	if _, err := w.GlobalTransform(graph, 0); !errors.Is(err, ErrCyclicGraph) {
		t.Errorf("GlobalTransform error = %v; expected ErrCyclicGraph", err)
	}
}
