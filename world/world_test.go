package world

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAddNodeDefaults(t *testing.T) {
	w := New()
	nodeIndex := w.AddNode()

	node, err := w.Node(nodeIndex)
	if err != nil {
		t.Fatalf("Node(%d) returned error: %v", nodeIndex, err)
	}
	if node.CameraIndex != InvalidIndex || node.MeshIndex != InvalidIndex ||
		node.LightIndex != InvalidIndex || node.RigidBodyIndex != InvalidIndex {
		t.Errorf("fresh node has component references: %+v", node)
	}

	transform, err := w.TransformAt(node.TransformIndex)
	if err != nil {
		t.Fatalf("TransformAt returned error: %v", err)
	}
	if !transform.Matrix().ApproxEqualThreshold(mgl32.Ident4(), epsilon) {
		t.Errorf("fresh node transform is not identity: %+v", transform)
	}

	metadata, err := w.MetadataAt(node.MetadataIndex)
	if err != nil {
		t.Fatalf("MetadataAt returned error: %v", err)
	}
	if metadata.Name == "" {
		t.Errorf("fresh node has empty generated name")
	}
}

func TestNodeOutOfRange(t *testing.T) {
	w := New()
	if _, err := w.Node(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Node(0) on empty world error = %v; expected ErrIndexOutOfRange", err)
	}
	if _, err := w.Node(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Node(-1) error = %v; expected ErrIndexOutOfRange", err)
	}
}

func TestEntityLifecycle(t *testing.T) {
	w := New()
	nodeIndex := w.AddNode()

	h, err := w.SpawnEntity(nodeIndex)
	if err != nil {
		t.Fatalf("SpawnEntity returned error: %v", err)
	}
	if resolved, err := w.EntityNode(h); err != nil || resolved != nodeIndex {
		t.Errorf("EntityNode = (%d, %v); expected (%d, nil)", resolved, err, nodeIndex)
	}

	w.DespawnEntity(h)
	if _, err := w.EntityNode(h); !errors.Is(err, ErrHandleNotAllocated) {
		t.Errorf("EntityNode after despawn error = %v; expected ErrHandleNotAllocated", err)
	}

	// The retired slot comes back under a new generation; the old handle
	// must keep missing.
	other := w.AddNode()
	h2, _ := w.SpawnEntity(other)
	if h2.Index != h.Index || h2.Generation == h.Generation {
		t.Fatalf("respawned handle = %v; expected reused index with new generation", h2)
	}
	if _, err := w.EntityNode(h); !errors.Is(err, ErrHandleNotAllocated) {
		t.Errorf("stale handle resolves after slot reuse")
	}
	if resolved, err := w.EntityNode(h2); err != nil || resolved != other {
		t.Errorf("EntityNode(%v) = (%d, %v); expected (%d, nil)", h2, resolved, err, other)
	}
}

func TestSpawnEntityRejectsBadNode(t *testing.T) {
	w := New()
	if _, err := w.SpawnEntity(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SpawnEntity(3) error = %v; expected ErrIndexOutOfRange", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	w := buildMergeSource()
	w.Transforms[0].Translation = mgl32.Vec3{1, 2, 3}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(loaded.Nodes) != len(w.Nodes) || len(loaded.Vertices) != len(w.Vertices) {
		t.Fatalf("loaded counts diverge: %d nodes %d vertices", len(loaded.Nodes), len(loaded.Vertices))
	}
	if !vecNear(loaded.Transforms[0].Translation, mgl32.Vec3{1, 2, 3}) {
		t.Errorf("loaded translation = %v; expected (1,2,3)", loaded.Transforms[0].Translation)
	}
	if loaded.Scenes[0].Graph.Payloads[0] != w.Scenes[0].Graph.Payloads[0] {
		t.Errorf("loaded scene graph payload diverges")
	}

	// The loaded world keeps working: the graph still composes.
	if _, err := loaded.GlobalTransform(&loaded.Scenes[0].Graph, 0); err != nil {
		t.Errorf("GlobalTransform on loaded world returned error: %v", err)
	}
}

func TestRegistryTypeKeyedSingletons(t *testing.T) {
	type renderSettings struct{ Samples int }
	type audioSettings struct{ Volume float32 }

	var r Registry
	if _, ok := FindResource[renderSettings](&r); ok {
		t.Fatalf("empty registry reported a resource")
	}

	PutResource(&r, renderSettings{Samples: 4})
	PutResource(&r, audioSettings{Volume: 0.5})

	if settings, ok := FindResource[renderSettings](&r); !ok || settings.Samples != 4 {
		t.Errorf("FindResource = (%+v, %v); expected samples 4", settings, ok)
	}

	// One slot per type: insertion overwrites.
	PutResource(&r, renderSettings{Samples: 8})
	if settings, _ := FindResource[renderSettings](&r); settings.Samples != 8 {
		t.Errorf("overwritten resource samples = %d; expected 8", settings.Samples)
	}
	if r.Len() != 2 {
		t.Errorf("registry length = %d; expected 2", r.Len())
	}

	RemoveResource[renderSettings](&r)
	if _, ok := FindResource[renderSettings](&r); ok {
		t.Errorf("removed resource still present")
	}
	if _, ok := FindResource[audioSettings](&r); !ok {
		t.Errorf("unrelated resource vanished on remove")
	}
}
