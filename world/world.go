// Package world holds the flat, serializable data model shared by every
// consumer: parallel asset arrays, node records referencing them by index,
// and per-scene graphs composing node transforms into world space.
package world

import (
	"encoding/json"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/matthewjberger/serenity/handle"
	"github.com/matthewjberger/serenity/physics"
	"github.com/matthewjberger/serenity/utils"
)

// Node references its data through table indices. Component indices are
// InvalidIndex when the component is absent.
type Node struct {
	MetadataIndex  int `json:"metadata_index"`
	TransformIndex int `json:"transform_index"`
	CameraIndex    int `json:"camera_index"`
	MeshIndex      int `json:"mesh_index"`
	LightIndex     int `json:"light_index"`
	RigidBodyIndex int `json:"rigid_body_index"`
}

type NodeMetadata struct {
	Name string `json:"name"`
}

// World is a set of parallel arrays plus the scenes composing them.
// Entries are appended for the lifetime of a loaded world and never removed
// in place; a world is replaced wholesale, not torn down.
type World struct {
	Animations []Animation              `json:"animations"`
	Cameras    []Camera                 `json:"cameras"`
	Images     []Image                  `json:"images"`
	Indices    []uint32                 `json:"indices"`
	Lights     []Light                  `json:"lights"`
	Materials  []Material               `json:"materials"`
	Meshes     []Mesh                   `json:"meshes"`
	Nodes      []Node                   `json:"nodes"`
	Metadata   []NodeMetadata           `json:"metadata"`
	Samplers   []Sampler                `json:"samplers"`
	Scenes     []Scene                  `json:"scenes"`
	Skins      []Skin                   `json:"skins"`
	Textures   []Texture                `json:"textures"`
	Transforms []Transform              `json:"transforms"`
	Vertices   []Vertex                 `json:"vertices"`
	AABBs      []AxisAlignedBoundingBox `json:"aabbs"`
	Physics    physics.World            `json:"physics"`

	// Entities maps stable handles onto node-table indices for callers
	// that outlive graph rebuilds (editor selections, physics sync).
	Entities    handle.Allocator    `json:"entities"`
	EntityNodes handle.SlotMap[int] `json:"entity_nodes"`

	// Registry holds world-level singleton resources; independent of the
	// handle space and not part of the persisted layout.
	Registry Registry `json:"-"`

	namer utils.RandomNameGenerator
}

func New() *World {
	return &World{Physics: physics.New()}
}

// AddNode appends a default transform and metadata entry and a node
// referencing them, returning the node-table index.
func (w *World) AddNode() int {
	transformIndex := len(w.Transforms)
	w.Transforms = append(w.Transforms, NewTransform())

	metadataIndex := len(w.Metadata)
	w.Metadata = append(w.Metadata, NodeMetadata{Name: w.namer.RandomName()})

	nodeIndex := len(w.Nodes)
	w.Nodes = append(w.Nodes, Node{
		MetadataIndex:  metadataIndex,
		TransformIndex: transformIndex,
		CameraIndex:    InvalidIndex,
		MeshIndex:      InvalidIndex,
		LightIndex:     InvalidIndex,
		RigidBodyIndex: InvalidIndex,
	})
	return nodeIndex
}

// AddChildNode inserts the node into a scene's graph under the given graph
// node and returns the new graph node index.
func (w *World) AddChildNode(sceneIndex, parentGraphNodeIndex, nodeIndex int) (int, error) {
	if sceneIndex < 0 || sceneIndex >= len(w.Scenes) {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "scene %d", sceneIndex)
	}
	graph := &w.Scenes[sceneIndex].Graph
	graphNodeIndex := graph.AddNode(nodeIndex)
	if err := graph.AddEdge(parentGraphNodeIndex, graphNodeIndex); err != nil {
		return 0, err
	}
	return graphNodeIndex, nil
}

func (w *World) AddCameraToNode(nodeIndex int) (int, error) {
	node, err := w.Node(nodeIndex)
	if err != nil {
		return 0, err
	}
	camera := NewCamera()
	transform := &w.Transforms[node.TransformIndex]
	transform.Translation = camera.Orientation.Position()
	transform.Rotation = camera.Orientation.LookAtOffset()

	cameraIndex := len(w.Cameras)
	w.Cameras = append(w.Cameras, camera)
	node.CameraIndex = cameraIndex
	return cameraIndex, nil
}

func (w *World) AddLightToNode(nodeIndex int, light Light) (int, error) {
	node, err := w.Node(nodeIndex)
	if err != nil {
		return 0, err
	}
	lightIndex := len(w.Lights)
	w.Lights = append(w.Lights, light)
	node.LightIndex = lightIndex
	return lightIndex, nil
}

func (w *World) AddRigidBodyToNode(nodeIndex int) (int, error) {
	node, err := w.Node(nodeIndex)
	if err != nil {
		return 0, err
	}
	transform := w.Transforms[node.TransformIndex]
	rigidBodyIndex := w.Physics.AddRigidBody(transform.Translation)
	node.RigidBodyIndex = rigidBodyIndex
	return rigidBodyIndex, nil
}

// Node is a bounds-checked accessor into the node table.
func (w *World) Node(nodeIndex int) (*Node, error) {
	if nodeIndex < 0 || nodeIndex >= len(w.Nodes) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "node %d of %d", nodeIndex, len(w.Nodes))
	}
	return &w.Nodes[nodeIndex], nil
}

func (w *World) TransformAt(transformIndex int) (*Transform, error) {
	if transformIndex < 0 || transformIndex >= len(w.Transforms) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "transform %d of %d", transformIndex, len(w.Transforms))
	}
	return &w.Transforms[transformIndex], nil
}

func (w *World) MetadataAt(metadataIndex int) (*NodeMetadata, error) {
	if metadataIndex < 0 || metadataIndex >= len(w.Metadata) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "metadata %d of %d", metadataIndex, len(w.Metadata))
	}
	return &w.Metadata[metadataIndex], nil
}

// GlobalTransform composes the node's local transform with its ancestors',
// parent matrix on the left: child coordinates transform by the child's
// matrix first, then the parent's. The walk is bounded by graph size.
func (w *World) GlobalTransform(graph *SceneGraph, graphNodeIndex int) (mgl32.Mat4, error) {
	matrix := mgl32.Ident4()
	for steps := 0; ; steps++ {
		if steps > graph.NodeCount() {
			return mgl32.Mat4{}, errors.Wrapf(ErrCyclicGraph, "graph node %d", graphNodeIndex)
		}
		nodeIndex, err := graph.Payload(graphNodeIndex)
		if err != nil {
			return mgl32.Mat4{}, err
		}
		node, err := w.Node(nodeIndex)
		if err != nil {
			return mgl32.Mat4{}, err
		}
		transform, err := w.TransformAt(node.TransformIndex)
		if err != nil {
			return mgl32.Mat4{}, err
		}
		matrix = transform.Matrix().Mul4(matrix)

		parent, ok := graph.Parent(graphNodeIndex)
		if !ok {
			return matrix, nil
		}
		graphNodeIndex = parent
	}
}

// SpawnEntity allocates a stable handle for the node index.
func (w *World) SpawnEntity(nodeIndex int) (handle.Handle, error) {
	if _, err := w.Node(nodeIndex); err != nil {
		return handle.Handle{}, err
	}
	h, err := w.Entities.Allocate()
	if err != nil {
		return handle.Handle{}, err
	}
	w.EntityNodes.Insert(h, nodeIndex)
	return h, nil
}

// EntityNode resolves an entity handle back to its node-table index.
func (w *World) EntityNode(h handle.Handle) (int, error) {
	if !w.Entities.IsAllocated(h) {
		return 0, errors.Wrapf(ErrHandleNotAllocated, "entity %d@%d", h.Index, h.Generation)
	}
	nodeIndex, ok := w.EntityNodes.Get(h)
	if !ok {
		return 0, errors.Wrapf(ErrHandleNotAllocated, "entity %d@%d has no node slot", h.Index, h.Generation)
	}
	return nodeIndex, nil
}

// DespawnEntity retires the handle. The node-table entry stays; node
// entries are append-only for the lifetime of a world.
func (w *World) DespawnEntity(h handle.Handle) {
	if !w.Entities.IsAllocated(h) {
		return
	}
	w.EntityNodes.Remove(h)
	w.Entities.Deallocate(h)
}

// Save writes the flat layout. Struct field order is the compatibility
// contract.
func (w *World) Save(out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(w); err != nil {
		return errors.Wrapf(err, "Failed to serialize world")
	}
	return nil
}

func Load(in io.Reader) (*World, error) {
	w := New()
	if err := json.NewDecoder(in).Decode(w); err != nil {
		return nil, errors.Wrapf(err, "Failed to deserialize world")
	}
	return w, nil
}
