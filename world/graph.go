package world

// SceneGraph is an arena of graph nodes related by parent->child edges.
// Each graph node's payload is an index into the world's node table, not
// node data itself. Edges keep insertion order, so traversal is stable.
//
// The graph is a forest: AddEdge enforces at most one parent per node and
// rejects edges that would close a cycle.
type SceneGraph struct {
	Payloads []int   `json:"payloads"`
	Children [][]int `json:"children"`
	Parents  []int   `json:"parents"`
}

// InvalidIndex marks absent parents and unset component references.
const InvalidIndex = -1

func (g *SceneGraph) AddNode(nodeIndex int) int {
	graphNodeIndex := len(g.Payloads)
	g.Payloads = append(g.Payloads, nodeIndex)
	g.Children = append(g.Children, nil)
	g.Parents = append(g.Parents, InvalidIndex)
	return graphNodeIndex
}

// AddEdge links parent->child. A child that already has a parent, or an
// edge that would make a node its own ancestor, is rejected with
// ErrCyclicGraph so GlobalTransform and WalkDFS always terminate.
func (g *SceneGraph) AddEdge(parent, child int) error {
	if !g.contains(parent) || !g.contains(child) {
		return ErrIndexOutOfRange
	}
	if parent == child || g.Parents[child] != InvalidIndex {
		return ErrCyclicGraph
	}
	for ancestor := parent; ancestor != InvalidIndex; ancestor = g.Parents[ancestor] {
		if ancestor == child {
			return ErrCyclicGraph
		}
	}
	g.Children[parent] = append(g.Children[parent], child)
	g.Parents[child] = parent
	return nil
}

// Parent returns the graph node's single incoming neighbor, or
// (InvalidIndex, false) for roots.
func (g *SceneGraph) Parent(graphNodeIndex int) (int, bool) {
	if !g.contains(graphNodeIndex) || g.Parents[graphNodeIndex] == InvalidIndex {
		return InvalidIndex, false
	}
	return g.Parents[graphNodeIndex], true
}

// Payload returns the node-table index stored at the graph node.
func (g *SceneGraph) Payload(graphNodeIndex int) (int, error) {
	if !g.contains(graphNodeIndex) {
		return 0, ErrIndexOutOfRange
	}
	return g.Payloads[graphNodeIndex], nil
}

func (g *SceneGraph) NodeCount() int {
	return len(g.Payloads)
}

// WalkDFS visits the subtree under root in pre-order, children in
// edge-insertion order. Returning false from visit stops the walk.
// The walk is bounded by node count as a belt against graphs deserialized
// without going through AddEdge.
func (g *SceneGraph) WalkDFS(root int, visit func(graphNodeIndex, nodeIndex int) bool) {
	if !g.contains(root) {
		return
	}
	budget := len(g.Payloads)
	g.walk(root, visit, &budget)
}

func (g *SceneGraph) walk(graphNodeIndex int, visit func(int, int) bool, budget *int) bool {
	if *budget <= 0 {
		return false
	}
	*budget--
	if !visit(graphNodeIndex, g.Payloads[graphNodeIndex]) {
		return false
	}
	for _, child := range g.Children[graphNodeIndex] {
		if !g.walk(child, visit, budget) {
			return false
		}
	}
	return true
}

func (g *SceneGraph) contains(graphNodeIndex int) bool {
	return graphNodeIndex >= 0 && graphNodeIndex < len(g.Payloads)
}

// Scene owns a graph over the world's node table. Graph node 0 is the
// scene root by convention.
type Scene struct {
	Name                        string     `json:"name"`
	Graph                       SceneGraph `json:"graph"`
	DefaultCameraGraphNodeIndex int        `json:"default_camera_graph_node_index"`
}
