package world

import (
	"math"

	"github.com/pkg/errors"
)

// MergeWorlds appends every source array onto the destination, rewriting
// each cross-referencing index by the destination's pre-merge length for
// the referenced category. After the merge every reference inside the
// appended data points into the combined arrays; nothing keeps pointing
// into the source's pre-merge index space.
//
// The source is left untouched; appended entries are deep copies. Entity
// handles are not carried over: handle spaces of two worlds cannot be
// concatenated without invalidating one side's generations, so callers
// re-spawn entities against the destination.
func MergeWorlds(destination, source *World) error {
	if len(destination.Vertices)+len(source.Vertices) > math.MaxUint32 {
		return errors.Wrapf(ErrMergeOffsetOverflow, "vertex count %d+%d",
			len(destination.Vertices), len(source.Vertices))
	}

	vertexOffset := len(destination.Vertices)
	indexOffset := len(destination.Indices)
	meshOffset := len(destination.Meshes)
	materialOffset := len(destination.Materials)
	textureOffset := len(destination.Textures)
	imageOffset := len(destination.Images)
	samplerOffset := len(destination.Samplers)
	cameraOffset := len(destination.Cameras)
	lightOffset := len(destination.Lights)
	transformOffset := len(destination.Transforms)
	metadataOffset := len(destination.Metadata)
	nodeOffset := len(destination.Nodes)
	rigidBodyOffset := len(destination.Physics.Bodies)

	destination.Vertices = append(destination.Vertices, source.Vertices...)
	for _, index := range source.Indices {
		destination.Indices = append(destination.Indices, index+uint32(vertexOffset))
	}

	for _, mesh := range source.Meshes {
		relocated := Mesh{Name: mesh.Name, Primitives: make([]Primitive, len(mesh.Primitives))}
		for i, primitive := range mesh.Primitives {
			primitive.VertexOffset += vertexOffset
			primitive.IndexOffset += indexOffset
			relocate(&primitive.MaterialIndex, materialOffset)
			relocated.Primitives[i] = primitive
		}
		destination.Meshes = append(destination.Meshes, relocated)
	}

	for _, material := range source.Materials {
		material.BaseColorTextureIndex += textureOffset
		material.EmissiveTextureIndex += textureOffset
		destination.Materials = append(destination.Materials, material)
	}

	for _, texture := range source.Textures {
		texture.ImageIndex += imageOffset
		relocate(&texture.SamplerIndex, samplerOffset)
		destination.Textures = append(destination.Textures, texture)
	}

	destination.Images = append(destination.Images, source.Images...)
	destination.Samplers = append(destination.Samplers, source.Samplers...)
	destination.Cameras = append(destination.Cameras, source.Cameras...)
	destination.Lights = append(destination.Lights, source.Lights...)
	destination.Transforms = append(destination.Transforms, source.Transforms...)
	destination.Metadata = append(destination.Metadata, source.Metadata...)
	destination.AABBs = append(destination.AABBs, source.AABBs...)

	for _, node := range source.Nodes {
		node.TransformIndex += transformOffset
		node.MetadataIndex += metadataOffset
		relocate(&node.CameraIndex, cameraOffset)
		relocate(&node.MeshIndex, meshOffset)
		relocate(&node.LightIndex, lightOffset)
		relocate(&node.RigidBodyIndex, rigidBodyOffset)
		destination.Nodes = append(destination.Nodes, node)
	}

	for _, skin := range source.Skins {
		relocated := Skin{Name: skin.Name, Joints: make([]Joint, len(skin.Joints))}
		for i, joint := range skin.Joints {
			joint.TargetNodeIndex += nodeOffset
			relocated.Joints[i] = joint
		}
		destination.Skins = append(destination.Skins, relocated)
	}

	for _, animation := range source.Animations {
		relocated := animation
		relocated.Channels = make([]Channel, len(animation.Channels))
		for i, channel := range animation.Channels {
			channel.TargetNodeIndex += nodeOffset
			relocated.Channels[i] = channel
		}
		destination.Animations = append(destination.Animations, relocated)
	}

	for _, scene := range source.Scenes {
		relocated := Scene{
			Name:                        scene.Name,
			DefaultCameraGraphNodeIndex: scene.DefaultCameraGraphNodeIndex,
			Graph: SceneGraph{
				Payloads: make([]int, len(scene.Graph.Payloads)),
				Children: make([][]int, len(scene.Graph.Children)),
				Parents:  append([]int(nil), scene.Graph.Parents...),
			},
		}
		for i, payload := range scene.Graph.Payloads {
			relocated.Graph.Payloads[i] = payload + nodeOffset
		}
		for i, children := range scene.Graph.Children {
			relocated.Graph.Children[i] = append([]int(nil), children...)
		}
		destination.Scenes = append(destination.Scenes, relocated)
	}

	destination.Physics.Merge(&source.Physics)
	return nil
}

// relocate rewrites a component index in place, leaving absent references
// untouched.
func relocate(index *int, offset int) {
	if *index != InvalidIndex {
		*index += offset
	}
}
