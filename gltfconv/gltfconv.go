// Package gltfconv converts glTF 2.0 documents into the flat world layout.
// All glTF index references survive conversion unchanged because every
// category is appended to a fresh world in document order.
package gltfconv

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/matthewjberger/serenity/world"
)

func LoadFile(path string) (*world.World, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open gltf asset %q", path)
	}
	return FromDocument(doc)
}

// Load decodes a glTF or glb stream, for assets arriving over the wire.
func Load(r io.Reader) (*world.World, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode gltf stream")
	}
	return FromDocument(doc)
}

func FromDocument(doc *gltf.Document) (*world.World, error) {
	w := world.New()

	importSamplers(doc, w)
	importImages(doc, w)
	importTextures(doc, w)
	importMaterials(doc, w)
	importCameras(doc, w)

	if err := importMeshes(doc, w); err != nil {
		return nil, err
	}
	nodeRemap := importScenes(doc, w)
	importSkins(doc, w, nodeRemap)
	if err := importAnimations(doc, w, nodeRemap); err != nil {
		return nil, err
	}
	return w, nil
}

func importSamplers(doc *gltf.Document, w *world.World) {
	for _, sampler := range doc.Samplers {
		converted := world.Sampler{}
		if sampler.MagFilter == gltf.MagNearest {
			converted.MagFilter = world.FilterNearest
		}
		switch sampler.MinFilter {
		case gltf.MinNearest, gltf.MinNearestMipMapNearest, gltf.MinNearestMipMapLinear:
			converted.MinFilter = world.FilterNearest
		}
		converted.WrapS = convertWrap(sampler.WrapS)
		converted.WrapT = convertWrap(sampler.WrapT)
		w.Samplers = append(w.Samplers, converted)
	}
}

func convertWrap(mode gltf.WrappingMode) world.WrappingMode {
	switch mode {
	case gltf.WrapClampToEdge:
		return world.WrapClampToEdge
	case gltf.WrapMirroredRepeat:
		return world.WrapMirroredRepeat
	default:
		return world.WrapRepeat
	}
}

// importImages decodes embedded images to R8G8B8A8 pixels. Images behind
// external URIs keep their name only; the asset loader does not chase
// files outside the document.
func importImages(doc *gltf.Document, w *world.World) {
	for iImage, gltfImage := range doc.Images {
		converted := world.Image{Name: gltfImage.Name, Format: world.FormatR8G8B8A8}
		if gltfImage.BufferView != nil {
			view := doc.BufferViews[*gltfImage.BufferView]
			buffer := doc.Buffers[view.Buffer]
			raw := buffer.Data[view.ByteOffset : view.ByteOffset+view.ByteLength]
			if decoded, _, err := image.Decode(bytes.NewReader(raw)); err != nil {
				log.Printf("[gltfconv] Failed to decode image %d %q: %v", iImage, gltfImage.Name, err)
			} else {
				bounds := decoded.Bounds()
				rgba := image.NewRGBA(bounds)
				draw.Draw(rgba, bounds, decoded, bounds.Min, draw.Src)
				converted.Pixels = rgba.Pix
				converted.Width = uint32(bounds.Dx())
				converted.Height = uint32(bounds.Dy())
			}
		}
		w.Images = append(w.Images, converted)
	}
}

func importTextures(doc *gltf.Document, w *world.World) {
	for _, texture := range doc.Textures {
		converted := world.Texture{ImageIndex: 0, SamplerIndex: world.InvalidIndex}
		if texture.Source != nil {
			converted.ImageIndex = int(*texture.Source)
		}
		if texture.Sampler != nil {
			converted.SamplerIndex = int(*texture.Sampler)
		}
		w.Textures = append(w.Textures, converted)
	}
}

func importMaterials(doc *gltf.Document, w *world.World) {
	for _, material := range doc.Materials {
		converted := world.Material{
			Name:            material.Name,
			BaseColorFactor: mgl32.Vec4{1, 1, 1, 1},
			EmissiveFactor: mgl32.Vec3{
				float32(material.EmissiveFactor[0]),
				float32(material.EmissiveFactor[1]),
				float32(material.EmissiveFactor[2]),
			},
		}
		if pbr := material.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				factor := *pbr.BaseColorFactor
				converted.BaseColorFactor = mgl32.Vec4{
					float32(factor[0]), float32(factor[1]), float32(factor[2]), float32(factor[3]),
				}
			}
			if pbr.BaseColorTexture != nil {
				converted.BaseColorTextureIndex = int(pbr.BaseColorTexture.Index)
			}
		}
		if material.EmissiveTexture != nil {
			converted.EmissiveTextureIndex = int(material.EmissiveTexture.Index)
		}
		switch material.AlphaMode {
		case gltf.AlphaMask:
			converted.AlphaMode = world.AlphaMask
			if material.AlphaCutoff != nil {
				converted.AlphaCutoff = float32(*material.AlphaCutoff)
			}
		case gltf.AlphaBlend:
			converted.AlphaMode = world.AlphaBlend
		}
		w.Materials = append(w.Materials, converted)
	}
}

func importCameras(doc *gltf.Document, w *world.World) {
	for _, camera := range doc.Cameras {
		converted := world.NewCamera()
		if camera.Orthographic != nil {
			converted.Kind = world.ProjectionOrthographic
			converted.Orthographic = world.OrthographicCamera{
				XMag:  float32(camera.Orthographic.Xmag),
				YMag:  float32(camera.Orthographic.Ymag),
				ZFar:  float32(camera.Orthographic.Zfar),
				ZNear: float32(camera.Orthographic.Znear),
			}
		} else if camera.Perspective != nil {
			converted.Perspective = world.PerspectiveCamera{
				YFovRad: float32(camera.Perspective.Yfov),
				ZNear:   float32(camera.Perspective.Znear),
			}
			if camera.Perspective.AspectRatio != nil {
				converted.Perspective.AspectRatio = float32(*camera.Perspective.AspectRatio)
			}
			if camera.Perspective.Zfar != nil {
				converted.Perspective.ZFar = float32(*camera.Perspective.Zfar)
			}
		}
		w.Cameras = append(w.Cameras, converted)
	}
}

// importMeshes appends every primitive's vertices and indices to the shared
// buffers, recording the pre-append lengths as the primitive's draw offsets.
func importMeshes(doc *gltf.Document, w *world.World) error {
	for _, gltfMesh := range doc.Meshes {
		mesh := world.Mesh{Name: gltfMesh.Name}
		for _, primitive := range gltfMesh.Primitives {
			vertices, err := readVertices(doc, primitive)
			if err != nil {
				return errors.Wrapf(err, "Failed to read vertices of mesh %q", gltfMesh.Name)
			}

			var indices []uint32
			if primitive.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return errors.Wrapf(err, "Failed to read indices of mesh %q", gltfMesh.Name)
				}
			}

			converted := world.Primitive{
				VertexOffset:     len(w.Vertices),
				IndexOffset:      len(w.Indices),
				NumberOfVertices: len(vertices),
				NumberOfIndices:  len(indices),
				Topology:         convertTopology(primitive.Mode),
				MaterialIndex:    world.InvalidIndex,
			}
			if primitive.Material != nil {
				converted.MaterialIndex = int(*primitive.Material)
			}

			w.Vertices = append(w.Vertices, vertices...)
			w.Indices = append(w.Indices, indices...)
			if len(vertices) > 0 {
				w.AABBs = append(w.AABBs, world.BoundingBoxFromVertices(vertices))
			}
			mesh.Primitives = append(mesh.Primitives, converted)
		}
		w.Meshes = append(w.Meshes, mesh)
	}
	return nil
}

func convertTopology(mode gltf.PrimitiveMode) world.PrimitiveTopology {
	switch mode {
	case gltf.PrimitivePoints:
		return world.TopologyPoints
	case gltf.PrimitiveLines:
		return world.TopologyLines
	case gltf.PrimitiveLineLoop:
		return world.TopologyLineLoop
	case gltf.PrimitiveLineStrip:
		return world.TopologyLineStrip
	case gltf.PrimitiveTriangleStrip:
		return world.TopologyTriangleStrip
	case gltf.PrimitiveTriangleFan:
		return world.TopologyTriangleFan
	default:
		return world.TopologyTriangles
	}
}

func readVertices(doc *gltf.Document, primitive *gltf.Primitive) ([]world.Vertex, error) {
	positionAccessor, ok := primitive.Attributes["POSITION"]
	if !ok {
		return nil, errors.Errorf("Primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[positionAccessor], nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read positions")
	}

	vertices := make([]world.Vertex, len(positions))
	for i, position := range positions {
		vertices[i] = world.NewVertex()
		vertices[i].Position = mgl32.Vec3{position[0], position[1], position[2]}
	}

	if accessor, ok := primitive.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[accessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read normals")
		}
		for i := range vertices {
			if i < len(normals) {
				vertices[i].Normal = mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]}
			}
		}
	}

	for attribute, target := range map[string]int{"TEXCOORD_0": 0, "TEXCOORD_1": 1} {
		accessor, ok := primitive.Attributes[attribute]
		if !ok {
			continue
		}
		coords, err := modeler.ReadTextureCoord(doc, doc.Accessors[accessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read %s", attribute)
		}
		for i := range vertices {
			if i >= len(coords) {
				break
			}
			uv := mgl32.Vec2{coords[i][0], coords[i][1]}
			if target == 0 {
				vertices[i].UV0 = uv
			} else {
				vertices[i].UV1 = uv
			}
		}
	}

	if accessor, ok := primitive.Attributes["JOINTS_0"]; ok {
		joints, err := modeler.ReadJoints(doc, doc.Accessors[accessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read joints")
		}
		for i := range vertices {
			if i < len(joints) {
				vertices[i].Joint0 = mgl32.Vec4{
					float32(joints[i][0]), float32(joints[i][1]),
					float32(joints[i][2]), float32(joints[i][3]),
				}
			}
		}
	}

	if accessor, ok := primitive.Attributes["WEIGHTS_0"]; ok {
		weights, err := modeler.ReadWeights(doc, doc.Accessors[accessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read weights")
		}
		for i := range vertices {
			if i < len(weights) {
				vertices[i].Weight0 = mgl32.Vec4{weights[i][0], weights[i][1], weights[i][2], weights[i][3]}
			}
		}
	} else {
		for i := range vertices {
			vertices[i].Weight0 = mgl32.Vec4{1, 0, 0, 0}
		}
	}

	if accessor, ok := primitive.Attributes["COLOR_0"]; ok {
		colors, err := modeler.ReadColor(doc, doc.Accessors[accessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read colors")
		}
		for i := range vertices {
			if i < len(colors) {
				vertices[i].Color0 = mgl32.Vec3{
					float32(colors[i][0]) / 255,
					float32(colors[i][1]) / 255,
					float32(colors[i][2]) / 255,
				}
			}
		}
	}

	return vertices, nil
}

// importScenes walks each document scene depth-first, appending transform,
// metadata and node entries and mirroring the hierarchy into the scene
// graph under a synthetic root at graph node 0.
func importScenes(doc *gltf.Document, w *world.World) map[int]int {
	// glTF node index -> world node index, needed by skins and animations.
	// Conversion appends nodes in visit order, which differs from document
	// order for nested hierarchies, so the mapping is kept explicit.
	nodeRemap := make(map[int]int, len(doc.Nodes))

	for _, gltfScene := range doc.Scenes {
		scene := world.Scene{Name: gltfScene.Name}

		rootNodeIndex := addNamedNode(w, "Scene Root")
		rootGraphNodeIndex := scene.Graph.AddNode(rootNodeIndex)

		for _, child := range gltfScene.Nodes {
			importNode(doc, w, &scene, nodeRemap, rootGraphNodeIndex, int(child))
		}

		scene.Graph.WalkDFS(rootGraphNodeIndex, func(graphNodeIndex, nodeIndex int) bool {
			if w.Nodes[nodeIndex].CameraIndex != world.InvalidIndex &&
				scene.DefaultCameraGraphNodeIndex == 0 {
				scene.DefaultCameraGraphNodeIndex = graphNodeIndex
				return false
			}
			return true
		})

		w.Scenes = append(w.Scenes, scene)
	}
	return nodeRemap
}

func importNode(
	doc *gltf.Document,
	w *world.World,
	scene *world.Scene,
	nodeRemap map[int]int,
	parentGraphNodeIndex int,
	gltfNodeIndex int,
) {
	gltfNode := doc.Nodes[gltfNodeIndex]

	name := gltfNode.Name
	if name == "" {
		name = "Node"
	}
	nodeIndex := addNamedNode(w, name)
	nodeRemap[gltfNodeIndex] = nodeIndex

	node := &w.Nodes[nodeIndex]
	w.Transforms[node.TransformIndex] = nodeTransform(gltfNode)
	if gltfNode.Camera != nil {
		node.CameraIndex = int(*gltfNode.Camera)
	}
	if gltfNode.Mesh != nil {
		node.MeshIndex = int(*gltfNode.Mesh)
	}

	graphNodeIndex := scene.Graph.AddNode(nodeIndex)
	if err := scene.Graph.AddEdge(parentGraphNodeIndex, graphNodeIndex); err != nil {
		log.Printf("[gltfconv] Skipping edge to node %q: %v", name, err)
		return
	}

	for _, child := range gltfNode.Children {
		importNode(doc, w, scene, nodeRemap, graphNodeIndex, int(child))
	}
}

func addNamedNode(w *world.World, name string) int {
	nodeIndex := w.AddNode()
	w.Metadata[w.Nodes[nodeIndex].MetadataIndex].Name = name
	return nodeIndex
}

func nodeTransform(gltfNode *gltf.Node) world.Transform {
	matrix := mgl32.Ident4()
	for i, value := range gltfNode.Matrix {
		matrix[i] = float32(value)
	}
	if matrix != mgl32.Ident4() {
		return world.DecomposeMatrix(matrix)
	}
	return world.TransformFromDecomposed(
		[3]float32{
			float32(gltfNode.Translation[0]),
			float32(gltfNode.Translation[1]),
			float32(gltfNode.Translation[2]),
		},
		[4]float32{
			float32(gltfNode.Rotation[0]),
			float32(gltfNode.Rotation[1]),
			float32(gltfNode.Rotation[2]),
			float32(gltfNode.Rotation[3]),
		},
		[3]float32{
			float32(gltfNode.Scale[0]),
			float32(gltfNode.Scale[1]),
			float32(gltfNode.Scale[2]),
		},
	)
}

func importSkins(doc *gltf.Document, w *world.World, nodeRemap map[int]int) {
	for iSkin, gltfSkin := range doc.Skins {
		inverseBindMatrices := readInverseBindMatrices(doc, gltfSkin)
		skin := world.Skin{Name: gltfSkin.Name, Joints: make([]world.Joint, len(gltfSkin.Joints))}
		for i, joint := range gltfSkin.Joints {
			target, ok := nodeRemap[int(joint)]
			if !ok {
				log.Printf("[gltfconv] Skin %d joint %d targets a node outside every scene", iSkin, i)
				target = world.InvalidIndex
			}
			matrix := mgl32.Ident4()
			if i < len(inverseBindMatrices) {
				matrix = inverseBindMatrices[i]
			}
			skin.Joints[i] = world.Joint{TargetNodeIndex: target, InverseBindMatrix: matrix}
		}
		w.Skins = append(w.Skins, skin)
	}
}

func readInverseBindMatrices(doc *gltf.Document, skin *gltf.Skin) []mgl32.Mat4 {
	if skin.InverseBindMatrices == nil {
		return nil
	}
	raw, err := modeler.ReadAccessor(doc, doc.Accessors[*skin.InverseBindMatrices], nil)
	if err != nil {
		log.Printf("[gltfconv] Failed to read inverse bind matrices: %v", err)
		return nil
	}
	values, ok := raw.([][4][4]float32)
	if !ok {
		return nil
	}
	matrices := make([]mgl32.Mat4, len(values))
	for i, value := range values {
		// glTF matrices are column major, like mgl32.
		for column := 0; column < 4; column++ {
			for row := 0; row < 4; row++ {
				matrices[i][column*4+row] = value[column][row]
			}
		}
	}
	return matrices
}

func importAnimations(doc *gltf.Document, w *world.World, nodeRemap map[int]int) error {
	for _, gltfAnimation := range doc.Animations {
		animation := world.Animation{Name: gltfAnimation.Name}
		for _, gltfChannel := range gltfAnimation.Channels {
			if gltfChannel.Sampler == nil || gltfChannel.Target.Node == nil {
				continue
			}
			target, ok := nodeRemap[int(*gltfChannel.Target.Node)]
			if !ok {
				continue
			}
			sampler := gltfAnimation.Samplers[*gltfChannel.Sampler]

			channel := world.Channel{
				TargetNodeIndex: target,
				Interpolation:   convertInterpolation(sampler.Interpolation),
			}

			inputs, err := readFloats(doc, *sampler.Input)
			if err != nil {
				return errors.Wrapf(err, "Failed to read inputs of animation %q", gltfAnimation.Name)
			}
			channel.Inputs = inputs
			for _, input := range inputs {
				if input > animation.MaxAnimationTime {
					animation.MaxAnimationTime = input
				}
			}

			if err := readChannelOutputs(doc, &channel, gltfChannel.Target.Path, *sampler.Output); err != nil {
				return errors.Wrapf(err, "Failed to read outputs of animation %q", gltfAnimation.Name)
			}
			animation.Channels = append(animation.Channels, channel)
		}
		w.Animations = append(w.Animations, animation)
	}
	return nil
}

func convertInterpolation(interpolation gltf.Interpolation) world.Interpolation {
	switch interpolation {
	case gltf.InterpolationStep:
		return world.InterpolationStep
	case gltf.InterpolationCubicSpline:
		return world.InterpolationCubicSpline
	default:
		return world.InterpolationLinear
	}
}

func readChannelOutputs(doc *gltf.Document, channel *world.Channel, path gltf.TRSProperty, accessor uint32) error {
	raw, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return err
	}
	switch path {
	case gltf.TRSTranslation, gltf.TRSScale:
		values, ok := raw.([][3]float32)
		if !ok {
			return errors.Errorf("Unexpected %v output type %T", path, raw)
		}
		converted := make([]mgl32.Vec3, len(values))
		for i, value := range values {
			converted[i] = mgl32.Vec3{value[0], value[1], value[2]}
		}
		if path == gltf.TRSTranslation {
			channel.Translations = converted
		} else {
			channel.Scales = converted
		}
	case gltf.TRSRotation:
		values, ok := raw.([][4]float32)
		if !ok {
			return errors.Errorf("Unexpected rotation output type %T", raw)
		}
		converted := make([]mgl32.Vec4, len(values))
		for i, value := range values {
			converted[i] = mgl32.Vec4{value[0], value[1], value[2], value[3]}
		}
		channel.Rotations = converted
	case gltf.TRSWeights:
		values, ok := raw.([]float32)
		if !ok {
			return errors.Errorf("Unexpected weights output type %T", raw)
		}
		channel.Weights = values
	}
	return nil
}

func readFloats(doc *gltf.Document, accessor uint32) ([]float32, error) {
	raw, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, err
	}
	values, ok := raw.([]float32)
	if !ok {
		return nil, errors.Errorf("Unexpected scalar accessor type %T", raw)
	}
	return values, nil
}
