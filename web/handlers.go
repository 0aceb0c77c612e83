package web

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/matthewjberger/serenity/gltfconv"
	"github.com/matthewjberger/serenity/status"
	"github.com/matthewjberger/serenity/utils"
	"github.com/matthewjberger/serenity/webutils"
	"github.com/matthewjberger/serenity/world"
)

func HandlerWorldSummary(w http.ResponseWriter, r *http.Request) {
	serverLock.Lock()
	defer serverLock.Unlock()

	sceneNames := make([]string, len(serverWorld.Scenes))
	for i := range serverWorld.Scenes {
		sceneNames[i] = serverWorld.Scenes[i].Name
	}

	webutils.WriteJson(w, map[string]interface{}{
		"scenes":     sceneNames,
		"nodes":      len(serverWorld.Nodes),
		"meshes":     len(serverWorld.Meshes),
		"vertices":   len(serverWorld.Vertices),
		"indices":    len(serverWorld.Indices),
		"materials":  len(serverWorld.Materials),
		"textures":   len(serverWorld.Textures),
		"images":     len(serverWorld.Images),
		"samplers":   len(serverWorld.Samplers),
		"cameras":    len(serverWorld.Cameras),
		"lights":     len(serverWorld.Lights),
		"skins":      len(serverWorld.Skins),
		"animations": len(serverWorld.Animations),
		"bodies":     len(serverWorld.Physics.Bodies),
	})
}

func HandlerWorldNodes(w http.ResponseWriter, r *http.Request) {
	serverLock.Lock()
	defer serverLock.Unlock()

	type jNode struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
		world.Node
	}

	nodes := make([]jNode, len(serverWorld.Nodes))
	for i := range serverWorld.Nodes {
		node := serverWorld.Nodes[i]
		name := ""
		if metadata, err := serverWorld.MetadataAt(node.MetadataIndex); err == nil {
			name = metadata.Name
		}
		nodes[i] = jNode{Index: i, Name: name, Node: node}
	}
	webutils.WriteJson(w, nodes)
}

func sceneFromVars(r *http.Request) (*world.Scene, error) {
	sceneIndex, err := strconv.Atoi(mux.Vars(r)["scene"])
	if err != nil {
		return nil, fmt.Errorf("scene '%s' is not integer", mux.Vars(r)["scene"])
	}
	if sceneIndex < 0 || sceneIndex >= len(serverWorld.Scenes) {
		return nil, fmt.Errorf("scene %d of %d", sceneIndex, len(serverWorld.Scenes))
	}
	return &serverWorld.Scenes[sceneIndex], nil
}

func HandlerSceneGraph(w http.ResponseWriter, r *http.Request) {
	serverLock.Lock()
	defer serverLock.Unlock()

	scene, err := sceneFromVars(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, scene)
}

func HandlerGlobalTransform(w http.ResponseWriter, r *http.Request) {
	serverLock.Lock()
	defer serverLock.Unlock()

	scene, err := sceneFromVars(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	graphNodeIndex, err := strconv.Atoi(mux.Vars(r)["node"])
	if err != nil {
		webutils.WriteError(w, fmt.Errorf("node '%s' is not integer", mux.Vars(r)["node"]))
		return
	}

	matrix, err := serverWorld.GlobalTransform(&scene.Graph, graphNodeIndex)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	transform := world.DecomposeMatrix(matrix)
	euler := utils.QuatToEuler(transform.Rotation)

	webutils.WriteJson(w, map[string]interface{}{
		"matrix":      matrix,
		"translation": transform.Translation,
		"rotation":    transform.Rotation,
		"scale":       transform.Scale,
		"euler_degrees": [3]float32{
			utils.RadiansToDegrees(euler.X()),
			utils.RadiansToDegrees(euler.Y()),
			utils.RadiansToDegrees(euler.Z()),
		},
	})
}

func HandlerDumpWorld(w http.ResponseWriter, r *http.Request) {
	serverLock.Lock()
	defer serverLock.Unlock()

	var buf bytes.Buffer
	if err := serverWorld.Save(&buf); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, "world.json")
}

func HandlerUploadGltf(w http.ResponseWriter, r *http.Request) {
	data, fileName, err := webutils.ReadUpload(r, "data")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	source, err := gltfconv.Load(bytes.NewReader(data))
	if err != nil {
		log.Printf("[web] Error decoding uploaded asset %q: %v", fileName, err)
		webutils.WriteError(w, err)
		return
	}

	serverLock.Lock()
	defer serverLock.Unlock()

	if err := world.MergeWorlds(serverWorld, source); err != nil {
		webutils.WriteError(w, err)
		return
	}
	status.Info("Merged %q: %d nodes", fileName, len(source.Nodes))
	webutils.WriteJson(w, map[string]interface{}{
		"nodes": len(serverWorld.Nodes),
	})
}

func HandlerStepPhysics(w http.ResponseWriter, r *http.Request) {
	dt, err := strconv.ParseFloat(mux.Vars(r)["dt"], 32)
	if err != nil {
		webutils.WriteError(w, fmt.Errorf("dt '%s' is not a number", mux.Vars(r)["dt"]))
		return
	}

	serverLock.Lock()
	defer serverLock.Unlock()

	serverWorld.Physics.Step(float32(dt))
	status.Info("Stepped physics by %v", dt)
	webutils.WriteJson(w, map[string]interface{}{
		"bodies": len(serverWorld.Physics.Bodies),
	})
}

func HandlerStatusWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] Websocket upgrade failed: %v", err)
		return
	}
	status.ServeWebsocket(conn)
}
