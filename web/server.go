package web

import (
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/matthewjberger/serenity/config"
	"github.com/matthewjberger/serenity/world"
)

// serverWorld is the live world. HTTP handlers are its only mutators once
// the server starts, so a single lock preserves single-writer semantics
// while letting read handlers share it.
var (
	serverLock  sync.Mutex
	serverWorld *world.World
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func StartServer(addr string, w *world.World) error {
	serverWorld = w

	if step := config.Current().PhysicsStep; step > 0 {
		go runFixedStep(step)
	}

	r := mux.NewRouter()
	r.HandleFunc("/json/world", HandlerWorldSummary)
	r.HandleFunc("/json/world/nodes", HandlerWorldNodes)
	r.HandleFunc("/json/world/scene/{scene}", HandlerSceneGraph)
	r.HandleFunc("/json/world/scene/{scene}/node/{node}/transform", HandlerGlobalTransform)
	r.HandleFunc("/dump/world", HandlerDumpWorld)
	r.HandleFunc("/upload/gltf", HandlerUploadGltf)
	r.HandleFunc("/action/world/step/{dt}", HandlerStepPhysics)
	r.HandleFunc("/ws/status", HandlerStatusWebsocket)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}

// runFixedStep advances physics and animations at the configured fixed
// interval, sharing the handler lock.
func runFixedStep(step float32) {
	log.Printf("[web] Fixed step %vs", step)
	ticker := time.NewTicker(time.Duration(float64(step) * float64(time.Second)))
	defer ticker.Stop()
	for range ticker.C {
		serverLock.Lock()
		serverWorld.Physics.Step(step)
		serverWorld.AdvanceAnimations(step)
		serverLock.Unlock()
	}
}
