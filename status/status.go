// Package status fans world lifecycle events out to subscribers. Unlike a
// weak-reference broadcast list, subscribers are addressed by generational
// handles over bounded rings: a dropped subscriber is retired by an explicit
// Unsubscribe (or a failed websocket write) and a slow one loses its oldest
// events instead of blocking publishers.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matthewjberger/serenity/handle"
)

const (
	INFO = iota
	ERROR
	PROGRESS
)

type Event struct {
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
	Type     int       `json:"type"`
	Progress float32   `json:"progress"`
	WorldID  uuid.UUID `json:"world_id,omitempty"`
}

var (
	globalLock sync.Mutex
	broker     = handle.NewBroker[Event](64)
	worldID    uuid.UUID
)

// SetRingCapacity replaces the hub; call before any Subscribe.
func SetRingCapacity(capacity int) {
	globalLock.Lock()
	defer globalLock.Unlock()
	broker = handle.NewBroker[Event](capacity)
}

// SetWorldID tags subsequent events with the live world's identity.
func SetWorldID(id uuid.UUID) {
	globalLock.Lock()
	defer globalLock.Unlock()
	worldID = id
}

func Subscribe() handle.Handle {
	globalLock.Lock()
	defer globalLock.Unlock()
	return broker.Subscribe()
}

func Unsubscribe(h handle.Handle) {
	globalLock.Lock()
	defer globalLock.Unlock()
	broker.Unsubscribe(h)
}

// Poll drains the subscriber's pending events, oldest first.
func Poll(h handle.Handle) []Event {
	globalLock.Lock()
	defer globalLock.Unlock()
	return broker.Poll(h)
}

func publish(msg string, eventType int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	globalLock.Lock()
	defer globalLock.Unlock()
	broker.Publish(Event{
		Message:  msg,
		Time:     time.Now(),
		Type:     eventType,
		Progress: progress,
		WorldID:  worldID,
	})
}

func Info(format string, a ...interface{}) {
	publish(fmt.Sprintf(format, a...), INFO, 0.0)
}

func Error(format string, a ...interface{}) {
	publish(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func Progress(progress float32, format string, a ...interface{}) {
	publish(fmt.Sprintf(format, a...), PROGRESS, progress)
}

// ServeWebsocket subscribes the connection and streams its ring until the
// peer goes away. Polling doubles as the keepalive tick.
func ServeWebsocket(conn *websocket.Conn) {
	h := Subscribe()
	defer Unsubscribe(h)
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		events := Poll(h)
		if len(events) == 0 {
			conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		for _, event := range events {
			data, err := json.Marshal(&event)
			if err != nil {
				log.Printf("[status] marshal error: %v", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
