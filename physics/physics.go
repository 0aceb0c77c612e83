// Package physics keeps rigid-body state in flat parallel arrays, with
// bodies referencing their rows by index the same way world nodes reference
// component tables.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

type RigidBody struct {
	PositionIndex int `json:"position_index"`
	VelocityIndex int `json:"velocity_index"`
	ForceIndex    int `json:"force_index"`
	MassIndex     int `json:"mass_index"`
}

type World struct {
	Gravity    mgl32.Vec3   `json:"gravity"`
	Bodies     []RigidBody  `json:"bodies"`
	Positions  []mgl32.Vec3 `json:"positions"`
	Velocities []mgl32.Vec3 `json:"velocities"`
	Forces     []mgl32.Vec3 `json:"forces"`
	Masses     []float32    `json:"masses"`
}

func New() World {
	return World{Gravity: mgl32.Vec3{0, -1.8, 0}}
}

// AddRigidBody appends one row to every per-body array and returns the body
// index.
func (w *World) AddRigidBody(position mgl32.Vec3) int {
	positionIndex := len(w.Positions)
	w.Positions = append(w.Positions, position)

	velocityIndex := len(w.Velocities)
	w.Velocities = append(w.Velocities, mgl32.Vec3{})

	forceIndex := len(w.Forces)
	w.Forces = append(w.Forces, mgl32.Vec3{})

	massIndex := len(w.Masses)
	w.Masses = append(w.Masses, 1)

	bodyIndex := len(w.Bodies)
	w.Bodies = append(w.Bodies, RigidBody{
		PositionIndex: positionIndex,
		VelocityIndex: velocityIndex,
		ForceIndex:    forceIndex,
		MassIndex:     massIndex,
	})
	return bodyIndex
}

// Step integrates one explicit Euler tick: accumulated forces plus gravity
// update velocity, last tick's velocity updates position, then forces reset.
func (w *World) Step(deltaTime float32) {
	for _, body := range w.Bodies {
		force := w.Forces[body.ForceIndex]
		mass := w.Masses[body.MassIndex]
		acceleration := force.Mul(1 / mass).Add(w.Gravity)

		velocity := w.Velocities[body.VelocityIndex]
		position := w.Positions[body.PositionIndex]

		w.Velocities[body.VelocityIndex] = velocity.Add(acceleration.Mul(deltaTime))
		w.Positions[body.PositionIndex] = position.Add(velocity.Mul(deltaTime))

		w.Forces[body.ForceIndex] = mgl32.Vec3{}
	}
}

// Merge appends the other world's arrays, rewriting each body's row indices
// by this world's pre-merge array lengths.
func (w *World) Merge(other *World) {
	positionOffset := len(w.Positions)
	velocityOffset := len(w.Velocities)
	forceOffset := len(w.Forces)
	massOffset := len(w.Masses)

	for _, body := range other.Bodies {
		body.PositionIndex += positionOffset
		body.VelocityIndex += velocityOffset
		body.ForceIndex += forceOffset
		body.MassIndex += massOffset
		w.Bodies = append(w.Bodies, body)
	}

	w.Positions = append(w.Positions, other.Positions...)
	w.Velocities = append(w.Velocities, other.Velocities...)
	w.Forces = append(w.Forces, other.Forces...)
	w.Masses = append(w.Masses, other.Masses...)
}
