package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestStepIntegratesGravity(t *testing.T) {
	w := New()
	bodyIndex := w.AddRigidBody(mgl32.Vec3{0, 10, 0})

	w.Step(1)
	body := w.Bodies[bodyIndex]

	// Position moves by last tick's velocity, which started at zero.
	if position := w.Positions[body.PositionIndex]; position != (mgl32.Vec3{0, 10, 0}) {
		t.Errorf("position after first tick = %v; expected (0,10,0)", position)
	}
	if velocity := w.Velocities[body.VelocityIndex]; velocity != (mgl32.Vec3{0, -1.8, 0}) {
		t.Errorf("velocity after first tick = %v; expected (0,-1.8,0)", velocity)
	}

	w.Step(1)
	if position := w.Positions[body.PositionIndex]; !position.ApproxEqualThreshold(mgl32.Vec3{0, 8.2, 0}, 1e-5) {
		t.Errorf("position after second tick = %v; expected (0,8.2,0)", position)
	}
}

func TestStepAppliesAndResetsForces(t *testing.T) {
	w := New()
	w.Gravity = mgl32.Vec3{}
	bodyIndex := w.AddRigidBody(mgl32.Vec3{})
	body := w.Bodies[bodyIndex]
	w.Masses[body.MassIndex] = 2
	w.Forces[body.ForceIndex] = mgl32.Vec3{4, 0, 0}

	w.Step(1)
	if velocity := w.Velocities[body.VelocityIndex]; velocity != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("velocity = %v; expected force/mass = (2,0,0)", velocity)
	}
	if force := w.Forces[body.ForceIndex]; force != (mgl32.Vec3{}) {
		t.Errorf("force = %v after tick; expected reset to zero", force)
	}
}

func TestMergeRelocatesBodyRows(t *testing.T) {
	a := New()
	a.AddRigidBody(mgl32.Vec3{1, 0, 0})
	a.AddRigidBody(mgl32.Vec3{2, 0, 0})

	b := New()
	b.AddRigidBody(mgl32.Vec3{3, 0, 0})

	a.Merge(&b)

	if len(a.Bodies) != 3 {
		t.Fatalf("body count = %d after merge; expected 3", len(a.Bodies))
	}
	merged := a.Bodies[2]
	if merged.PositionIndex != 2 || merged.VelocityIndex != 2 ||
		merged.ForceIndex != 2 || merged.MassIndex != 2 {
		t.Errorf("merged body rows = %+v; expected all indices 2", merged)
	}
	if position := a.Positions[merged.PositionIndex]; position != (mgl32.Vec3{3, 0, 0}) {
		t.Errorf("merged body position = %v; expected (3,0,0)", position)
	}

	// Source body rows stay put.
	if b.Bodies[0].PositionIndex != 0 {
		t.Errorf("source body mutated: %+v", b.Bodies[0])
	}
}
