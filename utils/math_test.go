package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatToEuler(t *testing.T) {
	tests := []struct {
		name     string
		quat     mgl32.Quat
		expected mgl32.Vec3
	}{
		{"identity", mgl32.QuatIdent(), mgl32.Vec3{0, 0, 0}},
		{"roll 90", mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{1, 0, 0}), mgl32.Vec3{float32(math.Pi / 2), 0, 0}},
		{"yaw 90", mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 0, 1}), mgl32.Vec3{0, 0, float32(math.Pi / 2)}},
		{"pitch 45", mgl32.QuatRotate(float32(math.Pi/4), mgl32.Vec3{0, 1, 0}), mgl32.Vec3{0, float32(math.Pi / 4), 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			euler := QuatToEuler(test.quat)
			if !euler.ApproxEqualThreshold(test.expected, 1e-5) {
				t.Errorf("QuatToEuler(%v) = %v; expected %v", test.quat, euler, test.expected)
			}
		})
	}
}

func TestRadiansToDegrees(t *testing.T) {
	if degrees := RadiansToDegrees(math.Pi); !mgl32.FloatEqualThreshold(degrees, 180, 1e-4) {
		t.Errorf("RadiansToDegrees(pi) = %v; expected 180", degrees)
	}
}

func TestRandomNameUnique(t *testing.T) {
	var rng RandomNameGenerator
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		name := rng.RandomName()
		if name == "" {
			t.Fatalf("RandomName returned empty string")
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("RandomName repeated %q", name)
		}
		seen[name] = struct{}{}
	}
}
