package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// Channel animates one property of one target node. Exactly one of the
// output slices is populated; rotations are stored as [x y z w].
type Channel struct {
	TargetNodeIndex int           `json:"target_node_index"`
	Inputs          []float32     `json:"inputs"`
	Interpolation   Interpolation `json:"interpolation"`
	Translations    []mgl32.Vec3  `json:"translations,omitempty"`
	Rotations       []mgl32.Vec4  `json:"rotations,omitempty"`
	Scales          []mgl32.Vec3  `json:"scales,omitempty"`
	Weights         []float32     `json:"weights,omitempty"`
}

type Animation struct {
	Name             string    `json:"name"`
	Time             float32   `json:"time"`
	Channels         []Channel `json:"channels"`
	MaxAnimationTime float32   `json:"max_animation_time"`
}

// AdvanceAnimations steps every animation clock, wrapping at the clip end,
// and writes the sampled channel values back into node transforms.
func (w *World) AdvanceAnimations(deltaTime float32) {
	for animationIndex := range w.Animations {
		animation := &w.Animations[animationIndex]
		animation.Time += deltaTime
		if animation.MaxAnimationTime > 0 {
			for animation.Time > animation.MaxAnimationTime {
				animation.Time -= animation.MaxAnimationTime
			}
		}
		for channelIndex := range animation.Channels {
			w.applyChannel(&animation.Channels[channelIndex], animation.Time)
		}
	}
}

func (w *World) applyChannel(channel *Channel, time float32) {
	if len(channel.Inputs) == 0 {
		return
	}
	node, err := w.Node(channel.TargetNodeIndex)
	if err != nil {
		return
	}
	transform, err := w.TransformAt(node.TransformIndex)
	if err != nil {
		return
	}

	left, right, factor := channel.keyframes(time)
	if channel.Interpolation != InterpolationLinear {
		// Step and cubic-spline clips hold the left keyframe's value.
		factor = 0
	}

	switch {
	case len(channel.Translations) > right:
		transform.Translation = lerpVec3(channel.Translations[left], channel.Translations[right], factor)
	case len(channel.Rotations) > right:
		transform.Rotation = mgl32.QuatSlerp(
			quatFromVec4(channel.Rotations[left]),
			quatFromVec4(channel.Rotations[right]),
			factor,
		)
	case len(channel.Scales) > right:
		transform.Scale = lerpVec3(channel.Scales[left], channel.Scales[right], factor)
	}
}

// keyframes locates the pair bracketing time and the blend factor between
// them, clamping outside the clip's input range.
func (c *Channel) keyframes(time float32) (int, int, float32) {
	if time <= c.Inputs[0] {
		return 0, 0, 0
	}
	last := len(c.Inputs) - 1
	if time >= c.Inputs[last] {
		return last, last, 0
	}
	for i := 0; i < last; i++ {
		if time < c.Inputs[i+1] {
			span := c.Inputs[i+1] - c.Inputs[i]
			if span <= 0 {
				return i, i, 0
			}
			return i, i + 1, (time - c.Inputs[i]) / span
		}
	}
	return last, last, 0
}

func lerpVec3(a, b mgl32.Vec3, factor float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(factor))
}

func quatFromVec4(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v.W(), V: mgl32.Vec3{v.X(), v.Y(), v.Z()}}
}
