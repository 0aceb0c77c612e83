package world

import "github.com/pkg/errors"

var (
	ErrHandleNotAllocated  = errors.New("handle is stale or was never allocated")
	ErrIndexOutOfRange     = errors.New("table index out of range")
	ErrCyclicGraph         = errors.New("edge would break the scene graph forest invariant")
	ErrMergeOffsetOverflow = errors.New("merge offsets exceed representable index space")
	ErrSceneWithoutCamera  = errors.New("scene has no camera at its default camera node")
)
