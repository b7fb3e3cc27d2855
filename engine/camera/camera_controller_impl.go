package camera

import (
	"sync"

	"github.com/Carmen-Shannon/shower/engine/window"
)

// cameraControllerImpl tracks held actions as a bit set, updated from key callbacks and
// read once per frame.
type cameraControllerImpl struct {
	mu *sync.Mutex

	bindings Bindings
	active   Action

	moveSpeed   float32
	rotateSpeed float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller with DefaultBindings, a move speed of 0.05 and a
// rotate speed of 0.02 radians per frame.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		bindings:    DefaultBindings(),
		moveSpeed:   0.05,
		rotateSpeed: 0.02,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) KeyDown(key window.Key) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	a, ok := cc.bindings[key]
	if ok {
		cc.active |= a
	}
	return ok
}

func (cc *cameraControllerImpl) KeyUp(key window.Key) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	a, ok := cc.bindings[key]
	if ok {
		cc.active &^= a
	}
	return ok
}

func (cc *cameraControllerImpl) Active() Action {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.active
}

// axis returns +1, -1 or 0 for a pair of opposing actions.
func axis(active, pos, neg Action) float32 {
	var v float32
	if active&pos != 0 {
		v++
	}
	if active&neg != 0 {
		v--
	}
	return v
}

func (cc *cameraControllerImpl) Step() (movement [3]float32, rot Rot, reset bool, ok bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	a := cc.active
	if a == 0 {
		return movement, rot, false, false
	}
	movement = [3]float32{
		axis(a, ActionRight, ActionLeft) * cc.moveSpeed,
		axis(a, ActionUp, ActionDown) * cc.moveSpeed,
		axis(a, ActionForward, ActionBackward) * cc.moveSpeed,
	}
	rot = Rot{
		X: axis(a, ActionPitchUp, ActionPitchDown) * cc.rotateSpeed,
		Y: axis(a, ActionYawRight, ActionYawLeft) * cc.rotateSpeed,
	}
	return movement, rot, a&ActionReset != 0, true
}

func (cc *cameraControllerImpl) Apply(cam Camera) bool {
	movement, rot, reset, ok := cc.Step()
	if !ok {
		return false
	}
	if reset {
		cam.ResetRotation()
	} else {
		cam.Rotate(rot)
	}
	cam.Move(movement)
	return true
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) RotateSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotateSpeed
}
