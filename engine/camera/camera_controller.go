package camera

import "github.com/Carmen-Shannon/shower/engine/window"

// Action is a bit set of camera actions currently held down.
type Action uint16

const (
	ActionForward Action = 1 << iota
	ActionBackward
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionPitchUp
	ActionPitchDown
	ActionYawLeft
	ActionYawRight
	ActionReset
)

// Bindings maps keys to the action they hold.
type Bindings map[window.Key]Action

// DefaultBindings returns WASD for planar movement, E and Q for vertical movement, the arrow
// keys for rotation and R to reset the rotation.
//
// Returns:
//   - Bindings: a fresh map the caller may modify
func DefaultBindings() Bindings {
	return Bindings{
		window.KeyW:     ActionForward,
		window.KeyS:     ActionBackward,
		window.KeyA:     ActionLeft,
		window.KeyD:     ActionRight,
		window.KeyE:     ActionUp,
		window.KeyQ:     ActionDown,
		window.KeyUp:    ActionPitchUp,
		window.KeyDown:  ActionPitchDown,
		window.KeyLeft:  ActionYawLeft,
		window.KeyRight: ActionYawRight,
		window.KeyR:     ActionReset,
	}
}

// CameraController turns key transitions into per-frame camera movement and rotation.
// Opposing actions held together cancel out.
type CameraController interface {
	// KeyDown marks the action bound to key as held.
	//
	// Parameters:
	//   - key: the pressed key
	//
	// Returns:
	//   - bool: true if the key is bound
	KeyDown(key window.Key) bool

	// KeyUp clears the action bound to key.
	//
	// Parameters:
	//   - key: the released key
	//
	// Returns:
	//   - bool: true if the key is bound
	KeyUp(key window.Key) bool

	// Active returns the set of held actions.
	Active() Action

	// Step returns the movement and rotation for one frame of the held actions.
	//
	// Returns:
	//   - movement: distance along the camera's right, up and forward axes
	//   - rot: rotation delta in radians
	//   - reset: true if the reset action is held
	//   - ok: false when no action is held
	Step() (movement [3]float32, rot Rot, reset bool, ok bool)

	// Apply runs one Step against cam.
	//
	// Parameters:
	//   - cam: the camera to move
	//
	// Returns:
	//   - bool: true if cam changed
	Apply(cam Camera) bool

	// MoveSpeed returns the distance moved per frame.
	MoveSpeed() float32

	// RotateSpeed returns the radians rotated per frame.
	RotateSpeed() float32
}
