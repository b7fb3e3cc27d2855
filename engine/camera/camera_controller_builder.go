package camera

// CameraControllerOption is a functional option for configuring a camera controller.
type CameraControllerOption func(*cameraControllerImpl)

// WithBindings replaces the key bindings.
//
// Parameters:
//   - b: key to action map; copied
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithBindings(b Bindings) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.bindings = make(Bindings, len(b))
		for k, a := range b {
			cc.bindings[k] = a
		}
	}
}

// WithMoveSpeed sets the distance moved per frame while a movement key is held.
//
// Parameters:
//   - speed: world units per frame
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithRotateSpeed sets the rotation per frame while a rotation key is held.
//
// Parameters:
//   - speed: radians per frame
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRotateSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateSpeed = speed
	}
}
