package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/shower/common"
)

// Rot is a model rotation in radians, applied X first, then Y, then Z.
type Rot struct {
	X, Y, Z float32
}

// Add returns the component-wise sum of r and o.
func (r Rot) Add(o Rot) Rot {
	return Rot{X: r.X + o.X, Y: r.Y + o.Y, Z: r.Z + o.Z}
}

// Matrix returns the rotation as a column-major matrix.
//
// Returns:
//   - common.Mat4: Rz * Ry * Rx
func (r Rot) Matrix() common.Mat4 {
	var m common.Mat4
	common.RotationXYZ(m[:], r.X, r.Y, r.Z)
	return m
}

// Camera holds a perspective projection, a look-at view and the accumulated model rotation
// handed to the scene each frame.
type Camera interface {
	// SetAspect updates the aspect ratio from a framebuffer size. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	SetAspect(width, height int)

	// Aspect returns the current aspect ratio (width/height).
	Aspect() float32

	// Eye returns the camera position in world space.
	Eye() [3]float32

	// Target returns the look-at point in world space.
	Target() [3]float32

	// Move translates eye and target together along the camera's local axes.
	//
	// Parameters:
	//   - movement: distance along right, up and forward
	Move(movement [3]float32)

	// Rotate adds delta to the accumulated model rotation.
	//
	// Parameters:
	//   - delta: rotation to add, in radians
	Rotate(delta Rot)

	// ResetRotation clears the accumulated model rotation.
	ResetRotation()

	// Rotation returns the accumulated model rotation.
	Rotation() Rot

	// Projection returns the projection-view matrix.
	//
	// Returns:
	//   - common.Mat4: perspective * view
	Projection() common.Mat4

	// RotationMatrix returns the accumulated model rotation as a matrix.
	RotationMatrix() common.Mat4
}

type cameraImpl struct {
	mu sync.Mutex

	fovY   float32
	aspect float32
	near   float32
	far    float32

	eye    [3]float32
	target [3]float32
	up     [3]float32

	rot Rot
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera looking from (0, -4, 4) at the origin with -Z up, a 45 degree
// vertical field of view and clip planes at 1 and 100.
//
// Parameters:
//   - options: functional options applied over the defaults
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		fovY:   float32(math.Pi / 4),
		aspect: 16.0 / 9.0,
		near:   1,
		far:    100,
		eye:    [3]float32{0, -4, 4},
		target: [3]float32{0, 0, 0},
		up:     [3]float32{0, 0, -1},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cameraImpl) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = float32(width) / float32(height)
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Move(movement [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	right, up, forward := c.localAxes()
	for i := range 3 {
		d := movement[0]*right[i] + movement[1]*up[i] + movement[2]*forward[i]
		c.eye[i] += d
		c.target[i] += d
	}
}

// localAxes returns the camera's right, up and forward unit vectors, consistent with LookAt.
// All three are zero if eye and target coincide. Caller must hold the mutex.
func (c *cameraImpl) localAxes() (right, up, forward [3]float32) {
	forward = common.Normalize3([3]float32{
		c.target[0] - c.eye[0],
		c.target[1] - c.eye[1],
		c.target[2] - c.eye[2],
	})
	right = common.Normalize3(cross(forward, c.up))
	up = cross(right, forward)
	return right, up, forward
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (c *cameraImpl) Rotate(delta Rot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rot = c.rot.Add(delta)
}

func (c *cameraImpl) ResetRotation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rot = Rot{}
}

func (c *cameraImpl) Rotation() Rot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rot
}

func (c *cameraImpl) Projection() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var proj, view common.Mat4
	common.Perspective(proj[:], c.fovY, c.aspect, c.near, c.far)
	common.LookAt(view[:],
		c.eye[0], c.eye[1], c.eye[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	return proj.Mul(view)
}

func (c *cameraImpl) RotationMatrix() common.Mat4 {
	return c.Rotation().Matrix()
}
