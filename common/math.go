package common

import (
	"encoding/binary"
	"math"
)

// Mat4 is a 4x4 float32 matrix stored in column-major order (WebGPU convention).
// Its raw form is 64 bytes, the size of a WGSL mat4x4<f32> uniform.
type Mat4 [16]float32

// Mat4Size is the size in bytes of a marshaled Mat4.
const Mat4Size = 64

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Identity4 returns a new identity Mat4.
//
// Returns:
//   - Mat4: the identity matrix
func Identity4() Mat4 {
	var m Mat4
	Identity(m[:])
	return m
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Mul returns m * o.
//
// Parameters:
//   - o: the right-hand matrix
//
// Returns:
//   - Mat4: the product
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	Mul4(out[:], m[:], o[:])
	return out
}

// Perspective creates a perspective projection matrix mapping depth into the
// WebGPU clip space range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z0 := eyeX - centerX
	z1 := eyeY - centerY
	z2 := eyeZ - centerZ
	val := float64(z0*z0 + z1*z1 + z2*z2)
	if val == 0 {
		val = 1
	}
	invLen := 1.0 / float32(math.Sqrt(val))
	z0 *= invLen
	z1 *= invLen
	z2 *= invLen

	x0 := upY*z2 - upZ*z1
	x1 := upZ*z0 - upX*z2
	x2 := upX*z1 - upY*z0
	val = float64(x0*x0 + x1*x1 + x2*x2)
	if val == 0 {
		val = 1
	}
	invLen = 1.0 / float32(math.Sqrt(val))
	x0 *= invLen
	x1 *= invLen
	x2 *= invLen

	y0 := z1*x2 - z2*x1
	y1 := z2*x0 - z0*x2
	y2 := z0*x1 - z1*x0

	out[0], out[4], out[8], out[12] = x0, x1, x2, -(x0*eyeX + x1*eyeY + x2*eyeZ)
	out[1], out[5], out[9], out[13] = y0, y1, y2, -(y0*eyeX + y1*eyeY + y2*eyeZ)
	out[2], out[6], out[10], out[14] = z0, z1, z2, -(z0*eyeX + z1*eyeY + z2*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// RotationXYZ builds a rotation matrix applying the X rotation first, then Y, then Z
// (out = Rz * Ry * Rx). Angles are in radians.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z: rotation angles around each axis
func RotationXYZ(out []float32, x, y, z float32) {
	cx, sx := float32(math.Cos(float64(x))), float32(math.Sin(float64(x)))
	cy, sy := float32(math.Cos(float64(y))), float32(math.Sin(float64(y)))
	cz, sz := float32(math.Cos(float64(z))), float32(math.Sin(float64(z)))

	out[0] = cy * cz
	out[1] = cy * sz
	out[2] = -sy
	out[3] = 0

	out[4] = sx*sy*cz - cx*sz
	out[5] = sx*sy*sz + cx*cz
	out[6] = sx * cy
	out[7] = 0

	out[8] = cx*sy*cz + sx*sz
	out[9] = cx*sy*sz - sx*cz
	out[10] = cx * cy
	out[11] = 0

	out[12], out[13], out[14], out[15] = 0, 0, 0, 1
}

// Marshal serializes the matrix into 64 little-endian bytes, column by column.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (m Mat4) Marshal() []byte {
	buf := make([]byte, Mat4Size)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m[i]))
	}
	return buf
}

// UnmarshalMat4 reads a matrix written by Mat4.Marshal.
//
// Parameters:
//   - buf: at least 64 bytes
//
// Returns:
//   - Mat4: the decoded matrix
func UnmarshalMat4(buf []byte) Mat4 {
	var m Mat4
	for i := range 16 {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return m
}

// PutVec3 writes three little-endian float32 values at offset.
func PutVec3(buf []byte, offset int, v [3]float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[offset+4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[offset+8:], math.Float32bits(v[2]))
}

// Vec3At reads three little-endian float32 values starting at offset.
func Vec3At(buf []byte, offset int) [3]float32 {
	return [3]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+8:])),
	}
}

// Normalize3 returns v scaled to unit length, or the zero vector when v has zero length.
func Normalize3(v [3]float32) [3]float32 {
	length := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if length == 0 {
		return [3]float32{}
	}
	inv := 1 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}
