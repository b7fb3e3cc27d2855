package light

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/shower/common"
)

// GPULightSize is the size in bytes of a marshaled GPULight.
const GPULightSize = 32

// GPULightCountSize is the size in bytes of a marshaled GPULightCount.
const GPULightCountSize = 4

// GPULightSource is the WGSL definition of the Light struct.
// Matches GPULight layout exactly (32 bytes, uniform aligned).
const GPULightSource = `struct Light {
    position: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    _pad: f32,
}`

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 32 bytes.
type GPULight struct {
	Position  [3]float32 // offset  0: world-space position
	Intensity float32    // offset 12: scalar multiplier
	Color     [3]float32 // offset 16: RGB color
	_pad      float32    // offset 28: padding to 32-byte stride
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULight) Size() int {
	return GPULightSize
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo writes the GPULight into the first 32 bytes of buf.
// The padding word is always written as zero.
//
// Parameters:
//   - buf: destination slice (must be at least 32 bytes)
func (g *GPULight) MarshalTo(buf []byte) {
	common.PutVec3(buf, 0, g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Intensity))
	common.PutVec3(buf, 16, g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], 0) // padding
}

// UnmarshalGPULight reads a GPULight written by Marshal.
//
// Parameters:
//   - buf: at least 32 bytes
//
// Returns:
//   - GPULight: the decoded light
func UnmarshalGPULight(buf []byte) GPULight {
	return GPULight{
		Position:  common.Vec3At(buf, 0),
		Intensity: math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		Color:     common.Vec3At(buf, 16),
	}
}

// GPULightCount is the uniform holding the number of lights retained by a scene.
// Size: 4 bytes.
type GPULightCount struct {
	Count uint32
}

// Size returns the size of the GPULightCount struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (4)
func (c *GPULightCount) Size() int {
	return GPULightCountSize
}

// Marshal serializes the light count into a 4-byte little-endian buffer.
//
// Returns:
//   - []byte: 4-byte buffer ready for GPU upload
func (c *GPULightCount) Marshal() []byte {
	buf := make([]byte, GPULightCountSize)
	binary.LittleEndian.PutUint32(buf, c.Count)
	return buf
}

// MarshalLightBuffer packs raw lights into a fixed-capacity buffer of capacity slots.
// Each light is written at slot index*32 in order; slots past len(lights) are zero.
// Lights beyond capacity are ignored.
//
// Parameters:
//   - lights: the raw lights to pack
//   - capacity: the number of slots in the buffer
//
// Returns:
//   - []byte: a buffer of exactly capacity*32 bytes
func MarshalLightBuffer(lights []GPULight, capacity int) []byte {
	buf := make([]byte, capacity*GPULightSize)
	for i := range lights {
		if i >= capacity {
			break
		}
		lights[i].MarshalTo(buf[i*GPULightSize:])
	}
	return buf
}
