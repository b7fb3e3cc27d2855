package geometry

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// VertexSize is the size in bytes of one marshaled Vertex and the stride of the vertex buffer.
const VertexSize = 36

// IndexSize is the size in bytes of one index in the index buffer.
const IndexSize = 2

// Vertex is a single mesh vertex as consumed by the scene pipeline.
// Matches the vertex shader inputs at locations 0, 1 and 2.
// Size: 36 bytes, no padding.
type Vertex struct {
	Position [3]float32 // offset  0: model-space position
	Normal   [3]float32 // offset 12: surface normal for lighting
	Colour   [3]float32 // offset 24: RGB colour
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (36)
func (v *Vertex) Size() int {
	return VertexSize
}

// Marshal serializes the Vertex into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 36-byte buffer ready for GPU upload
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.MarshalTo(buf)
	return buf
}

// MarshalTo writes the Vertex into the first 36 bytes of buf.
func (v *Vertex) MarshalTo(buf []byte) {
	common.PutVec3(buf, 0, v.Position)
	common.PutVec3(buf, 12, v.Normal)
	common.PutVec3(buf, 24, v.Colour)
}

// UnmarshalVertex reads a Vertex written by Marshal.
//
// Parameters:
//   - buf: at least 36 bytes
//
// Returns:
//   - Vertex: the decoded vertex
func UnmarshalVertex(buf []byte) Vertex {
	return Vertex{
		Position: common.Vec3At(buf, 0),
		Normal:   common.Vec3At(buf, 12),
		Colour:   common.Vec3At(buf, 24),
	}
}

// MarshalVertices packs vertices back to back with a 36-byte stride.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices)*36 bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i := range vertices {
		vertices[i].MarshalTo(buf[i*VertexSize:])
	}
	return buf
}

// MarshalIndices packs 16-bit indices little-endian and zero-pads the result
// to a multiple of 4 bytes, the copy alignment WebGPU requires for buffer contents.
//
// Parameters:
//   - indices: the indices to pack
//
// Returns:
//   - []byte: the packed index data
func MarshalIndices(indices []uint16) []byte {
	buf := make([]byte, len(indices)*IndexSize)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*IndexSize:], idx)
	}
	return common.PadTo4(buf)
}

// VertexBufferLayout describes the vertex buffer for the render pipeline:
// stride 36, locations 0/1/2 as Float32x3 at offsets 0/12/24.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for vertex buffer slot 0
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 24, ShaderLocation: 2},
		},
	}
}
