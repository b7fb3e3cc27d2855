package geometry

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Geometry() ([]Vertex, []uint16) {
	p.calls++
	return []Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint16{0, 1, 2}
}

func TestVertexSize(t *testing.T) {
	var v Vertex
	assert.Equal(t, 36, VertexSize)
	assert.Equal(t, VertexSize, v.Size())
	assert.Len(t, v.Marshal(), VertexSize)
}

func TestVertexRoundTrip(t *testing.T) {
	cases := []Vertex{
		{},
		{
			Position: [3]float32{1, -2, 3.5},
			Normal:   [3]float32{0, 0.70710677, -0.70710677},
			Colour:   [3]float32{0.1, 0.2, 0.3},
		},
		{
			Position: [3]float32{-1e30, 1e-30, 42},
			Normal:   [3]float32{1, 0, 0},
			Colour:   [3]float32{1, 1, 1},
		},
	}
	for _, c := range cases {
		assert.Equal(t, c, UnmarshalVertex(c.Marshal()))
	}
}

func TestVertexLayoutOffsets(t *testing.T) {
	v := Vertex{
		Position: [3]float32{1, 1, 1},
		Normal:   [3]float32{2, 2, 2},
		Colour:   [3]float32{3, 3, 3},
	}
	buf := v.Marshal()
	// 1.0, 2.0 and 3.0 as little-endian float32
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[0:4])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, buf[12:16])
	assert.Equal(t, []byte{0x00, 0x00, 0x40, 0x40}, buf[24:28])
}

func TestMarshalVertices(t *testing.T) {
	vs := []Vertex{{Position: [3]float32{1, 2, 3}}, {Colour: [3]float32{4, 5, 6}}}
	buf := MarshalVertices(vs)
	require.Len(t, buf, 2*VertexSize)
	assert.Equal(t, vs[0], UnmarshalVertex(buf))
	assert.Equal(t, vs[1], UnmarshalVertex(buf[VertexSize:]))
}

func TestMarshalIndicesPads(t *testing.T) {
	buf := MarshalIndices([]uint16{1, 2, 0x0102})
	assert.Equal(t, []byte{1, 0, 2, 0, 2, 1, 0, 0}, buf)
	assert.Len(t, MarshalIndices([]uint16{1, 2}), 4)
	assert.Empty(t, MarshalIndices(nil))
}

func TestVertexBufferLayout(t *testing.T) {
	layout := VertexBufferLayout()
	assert.Equal(t, uint64(VertexSize), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 3)
	for i, off := range []uint64{0, 12, 24} {
		assert.Equal(t, off, layout.Attributes[i].Offset)
		assert.Equal(t, uint32(i), layout.Attributes[i].ShaderLocation)
		assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[i].Format)
	}
}

func TestCachedCopiesInputs(t *testing.T) {
	vs := []Vertex{{Position: [3]float32{1, 0, 0}}}
	is := []uint16{0, 0, 0}
	c := NewCached(vs, is)

	vs[0].Position[0] = 9
	is[0] = 5

	gotV, gotI := c.Geometry()
	assert.Equal(t, float32(1), gotV[0].Position[0])
	assert.Equal(t, uint16(0), gotI[0])
}

func TestCachedIdempotent(t *testing.T) {
	c := NewCached([]Vertex{{Normal: [3]float32{0, 0, 1}}}, []uint16{0, 0, 0})
	v1, i1 := c.Geometry()
	v1[0].Normal[2] = -1
	i1[0] = 7
	v2, i2 := c.Geometry()
	v3, i3 := c.Geometry()
	assert.Equal(t, v2, v3)
	assert.Equal(t, i2, i3)
	assert.Equal(t, float32(1), v2[0].Normal[2])
	assert.Equal(t, uint16(0), i2[0])
	assert.Equal(t, 1, c.VertexCount())
	assert.Equal(t, 3, c.IndexCount())
}

func TestCachedEmpty(t *testing.T) {
	c := NewCached(nil, nil)
	v, i := c.Geometry()
	assert.NotNil(t, v)
	assert.NotNil(t, i)
	assert.Empty(t, v)
	assert.Empty(t, i)
}

func TestCaptureEvaluatesOnce(t *testing.T) {
	p := &countingProvider{}
	c := Capture(p)
	c.Geometry()
	c.Geometry()
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 3, c.VertexCount())
}

func TestValidate(t *testing.T) {
	tri := []Vertex{{}, {}, {}}
	assert.NoError(t, Validate(tri, []uint16{0, 1, 2}))
	assert.NoError(t, Validate(nil, nil))
	assert.ErrorIs(t, Validate(tri, []uint16{0, 1}), ErrIncompleteTriangle)
	assert.ErrorIs(t, Validate(tri, []uint16{0, 1, 3}), ErrIndexOutOfRange)
	assert.ErrorIs(t, Validate(make([]Vertex, MaxVertices+1), nil), ErrTooManyVertices)
}
