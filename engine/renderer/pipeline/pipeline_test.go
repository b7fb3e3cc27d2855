package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/shower/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/shower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("scene")
	assert.Equal(t, "scene", p.PipelineKey())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.IndexFormatUint16, p.IndexFormat())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Equal(t, ReplaceBlend, p.BlendState())
	assert.Nil(t, p.Pipeline())
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("scene",
		WithCullMode(wgpu.CullModeNone),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithFrontFace(wgpu.FrontFaceCCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
	)
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())

	desc := p.Descriptor(nil, nil, nil, wgpu.VertexBufferLayout{}, wgpu.TextureFormatRGBA8Unorm)
	assert.Equal(t, wgpu.IndexFormatUint16, desc.Primitive.StripIndexFormat)
}

func TestDescriptor(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 36}
	desc := NewPipeline("scene").Descriptor(nil, nil, nil, layout, wgpu.TextureFormatBGRA8Unorm)

	assert.Equal(t, shader.EntryPoint, desc.VertexEntryPoint)
	assert.Equal(t, shader.EntryPoint, desc.FragmentEntryPoint)
	assert.Equal(t, []wgpu.VertexBufferLayout{layout}, desc.VertexBuffers)
	assert.Equal(t, wgpu.IndexFormatUndefined, desc.Primitive.StripIndexFormat)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Nil(t, desc.DepthStencil)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.False(t, desc.Multisample.AlphaToCoverageEnabled)

	require.Len(t, desc.ColorTargets, 1)
	target := desc.ColorTargets[0]
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, target.Format)
	assert.Equal(t, wgpu.ColorWriteMaskAll, target.WriteMask)
	require.NotNil(t, target.Blend)
	assert.Equal(t, ReplaceBlend, *target.Blend)
}

func TestCreateAndRelease(t *testing.T) {
	dev := renderertest.NewDevice()
	p := NewPipeline("scene")

	require.NoError(t, p.Create(dev, nil, nil, nil, wgpu.VertexBufferLayout{}, wgpu.TextureFormatBGRA8Unorm))
	require.NotNil(t, p.Pipeline())
	require.Len(t, dev.Kind("render-pipeline"), 1)
	require.Len(t, dev.Kind("pipeline-layout"), 1)

	p.Release()
	p.Release()
	assert.Nil(t, p.Pipeline())
	assert.Empty(t, dev.Unreleased())
	assert.Empty(t, dev.OverReleased())
}

func TestCreateFailureReleasesLayout(t *testing.T) {
	dev := renderertest.NewDevice()
	boom := errors.New("boom")
	dev.Fail["CreateRenderPipeline"] = boom

	p := NewPipeline("scene")
	err := p.Create(dev, nil, nil, nil, wgpu.VertexBufferLayout{}, wgpu.TextureFormatBGRA8Unorm)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, p.Pipeline())
	assert.Empty(t, dev.Unreleased())
}
