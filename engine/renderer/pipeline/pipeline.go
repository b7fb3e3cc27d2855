package pipeline

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/Carmen-Shannon/shower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ReplaceBlend writes source color and alpha over the destination unchanged.
var ReplaceBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

// pipeline is the implementation of the Pipeline interface.
// It holds the raster state used to build a render pipeline and, once created, the pipeline handle.
type pipeline struct {
	// pipelineKey is used as the debug label of every object the pipeline creates
	pipelineKey string

	renderPipeline renderer.Resource
	layout         renderer.Resource

	cullMode    wgpu.CullMode
	topology    wgpu.PrimitiveTopology
	frontFace   wgpu.FrontFace
	indexFormat wgpu.IndexFormat
	writeMask   wgpu.ColorWriteMask
	blendState  wgpu.BlendState
	sampleCount uint32
}

// Pipeline describes and owns one render pipeline: a vertex and fragment module, the raster
// state, and a single color target. There is no depth or stencil attachment.
type Pipeline interface {
	// PipelineKey returns the key used to label GPU objects created for this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order
	FrontFace() wgpu.FrontFace

	// IndexFormat returns the format of index buffers drawn with this pipeline.
	//
	// Returns:
	//   - wgpu.IndexFormat: the index format
	IndexFormat() wgpu.IndexFormat

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state of the color target.
	//
	// Returns:
	//   - wgpu.BlendState: the blend state
	BlendState() wgpu.BlendState

	// Descriptor builds the device-independent pipeline description for the given modules,
	// pipeline layout, vertex layout and color target format.
	//
	// Parameters:
	//   - layout: the pipeline layout
	//   - vertex: the vertex shader module
	//   - fragment: the fragment shader module
	//   - vertexLayout: the layout of vertex buffer slot 0
	//   - format: the color target format, normally the surface format
	//
	// Returns:
	//   - *renderer.RenderPipelineDescriptor: the description
	Descriptor(layout, vertex, fragment renderer.Resource, vertexLayout wgpu.VertexBufferLayout, format wgpu.TextureFormat) *renderer.RenderPipelineDescriptor

	// Create creates the pipeline layout and render pipeline on dev. On success the pipeline owns
	// both handles until Release; on failure nothing is retained.
	//
	// Parameters:
	//   - dev: the device to create on
	//   - bindGroupLayout: the layout of bind group 0
	//   - vertex: the vertex shader module
	//   - fragment: the fragment shader module
	//   - vertexLayout: the layout of vertex buffer slot 0
	//   - format: the color target format
	//
	// Returns:
	//   - error: an error if either creation fails
	Create(dev renderer.Device, bindGroupLayout, vertex, fragment renderer.Resource, vertexLayout wgpu.VertexBufferLayout, format wgpu.TextureFormat) error

	// Pipeline returns the created render pipeline, or nil before Create.
	//
	// Returns:
	//   - renderer.Resource: the render pipeline
	Pipeline() renderer.Resource

	// Release releases the render pipeline and its layout. Safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with triangle-list topology, back-face culling of clockwise
// front faces, 16-bit indices, replace blending, full write mask and a sample count of 1.
//
// Parameters:
//   - pipelineKey: the key used to label created objects
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		cullMode:    wgpu.CullModeBack,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCW,
		indexFormat: wgpu.IndexFormatUint16,
		writeMask:   wgpu.ColorWriteMaskAll,
		blendState:  ReplaceBlend,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) IndexFormat() wgpu.IndexFormat {
	return p.indexFormat
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Pipeline() renderer.Resource {
	return p.renderPipeline
}

func (p *pipeline) Descriptor(layout, vertex, fragment renderer.Resource, vertexLayout wgpu.VertexBufferLayout, format wgpu.TextureFormat) *renderer.RenderPipelineDescriptor {
	// Strip index formats are only valid with strip topologies.
	stripFormat := wgpu.IndexFormatUndefined
	if p.topology == wgpu.PrimitiveTopologyTriangleStrip || p.topology == wgpu.PrimitiveTopologyLineStrip {
		stripFormat = p.indexFormat
	}

	blend := p.blendState
	return &renderer.RenderPipelineDescriptor{
		Label:              p.pipelineKey,
		Layout:             layout,
		VertexModule:       vertex,
		VertexEntryPoint:   shader.EntryPoint,
		FragmentModule:     fragment,
		FragmentEntryPoint: shader.EntryPoint,
		VertexBuffers:      []wgpu.VertexBufferLayout{vertexLayout},
		Primitive: wgpu.PrimitiveState{
			Topology:         p.topology,
			StripIndexFormat: stripFormat,
			FrontFace:        p.frontFace,
			CullMode:         p.cullMode,
		},
		ColorTargets: []wgpu.ColorTargetState{{
			Format:    format,
			Blend:     &blend,
			WriteMask: p.writeMask,
		}},
		Multisample: wgpu.MultisampleState{
			Count:                  p.sampleCount,
			Mask:                   math.MaxUint32,
			AlphaToCoverageEnabled: false,
		},
	}
}

func (p *pipeline) Create(dev renderer.Device, bindGroupLayout, vertex, fragment renderer.Resource, vertexLayout wgpu.VertexBufferLayout, format wgpu.TextureFormat) error {
	layout, err := dev.CreatePipelineLayout(p.pipelineKey+" layout", bindGroupLayout)
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}

	rp, err := dev.CreateRenderPipeline(p.Descriptor(layout, vertex, fragment, vertexLayout, format))
	if err != nil {
		layout.Release()
		return fmt.Errorf("render pipeline: %w", err)
	}

	p.layout = layout
	p.renderPipeline = rp
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}
