package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrForeignResource is returned when a Resource handed to a Device was not created by it.
var ErrForeignResource = errors.New("renderer: resource does not belong to this device")

// ErrNilResource is returned when the device reports success but hands back no object.
var ErrNilResource = errors.New("renderer: device returned a nil resource")

// Resource is any GPU handle that must be released explicitly: buffers, shader modules,
// layouts, bind groups, pipelines, texture views and command buffers.
type Resource interface {
	Release()
}

// BufferDescriptor describes a buffer to create. When Contents is non-empty the buffer is
// created initialized with it and Size is ignored; otherwise a zeroed buffer of Size bytes is created.
type BufferDescriptor struct {
	Label    string
	Usage    wgpu.BufferUsage
	Size     uint64
	Contents []byte
}

// BindGroupEntry binds a whole buffer (Size bytes from offset 0) at Binding.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Resource
	Size    uint64
}

// RenderPipelineDescriptor is the device-independent description of a render pipeline.
type RenderPipelineDescriptor struct {
	Label              string
	Layout             Resource
	VertexModule       Resource
	VertexEntryPoint   string
	FragmentModule     Resource
	FragmentEntryPoint string
	VertexBuffers      []wgpu.VertexBufferLayout
	Primitive          wgpu.PrimitiveState
	ColorTargets       []wgpu.ColorTargetState
	Multisample        wgpu.MultisampleState
	DepthStencil       *wgpu.DepthStencilState
}

// RenderPassDescriptor describes a single-color-attachment pass that clears Target to ClearValue.
type RenderPassDescriptor struct {
	Label      string
	Target     Resource
	ClearValue wgpu.Color
}

// Device is the subset of a GPU device the scene pipeline needs. It is handed to scenes by the
// presentation layer and is never owned by them.
type Device interface {
	// CreateShaderModule creates a shader module from SPIR-V words.
	//
	// Parameters:
	//   - label: debug label
	//   - spirv: validated SPIR-V words
	//
	// Returns:
	//   - Resource: the shader module
	//   - error: an error if the device rejects the module
	CreateShaderModule(label string, spirv []uint32) (Resource, error)

	// CreateBuffer creates a buffer, initialized from desc.Contents when present.
	//
	// Parameters:
	//   - desc: the buffer description
	//
	// Returns:
	//   - Resource: the buffer
	//   - error: an error if allocation fails
	CreateBuffer(desc *BufferDescriptor) (Resource, error)

	// CreateBindGroupLayout creates a bind group layout from entries in the given order.
	//
	// Parameters:
	//   - label: debug label
	//   - entries: layout entries
	//
	// Returns:
	//   - Resource: the layout
	//   - error: an error if the layout is invalid
	CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (Resource, error)

	// CreateBindGroup creates a bind group for layout.
	//
	// Parameters:
	//   - label: debug label
	//   - layout: a layout created by CreateBindGroupLayout
	//   - entries: buffer bindings
	//
	// Returns:
	//   - Resource: the bind group
	//   - error: an error if an entry does not match the layout
	CreateBindGroup(label string, layout Resource, entries []BindGroupEntry) (Resource, error)

	// CreatePipelineLayout creates a pipeline layout from bind group layouts, group 0 first.
	//
	// Parameters:
	//   - label: debug label
	//   - layouts: bind group layouts
	//
	// Returns:
	//   - Resource: the pipeline layout
	//   - error: an error if creation fails
	CreatePipelineLayout(label string, layouts ...Resource) (Resource, error)

	// CreateRenderPipeline creates a render pipeline.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - Resource: the pipeline
	//   - error: an error if the pipeline is invalid
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (Resource, error)

	// CreateCommandEncoder starts recording a command buffer.
	//
	// Parameters:
	//   - label: debug label
	//
	// Returns:
	//   - CommandEncoder: the encoder
	//   - error: an error if the device is lost
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit submits finished command buffers to the device queue in order.
	//
	// Parameters:
	//   - commands: command buffers returned by CommandEncoder.Finish
	Submit(commands ...Resource)
}

// CommandEncoder records copies and render passes into one command buffer.
type CommandEncoder interface {
	// CopyBufferToBuffer records a copy of size bytes between buffers.
	CopyBufferToBuffer(src Resource, srcOffset uint64, dst Resource, dstOffset uint64, size uint64) error

	// BeginRenderPass starts a render pass; the pass must be ended before Finish.
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)

	// Finish ends recording and returns the command buffer.
	Finish(label string) (Resource, error)

	Release()
}

// RenderPass records draw state and draw calls. Invalid arguments are reported by End.
type RenderPass interface {
	SetPipeline(pipeline Resource)
	SetBindGroup(index uint32, group Resource)
	SetIndexBuffer(buffer Resource, format wgpu.IndexFormat)
	SetVertexBuffer(slot uint32, buffer Resource)
	DrawIndexed(indexCount, instanceCount uint32)
	End() error
}
