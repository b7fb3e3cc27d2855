package bind_group_provider

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label prefixed to every object the provider creates.
	label string

	// The following fields are GPU allocated resources owned by the provider until Release.

	bindGroup       renderer.Resource
	bindGroupLayout renderer.Resource
	// buffers holds one uniform buffer per binding index.
	buffers map[int]renderer.Resource
	// sizes holds the byte size of each buffer in buffers.
	sizes map[int]uint64
	// initial holds per-binding initial contents applied by InitBuffers; bindings without
	// an entry start zeroed.
	initial map[int][]byte

	vertexBuffer renderer.Resource
	indexBuffer  renderer.Resource
	indexCount   int
}

// BindGroupProvider owns one bind group (group 0) with a uniform buffer per binding, plus the
// vertex and index buffers drawn with it. Everything it creates is released by Release.
//
// Usage pattern:
//  1. Create a provider with NewBindGroupProvider, optionally staging initial binding contents
//  2. Optionally create some uniform buffers early with InitBuffers, InitMeshBuffers for the
//     geometry, then InitBindGroup with every layout entry
//  3. Each frame, EncodeWrites copies new uniform contents into the provider's buffers
//  4. Bind BindGroup(), VertexBuffer() and IndexBuffer() in a render pass
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider. Safe to call more than once.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// InitBuffers creates a zeroed or pre-filled uniform buffer, sized by MinBindingSize, for
	// each entry that has none yet. Buffers created before a failure stay owned by the
	// provider until Release.
	//
	// Parameters:
	//   - dev: the device to create on
	//   - entries: the layout entries whose buffers to create, in creation order
	//
	// Returns:
	//   - error: an error if a buffer cannot be created
	InitBuffers(dev renderer.Device, entries []wgpu.BindGroupLayoutEntry) error

	// InitBindGroup creates any uniform buffers InitBuffers has not, then the bind group layout
	// and the bind group. Entries are laid out in the order given. On failure every uniform
	// resource is released.
	//
	// Parameters:
	//   - dev: the device to create on
	//   - entries: the layout entries
	//
	// Returns:
	//   - error: an error if any creation fails
	InitBindGroup(dev renderer.Device, entries []wgpu.BindGroupLayoutEntry) error

	// InitMeshBuffers creates the vertex and index buffers from raw bytes.
	//
	// Parameters:
	//   - dev: the device to create on
	//   - vertexData: marshaled vertices
	//   - indexData: marshaled indices
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(dev renderer.Device, vertexData, indexData []byte, indexCount int) error

	// BindGroup returns the created bind group, or nil before InitBindGroup.
	//
	// Returns:
	//   - renderer.Resource: the bind group or nil
	BindGroup() renderer.Resource

	// BindGroupLayout returns the created bind group layout, or nil before InitBindGroup.
	//
	// Returns:
	//   - renderer.Resource: the bind group layout or nil
	BindGroupLayout() renderer.Resource

	// Buffer returns the uniform buffer at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - renderer.Resource: the buffer or nil
	Buffer(binding int) renderer.Resource

	// BufferSize returns the byte size of the uniform buffer at binding, or 0.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the buffer size
	BufferSize(binding int) uint64

	// VertexBuffer returns the vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - renderer.Resource: the vertex buffer or nil
	VertexBuffer() renderer.Resource

	// IndexBuffer returns the index buffer, or nil if not initialized.
	//
	// Returns:
	//   - renderer.Resource: the index buffer or nil
	IndexBuffer() renderer.Resource

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]renderer.Resource),
		sizes:   make(map[int]uint64),
		initial: make(map[int][]byte),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) InitBuffers(dev renderer.Device, entries []wgpu.BindGroupLayoutEntry) error {
	for _, e := range entries {
		binding := int(e.Binding)
		if p.buffers[binding] != nil {
			continue
		}

		size := e.Buffer.MinBindingSize
		desc := &renderer.BufferDescriptor{
			Label: fmt.Sprintf("%s binding %d", p.label, binding),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			Size:  size,
		}
		if data, ok := p.initial[binding]; ok && len(data) > 0 {
			desc.Contents = data
			size = uint64(len(data))
		}

		buf, err := dev.CreateBuffer(desc)
		if err != nil {
			return fmt.Errorf("binding %d buffer: %w", binding, err)
		}
		p.buffers[binding] = buf
		p.sizes[binding] = size
	}
	return nil
}

func (p *bindGroupProvider) InitBindGroup(dev renderer.Device, entries []wgpu.BindGroupLayoutEntry) (err error) {
	defer func() {
		if err != nil {
			p.releaseBindGroup()
		}
	}()

	if err = p.InitBuffers(dev, entries); err != nil {
		return err
	}

	layout, err := dev.CreateBindGroupLayout(p.label+" bind group layout", entries)
	if err != nil {
		return fmt.Errorf("bind group layout: %w", err)
	}
	p.bindGroupLayout = layout

	groupEntries := make([]renderer.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		binding := int(e.Binding)
		groupEntries = append(groupEntries, renderer.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  p.buffers[binding],
			Size:    p.sizes[binding],
		})
	}

	group, err := dev.CreateBindGroup(p.label+" bind group", p.bindGroupLayout, groupEntries)
	if err != nil {
		return fmt.Errorf("bind group: %w", err)
	}
	p.bindGroup = group
	return nil
}

func (p *bindGroupProvider) InitMeshBuffers(dev renderer.Device, vertexData, indexData []byte, indexCount int) error {
	vb, err := dev.CreateBuffer(&renderer.BufferDescriptor{
		Label:    p.label + " vertex buffer",
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		Size:     uint64(len(vertexData)),
		Contents: vertexData,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}

	ib, err := dev.CreateBuffer(&renderer.BufferDescriptor{
		Label:    p.label + " index buffer",
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		Size:     uint64(len(indexData)),
		Contents: indexData,
	})
	if err != nil {
		vb.Release()
		return fmt.Errorf("index buffer: %w", err)
	}

	p.vertexBuffer = vb
	p.indexBuffer = ib
	p.indexCount = indexCount
	return nil
}

func (p *bindGroupProvider) BindGroup() renderer.Resource {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() renderer.Resource {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) renderer.Resource {
	return p.buffers[binding]
}

func (p *bindGroupProvider) BufferSize(binding int) uint64 {
	return p.sizes[binding]
}

func (p *bindGroupProvider) VertexBuffer() renderer.Resource {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() renderer.Resource {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) Release() {
	p.releaseBindGroup()

	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}

// releaseBindGroup releases the bind group before the buffers and layout it references.
func (p *bindGroupProvider) releaseBindGroup() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}

	bindings := make([]int, 0, len(p.buffers))
	for b := range p.buffers {
		bindings = append(bindings, b)
	}
	sort.Ints(bindings)
	for _, b := range bindings {
		if buf := p.buffers[b]; buf != nil {
			buf.Release()
		}
		delete(p.buffers, b)
		delete(p.sizes, b)
	}

	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
