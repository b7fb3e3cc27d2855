// Package renderertest provides a recording renderer.Device for tests that exercise GPU
// resource lifecycles without a GPU.
package renderertest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is a fake GPU object. Every Create* call on Device returns a *Handle (or *Buffer).
type Handle struct {
	Kind     string
	Label    string
	Released int

	// LayoutEntries is set for bind group layouts.
	LayoutEntries []wgpu.BindGroupLayoutEntry
	// GroupEntries and Layout are set for bind groups.
	GroupEntries []renderer.BindGroupEntry
	Layout       renderer.Resource
	// Pipeline is set for render pipelines.
	Pipeline *renderer.RenderPipelineDescriptor
	// Words is set for shader modules.
	Words []uint32
}

func (h *Handle) Release() {
	h.Released++
}

// Buffer is a fake GPU buffer that remembers its creation parameters.
type Buffer struct {
	Handle
	Usage    wgpu.BufferUsage
	Size     uint64
	Contents []byte
}

// Copy is a recorded CopyBufferToBuffer.
type Copy struct {
	Src, Dst             renderer.Resource
	SrcOffset, DstOffset uint64
	Size                 uint64
}

// Draw is a recorded DrawIndexed.
type Draw struct {
	IndexCount, InstanceCount uint32
}

// Pass is a recorded render pass.
type Pass struct {
	Descriptor   renderer.RenderPassDescriptor
	Pipeline     renderer.Resource
	BindGroups   map[uint32]renderer.Resource
	IndexBuffer  renderer.Resource
	IndexFormat  wgpu.IndexFormat
	VertexBuffer map[uint32]renderer.Resource
	Draws        []Draw
	Ended        bool

	dev *Device
}

func (p *Pass) SetPipeline(pipeline renderer.Resource) {
	p.dev.op("set-pipeline")
	p.Pipeline = pipeline
}

func (p *Pass) SetBindGroup(index uint32, group renderer.Resource) {
	p.dev.op(fmt.Sprintf("set-bind-group:%d", index))
	p.BindGroups[index] = group
}

func (p *Pass) SetIndexBuffer(buffer renderer.Resource, format wgpu.IndexFormat) {
	p.dev.op("set-index-buffer")
	p.IndexBuffer = buffer
	p.IndexFormat = format
}

func (p *Pass) SetVertexBuffer(slot uint32, buffer renderer.Resource) {
	p.dev.op(fmt.Sprintf("set-vertex-buffer:%d", slot))
	p.VertexBuffer[slot] = buffer
}

func (p *Pass) DrawIndexed(indexCount, instanceCount uint32) {
	p.dev.op("draw")
	p.Draws = append(p.Draws, Draw{indexCount, instanceCount})
}

func (p *Pass) End() error {
	p.dev.op("end-pass")
	p.Ended = true
	return p.dev.failure("End")
}

// Encoder is a recorded command encoder.
type Encoder struct {
	Handle
	Copies   []Copy
	Passes   []*Pass
	Finished bool

	dev *Device
}

func (e *Encoder) CopyBufferToBuffer(src renderer.Resource, srcOffset uint64, dst renderer.Resource, dstOffset uint64, size uint64) error {
	if err := e.dev.failure("CopyBufferToBuffer"); err != nil {
		return err
	}
	e.dev.op("copy")
	e.Copies = append(e.Copies, Copy{Src: src, Dst: dst, SrcOffset: srcOffset, DstOffset: dstOffset, Size: size})
	return nil
}

func (e *Encoder) BeginRenderPass(desc *renderer.RenderPassDescriptor) (renderer.RenderPass, error) {
	if err := e.dev.failure("BeginRenderPass"); err != nil {
		return nil, err
	}
	e.dev.op("begin-pass")
	p := &Pass{
		Descriptor:   *desc,
		BindGroups:   make(map[uint32]renderer.Resource),
		VertexBuffer: make(map[uint32]renderer.Resource),
		dev:          e.dev,
	}
	e.Passes = append(e.Passes, p)
	return p, nil
}

func (e *Encoder) Finish(label string) (renderer.Resource, error) {
	if err := e.dev.failure("Finish"); err != nil {
		return failed, err
	}
	e.dev.op("finish")
	e.Finished = true
	return e.dev.track(&Handle{Kind: "command-buffer", Label: label}), nil
}

// Device is a renderer.Device that records every call. Set Fail to make a named method
// return an error, e.g. Fail["CreateRenderPipeline"].
type Device struct {
	mu sync.Mutex

	Fail map[string]error

	// Ops is the ordered log of encoder and pass operations across all frames.
	Ops []string
	// Created is the ordered log of created objects as "kind label".
	Created []string

	Handles   []*Handle
	Buffers   []*Buffer
	Encoders  []*Encoder
	Submitted [][]renderer.Resource
}

var _ renderer.Device = &Device{}

// failed is what a failing Create* call returns: a nil handle inside a non-nil Resource,
// as the wgpu bindings do. Callers must check the error before keeping the result.
var failed renderer.Resource = (*Handle)(nil)

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{Fail: make(map[string]error)}
}

func (d *Device) op(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Ops = append(d.Ops, name)
}

func (d *Device) failure(method string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Fail[method]
}

func (d *Device) track(h *Handle) *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Handles = append(d.Handles, h)
	d.Created = append(d.Created, h.Kind+" "+h.Label)
	return h
}

func (d *Device) CreateShaderModule(label string, spirv []uint32) (renderer.Resource, error) {
	if err := d.failure("CreateShaderModule"); err != nil {
		return failed, err
	}
	return d.track(&Handle{Kind: "shader-module", Label: label, Words: append([]uint32(nil), spirv...)}), nil
}

func (d *Device) CreateBuffer(desc *renderer.BufferDescriptor) (renderer.Resource, error) {
	if err := d.failure("CreateBuffer"); err != nil {
		return (*Buffer)(nil), err
	}
	b := &Buffer{
		Handle:   Handle{Kind: "buffer", Label: desc.Label},
		Usage:    desc.Usage,
		Size:     desc.Size,
		Contents: append([]byte(nil), desc.Contents...),
	}
	if len(desc.Contents) > 0 {
		b.Size = uint64(len(desc.Contents))
	}
	d.mu.Lock()
	d.Buffers = append(d.Buffers, b)
	d.Created = append(d.Created, b.Kind+" "+b.Label)
	d.mu.Unlock()
	return b, nil
}

func (d *Device) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (renderer.Resource, error) {
	if err := d.failure("CreateBindGroupLayout"); err != nil {
		return failed, err
	}
	return d.track(&Handle{Kind: "bind-group-layout", Label: label, LayoutEntries: append([]wgpu.BindGroupLayoutEntry(nil), entries...)}), nil
}

func (d *Device) CreateBindGroup(label string, layout renderer.Resource, entries []renderer.BindGroupEntry) (renderer.Resource, error) {
	if err := d.failure("CreateBindGroup"); err != nil {
		return failed, err
	}
	return d.track(&Handle{Kind: "bind-group", Label: label, Layout: layout, GroupEntries: append([]renderer.BindGroupEntry(nil), entries...)}), nil
}

func (d *Device) CreatePipelineLayout(label string, layouts ...renderer.Resource) (renderer.Resource, error) {
	if err := d.failure("CreatePipelineLayout"); err != nil {
		return failed, err
	}
	return d.track(&Handle{Kind: "pipeline-layout", Label: label}), nil
}

func (d *Device) CreateRenderPipeline(desc *renderer.RenderPipelineDescriptor) (renderer.Resource, error) {
	if err := d.failure("CreateRenderPipeline"); err != nil {
		return failed, err
	}
	cp := *desc
	return d.track(&Handle{Kind: "render-pipeline", Label: desc.Label, Pipeline: &cp}), nil
}

func (d *Device) CreateCommandEncoder(label string) (renderer.CommandEncoder, error) {
	if err := d.failure("CreateCommandEncoder"); err != nil {
		return (*Encoder)(nil), err
	}
	e := &Encoder{Handle: Handle{Kind: "command-encoder", Label: label}, dev: d}
	d.mu.Lock()
	d.Encoders = append(d.Encoders, e)
	d.mu.Unlock()
	return e, nil
}

func (d *Device) Submit(commands ...renderer.Resource) {
	d.op("submit")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Submitted = append(d.Submitted, commands)
}

// Kind returns every handle of the given kind in creation order.
func (d *Device) Kind(kind string) []*Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Handle
	for _, h := range d.Handles {
		if h.Kind == kind {
			out = append(out, h)
		}
	}
	return out
}

// Buffer returns the most recently created buffer with the given label, or nil.
func (d *Device) Buffer(label string) *Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.Buffers) - 1; i >= 0; i-- {
		if d.Buffers[i].Label == label {
			return d.Buffers[i]
		}
	}
	return nil
}

// Unreleased returns the labels of every handle and buffer that was never released.
func (d *Device) Unreleased() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, h := range d.Handles {
		if h.Released == 0 {
			out = append(out, h.Kind+":"+h.Label)
		}
	}
	for _, b := range d.Buffers {
		if b.Released == 0 {
			out = append(out, b.Kind+":"+b.Label)
		}
	}
	return out
}

// OverReleased returns the labels of every handle released more than once.
func (d *Device) OverReleased() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, h := range d.Handles {
		if h.Released > 1 {
			out = append(out, h.Kind+":"+h.Label)
		}
	}
	for _, b := range d.Buffers {
		if b.Released > 1 {
			out = append(out, b.Kind+":"+b.Label)
		}
	}
	for _, e := range d.Encoders {
		if e.Released > 1 {
			out = append(out, e.Kind+":"+e.Label)
		}
	}
	return out
}
