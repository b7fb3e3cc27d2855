package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuDevice adapts a *wgpu.Device and its queue to the Device interface.
type wgpuDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ Device = &wgpuDevice{}

// NewDevice wraps a wgpu device and its queue. The caller keeps ownership of both.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the device's queue
//
// Returns:
//   - Device: the wrapped device
func NewDevice(device *wgpu.Device, queue *wgpu.Queue) Device {
	return &wgpuDevice{device: device, queue: queue}
}

func (d *wgpuDevice) CreateShaderModule(label string, spirv []uint32) (Resource, error) {
	return resource(d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:           label,
		SPIRVDescriptor: &wgpu.ShaderModuleSPIRVDescriptor{Code: shader.SPIRVBytes(spirv)},
	}))
}

func (d *wgpuDevice) CreateBuffer(desc *BufferDescriptor) (Resource, error) {
	if len(desc.Contents) > 0 {
		return resource(d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    desc.Label,
			Usage:    desc.Usage,
			Contents: desc.Contents,
		}))
	}
	return resource(d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Usage: desc.Usage,
		Size:  desc.Size,
	}))
}

func (d *wgpuDevice) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (Resource, error) {
	return resource(d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	}))
}

func (d *wgpuDevice) CreateBindGroup(label string, layout Resource, entries []BindGroupEntry) (Resource, error) {
	l, err := as[*wgpu.BindGroupLayout](layout)
	if err != nil {
		return nil, err
	}

	wEntries := make([]wgpu.BindGroupEntry, len(entries))
	for i, e := range entries {
		buf, err := as[*wgpu.Buffer](e.Buffer)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", e.Binding, err)
		}
		wEntries[i] = wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    e.Size,
		}
	}

	return resource(d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  l,
		Entries: wEntries,
	}))
}

func (d *wgpuDevice) CreatePipelineLayout(label string, layouts ...Resource) (Resource, error) {
	wLayouts := make([]*wgpu.BindGroupLayout, len(layouts))
	for i, l := range layouts {
		bgl, err := as[*wgpu.BindGroupLayout](l)
		if err != nil {
			return nil, err
		}
		wLayouts[i] = bgl
	}
	return resource(d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: wLayouts,
	}))
}

func (d *wgpuDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (Resource, error) {
	layout, err := as[*wgpu.PipelineLayout](desc.Layout)
	if err != nil {
		return nil, err
	}
	vs, err := as[*wgpu.ShaderModule](desc.VertexModule)
	if err != nil {
		return nil, err
	}
	fs, err := as[*wgpu.ShaderModule](desc.FragmentModule)
	if err != nil {
		return nil, err
	}

	return resource(d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.FragmentEntryPoint,
			Targets:    desc.ColorTargets,
		},
		Primitive:    desc.Primitive,
		DepthStencil: desc.DepthStencil,
		Multisample:  desc.Multisample,
	}))
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %T", ErrNilResource, enc)
	}
	return &wgpuCommandEncoder{encoder: enc}, nil
}

func (d *wgpuDevice) Submit(commands ...Resource) {
	cmds := commandBuffers(commands)
	if len(cmds) == 0 {
		return
	}
	d.queue.Submit(cmds...)
}

// commandBuffers unwraps commands, logging and skipping any that are not wgpu command buffers.
func commandBuffers(commands []Resource) []*wgpu.CommandBuffer {
	cmds := make([]*wgpu.CommandBuffer, 0, len(commands))
	for i, c := range commands {
		cb, err := as[*wgpu.CommandBuffer](c)
		if err != nil {
			common.Logger().Error("command buffer not submitted", "index", i, "err", err)
			continue
		}
		cmds = append(cmds, cb)
	}
	return cmds
}

// wgpuCommandEncoder adapts *wgpu.CommandEncoder to CommandEncoder.
type wgpuCommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

var _ CommandEncoder = &wgpuCommandEncoder{}

func (e *wgpuCommandEncoder) CopyBufferToBuffer(src Resource, srcOffset uint64, dst Resource, dstOffset uint64, size uint64) error {
	s, err := as[*wgpu.Buffer](src)
	if err != nil {
		return err
	}
	dd, err := as[*wgpu.Buffer](dst)
	if err != nil {
		return err
	}
	return e.encoder.CopyBufferToBuffer(s, srcOffset, dd, dstOffset, size)
}

func (e *wgpuCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error) {
	view, err := as[*wgpu.TextureView](desc.Target)
	if err != nil {
		return nil, err
	}
	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: desc.ClearValue,
		}},
	})
	return &wgpuRenderPass{pass: pass}, nil
}

func (e *wgpuCommandEncoder) Finish(label string) (Resource, error) {
	return resource(e.encoder.Finish(&wgpu.CommandBufferDescriptor{Label: label}))
}

func (e *wgpuCommandEncoder) Release() {
	e.encoder.Release()
}

// wgpuRenderPass adapts *wgpu.RenderPassEncoder to RenderPass. The first invalid
// argument is remembered and returned from End.
type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
	err  error
}

var _ RenderPass = &wgpuRenderPass{}

func (p *wgpuRenderPass) SetPipeline(pipeline Resource) {
	rp, err := as[*wgpu.RenderPipeline](pipeline)
	if p.record(err) {
		p.pass.SetPipeline(rp)
	}
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, group Resource) {
	bg, err := as[*wgpu.BindGroup](group)
	if p.record(err) {
		p.pass.SetBindGroup(index, bg, nil)
	}
}

func (p *wgpuRenderPass) SetIndexBuffer(buffer Resource, format wgpu.IndexFormat) {
	buf, err := as[*wgpu.Buffer](buffer)
	if p.record(err) {
		p.pass.SetIndexBuffer(buf, format, 0, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buffer Resource) {
	buf, err := as[*wgpu.Buffer](buffer)
	if p.record(err) {
		p.pass.SetVertexBuffer(slot, buf, 0, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	if p.err != nil {
		return
	}
	p.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *wgpuRenderPass) End() error {
	endErr := p.pass.End()
	p.pass.Release()
	if p.err != nil {
		return p.err
	}
	return endErr
}

// record keeps the first error and reports whether recording may continue.
func (p *wgpuRenderPass) record(err error) bool {
	if err != nil && p.err == nil {
		p.err = err
	}
	return p.err == nil
}

// as unwraps a Resource to the concrete wgpu handle type T.
func as[T Resource](r Resource) (T, error) {
	v, ok := r.(T)
	if !ok || r == nil {
		var zero T
		return zero, fmt.Errorf("%w: %T", ErrForeignResource, r)
	}
	return v, nil
}

// resource converts a wgpu create result to a Resource. The bindings return a nil handle
// alongside an error, which must not reach callers as a non-nil interface.
func resource[T interface {
	comparable
	Resource
}](v T, err error) (Resource, error) {
	var zero T
	if err != nil {
		return nil, err
	}
	if v == zero {
		return nil, fmt.Errorf("%w: %T", ErrNilResource, v)
	}
	return v, nil
}
