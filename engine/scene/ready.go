package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/Carmen-Shannon/shower/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/shower/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var errReleased = errors.New("scene: render after release")

// Ready is the terminal stage. It exclusively owns the scene's GPU resources. Only the
// projection and rotation buffers change after creation, once per Render.
type Ready struct {
	label      string
	clearColor wgpu.Color
	lightCount int

	vertexModule   renderer.Resource
	fragmentModule renderer.Resource
	provider       bind_group_provider.BindGroupProvider
	pipeline       pipeline.Pipeline

	released bool
}

// IndexCount returns the number of indices drawn per frame.
func (r *Ready) IndexCount() int {
	if r.provider == nil {
		return 0
	}
	return r.provider.IndexCount()
}

// LightCount returns the number of lights uploaded.
func (r *Ready) LightCount() int {
	return r.lightCount
}

// Render copies projection and rotation into bindings 0 and 1 through transient staging
// buffers, then draws the whole index range once in a pass that clears target. Copies and
// the pass are recorded in one command buffer, copies first. Failures are logged at error
// level and the frame is dropped.
//
// Parameters:
//   - projection: the projection-view matrix
//   - rotation: the model rotation matrix
//   - target: the color target of the frame
//   - dev: the device the scene was materialized on
func (r *Ready) Render(projection, rotation common.Mat4, target renderer.Resource, dev renderer.Device) {
	if err := r.render(projection, rotation, target, dev); err != nil {
		common.Logger().Error("frame dropped", "scene", r.label, "err", err)
	}
}

func (r *Ready) render(projection, rotation common.Mat4, target renderer.Resource, dev renderer.Device) error {
	if r.released {
		return errReleased
	}

	encoder, err := dev.CreateCommandEncoder(r.label + " frame")
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	staging, err := bind_group_provider.EncodeWrites(dev, encoder, []bind_group_provider.BufferWrite{
		{Provider: r.provider, Binding: BindingProjection, Data: projection.Marshal()},
		{Provider: r.provider, Binding: BindingRotation, Data: rotation.Marshal()},
	})
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range staging {
			s.Release()
		}
	}()

	pass, err := encoder.BeginRenderPass(&renderer.RenderPassDescriptor{
		Label:      r.label + " pass",
		Target:     target,
		ClearValue: r.clearColor,
	})
	if err != nil {
		return fmt.Errorf("render pass: %w", err)
	}
	pass.SetPipeline(r.pipeline.Pipeline())
	pass.SetBindGroup(0, r.provider.BindGroup())
	pass.SetIndexBuffer(r.provider.IndexBuffer(), r.pipeline.IndexFormat())
	pass.SetVertexBuffer(0, r.provider.VertexBuffer())
	pass.DrawIndexed(uint32(r.provider.IndexCount()), 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}

	commands, err := encoder.Finish(r.label + " commands")
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	dev.Submit(commands)
	commands.Release()
	return nil
}

// Release releases the pipeline, bind group, buffers and shader modules. Calling it again
// does nothing.
func (r *Ready) Release() {
	if r.released {
		return
	}
	r.released = true

	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.provider != nil {
		r.provider.Release()
	}
	if r.fragmentModule != nil {
		r.fragmentModule.Release()
		r.fragmentModule = nil
	}
	if r.vertexModule != nil {
		r.vertexModule.Release()
		r.vertexModule = nil
	}
}
