package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/geometry"
	"github.com/Carmen-Shannon/shower/engine/light"
	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/Carmen-Shannon/shower/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/shower/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Binding indices of group 0. The order is shared with the shader source.
const (
	BindingProjection = 0
	BindingRotation   = 1
	BindingLights     = 2
	BindingLightCount = 3
)

// BindingLayout returns the four uniform bindings of group 0 in binding order.
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: projection, rotation, lights, light count
func BindingLayout() []wgpu.BindGroupLayoutEntry {
	uniform := func(binding uint32, visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: size,
			},
		}
	}
	return []wgpu.BindGroupLayoutEntry{
		uniform(BindingProjection, wgpu.ShaderStageVertex, common.Mat4Size),
		uniform(BindingRotation, wgpu.ShaderStageVertex, common.Mat4Size),
		uniform(BindingLights, wgpu.ShaderStageFragment, MaxLights*light.GPULightSize),
		uniform(BindingLightCount, wgpu.ShaderStageFragment, light.GPULightCountSize),
	}
}

// Materialize creates the shader modules, the projection and rotation buffers, uploads the
// geometry, the lights and the light count, builds the bind group layout and bind group and
// the render pipeline, in that order, and returns the Ready stage owning all of them.
// The geometry provider is evaluated exactly once. Light slots past the retained lights are
// zeroed. The projection and rotation buffers start zeroed. On failure every resource created
// so far is released.
//
// Parameters:
//   - config: the output surface configuration; its Format selects the color target
//   - dev: the device to create on, borrowed not owned
//
// Returns:
//   - *Ready: the drawable scene
//   - error: ErrUnsupportedSurfaceFormat or a wrapped device error
func (p *Prepare) Materialize(config *wgpu.SurfaceConfiguration, dev renderer.Device) (_ *Ready, err error) {
	p.consume()

	if config == nil || config.Format == wgpu.TextureFormatUndefined {
		return nil, ErrUnsupportedSurfaceFormat
	}

	label := p.opts.label
	r := &Ready{
		label:      label,
		clearColor: p.opts.clearColor,
		lightCount: len(p.lights),
	}
	defer func() {
		if err != nil {
			r.Release()
		}
	}()

	vertexModule, err := dev.CreateShaderModule(label+" vertex", p.vertex)
	if err != nil {
		return nil, fmt.Errorf("vertex shader module: %w", err)
	}
	r.vertexModule = vertexModule
	fragmentModule, err := dev.CreateShaderModule(label+" fragment", p.fragment)
	if err != nil {
		return nil, fmt.Errorf("fragment shader module: %w", err)
	}
	r.fragmentModule = fragmentModule

	count := light.GPULightCount{Count: uint32(len(p.lights))}
	r.provider = bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithInitialData(BindingLights, light.MarshalLightBuffer(p.lights, MaxLights)),
		bind_group_provider.WithInitialData(BindingLightCount, count.Marshal()),
	)
	layout := BindingLayout()
	if err = r.provider.InitBuffers(dev, layout[BindingProjection:BindingLights]); err != nil {
		return nil, err
	}

	vertices, indices := p.geometry.Geometry()
	if len(vertices) > geometry.MaxVertices {
		common.Logger().Warn("geometry exceeds 16-bit index capacity",
			"scene", label,
			"vertices", len(vertices),
			"max", geometry.MaxVertices,
		)
	}
	if err = r.provider.InitMeshBuffers(dev, geometry.MarshalVertices(vertices), geometry.MarshalIndices(indices), len(indices)); err != nil {
		return nil, err
	}

	if err = r.provider.InitBuffers(dev, layout[BindingLights:]); err != nil {
		return nil, err
	}
	if err = r.provider.InitBindGroup(dev, layout); err != nil {
		return nil, err
	}

	r.pipeline = pipeline.NewPipeline(label+" pipeline", p.opts.pipelineOptions...)
	err = r.pipeline.Create(dev, r.provider.BindGroupLayout(), r.vertexModule, r.fragmentModule, geometry.VertexBufferLayout(), config.Format)
	if err != nil {
		return nil, err
	}

	common.Logger().Debug("scene materialized",
		"scene", label,
		"vertices", len(vertices),
		"indices", len(indices),
		"lights", r.lightCount,
		"format", config.Format,
	)
	return r, nil
}
