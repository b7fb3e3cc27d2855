package scene

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/geometry"
	"github.com/Carmen-Shannon/shower/engine/light"
	"github.com/Carmen-Shannon/shower/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/shower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spirv returns the smallest byte sequence ReadSPIRV accepts.
func spirv() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf, shader.SPIRVMagic)
	binary.LittleEndian.PutUint32(buf[4:], 0x00010000)
	return buf
}

// countingProvider records how many times Geometry was called.
type countingProvider struct {
	geometry.Provider
	calls int
}

func (c *countingProvider) Geometry() ([]geometry.Vertex, []uint16) {
	c.calls++
	return c.Provider.Geometry()
}

func cube() *geometry.Cached {
	var vertices []geometry.Vertex
	for i := 0; i < 8; i++ {
		p := [3]float32{-1, -1, -1}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				p[axis] = 1
			}
		}
		vertices = append(vertices, geometry.Vertex{Position: p, Normal: common.Normalize3(p), Colour: [3]float32{1, 1, 1}})
	}
	indices := []uint16{
		0, 2, 1, 1, 2, 3,
		4, 5, 6, 5, 7, 6,
		0, 1, 4, 1, 5, 4,
		2, 6, 3, 3, 6, 7,
		0, 4, 2, 2, 4, 6,
		1, 3, 5, 3, 7, 5,
	}
	return geometry.NewCached(vertices, indices)
}

var surface = &wgpu.SurfaceConfiguration{Format: wgpu.TextureFormatBGRA8Unorm, Width: 640, Height: 480}

func lightsStage(t *testing.T, n int) *Lights {
	t.Helper()
	l, err := New().ManualShaders(spirv(), spirv())
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		l.AddLight(light.NewLight(light.WithIntensity(float32(i))))
	}
	return l
}

func materialize(t *testing.T, lights int, g geometry.Provider) (*Ready, *renderertest.Device) {
	t.Helper()
	dev := renderertest.NewDevice()
	ready, err := lightsStage(t, lights).AttachGeometry(g).Materialize(surface, dev)
	require.NoError(t, err)
	return ready, dev
}

func TestManualShadersRejectsMalformed(t *testing.T) {
	_, err := New().ManualShaders(nil, spirv())
	var ce *shader.CompilationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, shader.StageVertex, ce.Stage)
	assert.ErrorIs(t, err, shader.ErrEmptyBytecode)

	_, err = New().ManualShaders(spirv(), make([]byte, 20))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, shader.StageFragment, ce.Stage)
	assert.ErrorIs(t, err, shader.ErrBadMagic)
}

func TestShadersUsesCompiledPair(t *testing.T) {
	l, err := New().Shaders(shader.NewCompiled(spirv(), spirv()))
	require.NoError(t, err)
	assert.Len(t, l.vertex, 5)
	assert.Len(t, l.fragment, 5)
}

func TestConsumedStagePanics(t *testing.T) {
	b := New()
	_, err := b.ManualShaders(spirv(), spirv())
	require.NoError(t, err)
	assert.PanicsWithValue(t, ErrStageConsumed, func() { _, _ = b.ManualShaders(spirv(), spirv()) })

	l := lightsStage(t, 1)
	p := l.AttachGeometry(cube())
	assert.PanicsWithValue(t, ErrStageConsumed, func() { l.AddLight(light.NewLight()) })
	assert.PanicsWithValue(t, ErrStageConsumed, func() { l.AttachGeometry(cube()) })

	_, err = p.Materialize(surface, renderertest.NewDevice())
	require.NoError(t, err)
	assert.PanicsWithValue(t, ErrStageConsumed, func() { _, _ = p.Materialize(surface, renderertest.NewDevice()) })
	assert.PanicsWithValue(t, ErrStageConsumed, func() { p.LightCount() })
}

func TestLightTruncation(t *testing.T) {
	for _, n := range []int{0, 1, 3, MaxLights, 12, 25} {
		want := min(n, MaxLights)

		p := lightsStage(t, n).AttachGeometry(cube())
		assert.Equal(t, want, p.LightCount(), "n=%d", n)

		dev := renderertest.NewDevice()
		ready, err := p.Materialize(surface, dev)
		require.NoError(t, err)
		assert.Equal(t, want, ready.LightCount(), "n=%d", n)

		count := dev.Buffer("scene binding 3")
		require.NotNil(t, count)
		require.Len(t, count.Contents, 4)
		assert.Equal(t, uint32(want), binary.LittleEndian.Uint32(count.Contents), "n=%d", n)
	}
}

func TestTwelveLightsKeepsFirstTenInOrder(t *testing.T) {
	_, dev := materialize(t, 12, cube())

	lights := dev.Buffer("scene binding 2")
	require.NotNil(t, lights)
	require.Len(t, lights.Contents, MaxLights*light.GPULightSize)
	for i := 0; i < MaxLights; i++ {
		raw := light.UnmarshalGPULight(lights.Contents[i*light.GPULightSize:])
		assert.Equal(t, float32(i), raw.Intensity)
	}
}

func TestUnusedLightSlotsZeroed(t *testing.T) {
	_, dev := materialize(t, 2, cube())

	lights := dev.Buffer("scene binding 2")
	require.NotNil(t, lights)
	assert.Equal(t, make([]byte, (MaxLights-2)*light.GPULightSize), lights.Contents[2*light.GPULightSize:])
}

func TestZeroLights(t *testing.T) {
	ready, dev := materialize(t, 0, cube())
	assert.Equal(t, 0, ready.LightCount())
	assert.Equal(t, make([]byte, MaxLights*light.GPULightSize), dev.Buffer("scene binding 2").Contents)

	ready.Render(common.Identity4(), common.Identity4(), &renderertest.Handle{Kind: "view"}, dev)
	require.Len(t, dev.Submitted, 1)
}

func TestMatrixBuffersStartZeroed(t *testing.T) {
	_, dev := materialize(t, 1, cube())
	for _, label := range []string{"scene binding 0", "scene binding 1"} {
		buf := dev.Buffer(label)
		require.NotNil(t, buf, label)
		assert.Equal(t, uint64(common.Mat4Size), buf.Size)
		assert.Empty(t, buf.Contents)
	}
}

func TestBindingOrder(t *testing.T) {
	_, dev := materialize(t, 1, cube())

	layouts := dev.Kind("bind-group-layout")
	require.Len(t, layouts, 1)
	entries := layouts[0].LayoutEntries
	require.Len(t, entries, 4)

	want := []struct {
		visibility wgpu.ShaderStage
		size       uint64
	}{
		{wgpu.ShaderStageVertex, 64},
		{wgpu.ShaderStageVertex, 64},
		{wgpu.ShaderStageFragment, MaxLights * light.GPULightSize},
		{wgpu.ShaderStageFragment, 4},
	}
	for i, e := range entries {
		assert.Equal(t, uint32(i), e.Binding)
		assert.Equal(t, want[i].visibility, e.Visibility)
		assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
		assert.Equal(t, want[i].size, e.Buffer.MinBindingSize)
	}

	groups := dev.Kind("bind-group")
	require.Len(t, groups, 1)
	for i, e := range groups[0].GroupEntries {
		assert.Equal(t, uint32(i), e.Binding)
	}
}

func TestBindingLayoutMatchesDefaultShaders(t *testing.T) {
	reflected := shader.Merge(
		shader.Reflect(shader.DefaultVertexWGSL, shader.StageVertex),
		shader.Reflect(shader.DefaultFragmentWGSL, shader.StageFragment),
	)
	layout := BindingLayout()
	require.Len(t, reflected, len(layout))
	for i, b := range reflected {
		assert.Equal(t, 0, b.Group)
		assert.Equal(t, layout[i].Binding, b.Entry.Binding)
		assert.Equal(t, layout[i].Visibility, b.Entry.Visibility)
		assert.Equal(t, layout[i].Buffer.Type, b.Entry.Buffer.Type)
		assert.Equal(t, layout[i].Buffer.MinBindingSize, b.Entry.Buffer.MinBindingSize)
	}

	vertex := shader.Reflect(shader.DefaultVertexWGSL, shader.StageVertex)
	require.NotNil(t, vertex.VertexLayout)
	assert.Equal(t, geometry.VertexBufferLayout(), *vertex.VertexLayout)
}

func TestGeometryEvaluatedOnce(t *testing.T) {
	g := &countingProvider{Provider: cube()}
	p := lightsStage(t, 1).AttachGeometry(g)
	assert.Zero(t, g.calls)

	ready, dev := func() (*Ready, *renderertest.Device) {
		dev := renderertest.NewDevice()
		r, err := p.Materialize(surface, dev)
		require.NoError(t, err)
		return r, dev
	}()
	assert.Equal(t, 1, g.calls)

	ready.Render(common.Identity4(), common.Identity4(), &renderertest.Handle{Kind: "view"}, dev)
	assert.Equal(t, 1, g.calls)

	v, i := cube().Geometry()
	assert.Equal(t, geometry.MarshalVertices(v), dev.Buffer("scene vertex buffer").Contents)
	assert.Equal(t, geometry.MarshalIndices(i), dev.Buffer("scene index buffer").Contents)
}

func TestPipelineState(t *testing.T) {
	_, dev := materialize(t, 1, cube())

	pipelines := dev.Kind("render-pipeline")
	require.Len(t, pipelines, 1)
	desc := pipelines[0].Pipeline

	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Nil(t, desc.DepthStencil)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	require.Len(t, desc.ColorTargets, 1)
	assert.Equal(t, surface.Format, desc.ColorTargets[0].Format)
	require.Len(t, desc.VertexBuffers, 1)
	assert.Equal(t, uint64(geometry.VertexSize), desc.VertexBuffers[0].ArrayStride)

	modules := dev.Kind("shader-module")
	require.Len(t, modules, 2)
	assert.Same(t, modules[0], desc.VertexModule)
	assert.Same(t, modules[1], desc.FragmentModule)
}

func TestCubeDrawCall(t *testing.T) {
	ready, dev := materialize(t, 1, cube())
	assert.Equal(t, 36, ready.IndexCount())

	target := &renderertest.Handle{Kind: "view"}
	ready.Render(common.Identity4(), common.Identity4(), target, dev)

	require.Len(t, dev.Encoders, 1)
	require.Len(t, dev.Encoders[0].Passes, 1)
	pass := dev.Encoders[0].Passes[0]
	assert.Equal(t, []renderertest.Draw{{IndexCount: 36, InstanceCount: 1}}, pass.Draws)
	assert.Equal(t, wgpu.IndexFormatUint16, pass.IndexFormat)
	assert.Same(t, target, pass.Descriptor.Target)
	assert.Equal(t, wgpu.Color{A: 1}, pass.Descriptor.ClearValue)
	assert.Same(t, dev.Kind("render-pipeline")[0], pass.Pipeline)
	assert.Same(t, dev.Kind("bind-group")[0], pass.BindGroups[0])
	assert.Same(t, dev.Buffer("scene vertex buffer"), pass.VertexBuffer[0])
	assert.Same(t, dev.Buffer("scene index buffer"), pass.IndexBuffer)
	assert.True(t, pass.Ended)
}

func TestRenderOrdersCopiesBeforeDraw(t *testing.T) {
	ready, dev := materialize(t, 1, cube())
	target := &renderertest.Handle{Kind: "view"}

	first := common.Identity4()
	second := common.Identity4()
	second[0] = 2
	rotation := common.Identity4()
	rotation[5] = 3

	ready.Render(first, rotation, target, dev)
	ready.Render(second, rotation, target, dev)

	frame := []string{
		"copy", "copy", "begin-pass", "set-pipeline", "set-bind-group:0",
		"set-index-buffer", "set-vertex-buffer:0", "draw", "end-pass", "finish", "submit",
	}
	assert.Equal(t, append(append([]string(nil), frame...), frame...), dev.Ops)

	require.Len(t, dev.Encoders, 2)
	projection := dev.Buffer("scene binding 0")
	for i, want := range []common.Mat4{first, second} {
		copies := dev.Encoders[i].Copies
		require.Len(t, copies, 2)
		assert.Same(t, projection, copies[0].Dst)
		assert.Equal(t, uint64(common.Mat4Size), copies[0].Size)
		src := copies[0].Src.(*renderertest.Buffer)
		assert.Equal(t, want, common.UnmarshalMat4(src.Contents))
		assert.Equal(t, wgpu.BufferUsageCopySrc, src.Usage)

		assert.Same(t, dev.Buffer("scene binding 1"), copies[1].Dst)
		assert.Equal(t, rotation, common.UnmarshalMat4(copies[1].Src.(*renderertest.Buffer).Contents))
	}

	require.Len(t, dev.Submitted, 2)
	assert.Same(t, dev.Kind("command-buffer")[0], dev.Submitted[0][0])
	assert.Same(t, dev.Kind("command-buffer")[1], dev.Submitted[1][0])

	for _, e := range dev.Encoders {
		assert.Equal(t, 1, e.Released)
	}
	for _, b := range dev.Buffers {
		if b.Usage == wgpu.BufferUsageCopySrc {
			assert.Equal(t, 1, b.Released, b.Label)
		}
	}
}

func TestRenderFailureDropsFrame(t *testing.T) {
	for _, method := range []string{"CreateCommandEncoder", "CreateBuffer", "CopyBufferToBuffer", "BeginRenderPass", "End", "Finish"} {
		t.Run(method, func(t *testing.T) {
			ready, dev := materialize(t, 1, cube())
			dev.Fail[method] = errors.New("boom")

			ready.Render(common.Identity4(), common.Identity4(), &renderertest.Handle{Kind: "view"}, dev)
			assert.Empty(t, dev.Submitted)
			for _, e := range dev.Encoders {
				assert.Equal(t, 1, e.Released)
			}

			ready.Release()
			assert.Empty(t, dev.Unreleased())
			assert.Empty(t, dev.OverReleased())
		})
	}
}

func TestUnsupportedSurfaceFormat(t *testing.T) {
	for _, cfg := range []*wgpu.SurfaceConfiguration{nil, {Format: wgpu.TextureFormatUndefined}} {
		dev := renderertest.NewDevice()
		_, err := lightsStage(t, 1).AttachGeometry(cube()).Materialize(cfg, dev)
		assert.ErrorIs(t, err, ErrUnsupportedSurfaceFormat)
		assert.Empty(t, dev.Handles)
		assert.Empty(t, dev.Buffers)
	}
}

func TestMaterializeFailureReleasesEverything(t *testing.T) {
	for _, method := range []string{
		"CreateShaderModule", "CreateBuffer", "CreateBindGroupLayout",
		"CreateBindGroup", "CreatePipelineLayout", "CreateRenderPipeline",
	} {
		t.Run(method, func(t *testing.T) {
			dev := renderertest.NewDevice()
			boom := errors.New("boom")
			dev.Fail[method] = boom

			ready, err := lightsStage(t, 3).AttachGeometry(cube()).Materialize(surface, dev)
			assert.ErrorIs(t, err, boom)
			assert.Nil(t, ready)
			assert.Empty(t, dev.Unreleased())
			assert.Empty(t, dev.OverReleased())
		})
	}
}

func TestReleaseIdempotent(t *testing.T) {
	ready, dev := materialize(t, 4, cube())
	ready.Render(common.Identity4(), common.Identity4(), &renderertest.Handle{Kind: "view"}, dev)

	ready.Release()
	ready.Release()
	assert.Empty(t, dev.Unreleased())
	assert.Empty(t, dev.OverReleased())

	ready.Render(common.Identity4(), common.Identity4(), &renderertest.Handle{Kind: "view"}, dev)
	assert.Len(t, dev.Encoders, 1)
	assert.Len(t, dev.Submitted, 1)
}

func TestOptions(t *testing.T) {
	dev := renderertest.NewDevice()
	l, err := New(WithLabel("solid"), WithClearColor(wgpu.Color{R: 1, A: 1})).ManualShaders(spirv(), spirv())
	require.NoError(t, err)
	ready, err := l.AttachGeometry(cube()).Materialize(surface, dev)
	require.NoError(t, err)

	assert.NotNil(t, dev.Buffer("solid vertex buffer"))
	ready.Render(common.Identity4(), common.Identity4(), &renderertest.Handle{Kind: "view"}, dev)
	assert.Equal(t, wgpu.Color{R: 1, A: 1}, dev.Encoders[0].Passes[0].Descriptor.ClearValue)
}

func TestEmptyLabelKeepsDefault(t *testing.T) {
	dev := renderertest.NewDevice()
	l, err := New(WithLabel("")).ManualShaders(spirv(), spirv())
	require.NoError(t, err)
	ready, err := l.AttachGeometry(cube()).Materialize(surface, dev)
	require.NoError(t, err)
	defer ready.Release()

	assert.NotNil(t, dev.Buffer("scene vertex buffer"))
}

func TestMaterializeStepOrder(t *testing.T) {
	_, dev := materialize(t, 2, cube())

	assert.Equal(t, []string{
		"shader-module scene vertex",
		"shader-module scene fragment",
		"buffer scene binding 0",
		"buffer scene binding 1",
		"buffer scene vertex buffer",
		"buffer scene index buffer",
		"buffer scene binding 2",
		"buffer scene binding 3",
		"bind-group-layout scene bind group layout",
		"bind-group scene bind group",
		"pipeline-layout scene pipeline layout",
		"render-pipeline scene pipeline",
	}, dev.Created)
}

func TestLightsCapturedAtAttach(t *testing.T) {
	lt := light.NewLight(light.WithPosition(0, 0, 5), light.WithIntensity(2))
	l, err := New().ManualShaders(spirv(), spirv())
	require.NoError(t, err)
	p := l.AddLight(lt).AttachGeometry(cube())

	lt.SetIntensity(9)
	lt.SetPosition(1, 2, 3)

	dev := renderertest.NewDevice()
	ready, err := p.Materialize(surface, dev)
	require.NoError(t, err)
	defer ready.Release()

	raw := light.UnmarshalGPULight(dev.Buffer("scene binding 2").Contents)
	assert.Equal(t, float32(2), raw.Intensity)
	assert.Equal(t, [3]float32{0, 0, 5}, raw.Position)
}
