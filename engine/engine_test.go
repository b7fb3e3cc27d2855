package engine

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/shower/engine/geometry"
	"github.com/Carmen-Shannon/shower/engine/light"
	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/Carmen-Shannon/shower/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/shower/engine/renderer/shader"
	"github.com/Carmen-Shannon/shower/engine/scene"
	"github.com/Carmen-Shannon/shower/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// fakeWindow runs a fixed number of loop iterations. before is called ahead of each update.
type fakeWindow struct {
	frames        int
	before        func(w *fakeWindow, frame int)
	width, height int
	closed        int

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(key window.Key)
	onKeyUp   func(key window.Key)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func())                  { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(key window.Key))   { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(key window.Key))     { w.onKeyUp = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return w.closed == 0 }
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

func (w *fakeWindow) Close() error {
	w.closed++
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.frames; i++ {
		if w.before != nil {
			w.before(w, i)
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

// fakeRenderer hands out fake texture views and records presentation.
type fakeRenderer struct {
	dev        *renderertest.Device
	format     wgpu.TextureFormat
	acquireErr error

	targets  []*renderertest.Handle
	presents int
	resizes  [][2]int
	released int
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) Device() renderer.Device { return r.dev }

func (r *fakeRenderer) SurfaceConfiguration() *wgpu.SurfaceConfiguration {
	return &wgpu.SurfaceConfiguration{Format: r.format, Width: 640, Height: 480}
}

func (r *fakeRenderer) Resize(width, height int) {
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *fakeRenderer) SetPresentMode(renderer.PresentMode) {}

func (r *fakeRenderer) BeginFrame() (renderer.Resource, error) {
	if r.acquireErr != nil {
		return nil, r.acquireErr
	}
	h := &renderertest.Handle{Kind: "texture-view"}
	r.targets = append(r.targets, h)
	return h, nil
}

func (r *fakeRenderer) Present() { r.presents++ }
func (r *fakeRenderer) Release() { r.released++ }

func spirv() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf, shader.SPIRVMagic)
	binary.LittleEndian.PutUint32(buf[4:], 0x00010000)
	return buf
}

func triangle() *geometry.Cached {
	return geometry.NewCached([]geometry.Vertex{
		{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}, Colour: [3]float32{1, 0, 0}},
		{Position: [3]float32{-1, -1, 0}, Normal: [3]float32{0, 0, 1}, Colour: [3]float32{0, 1, 0}},
		{Position: [3]float32{1, -1, 0}, Normal: [3]float32{0, 0, 1}, Colour: [3]float32{0, 0, 1}},
	}, []uint16{0, 1, 2})
}

type EngineSuite struct {
	suite.Suite
	win *fakeWindow
	ren *fakeRenderer
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.win = &fakeWindow{frames: 3, width: 800, height: 400}
	s.ren = &fakeRenderer{dev: renderertest.NewDevice(), format: wgpu.TextureFormatBGRA8Unorm}
}

func (s *EngineSuite) newEngine(opts ...EngineBuilderOption) Engine {
	e, err := NewEngine(append([]EngineBuilderOption{WithWindow(s.win), WithRenderer(s.ren)}, opts...)...)
	s.Require().NoError(err)
	return e
}

func (s *EngineSuite) prepare() *scene.Prepare {
	l, err := scene.New().ManualShaders(spirv(), spirv())
	s.Require().NoError(err)
	return l.AddLight(light.NewLight(light.WithPosition(0, 0, 5))).AttachGeometry(triangle())
}

func (s *EngineSuite) TestRunPresentsEveryFrame() {
	e := s.newEngine()

	s.Require().NoError(e.Run(s.prepare()))

	dev := s.ren.dev
	s.Len(dev.Submitted, 3)
	s.Equal(3, s.ren.presents)
	s.Require().Len(dev.Encoders, 3)
	for i, enc := range dev.Encoders {
		s.Require().Len(enc.Passes, 1)
		s.Same(s.ren.targets[i], enc.Passes[0].Descriptor.Target)
		s.Equal([]renderertest.Draw{{IndexCount: 3, InstanceCount: 1}}, enc.Passes[0].Draws)
	}
}

func (s *EngineSuite) TestRunReleasesEverything() {
	e := s.newEngine()

	s.Require().NoError(e.Run(s.prepare()))

	s.Empty(s.ren.dev.Unreleased())
	s.Empty(s.ren.dev.OverReleased())
	s.Equal(1, s.ren.released)
	s.Equal(1, s.win.closed)
}

func (s *EngineSuite) TestRunUploadsCameraMatrices() {
	e := s.newEngine()

	s.Require().NoError(e.Run(s.prepare()))

	cam := e.Camera()
	s.InDelta(2, cam.Aspect(), 1e-6)
	s.Equal(cam.Projection().Marshal(), s.ren.dev.Buffer("scene staging 0").Contents)
	s.Equal(cam.RotationMatrix().Marshal(), s.ren.dev.Buffer("scene staging 1").Contents)
}

func (s *EngineSuite) TestKeysDriveCamera() {
	s.win.frames = 4
	s.win.before = func(w *fakeWindow, frame int) {
		switch frame {
		case 0:
			w.onKeyDown(window.KeyUp)
		case 2:
			w.onKeyUp(window.KeyUp)
		}
	}
	e := s.newEngine()

	s.Require().NoError(e.Run(s.prepare()))

	// Held for frames 0 and 1 only.
	s.InDelta(0.04, e.Camera().Rotation().X, 1e-6)
	s.Equal(e.Camera().RotationMatrix().Marshal(), s.ren.dev.Buffer("scene staging 1").Contents)
}

func (s *EngineSuite) TestResizeUpdatesRendererAndCamera() {
	s.win.frames = 1
	s.win.before = func(w *fakeWindow, _ int) {
		w.onResize(300, 300)
	}
	e := s.newEngine()

	s.Require().NoError(e.Run(s.prepare()))

	s.Equal([][2]int{{300, 300}}, s.ren.resizes)
	s.InDelta(1, e.Camera().Aspect(), 1e-6)
}

func (s *EngineSuite) TestAcquireFailureSkipsFrame() {
	s.ren.acquireErr = errors.New("surface outdated")
	e := s.newEngine()

	s.Require().NoError(e.Run(s.prepare()))

	s.Empty(s.ren.dev.Submitted)
	s.Zero(s.ren.presents)
	s.Empty(s.ren.dev.Unreleased())
}

func (s *EngineSuite) TestMaterializeFailureReleases() {
	boom := errors.New("boom")
	s.ren.dev.Fail["CreateRenderPipeline"] = boom
	e := s.newEngine()

	err := e.Run(s.prepare())

	s.Require().ErrorIs(err, boom)
	s.Empty(s.ren.dev.Unreleased())
	s.Equal(1, s.ren.released)
	s.Equal(1, s.win.closed)
	s.Empty(s.ren.dev.Submitted)
}

func (s *EngineSuite) TestUnsupportedFormat() {
	s.ren.format = wgpu.TextureFormatUndefined
	e := s.newEngine()

	s.Require().ErrorIs(e.Run(s.prepare()), scene.ErrUnsupportedSurfaceFormat)
}

func TestWithRenderFrameLimit(t *testing.T) {
	e := &engine{}
	WithRenderFrameLimit(50)(e)
	assert.Equal(t, int64(20_000_000), e.renderFrameLimit.Nanoseconds())

	WithRenderFrameLimit(0)(e)
	assert.Zero(t, e.renderFrameLimit)
}
