// Package engine presents a single scene in a window: it materializes the scene against the
// window's surface, feeds camera input into it and draws it once per message loop iteration.
package engine

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/camera"
	"github.com/Carmen-Shannon/shower/engine/profiler"
	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/Carmen-Shannon/shower/engine/scene"
	"github.com/Carmen-Shannon/shower/engine/window"
)

type engine struct {
	window   window.Window
	renderer renderer.Renderer

	camera     camera.Camera
	controller camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool

	// Pre-creation config collected from builder options
	title           string
	width, height   int
	rendererOptions []renderer.RendererBuilderOption

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time

	scene scene.Renderable
}

// Engine owns the window, renderer and camera used to present a scene.
type Engine interface {
	// Window returns the window frames are presented to.
	Window() window.Window

	// Renderer returns the renderer that owns the surface and device.
	Renderer() renderer.Renderer

	// Camera returns the camera whose matrices are passed to the scene each frame.
	Camera() camera.Camera

	// Run materializes s on the renderer's device and presents it until the window closes.
	// The scene, the renderer and the window are released before Run returns, also on error.
	// Must be called from the goroutine that created the engine.
	//
	// Parameters:
	//   - s: the configured scene
	//
	// Returns:
	//   - error: a wrapped Materialize error
	Run(s scene.Initializable) error
}

var _ Engine = &engine{}

// NewEngine creates the window and renderer unless supplied through options, and wires the
// window's input and resize callbacks to the camera, controller and renderer.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the engine, ready to Run
//   - error: error if the window or the renderer could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		title:    "shower",
		width:    1280,
		height:   720,
		profiler: profiler.NewProfiler(time.Second),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		w, err := window.NewWindow(window.WithTitle(e.title), window.WithSize(e.width, e.height))
		if err != nil {
			return nil, err
		}
		e.window = w
	}
	if e.renderer == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.rendererOptions...)
		if err != nil {
			e.closeWindow()
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		e.renderer = r
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController()
	}
	e.camera.SetAspect(e.window.Width(), e.window.Height())

	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		e.camera.SetAspect(width, height)
	})
	e.window.SetKeyDownCallback(func(key window.Key) {
		e.controller.KeyDown(key)
	})
	e.window.SetKeyUpCallback(func(key window.Key) {
		e.controller.KeyUp(key)
	})

	return e, nil
}

// Run creates an engine with options and presents s in it. This is the usual entry point
// of a viewer.
//
// Parameters:
//   - title: the window title
//   - s: the configured scene
//   - options: functional options to configure the engine
//
// Returns:
//   - error: error if the window, renderer or scene could not be created
func Run(title string, s scene.Initializable, options ...EngineBuilderOption) error {
	e, err := NewEngine(append([]EngineBuilderOption{WithTitle(title)}, options...)...)
	if err != nil {
		return err
	}
	return e.Run(s)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Run(s scene.Initializable) error {
	defer e.release()

	common.Logger().Info("initializing scene")
	ready, err := s.Materialize(e.renderer.SurfaceConfiguration(), e.renderer.Device())
	if err != nil {
		return fmt.Errorf("materialize scene: %w", err)
	}
	e.scene = ready

	common.Logger().Info("entering event loop")
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
	return nil
}

// frame applies held input to the camera and draws one frame. A frame whose surface texture
// cannot be acquired is skipped.
func (e *engine) frame() {
	e.controller.Apply(e.camera)

	target, err := e.renderer.BeginFrame()
	if err != nil {
		common.Logger().Debug("frame skipped", "err", err)
		return
	}
	e.scene.Render(e.camera.Projection(), e.camera.RotationMatrix(), target, e.renderer.Device())
	e.renderer.Present()

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	e.limitFrameRate()
}

func (e *engine) limitFrameRate() {
	if e.renderFrameLimit <= 0 {
		return
	}
	if !e.lastFrame.IsZero() {
		if remaining := e.renderFrameLimit - time.Since(e.lastFrame); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastFrame = time.Now()
}

// release tears down the scene before the device it was created on, then the window.
func (e *engine) release() {
	if e.scene != nil {
		e.scene.Release()
		e.scene = nil
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	e.closeWindow()
}

func (e *engine) closeWindow() {
	if err := e.window.Close(); err != nil {
		common.Logger().Debug("close window", "err", err)
	}
}
