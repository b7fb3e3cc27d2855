package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/shower/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	device      Device

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	preferredFormat      wgpu.TextureFormat
	pendingPresentMode   *PresentMode
}

// Renderer owns the GPU instance, surface, adapter and device of a window and hands frames to
// whatever draws into them. It does not own any scene resources: scenes borrow Device() and
// release their own handles.
type Renderer interface {
	// Device returns the device scenes create their resources on.
	//
	// Returns:
	//   - Device: the device
	Device() Device

	// SurfaceConfiguration returns a copy of the active surface configuration.
	// Scenes read the color format from it to build a matching pipeline.
	//
	// Returns:
	//   - *wgpu.SurfaceConfiguration: the active configuration
	SurfaceConfiguration() *wgpu.SurfaceConfiguration

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode and reconfigures the surface at its current size.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next surface texture.
	//
	// Returns:
	//   - Resource: the color target for this frame; owned by the renderer until Present
	//   - error: an error if the surface could not provide a texture
	BeginFrame() (Resource, error)

	// Present displays the frame acquired by BeginFrame.
	Present()

	// Release tears down the device, adapter, surface and instance.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given window and configures its surface at the window size.
//
// Parameters:
//   - backendType: the backend implementation to use
//   - win: the window providing the surface descriptor and initial size
//   - options: optional builder options
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no compatible adapter or device is available
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.preferredFormat)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(win.Width(), win.Height())
	r.device = NewDevice(r.backend.Device(), r.backend.Queue())
	return r, nil
}

func (r *renderer) Device() Device {
	return r.device
}

func (r *renderer) SurfaceConfiguration() *wgpu.SurfaceConfiguration {
	return r.backend.SurfaceConfiguration()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
	if cfg := r.backend.SurfaceConfiguration(); cfg != nil {
		r.backend.ConfigureSurface(int(cfg.Width), int(cfg.Height))
	}
}

func (r *renderer) BeginFrame() (Resource, error) {
	view, err := r.backend.BeginFrame()
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return
	}
	r.backend.Release()
	r.backend = nil
	r.device = nil
}
