// Package scene builds a drawable scene in four one-way stages:
//
//	Begin -> Lights -> Prepare -> Ready
//
// Begin takes shader bytecode, Lights collects light sources, Prepare holds the geometry
// provider, and Ready owns every GPU resource needed to draw it. Each stage only exposes the
// transitions valid for it. A transition consumes its receiver; calling any method on a
// consumed stage panics with ErrStageConsumed. Ready is terminal.
package scene

import (
	"errors"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/geometry"
	"github.com/Carmen-Shannon/shower/engine/light"
	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/Carmen-Shannon/shower/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxLights is the capacity of the light uniform buffer. Lights added beyond it are dropped
// when geometry is attached.
const MaxLights = 10

var (
	// ErrStageConsumed is the panic value raised when a stage is used after its transition.
	ErrStageConsumed = errors.New("scene: stage already consumed")

	// ErrUnsupportedSurfaceFormat is returned by Materialize when the surface configuration
	// has no usable color format.
	ErrUnsupportedSurfaceFormat = errors.New("scene: unsupported surface format")
)

// Initializable is a configured scene that can create its GPU resources.
type Initializable interface {
	// Materialize creates every GPU resource of the scene on dev.
	//
	// Parameters:
	//   - config: the output surface configuration; its Format selects the color target
	//   - dev: the device to create on, borrowed not owned
	//
	// Returns:
	//   - *Ready: the drawable scene
	//   - error: ErrUnsupportedSurfaceFormat or a wrapped device error
	Materialize(config *wgpu.SurfaceConfiguration, dev renderer.Device) (*Ready, error)
}

// Renderable draws itself into a frame.
type Renderable interface {
	// Render draws one frame into target. Failures are logged and the frame is dropped.
	//
	// Parameters:
	//   - projection: the projection-view matrix
	//   - rotation: the model rotation matrix
	//   - target: the color target of the frame
	//   - dev: the device the scene was materialized on
	Render(projection, rotation common.Mat4, target renderer.Resource, dev renderer.Device)

	// Release releases every GPU resource owned by the scene.
	Release()
}

var (
	_ Initializable = &Prepare{}
	_ Renderable    = &Ready{}
)

// stage is embedded in every non-terminal stage to enforce single use.
type stage struct {
	consumed bool
}

// check panics if the stage was consumed.
func (s *stage) check() {
	if s.consumed {
		panic(ErrStageConsumed)
	}
}

// consume marks the stage used, panicking if it already was.
func (s *stage) consume() {
	s.check()
	s.consumed = true
}

// Begin is the first stage. It accepts the shader pair.
type Begin struct {
	stage
	opts options
}

// New starts a scene.
//
// Parameters:
//   - opts: scene options
//
// Returns:
//   - *Begin: the first stage
func New(opts ...SceneBuilderOption) *Begin {
	b := &Begin{opts: defaultOptions()}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Shaders takes a compiled vertex and fragment pair.
//
// Parameters:
//   - compiled: the shader pair
//
// Returns:
//   - *Lights: the lights stage with no lights
//   - error: *shader.CompilationError if either module is not valid SPIR-V
func (b *Begin) Shaders(compiled shader.Compiled) (*Lights, error) {
	return b.ManualShaders(compiled.Vertex(), compiled.Fragment())
}

// ManualShaders takes raw SPIR-V bytecode for the vertex and fragment stages.
//
// Parameters:
//   - vertex: vertex stage bytecode
//   - fragment: fragment stage bytecode
//
// Returns:
//   - *Lights: the lights stage with no lights
//   - error: *shader.CompilationError if either module is not valid SPIR-V
func (b *Begin) ManualShaders(vertex, fragment []byte) (*Lights, error) {
	b.consume()

	vw, err := shader.ReadSPIRV(vertex)
	if err != nil {
		return nil, &shader.CompilationError{Stage: shader.StageVertex, Err: err}
	}
	fw, err := shader.ReadSPIRV(fragment)
	if err != nil {
		return nil, &shader.CompilationError{Stage: shader.StageFragment, Err: err}
	}

	return &Lights{
		opts:     b.opts,
		vertex:   vw,
		fragment: fw,
	}, nil
}

// Lights is the second stage. It collects lights in insertion order.
type Lights struct {
	stage
	opts options

	vertex, fragment []uint32
	lights           []light.Light
}

// AddLight appends lt. There is no capacity check here; see AttachGeometry.
//
// Parameters:
//   - lt: the light to add
//
// Returns:
//   - *Lights: the same stage, for chaining
func (l *Lights) AddLight(lt light.Light) *Lights {
	l.check()
	l.lights = append(l.lights, lt)
	return l
}

// AttachGeometry keeps the first MaxLights lights, drops the rest, and stores p without
// evaluating it. The kept lights are captured in raw form, so later changes to them do not
// reach the scene.
//
// Parameters:
//   - p: the geometry provider, evaluated once by Materialize
//
// Returns:
//   - *Prepare: the prepare stage
func (l *Lights) AttachGeometry(p geometry.Provider) *Prepare {
	l.consume()

	kept := l.lights
	if len(kept) > MaxLights {
		common.Logger().Debug("dropping lights beyond capacity",
			"scene", l.opts.label,
			"added", len(kept),
			"kept", MaxLights,
		)
		kept = kept[:MaxLights]
	}
	raw := make([]light.GPULight, len(kept))
	for i, lt := range kept {
		raw[i] = lt.Raw()
	}

	return &Prepare{
		opts:     l.opts,
		vertex:   l.vertex,
		fragment: l.fragment,
		lights:   raw,
		geometry: p,
	}
}

// Prepare is the third stage. It holds everything needed to create GPU resources.
type Prepare struct {
	stage
	opts options

	vertex, fragment []uint32
	lights           []light.GPULight
	geometry         geometry.Provider
}

// LightCount returns the number of lights that will be uploaded.
func (p *Prepare) LightCount() int {
	p.check()
	return len(p.lights)
}
