package light

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	position  [3]float32
	color     [3]float32
	intensity float32
}

// Light defines the interface for a point light source attached to a scene.
//
// Lights are configured on the CPU side while the scene is being built and
// converted once into their raw GPU form (see GPULight) when the scene is
// materialized. A light has no direction or falloff; the fragment shader
// treats it as an omnidirectional emitter at Position.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// Raw converts the light into its fixed-layout uniform representation.
	//
	// Returns:
	//   - GPULight: the GPU-aligned representation
	Raw() GPULight
}

var _ Light = &lightImpl{}

// NewLight creates a new white light at the origin with unit intensity and
// any provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		position:  [3]float32{0, 0, 0},
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) Raw() GPULight {
	return GPULight{
		Position:  l.position,
		Intensity: l.intensity,
		Color:     l.color,
	}
}
