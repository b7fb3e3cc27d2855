// Package solid generates the five platonic solids as flat-shaded geometry.
package solid

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/shower/engine/geometry"
)

// Kind selects one of the five platonic solids.
type Kind int

const (
	Tetrahedron Kind = iota
	Cube
	Octahedron
	Dodecahedron
	Icosahedron
)

// Kinds lists every solid in face-count order.
var Kinds = []Kind{Tetrahedron, Cube, Octahedron, Dodecahedron, Icosahedron}

func (k Kind) String() string {
	switch k {
	case Tetrahedron:
		return "tetrahedron"
	case Cube:
		return "cube"
	case Octahedron:
		return "octahedron"
	case Dodecahedron:
		return "dodecahedron"
	case Icosahedron:
		return "icosahedron"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a case-insensitive name to its Kind.
//
// Parameters:
//   - name: one of tetrahedron, cube, octahedron, dodecahedron, icosahedron
//
// Returns:
//   - Kind: the matching kind
//   - error: error if name matches no solid
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("solid: unknown kind %q", name)
}

// Solid is a platonic solid centred on the origin. It is a geometry.Provider.
type Solid struct {
	Kind       Kind
	SideLength float32
	Colour     [3]float32
}

var _ geometry.Provider = Solid{}

// New returns a solid of the given kind.
//
// Parameters:
//   - kind: which solid
//   - sideLength: edge length in world units
//   - colour: RGB colour of every vertex
//
// Returns:
//   - Solid: the solid description; no geometry is built until Generate
func New(kind Kind, sideLength float32, colour [3]float32) Solid {
	return Solid{Kind: kind, SideLength: sideLength, Colour: colour}
}

// Geometry builds the solid's vertices and indices. Every face has its own vertices so the
// normals are flat. Triangles wind clockwise seen from outside, the pipeline's front face.
func (s Solid) Geometry() ([]geometry.Vertex, []uint16) {
	points, edge := canonical(s.Kind)
	scale := float64(s.SideLength) / edge

	var (
		vertices []geometry.Vertex
		indices  []uint16
	)
	for _, f := range faces(points) {
		base := uint16(len(vertices))
		n := f.normal.f32()
		for _, p := range f.loop {
			vertices = append(vertices, geometry.Vertex{
				Position: points[p].scale(scale).f32(),
				Normal:   n,
				Colour:   s.Colour,
			})
		}
		for i := 1; i+1 < len(f.loop); i++ {
			indices = append(indices, base, base+uint16(i), base+uint16(i+1))
		}
	}
	return vertices, indices
}

// Generate evaluates the solid once into a Cached.
//
// Returns:
//   - *geometry.Cached: the cached geometry
func (s Solid) Generate() *geometry.Cached {
	return geometry.Capture(s)
}

type vec3 [3]float64

func (a vec3) sub(b vec3) vec3      { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a vec3) add(b vec3) vec3      { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec3) scale(s float64) vec3 { return vec3{a[0] * s, a[1] * s, a[2] * s} }
func (a vec3) dot(b vec3) float64   { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a vec3) length() float64      { return math.Sqrt(a.dot(a)) }
func (a vec3) f32() [3]float32      { return [3]float32{float32(a[0]), float32(a[1]), float32(a[2])} }

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a vec3) unit() vec3 {
	return a.scale(1 / a.length())
}

// canonical returns the vertices of a solid centred on the origin and its edge length.
func canonical(k Kind) ([]vec3, float64) {
	phi := (1 + math.Sqrt(5)) / 2
	var pts []vec3
	signs := []float64{-1, 1}

	switch k {
	case Tetrahedron:
		return []vec3{{1, 1, 1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}, 2 * math.Sqrt2
	case Cube:
		for _, x := range signs {
			for _, y := range signs {
				for _, z := range signs {
					pts = append(pts, vec3{x, y, z})
				}
			}
		}
		return pts, 2
	case Octahedron:
		for _, s := range signs {
			pts = append(pts, vec3{s, 0, 0}, vec3{0, s, 0}, vec3{0, 0, s})
		}
		return pts, math.Sqrt2
	case Dodecahedron:
		pts, _ = canonical(Cube)
		for _, a := range signs {
			for _, b := range signs {
				pts = append(pts,
					vec3{0, a / phi, b * phi},
					vec3{a / phi, b * phi, 0},
					vec3{a * phi, 0, b / phi},
				)
			}
		}
		return pts, 2 / phi
	default:
		for _, a := range signs {
			for _, b := range signs {
				pts = append(pts,
					vec3{0, a, b * phi},
					vec3{a, b * phi, 0},
					vec3{a * phi, 0, b},
				)
			}
		}
		return pts, 2
	}
}

// face is a polygon of point indices ordered clockwise around its outward normal.
type face struct {
	loop   []int
	normal vec3
}

// faces finds the faces of the convex hull of points. Every plane through three points with
// no point in front of it bounds a face; all points on that plane form the face.
func faces(points []vec3) []face {
	const eps = 1e-6
	seen := make(map[string]bool)
	var out []face

	for i := range points {
		for j := i + 1; j < len(points); j++ {
			for k := j + 1; k < len(points); k++ {
				n := points[j].sub(points[i]).cross(points[k].sub(points[i]))
				if n.length() < eps {
					continue
				}
				n = n.unit()
				if n.dot(points[i]) < 0 {
					n = n.scale(-1)
				}

				var on []int
				supporting := true
				for p := range points {
					d := n.dot(points[p].sub(points[i]))
					if d > eps {
						supporting = false
						break
					}
					if d > -eps {
						on = append(on, p)
					}
				}
				if !supporting {
					continue
				}
				key := fmt.Sprint(on)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, face{loop: clockwise(points, on, n), normal: n})
			}
		}
	}
	return out
}

// clockwise orders the points of a face clockwise when viewed from the tip of normal.
func clockwise(points []vec3, on []int, normal vec3) []int {
	var centre vec3
	for _, p := range on {
		centre = centre.add(points[p])
	}
	centre = centre.scale(1 / float64(len(on)))

	u := points[on[0]].sub(centre).unit()
	w := normal.cross(u)
	angle := func(p int) float64 {
		d := points[p].sub(centre)
		return math.Atan2(d.dot(w), d.dot(u))
	}

	loop := append([]int(nil), on...)
	sort.Slice(loop, func(a, b int) bool {
		return angle(loop[a]) > angle(loop[b])
	})
	return loop
}
