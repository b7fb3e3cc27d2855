// Package geometry defines the vertex record consumed by the scene pipeline and
// the Provider abstraction every mesh source implements.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// MaxVertices is the largest vertex count addressable by 16-bit indices.
const MaxVertices = math.MaxUint16 + 1

var (
	// ErrIndexOutOfRange is returned by Validate when an index does not address a vertex.
	ErrIndexOutOfRange = errors.New("geometry: index out of range")

	// ErrIncompleteTriangle is returned by Validate when the index count is not a multiple of 3.
	ErrIncompleteTriangle = errors.New("geometry: index count is not a multiple of 3")

	// ErrTooManyVertices is returned by Validate when the vertex count exceeds what 16-bit indices can address.
	ErrTooManyVertices = errors.New("geometry: too many vertices for 16-bit indices")
)

// Provider is any source of triangulated geometry.
//
// Geometry must be referentially transparent: repeated calls on the same
// value return equal vertex and index sequences. Every index must be less
// than the vertex count and the index count must be a multiple of 3; these
// are caller responsibilities and are not checked by the scene.
type Provider interface {
	Geometry() ([]Vertex, []uint16)
}

// Cached is a Provider holding an owned copy of a vertex/index pair.
// It lets expensive generators be evaluated once and replayed cheaply.
type Cached struct {
	vertices []Vertex
	indices  []uint16
}

var _ Provider = &Cached{}

// NewCached copies vertices and indices into a new Cached. No validation is performed.
//
// Parameters:
//   - vertices: the vertex sequence to copy
//   - indices: the index sequence to copy
//
// Returns:
//   - *Cached: the cached geometry
func NewCached(vertices []Vertex, indices []uint16) *Cached {
	return &Cached{
		vertices: cloneSlice(vertices),
		indices:  cloneSlice(indices),
	}
}

// Capture evaluates p exactly once and caches the result.
//
// Parameters:
//   - p: the provider to evaluate
//
// Returns:
//   - *Cached: the cached geometry
func Capture(p Provider) *Cached {
	v, i := p.Geometry()
	return NewCached(v, i)
}

// Geometry returns fresh copies of the stored sequences, so callers may mutate
// the result without affecting later calls.
func (c *Cached) Geometry() ([]Vertex, []uint16) {
	return cloneSlice(c.vertices), cloneSlice(c.indices)
}

// VertexCount returns the number of stored vertices.
func (c *Cached) VertexCount() int {
	return len(c.vertices)
}

// IndexCount returns the number of stored indices.
func (c *Cached) IndexCount() int {
	return len(c.indices)
}

// Validate checks the invariants a Provider promises but the scene does not enforce.
//
// Parameters:
//   - vertices: the vertex sequence
//   - indices: the index sequence
//
// Returns:
//   - error: nil, or one of ErrTooManyVertices, ErrIncompleteTriangle, ErrIndexOutOfRange
func Validate(vertices []Vertex, indices []uint16) error {
	if len(vertices) > MaxVertices {
		return fmt.Errorf("%w: %d", ErrTooManyVertices, len(vertices))
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIncompleteTriangle, len(indices))
	}
	for pos, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexOutOfRange, pos, idx, len(vertices))
		}
	}
	return nil
}

// cloneSlice returns a copy of s that is never nil, so empty geometry compares
// equal across calls.
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
