package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/gogpu/naga"
)

// compiled is the implementation of the Compiled interface.
type compiled struct {
	vertex   []byte
	fragment []byte
}

// Compiled is a pair of SPIR-V modules, one per stage, ready to hand to a scene.
type Compiled interface {
	// Vertex returns the vertex stage bytecode.
	//
	// Returns:
	//   - []byte: SPIR-V bytecode
	Vertex() []byte

	// Fragment returns the fragment stage bytecode.
	//
	// Returns:
	//   - []byte: SPIR-V bytecode
	Fragment() []byte
}

var _ Compiled = &compiled{}

// NewCompiled wraps already compiled bytecode. The slices are not copied or validated;
// validation happens when the pair is handed to a scene.
//
// Parameters:
//   - vertex: vertex stage SPIR-V
//   - fragment: fragment stage SPIR-V
//
// Returns:
//   - Compiled: the shader pair
func NewCompiled(vertex, fragment []byte) Compiled {
	return &compiled{vertex: vertex, fragment: fragment}
}

func (c *compiled) Vertex() []byte {
	return c.vertex
}

func (c *compiled) Fragment() []byte {
	return c.fragment
}

// CompileWGSL compiles one WGSL module to SPIR-V with naga. The module must
// declare an entry point named EntryPoint for the given stage.
//
// Parameters:
//   - source: WGSL source
//   - stage: the stage the module is compiled for
//
// Returns:
//   - []byte: SPIR-V bytecode
//   - error: *CompilationError when the entry point is missing or naga rejects the source
func CompileWGSL(source string, stage Stage) ([]byte, error) {
	refl := Reflect(source, stage)
	if refl.EntryPoint != EntryPoint {
		return nil, &CompilationError{
			Stage:  stage,
			Reason: fmt.Sprintf("entry point %q not found (got %q)", EntryPoint, refl.EntryPoint),
		}
	}

	code, err := naga.Compile(source)
	if err != nil {
		return nil, &CompilationError{Stage: stage, Err: err}
	}
	if _, err := ReadSPIRV(code); err != nil {
		return nil, &CompilationError{Stage: stage, Reason: "compiler produced invalid SPIR-V", Err: err}
	}

	common.Logger().Debug("shader compiled",
		"stage", stage.String(),
		"bytes", len(code),
		"bindings", len(refl.Bindings),
	)
	return code, nil
}

// CompileSources compiles a vertex and fragment WGSL pair.
//
// Parameters:
//   - vertexWGSL: vertex stage source
//   - fragmentWGSL: fragment stage source
//
// Returns:
//   - Compiled: the compiled pair
//   - error: the first *CompilationError encountered
func CompileSources(vertexWGSL, fragmentWGSL string) (Compiled, error) {
	vert, err := CompileWGSL(vertexWGSL, StageVertex)
	if err != nil {
		return nil, err
	}
	frag, err := CompileWGSL(fragmentWGSL, StageFragment)
	if err != nil {
		return nil, err
	}
	return NewCompiled(vert, frag), nil
}

// CompileDefault compiles DefaultVertexWGSL and DefaultFragmentWGSL.
//
// Returns:
//   - Compiled: the compiled default shaders
//   - error: a *CompilationError if naga rejects either module
func CompileDefault() (Compiled, error) {
	return CompileSources(DefaultVertexWGSL, DefaultFragmentWGSL)
}
