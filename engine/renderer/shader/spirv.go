package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// spirvHeaderWords is the number of words in a SPIR-V module header.
const spirvHeaderWords = 5

var (
	// ErrEmptyBytecode is returned when a shader stage has no bytecode at all.
	ErrEmptyBytecode = errors.New("shader: empty bytecode")

	// ErrUnalignedBytecode is returned when the bytecode length is not a whole number of 32-bit words.
	ErrUnalignedBytecode = errors.New("shader: bytecode length is not a multiple of 4")

	// ErrTruncatedBytecode is returned when the bytecode is shorter than a SPIR-V header.
	ErrTruncatedBytecode = errors.New("shader: bytecode shorter than SPIR-V header")

	// ErrBadMagic is returned when the first word is not the SPIR-V magic number in either byte order.
	ErrBadMagic = errors.New("shader: missing SPIR-V magic number")
)

// Stage identifies the pipeline stage a shader module is compiled for.
type Stage int

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = iota

	// StageFragment is the fragment stage.
	StageFragment
)

// String returns the lower-case stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// CompilationError reports bytecode or source that could not be turned into a shader module.
type CompilationError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *CompilationError) Error() string {
	msg := "shader: " + e.Stage.String() + " compilation failed"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// ReadSPIRV validates raw SPIR-V bytecode and decodes it into 32-bit words in host order.
// Modules written in either byte order are accepted; the magic number decides which.
//
// Parameters:
//   - code: the raw bytecode
//
// Returns:
//   - []uint32: the decoded words
//   - error: ErrEmptyBytecode, ErrUnalignedBytecode, ErrTruncatedBytecode or ErrBadMagic
func ReadSPIRV(code []byte) ([]uint32, error) {
	if len(code) == 0 {
		return nil, ErrEmptyBytecode
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnalignedBytecode, len(code))
	}
	if len(code) < spirvHeaderWords*4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedBytecode, len(code))
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(code) == SPIRVMagic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(code) == SPIRVMagic:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, binary.LittleEndian.Uint32(code))
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = order.Uint32(code[i*4:])
	}
	return words, nil
}

// SPIRVBytes packs words back into little-endian bytecode, the form the wgpu bindings upload.
//
// Parameters:
//   - words: SPIR-V words
//
// Returns:
//   - []byte: little-endian bytecode
func SPIRVBytes(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}
