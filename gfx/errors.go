package gfx

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNoContext is returned when the host cannot provide a graphics
	// context for its surface.
	ErrNoContext = errors.New("graphics context unavailable")

	// ErrStride is returned when attribute data does not divide evenly
	// into vertices of the declared component count.
	ErrStride = errors.New("attribute data length is not a multiple of its stride")

	// ErrUnusable is returned when drawing is requested from a renderer
	// whose program never built.
	ErrUnusable = errors.New("renderer has no usable program")
)

// ShaderError reports a shader stage that failed to compile.
type ShaderError struct {
	Kind ShaderKind
	Log  string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("failed to compile %v shader: %v", e.Kind, strings.TrimSpace(e.Log))
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %v", strings.TrimSpace(e.Log))
}

var glErrorLookup = map[uint32]string{
	InvalidEnum:                 `GL_INVALID_ENUM`,
	InvalidValue:                `GL_INVALID_VALUE`,
	InvalidOperation:            `GL_INVALID_OPERATION`,
	StackOverflow:               `GL_STACK_OVERFLOW`,
	StackUnderflow:              `GL_STACK_UNDERFLOW`,
	OutOfMemory:                 `GL_OUT_OF_MEMORY`,
	InvalidFramebufferOperation: `GL_INVALID_FRAMEBUFFER_OPERATION`,
	ContextLost:                 `GL_CONTEXT_LOST`,
	ContextLostWebGL:            `CONTEXT_LOST_WEBGL`,
}

// ErrorName returns the symbolic name of a GL error code.
func ErrorName(code uint32) string {
	if name, ok := glErrorLookup[code]; ok {
		return name
	}
	return fmt.Sprintf("GL_ERROR UNKNOWN: %#x", code)
}

// GLError lists the error codes drained from a context.
type GLError []uint32

func (e GLError) Error() string {
	names := make([]string, len(e))
	for i, code := range e {
		names[i] = ErrorName(code)
	}
	return "GL_ERROR: " + strings.Join(names, ", ")
}

// maxDrainedErrors bounds CheckError against a context that reports the
// same error forever, as a lost context does.
const maxDrainedErrors = 16

// CheckError drains the accumulated error flags of ctx. It returns nil
// when none were set.
func CheckError(ctx Context) error {
	var codes GLError
	for len(codes) < maxDrainedErrors {
		code := ctx.GetError()
		if code == NoError {
			break
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}
	return codes
}
