package gfx

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// CompileShader compiles a single stage. On failure the compiler log is
// reported, the shader object is deleted and the zero handle is returned
// together with a *ShaderError. A failed shader must not be linked.
func CompileShader(ctx Context, log *zap.Logger, kind ShaderKind, source string) (Shader, error) {
	shader := ctx.CreateShader(kind)
	ctx.ShaderSource(shader, source)
	ctx.CompileShader(shader)

	if !ctx.CompileStatus(shader) {
		info := ctx.ShaderInfoLog(shader)
		orNop(log).Error("shader compile failed",
			zap.Stringer("stage", kind),
			zap.String("log", info))
		ctx.DeleteShader(shader)
		return 0, &ShaderError{Kind: kind, Log: info}
	}

	return shader, nil
}

// NewProgram compiles both stages and links them. Both stages are always
// compiled so that every diagnostic is reported, but linking only happens
// when both succeeded. The shader objects are released once linked.
func NewProgram(ctx Context, log *zap.Logger, vertexSource, fragmentSource string) (Program, error) {
	log = orNop(log)

	vertexShader, vertexErr := CompileShader(ctx, log, VertexShader, vertexSource)
	fragmentShader, fragmentErr := CompileShader(ctx, log, FragmentShader, fragmentSource)
	if vertexErr != nil || fragmentErr != nil {
		if vertexShader != 0 {
			ctx.DeleteShader(vertexShader)
		}
		if fragmentShader != 0 {
			ctx.DeleteShader(fragmentShader)
		}
		if vertexErr != nil {
			return 0, errors.Wrap(vertexErr, "new program")
		}
		return 0, errors.Wrap(fragmentErr, "new program")
	}

	program := ctx.CreateProgram()
	ctx.AttachShader(program, vertexShader)
	ctx.AttachShader(program, fragmentShader)
	ctx.LinkProgram(program)

	ctx.DeleteShader(vertexShader)
	ctx.DeleteShader(fragmentShader)

	if !ctx.LinkStatus(program) {
		info := ctx.ProgramInfoLog(program)
		log.Error("program link failed", zap.String("log", info))
		ctx.DeleteProgram(program)
		return 0, errors.Wrap(&LinkError{Log: info}, "new program")
	}

	log.Debug("program linked", zap.Uint32("program", uint32(program)))
	return program, nil
}

// AttribLocation looks up an attribute of a linked program. The zero
// program and absent names yield InvalidAttrib.
func AttribLocation(ctx Context, program Program, name string) Attrib {
	if program == 0 {
		return InvalidAttrib
	}
	return ctx.GetAttribLocation(program, name)
}

// UniformLocation looks up a uniform of a linked program. The zero program
// and absent names yield InvalidUniform.
func UniformLocation(ctx Context, program Program, name string) Uniform {
	if program == 0 {
		return InvalidUniform
	}
	return ctx.GetUniformLocation(program, name)
}
