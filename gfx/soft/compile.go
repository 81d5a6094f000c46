package soft

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paperboard/example/gfx"
)

// The compiler understands the pass-through subset of GLSL ES 1.00 the
// demos use:
//
//	attribute vec3 position;
//	uniform   mat4 mvpMatrix;
//	varying   vec4 vColor;
//	void main(void) {
//		vColor = color;
//		gl_Position = mvpMatrix * vec4(position, 1.0);
//	}
//
// Declarations are checked, every other statement in main is ignored
// except the ones that feed gl_Position, gl_FragColor and varyings.

var (
	declRE     = regexp.MustCompile(`^(attribute|uniform|varying)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;$`)
	precRE     = regexp.MustCompile(`^precision\s+(lowp|mediump|highp)\s+\w+\s*;$`)
	mainRE     = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(void)?\s*\)`)
	assignRE   = regexp.MustCompile(`^(\w+)\s*=\s*(.+?)\s*;$`)
	vec4WRE    = regexp.MustCompile(`^vec4\s*\(\s*(\w+)\s*,\s*([-+]?[0-9]*\.?[0-9]+)\s*\)$`)
	vec4LitRE  = regexp.MustCompile(`^vec4\s*\(\s*([-+]?[0-9]*\.?[0-9]+)\s*,\s*([-+]?[0-9]*\.?[0-9]+)\s*,\s*([-+]?[0-9]*\.?[0-9]+)\s*,\s*([-+]?[0-9]*\.?[0-9]+)\s*\)$`)
	identRE    = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	knownTypes = map[string]int{"float": 1, "vec2": 2, "vec3": 3, "vec4": 4, "mat2": 4, "mat3": 9, "mat4": 16}
)

type decl struct {
	qual string
	typ  string
	name string
	line int
}

// position is the parsed right-hand side of gl_Position: a chain of mat4
// uniforms applied to an attribute.
type position struct {
	matrices []string
	attrib   string
	w        float32 // w of vec4(attrib, w); zero when attrib is a vec4
	widen    bool
}

// fragColor is either a varying passed through or a constant.
type fragColor struct {
	varying  string
	constant [4]float32
}

type compiled struct {
	kind     gfx.ShaderKind
	decls    []decl
	position *position         // vertex only
	varyings map[string]string // vertex only: varying -> attribute
	color    *fragColor        // fragment only
}

func (c *compiled) lookup(qual, name string) (decl, bool) {
	for _, d := range c.decls {
		if d.qual == qual && d.name == name {
			return d, true
		}
	}
	return decl{}, false
}

type compileError struct {
	line int
	tok  string
	msg  string
}

func (e compileError) String() string {
	return fmt.Sprintf("ERROR: 0:%d: '%s' : %s", e.line, e.tok, e.msg)
}

func stripComments(src string) []string {
	var out []string
	inBlock := false
	for _, line := range strings.Split(src, "\n") {
		var b strings.Builder
		for i := 0; i < len(line); i++ {
			if inBlock {
				if strings.HasPrefix(line[i:], "*/") {
					inBlock = false
					i++
				}
				continue
			}
			if strings.HasPrefix(line[i:], "//") {
				break
			}
			if strings.HasPrefix(line[i:], "/*") {
				inBlock = true
				i++
				continue
			}
			b.WriteByte(line[i])
		}
		out = append(out, b.String())
	}
	return out
}

// compile parses src as a shader of the given kind. It returns the info
// log lines on failure.
func compile(kind gfx.ShaderKind, src string) (*compiled, []string) {
	c := &compiled{kind: kind, varyings: make(map[string]string)}
	var errs []compileError
	fail := func(line int, tok, msg string) {
		errs = append(errs, compileError{line: line, tok: tok, msg: msg})
	}

	lines := stripComments(src)
	depth, sawMain := 0, false
	type stmt struct {
		text string
		line int
	}
	var body []stmt

	for i, raw := range lines {
		n := i + 1
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if depth == 0 {
			switch {
			case precRE.MatchString(text):
				continue
			case mainRE.MatchString(text):
				sawMain = true
			case strings.HasPrefix(text, "attribute") || strings.HasPrefix(text, "uniform") || strings.HasPrefix(text, "varying"):
				m := declRE.FindStringSubmatch(text)
				if m == nil {
					fail(n, text, "syntax error")
					continue
				}
				d := decl{qual: m[1], typ: m[2], name: m[3], line: n}
				if _, ok := knownTypes[d.typ]; !ok {
					fail(n, d.typ, "syntax error: unknown type")
					continue
				}
				if d.qual == "attribute" && kind != gfx.VertexShader {
					fail(n, "attribute", "supported in vertex shaders only")
					continue
				}
				if d.qual == "attribute" && strings.HasPrefix(d.typ, "mat") {
					fail(n, d.typ, "matrix attributes are not supported")
					continue
				}
				if _, dup := c.lookupAny(d.name); dup {
					fail(n, d.name, "redefinition")
					continue
				}
				c.decls = append(c.decls, d)
				continue
			case text == "{" || text == "}":
			default:
				fail(n, firstToken(text), "syntax error")
				continue
			}
		}

		for _, ch := range text {
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth < 0 {
			fail(n, "}", "syntax error: unbalanced braces")
			depth = 0
		}

		// Statements inside main. One statement per line is assumed.
		inner := strings.TrimSpace(strings.Trim(text, "{}"))
		if depth > 0 || strings.Contains(text, "}") {
			if mainRE.MatchString(inner) {
				inner = strings.TrimSpace(mainRE.ReplaceAllString(inner, ""))
				inner = strings.TrimSpace(strings.Trim(inner, "{}"))
			}
			if inner != "" {
				body = append(body, stmt{text: inner, line: n})
			}
		}
	}

	last := len(lines)
	if depth != 0 {
		fail(last, "", "syntax error: unexpected end of file")
	}
	if !sawMain {
		fail(last, "", "Missing main()")
	}

	for _, s := range body {
		m := assignRE.FindStringSubmatch(s.text)
		if m == nil {
			continue
		}
		lhs, rhs := m[1], strings.TrimSpace(m[2])
		switch {
		case lhs == "gl_Position":
			if kind != gfx.VertexShader {
				fail(s.line, lhs, "undeclared identifier")
				continue
			}
			p, err := c.parsePosition(rhs)
			if err != "" {
				fail(s.line, rhs, err)
				continue
			}
			c.position = p
		case lhs == "gl_FragColor":
			if kind != gfx.FragmentShader {
				fail(s.line, lhs, "undeclared identifier")
				continue
			}
			col, err := c.parseColor(rhs)
			if err != "" {
				fail(s.line, rhs, err)
				continue
			}
			c.color = col
		default:
			d, ok := c.lookup("varying", lhs)
			if !ok || kind != gfx.VertexShader {
				continue
			}
			if !identRE.MatchString(rhs) {
				continue
			}
			a, ok := c.lookup("attribute", rhs)
			if !ok {
				fail(s.line, rhs, "undeclared identifier")
				continue
			}
			if a.typ != d.typ {
				fail(s.line, "=", fmt.Sprintf("cannot convert from 'attribute %s' to 'varying %s'", a.typ, d.typ))
				continue
			}
			c.varyings[lhs] = rhs
		}
	}

	if len(errs) == 0 && sawMain {
		if kind == gfx.VertexShader && c.position == nil {
			fail(last, "gl_Position", "not written")
		}
		if kind == gfx.FragmentShader && c.color == nil {
			fail(last, "gl_FragColor", "not written")
		}
	}

	if len(errs) > 0 {
		log := make([]string, len(errs))
		for i, e := range errs {
			log[i] = e.String()
		}
		log = append(log, fmt.Sprintf("ERROR: %d compilation errors.  No code generated.", len(errs)))
		return nil, log
	}
	return c, nil
}

func (c *compiled) lookupAny(name string) (decl, bool) {
	for _, d := range c.decls {
		if d.name == name {
			return d, true
		}
	}
	return decl{}, false
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}

func (c *compiled) parsePosition(rhs string) (*position, string) {
	terms := strings.Split(rhs, "*")
	p := &position{}
	for i, term := range terms {
		term = strings.TrimSpace(term)
		if i < len(terms)-1 {
			d, ok := c.lookup("uniform", term)
			if !ok {
				return nil, "undeclared identifier"
			}
			if d.typ != "mat4" {
				return nil, "wrong operand types: expected mat4"
			}
			p.matrices = append(p.matrices, term)
			continue
		}

		if m := vec4WRE.FindStringSubmatch(term); m != nil {
			d, ok := c.lookup("attribute", m[1])
			if !ok {
				return nil, "undeclared identifier"
			}
			if d.typ != "vec3" {
				return nil, "constructor: expected vec3 argument"
			}
			w, err := strconv.ParseFloat(m[2], 32)
			if err != nil {
				return nil, "syntax error"
			}
			p.attrib, p.w, p.widen = d.name, float32(w), true
			continue
		}
		d, ok := c.lookup("attribute", term)
		if !ok {
			return nil, "unsupported expression"
		}
		if d.typ != "vec4" {
			return nil, "cannot convert to 'Position highp 4-component vector of float'"
		}
		p.attrib = d.name
	}
	return p, ""
}

func (c *compiled) parseColor(rhs string) (*fragColor, string) {
	if m := vec4LitRE.FindStringSubmatch(rhs); m != nil {
		col := &fragColor{}
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(m[i+1], 32)
			if err != nil {
				return nil, "syntax error"
			}
			col.constant[i] = float32(v)
		}
		return col, ""
	}
	d, ok := c.lookup("varying", rhs)
	if !ok {
		return nil, "unsupported expression"
	}
	if d.typ != "vec4" {
		return nil, "cannot convert to 'FragColor 4-component vector of float'"
	}
	return &fragColor{varying: d.name}, ""
}
