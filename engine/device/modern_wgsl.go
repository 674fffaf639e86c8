package device

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// Shader locations of the generated vertex stage, shared with the core program.
const (
	wgslLocPosition = attribPosition
	wgslLocColor    = attribColor
	wgslLocTexCoord = attribTexCoord
)

type wgslInput struct {
	format gputypes.VertexFormat
	// typ is the type the shader declares for the attribute.
	typ string
}

// wgslInputs maps declaration types to vertex formats. The packed 10-10-10-2 types have no
// WebGPU vertex format and are left zero.
var wgslInputs = [declTypeCount]wgslInput{
	DeclFloat1:    {gputypes.VertexFormatFloat32, "f32"},
	DeclFloat2:    {gputypes.VertexFormatFloat32x2, "vec2<f32>"},
	DeclFloat3:    {gputypes.VertexFormatFloat32x3, "vec3<f32>"},
	DeclFloat4:    {gputypes.VertexFormatFloat32x4, "vec4<f32>"},
	DeclColor:     {gputypes.VertexFormatUnorm8x4, "vec4<f32>"},
	DeclUByte4:    {gputypes.VertexFormatUint8x4, "vec4<u32>"},
	DeclShort2:    {gputypes.VertexFormatSint16x2, "vec2<i32>"},
	DeclShort4:    {gputypes.VertexFormatSint16x4, "vec4<i32>"},
	DeclUByte4N:   {gputypes.VertexFormatUnorm8x4, "vec4<f32>"},
	DeclShort2N:   {gputypes.VertexFormatSnorm16x2, "vec2<f32>"},
	DeclShort4N:   {gputypes.VertexFormatSnorm16x4, "vec4<f32>"},
	DeclUShort2N:  {gputypes.VertexFormatUnorm16x2, "vec2<f32>"},
	DeclUShort4N:  {gputypes.VertexFormatUnorm16x4, "vec4<f32>"},
	DeclFloat16x2: {gputypes.VertexFormatFloat16x2, "vec2<f32>"},
	DeclFloat16x4: {gputypes.VertexFormatFloat16x4, "vec4<f32>"},
}

const wgslPrelude = `struct Uniforms {
    view: mat4x4<f32>,
    proj: mat4x4<f32>,
    model: mat4x4<f32>,
    viewport: vec4<f32>,
    flags: vec4<u32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var t_diffuse: texture_2d<f32>;
@group(0) @binding(2) var s_diffuse: sampler;

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) texcoord: vec2<f32>,
}
`

const wgslFragment = `
@fragment
fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
    let texel = textureSample(t_diffuse, s_diffuse, v.texcoord);
    return select(v.color, v.color * texel, u.flags.x != 0u);
}
`

// modernShader is the generated program and vertex buffer layout of one vertex layout.
type modernShader struct {
	source string
	buffer gputypes.VertexBufferLayout
}

// generateWGSL builds the shader for a vertex layout. Only the first position, color and texture
// coordinate elements are consumed, the rest of the vertex is skipped by the stride.
func generateWGSL(elements []VertexElement, stride int) (modernShader, error) {
	var position, color, texcoord *VertexElement
	for i := range elements {
		e := &elements[i]
		if e.UsageIndex != 0 {
			continue
		}
		switch e.Usage {
		case UsagePosition, UsagePositionT:
			if position == nil {
				position = e
			}
		case UsageColor:
			if color == nil {
				color = e
			}
		case UsageTexCoord:
			if texcoord == nil {
				texcoord = e
			}
		}
	}
	if position == nil {
		return modernShader{}, fmt.Errorf("modern: layout has no position: %w", ErrInvalidArgument)
	}

	sh := modernShader{buffer: gputypes.VertexBufferLayout{
		ArrayStride: uint64(stride),
		StepMode:    gputypes.VertexStepModeVertex,
	}}
	var in strings.Builder
	in.WriteString("struct VertexInput {\n")
	for _, a := range []struct {
		e    *VertexElement
		loc  uint32
		name string
	}{
		{position, wgslLocPosition, "position"},
		{color, wgslLocColor, "color"},
		{texcoord, wgslLocTexCoord, "texcoord"},
	} {
		if a.e == nil {
			continue
		}
		input := wgslInputs[a.e.Type]
		if input.format == 0 {
			return modernShader{}, fmt.Errorf("modern: %s %s: %w", a.e.Usage, a.e.Type, ErrUnsupported)
		}
		sh.buffer.Attributes = append(sh.buffer.Attributes, gputypes.VertexAttribute{
			Format:         input.format,
			Offset:         uint64(a.e.Offset),
			ShaderLocation: a.loc,
		})
		fmt.Fprintf(&in, "    @location(%d) %s: %s,\n", a.loc, a.name, input.typ)
	}
	in.WriteString("}\n")

	var vs strings.Builder
	vs.WriteString("\n@vertex\nfn vs_main(a: VertexInput) -> VertexOutput {\n    var o: VertexOutput;\n")
	fmt.Fprintf(&vs, "    let pos = %s.xyz;\n", wgslVec4("a.position", position.Type, "1.0"))
	if position.Usage == UsagePositionT {
		vs.WriteString("    o.clip = vec4<f32>(pos.x / u.viewport.x * 2.0 - 1.0, 1.0 - pos.y / u.viewport.y * 2.0, pos.z, 1.0);\n")
	} else {
		vs.WriteString("    o.clip = u.proj * u.view * u.model * vec4<f32>(pos, 1.0);\n")
	}
	switch {
	case color == nil:
		vs.WriteString("    o.color = vec4<f32>(1.0, 1.0, 1.0, 1.0);\n")
	case color.Type == DeclColor:
		// packed colors are stored B, G, R, A
		vs.WriteString("    o.color = a.color.zyxw;\n")
	default:
		fmt.Fprintf(&vs, "    o.color = %s;\n", wgslVec4("a.color", color.Type, "1.0"))
	}
	if texcoord == nil {
		vs.WriteString("    o.texcoord = vec2<f32>(0.0, 0.0);\n")
	} else {
		fmt.Fprintf(&vs, "    o.texcoord = %s.xy;\n", wgslVec4("a.texcoord", texcoord.Type, "1.0"))
	}
	vs.WriteString("    return o;\n}\n")

	sh.source = wgslPrelude + "\n" + in.String() + vs.String() + wgslFragment
	return sh, nil
}

// wgslVec4 widens an attribute expression to vec4<f32>, padding missing components with zero
// and w with the given literal.
func wgslVec4(expr string, t DeclType, w string) string {
	input := wgslInputs[t]
	if !strings.HasSuffix(input.typ, "<f32>") && input.typ != "f32" {
		switch t.Components() {
		case 1:
			expr = "f32(" + expr + ")"
		default:
			expr = fmt.Sprintf("vec%d<f32>(%s)", t.Components(), expr)
		}
	}
	switch t.Components() {
	case 1:
		return fmt.Sprintf("vec4<f32>(%s, 0.0, 0.0, %s)", expr, w)
	case 2:
		return fmt.Sprintf("vec4<f32>(%s, 0.0, %s)", expr, w)
	case 3:
		return fmt.Sprintf("vec4<f32>(%s, %s)", expr, w)
	default:
		return expr
	}
}

// validateWGSL runs a generated shader through the WGSL front end and IR validator and checks
// both entry points survived.
func validateWGSL(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("modern: wgsl parse: %w", err)
	}
	mod, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return fmt.Errorf("modern: wgsl lower: %w", err)
	}
	issues, err := naga.Validate(mod)
	if err != nil {
		return fmt.Errorf("modern: wgsl validate: %w", err)
	}
	if len(issues) > 0 {
		return fmt.Errorf("modern: wgsl validate: %s", issues[0].Error())
	}
	found := 0
	for _, ep := range mod.EntryPoints {
		if ep.Name == "vs_main" || ep.Name == "fs_main" {
			found++
		}
	}
	if found != 2 {
		return fmt.Errorf("modern: wgsl is missing an entry point")
	}
	return nil
}
