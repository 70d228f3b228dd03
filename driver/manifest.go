package driver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/spvasm/ir"
)

// Manifest describes a set of kernel signatures to assemble. It is the
// CLI driver's input format; real frontends hand the session ir.Functions
// directly.
//
//	version = "1.3"
//
//	[[kernel]]
//	name   = "scale"
//	params = ["ptr<global, f32>", "i32"]
//	return = "void"
type Manifest struct {
	Version string       `toml:"version"`
	Kernels []KernelDecl `toml:"kernel"`
}

// KernelDecl is one kernel signature in the manifest.
type KernelDecl struct {
	Name   string   `toml:"name"`
	Params []string `toml:"params"`
	Return string   `toml:"return"`
}

// LoadManifest reads and decodes a TOML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if len(m.Kernels) == 0 {
		return nil, fmt.Errorf("manifest: no [[kernel]] entries in %s", path)
	}
	return &m, nil
}

// Functions lowers the manifest declarations into stub kernel IR: each
// kernel gets a single block that returns immediately. Non-void kernels
// return their first parameter, so the parameter and return types must
// match.
func (m *Manifest) Functions() ([]*ir.Function, error) {
	fns := make([]*ir.Function, 0, len(m.Kernels))
	for _, decl := range m.Kernels {
		fn, err := decl.function()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func (d KernelDecl) function() (*ir.Function, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("manifest: kernel with no name")
	}

	params := make([]ir.Param, len(d.Params))
	for i, p := range d.Params {
		t, err := ParseType(p)
		if err != nil {
			return nil, fmt.Errorf("manifest: kernel %q param %d: %w", d.Name, i, err)
		}
		params[i] = ir.Param{Name: fmt.Sprintf("p%d", i), Type: t}
	}

	var ret ir.Type
	if d.Return != "" && d.Return != "void" {
		t, err := ParseType(d.Return)
		if err != nil {
			return nil, fmt.Errorf("manifest: kernel %q return: %w", d.Name, err)
		}
		ret = t
	}

	var term ir.Terminator
	if ret == nil {
		term = ir.ReturnVoid{}
	} else {
		if len(params) == 0 || FormatType(params[0].Type) != FormatType(ret) {
			return nil, fmt.Errorf("manifest: kernel %q: non-void return requires a first parameter of the return type", d.Name)
		}
		term = ir.Return{Value: ir.Argument{Index: 0}}
	}

	return &ir.Function{
		Name:   d.Name,
		Params: params,
		Return: ret,
		Blocks: []*ir.Block{{Name: "entry", Terminator: term}},
		Kernel: true,
	}, nil
}

// ParseType parses the manifest type syntax:
//
//	void | bool | i8..i64 | u8..u64 | f16..f64
//	ptr<T> | ptr<space, T>      space: generic|function|workgroup|global|private|constant
//	[N]T
//	struct{T, T, ...}
func ParseType(s string) (ir.Type, error) {
	p := &typeParser{input: strings.TrimSpace(s)}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected trailing %q in type %q", p.input[p.pos:], s)
	}
	return t, nil
}

// FormatType renders a type back into the manifest syntax. The output is
// deterministic and structural, so it doubles as a cache-key component.
func FormatType(t ir.Type) string {
	switch n := t.(type) {
	case nil, ir.Void:
		return "void"
	case ir.Bool:
		return "bool"
	case ir.Int:
		if n.Signed {
			return "i" + strconv.FormatUint(uint64(n.Width), 10)
		}
		return "u" + strconv.FormatUint(uint64(n.Width), 10)
	case ir.Float:
		return "f" + strconv.FormatUint(uint64(n.Width), 10)
	case ir.Pointer:
		return "ptr<" + spaceName(n.Space) + ", " + FormatType(n.Elem) + ">"
	case ir.Array:
		return "[" + strconv.FormatUint(uint64(n.Length), 10) + "]" + FormatType(n.Elem)
	case ir.Struct:
		parts := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			parts[i] = FormatType(f)
		}
		return "struct{" + strings.Join(parts, ", ") + "}"
	case ir.Func:
		parts := make([]string, len(n.Params))
		for i, p := range n.Params {
			parts[i] = FormatType(p)
		}
		return "fn(" + strings.Join(parts, ", ") + ") " + FormatType(n.Return)
	case ir.Opaque:
		return "opaque<" + n.Name + ">"
	default:
		return fmt.Sprintf("%T", t)
	}
}

var addressSpaces = map[string]ir.AddressSpace{
	"generic":   ir.SpaceGeneric,
	"function":  ir.SpaceFunction,
	"workgroup": ir.SpaceWorkgroup,
	"global":    ir.SpaceCrossWorkgroup,
	"private":   ir.SpacePrivate,
	"constant":  ir.SpaceConstant,
}

func spaceName(space ir.AddressSpace) string {
	for name, s := range addressSpaces {
		if s == space {
			return name
		}
	}
	return "generic"
}

var scalarTypes = map[string]ir.Type{
	"void": ir.Void{},
	"bool": ir.Bool{},
	"i8":   ir.Int{Width: 8, Signed: true},
	"i16":  ir.Int{Width: 16, Signed: true},
	"i32":  ir.Int{Width: 32, Signed: true},
	"i64":  ir.Int{Width: 64, Signed: true},
	"u8":   ir.Int{Width: 8, Signed: false},
	"u16":  ir.Int{Width: 16, Signed: false},
	"u32":  ir.Int{Width: 32, Signed: false},
	"u64":  ir.Int{Width: 64, Signed: false},
	"f16":  ir.Float{Width: 16},
	"f32":  ir.Float{Width: 32},
	"f64":  ir.Float{Width: 64},
}

type typeParser struct {
	input string
	pos   int
}

func (p *typeParser) parse() (ir.Type, error) {
	p.skipSpace()

	switch {
	case p.consume("ptr<"):
		return p.parsePointer()
	case p.consume("struct{"):
		return p.parseStruct()
	case p.consume("["):
		return p.parseArray()
	}

	word := p.word()
	if t, ok := scalarTypes[word]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", word)
}

func (p *typeParser) parsePointer() (ir.Type, error) {
	p.skipSpace()

	space := ir.SpaceGeneric
	mark := p.pos
	word := p.word()
	p.skipSpace()
	if s, ok := addressSpaces[word]; ok && p.consume(",") {
		space = s
	} else {
		p.pos = mark
	}

	elem, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.consume(">") {
		return nil, fmt.Errorf("missing > in pointer type")
	}
	return ir.Pointer{Space: space, Elem: elem}, nil
}

func (p *typeParser) parseStruct() (ir.Type, error) {
	var fields []ir.Type
	for {
		p.skipSpace()
		if p.consume("}") {
			return ir.Struct{Fields: fields}, nil
		}
		if len(fields) > 0 && !p.consume(",") {
			return nil, fmt.Errorf("missing , in struct type")
		}
		field, err := p.parse()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
}

func (p *typeParser) parseArray() (ir.Type, error) {
	p.skipSpace()
	digits := p.word()
	length, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad array length %q", digits)
	}
	if !p.consume("]") {
		return nil, fmt.Errorf("missing ] in array type")
	}
	elem, err := p.parse()
	if err != nil {
		return nil, err
	}
	return ir.Array{Elem: elem, Length: uint32(length)}, nil
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) consume(prefix string) bool {
	if strings.HasPrefix(p.input[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *typeParser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '<' || c == '>' || c == ',' || c == ' ' || c == '{' || c == '}' || c == ']' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}
