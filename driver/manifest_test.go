package driver

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gogpu/spvasm/ir"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  ir.Type
	}{
		{"void", ir.Void{}},
		{"bool", ir.Bool{}},
		{"i32", ir.Int{Width: 32, Signed: true}},
		{"u64", ir.Int{Width: 64, Signed: false}},
		{"f16", ir.Float{Width: 16}},
		{"ptr<f32>", ir.Pointer{Space: ir.SpaceGeneric, Elem: ir.Float{Width: 32}}},
		{"ptr<global, f32>", ir.Pointer{Space: ir.SpaceCrossWorkgroup, Elem: ir.Float{Width: 32}}},
		{"ptr<workgroup , i8>", ir.Pointer{Space: ir.SpaceWorkgroup, Elem: ir.Int{Width: 8, Signed: true}}},
		{"[16]f32", ir.Array{Elem: ir.Float{Width: 32}, Length: 16}},
		{"[4][4]f64", ir.Array{Elem: ir.Array{Elem: ir.Float{Width: 64}, Length: 4}, Length: 4}},
		{"struct{i32, f32}", ir.Struct{Fields: []ir.Type{
			ir.Int{Width: 32, Signed: true},
			ir.Float{Width: 32},
		}}},
		{"struct{}", ir.Struct{}},
		{"ptr<constant, struct{i64, [2]u8}>", ir.Pointer{Space: ir.SpaceConstant, Elem: ir.Struct{Fields: []ir.Type{
			ir.Int{Width: 64, Signed: true},
			ir.Array{Elem: ir.Int{Width: 8, Signed: false}, Length: 2},
		}}}},
		{"  i32  ", ir.Int{Width: 32, Signed: true}},
	}

	for _, tc := range tests {
		got, err := ParseType(tc.input)
		if err != nil {
			t.Errorf("ParseType(%q): %v", tc.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseType(%q) = %#v, want %#v", tc.input, got, tc.want)
		}
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"i33",
		"float",
		"ptr<",
		"ptr<f32",
		"ptr<galactic, f32>",
		"[x]f32",
		"[4f32",
		"struct{i32",
		"i32 trailing",
	} {
		if _, err := ParseType(input); err == nil {
			t.Errorf("ParseType(%q): expected error", input)
		}
	}
}

func TestFormatType_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"void",
		"bool",
		"u16",
		"f64",
		"ptr<global, f32>",
		"[8]i32",
		"struct{i32, ptr<workgroup, f32>, [2]u64}",
	} {
		parsed, err := ParseType(s)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", s, err)
		}
		if got := FormatType(parsed); got != s {
			t.Errorf("FormatType(ParseType(%q)) = %q", s, got)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernels.toml")
	src := `
version = "1.3"

[[kernel]]
name   = "scale"
params = ["ptr<global, f32>", "i32"]
return = "void"

[[kernel]]
name   = "passthrough"
params = ["i64"]
return = "i64"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Version != "1.3" {
		t.Errorf("version = %q, want 1.3", m.Version)
	}
	if len(m.Kernels) != 2 {
		t.Fatalf("got %d kernels, want 2", len(m.Kernels))
	}

	fns, err := m.Functions()
	if err != nil {
		t.Fatalf("Functions: %v", err)
	}

	scale := fns[0]
	if scale.Name != "scale" || !scale.Kernel {
		t.Errorf("scale = %q kernel=%v", scale.Name, scale.Kernel)
	}
	if len(scale.Params) != 2 || scale.Return != nil {
		t.Errorf("scale signature: %d params, return %v", len(scale.Params), scale.Return)
	}
	if _, ok := scale.Blocks[0].Terminator.(ir.ReturnVoid); !ok {
		t.Errorf("void kernel terminator = %T", scale.Blocks[0].Terminator)
	}

	pass := fns[1]
	if term, ok := pass.Blocks[0].Terminator.(ir.Return); !ok || term.Value != (ir.Argument{Index: 0}) {
		t.Errorf("passthrough terminator = %#v", pass.Blocks[0].Terminator)
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(empty, []byte(`version = "1.3"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(empty); err == nil {
		t.Error("expected error for manifest without kernels")
	}

	if _, err := LoadManifest(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestManifestFunctions_ReturnMismatch(t *testing.T) {
	m := &Manifest{Kernels: []KernelDecl{{
		Name:   "bad",
		Params: []string{"i32"},
		Return: "f32",
	}}}
	if _, err := m.Functions(); err == nil {
		t.Error("expected error when return type differs from first parameter")
	}
}
