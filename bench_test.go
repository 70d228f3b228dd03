package spvasm

import (
	"context"
	"testing"

	"github.com/gogpu/spvasm/ir"
	"github.com/gogpu/spvasm/spirv"
)

func benchKernel(name string) *ir.Function {
	i32 := ir.Int{Width: 32, Signed: true}
	f32 := ir.Float{Width: 32}
	return &ir.Function{
		Name:   name,
		Kernel: true,
		Params: []ir.Param{
			{Name: "dst", Type: ir.Pointer{Space: ir.SpaceCrossWorkgroup, Elem: f32}},
			{Name: "n", Type: i32},
		},
		Blocks: []*ir.Block{
			{Name: "entry", Terminator: ir.ReturnVoid{}},
		},
	}
}

func BenchmarkAssemble(b *testing.B) {
	fns := make([]*ir.Function, 16)
	for i := range fns {
		fns[i] = benchKernel("kernel_" + string(rune('a'+i)))
	}
	opts := DefaultOptions()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Assemble(ctx, fns, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPackHeader(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := spirv.PackHeader(spirv.OpTypeInt, 4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeString(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := spirv.EncodeString("kernel_vector_add_f32"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTypeLookup(b *testing.B) {
	ids := spirv.NewIDProvider()
	types := spirv.NewTypeTable(ids)
	t := ir.Pointer{Space: ir.SpaceCrossWorkgroup, Elem: ir.Struct{Fields: []ir.Type{
		ir.Int{Width: 32, Signed: true},
		ir.Array{Elem: ir.Float{Width: 32}, Length: 16},
	}}}
	if _, err := types.GetOrCreateID(t); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := types.GetOrCreateID(t); err != nil {
			b.Fatal(err)
		}
	}
}
