package spirv

import (
	"errors"
	"testing"

	"github.com/gogpu/spvasm/ir"
)

func identityFunction() *ir.Function {
	i32 := ir.Int{Width: 32, Signed: true}
	return &ir.Function{
		Name:   "identity",
		Params: []ir.Param{{Name: "x", Type: i32}},
		Return: i32,
		Blocks: []*ir.Block{
			{Name: "entry", Terminator: ir.Return{Value: ir.Argument{Index: 0}}},
		},
	}
}

func TestFunctionAssembler_IdentityShape(t *testing.T) {
	ids := NewIDProvider()
	types := NewTypeTable(ids)

	fa := NewFunctionAssembler(identityFunction(), Version1_3, ids, types)
	if err := fa.Assemble(); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	insts := decodeWords(t, fa.Builder().Words())
	want := []Opcode{OpFunction, OpFunctionParameter, OpLabel, OpReturnValue, OpFunctionEnd}
	got := opcodeSequence(insts)
	if len(got) != len(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// OpFunction: result type, result, control, function type.
	fn := insts[0]
	if fn.Operands[1] != uint32(fa.FuncID()) {
		t.Errorf("OpFunction result = %d, want %d", fn.Operands[1], fa.FuncID())
	}
	if fn.Operands[2] != uint32(FunctionControlNone) {
		t.Errorf("OpFunction control = %d, want 0", fn.Operands[2])
	}

	if insts[1].Operands[1] != uint32(fa.ParamID(0)) {
		t.Errorf("OpFunctionParameter result = %d, want %d", insts[1].Operands[1], fa.ParamID(0))
	}

	// OpReturnValue carries the first parameter straight through.
	if insts[3].Operands[0] != uint32(fa.ParamID(0)) {
		t.Errorf("OpReturnValue operand = %d, want %d", insts[3].Operands[0], fa.ParamID(0))
	}
}

func TestFunctionAssembler_ForwardSwitch(t *testing.T) {
	u32 := ir.Int{Width: 32, Signed: false}

	exit := &ir.Block{Name: "exit", Terminator: ir.ReturnVoid{}}
	caseA := &ir.Block{Name: "a", Terminator: ir.Branch{Target: exit}}
	caseB := &ir.Block{Name: "b", Terminator: ir.Branch{Target: exit}}
	entry := &ir.Block{Name: "entry", Terminator: ir.Switch{
		Selector: ir.Argument{Index: 0},
		Default:  exit,
		Cases: []ir.SwitchCase{
			{Value: 1, Target: caseA},
			{Value: 2, Target: caseB},
		},
	}}
	fn := &ir.Function{
		Name:   "dispatch",
		Params: []ir.Param{{Name: "sel", Type: u32}},
		Blocks: []*ir.Block{entry, caseA, caseB, exit},
	}

	ids := NewIDProvider()
	types := NewTypeTable(ids)
	fa := NewFunctionAssembler(fn, Version1_3, ids, types)
	if err := fa.Assemble(); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	insts := decodeWords(t, fa.Builder().Words())
	switches := findInsts(insts, OpSwitch)
	if len(switches) != 1 {
		t.Fatalf("got %d OpSwitch, want 1", len(switches))
	}

	// Every target, including the forward ones, must name the label that
	// the target block's OpLabel later carries.
	labelOf := func(b *ir.Block) uint32 {
		t.Helper()
		id, err := fa.Label(b)
		if err != nil {
			t.Fatalf("Label(%s): %v", b.Name, err)
		}
		return uint32(id)
	}
	ops := switches[0].Operands
	if ops[1] != labelOf(exit) {
		t.Errorf("default target = %d, want %d", ops[1], labelOf(exit))
	}
	if ops[2] != 1 || ops[3] != labelOf(caseA) {
		t.Errorf("case 1 = %d -> %d, want 1 -> %d", ops[2], ops[3], labelOf(caseA))
	}
	if ops[4] != 2 || ops[5] != labelOf(caseB) {
		t.Errorf("case 2 = %d -> %d, want 2 -> %d", ops[4], ops[5], labelOf(caseB))
	}

	labels := findInsts(insts, OpLabel)
	if len(labels) != 4 {
		t.Fatalf("got %d OpLabel, want 4", len(labels))
	}
	wantOrder := []*ir.Block{entry, caseA, caseB, exit}
	for i, block := range wantOrder {
		if labels[i].Operands[0] != labelOf(block) {
			t.Errorf("OpLabel %d = %d, want %d (%s)", i, labels[i].Operands[0], labelOf(block), block.Name)
		}
	}
}

func TestFunctionAssembler_WideSelector(t *testing.T) {
	u64 := ir.Int{Width: 64, Signed: false}
	exit := &ir.Block{Name: "exit", Terminator: ir.ReturnVoid{}}
	entry := &ir.Block{Name: "entry", Terminator: ir.Switch{
		Selector: ir.Argument{Index: 0},
		Default:  exit,
		Cases:    []ir.SwitchCase{{Value: 0x100000001, Target: exit}},
	}}
	fn := &ir.Function{
		Name:   "wide",
		Params: []ir.Param{{Name: "sel", Type: u64}},
		Blocks: []*ir.Block{entry, exit},
	}

	ids := NewIDProvider()
	fa := NewFunctionAssembler(fn, Version1_3, ids, NewTypeTable(ids))
	if err := fa.Assemble(); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	switches := findInsts(decodeWords(t, fa.Builder().Words()), OpSwitch)
	// 64-bit case literal takes two words, low word first.
	ops := switches[0].Operands
	if len(ops) != 5 {
		t.Fatalf("OpSwitch operands = %v, want 5 words", ops)
	}
	if ops[2] != 1 || ops[3] != 1 {
		t.Errorf("case literal words = %#x %#x, want 0x1 0x1", ops[2], ops[3])
	}
}

func TestFunctionAssembler_Protocol(t *testing.T) {
	ids := NewIDProvider()
	types := NewTypeTable(ids)
	fa := NewFunctionAssembler(identityFunction(), Version1_3, ids, types)

	if err := fa.EmitBlocks(); !errors.Is(err, ErrInvariant) {
		t.Errorf("EmitBlocks before Begin: got %v, want ErrInvariant", err)
	}
	if err := fa.End(); !errors.Is(err, ErrInvariant) {
		t.Errorf("End before EmitBlocks: got %v, want ErrInvariant", err)
	}
	if err := fa.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := fa.Begin(); !errors.Is(err, ErrInvariant) {
		t.Errorf("double Begin: got %v, want ErrInvariant", err)
	}
	if err := fa.EmitBlocks(); err != nil {
		t.Fatalf("EmitBlocks: %v", err)
	}
	if err := fa.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := fa.End(); !errors.Is(err, ErrInvariant) {
		t.Errorf("double End: got %v, want ErrInvariant", err)
	}
}

func TestFunctionAssembler_MissingTerminator(t *testing.T) {
	fn := &ir.Function{
		Name:   "broken",
		Blocks: []*ir.Block{{Name: "entry"}},
	}
	ids := NewIDProvider()
	fa := NewFunctionAssembler(fn, Version1_3, ids, NewTypeTable(ids))
	if err := fa.Assemble(); !errors.Is(err, ErrInvariant) {
		t.Errorf("block without terminator: got %v, want ErrInvariant", err)
	}
}

func TestFunctionAssembler_BranchOutsideFunction(t *testing.T) {
	stray := &ir.Block{Name: "stray", Terminator: ir.ReturnVoid{}}
	fn := &ir.Function{
		Name:   "escape",
		Blocks: []*ir.Block{{Name: "entry", Terminator: ir.Branch{Target: stray}}},
	}
	ids := NewIDProvider()
	fa := NewFunctionAssembler(fn, Version1_3, ids, NewTypeTable(ids))
	if err := fa.Assemble(); !errors.Is(err, ErrInvariant) {
		t.Errorf("branch to unlisted block: got %v, want ErrInvariant", err)
	}
}

func TestFunctionAssembler_VoidReturnDefault(t *testing.T) {
	fn := &ir.Function{
		Name:   "noop",
		Blocks: []*ir.Block{{Name: "entry", Terminator: ir.ReturnVoid{}}},
	}
	ids := NewIDProvider()
	types := NewTypeTable(ids)
	fa := NewFunctionAssembler(fn, Version1_3, ids, types)
	if err := fa.Assemble(); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	voidID, err := types.GetOrCreateID(ir.Void{})
	if err != nil {
		t.Fatalf("GetOrCreateID: %v", err)
	}
	insts := decodeWords(t, fa.Builder().Words())
	if insts[0].Op != OpFunction || insts[0].Operands[0] != uint32(voidID) {
		t.Errorf("nil return should resolve to void, got %v %v", insts[0].Op, insts[0].Operands)
	}
}
