// Package ir defines the kernel intermediate representation consumed by the
// SPIR-V assembler.
//
// The IR is produced by an upstream compiler frontend and is consumed
// read-only: the assembler walks types, functions and basic blocks but never
// mutates them. Only the shapes the SPIR-V backend needs are modeled here;
// per-instruction block bodies are opaque to this package and lowered through
// a caller-provided hook.
package ir

// Type represents a semantic kernel type.
//
// Identity is structural: two Type values describing the same shape must
// lower to the same SPIR-V type declaration.
type Type interface {
	typeNode()
}

// Void is the unit/void type.
type Void struct{}

func (Void) typeNode() {}

// Bool is the boolean type.
type Bool struct{}

func (Bool) typeNode() {}

// Int is a sized integer type.
type Int struct {
	Width  uint32 // in bits: 8, 16, 32, 64
	Signed bool
}

func (Int) typeNode() {}

// Float is a sized floating-point type.
type Float struct {
	Width uint32 // in bits: 16, 32, 64
}

func (Float) typeNode() {}

// Pointer is a pointer into a particular address space.
type Pointer struct {
	Space AddressSpace
	Elem  Type
}

func (Pointer) typeNode() {}

// Array is a fixed-length array type.
type Array struct {
	Elem   Type
	Length uint32
}

func (Array) typeNode() {}

// Struct is an ordered-field aggregate type.
type Struct struct {
	Name   string
	Fields []Type
}

func (Struct) typeNode() {}

// Func is a function signature type.
type Func struct {
	Return Type
	Params []Type
}

func (Func) typeNode() {}

// Opaque is an upstream type with no SPIR-V lowering (reference views,
// runtime handles). The backend rejects it.
type Opaque struct {
	Name string
}

func (Opaque) typeNode() {}

// AddressSpace identifies the memory region a pointer addresses.
type AddressSpace uint8

const (
	SpaceGeneric AddressSpace = iota
	SpaceFunction
	SpaceWorkgroup
	SpaceCrossWorkgroup
	SpacePrivate
	SpaceConstant
)

// Function is one compiled kernel or device function.
type Function struct {
	Name   string
	Params []Param
	Return Type // nil means void
	Blocks []*Block

	// Kernel marks entry-point functions that need an OpEntryPoint record.
	Kernel bool
}

// Param is a formal function parameter.
type Param struct {
	Name string
	Type Type
}

// Block is one basic block: an opaque instruction body plus exactly one
// terminator.
type Block struct {
	Name         string
	Instructions []Instruction
	Terminator   Terminator
}

// Instruction is an opaque non-terminator IR instruction. The SPIR-V backend
// does not interpret these; lowering them is the job of per-instruction code
// generators layered on top of the assembler.
type Instruction interface {
	instruction()
}

// Value references an SSA value usable as an instruction operand.
type Value interface {
	valueNode()
}

// Argument references a function parameter by position.
type Argument struct {
	Index int
}

func (Argument) valueNode() {}
