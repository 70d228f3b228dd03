package spirv

import (
	"fmt"

	"github.com/gogpu/spvasm/ir"
)

// assemblerState tracks the function assembly protocol.
type assemblerState uint8

const (
	stateStart assemblerState = iota
	stateHeaderEmitted
	stateBlocksEmitted
	stateEnded
)

// InstructionLowerer translates one non-terminator IR instruction into
// SPIR-V through the assembler's builder. Per-instruction code generators
// (arithmetic, memory ops, atomics) plug in here; a nil lowerer skips block
// bodies and emits terminators only.
type InstructionLowerer interface {
	Lower(fa *FunctionAssembler, inst ir.Instruction) error
}

// FunctionAssembler walks one function's control-flow graph and emits its
// SPIR-V body into a private builder.
//
// Block labels are pre-assigned in a first pass before any body is walked:
// terminators may branch forward, so every target's label must exist before
// the first branch referencing it is encoded. The assembled stream is
// spliced into the enclosing module with ModuleBuilder.Merge once End has
// run.
type FunctionAssembler struct {
	fn      *ir.Function
	builder *ModuleBuilder
	types   *TypeTable
	lowerer InstructionLowerer

	state    assemblerState
	funcID   ID
	paramIDs []ID
	labels   map[*ir.Block]ID
}

// NewFunctionAssembler creates an assembler for one function. The ID
// provider and type table are the compilation unit's shared instances.
func NewFunctionAssembler(fn *ir.Function, version Version, ids *IDProvider, types *TypeTable) *FunctionAssembler {
	return &FunctionAssembler{
		fn:      fn,
		builder: NewModuleBuilder(version, ids),
		types:   types,
		labels:  make(map[*ir.Block]ID, len(fn.Blocks)),
	}
}

// SetLowerer installs the per-instruction code generator hook.
func (a *FunctionAssembler) SetLowerer(l InstructionLowerer) {
	a.lowerer = l
}

// Assemble runs the whole protocol: header, blocks, end.
func (a *FunctionAssembler) Assemble() error {
	if err := a.Begin(); err != nil {
		return err
	}
	if err := a.EmitBlocks(); err != nil {
		return err
	}
	return a.End()
}

// Begin reserves the function's ID, resolves its signature through the type
// table and emits OpFunction plus one OpFunctionParameter per parameter.
func (a *FunctionAssembler) Begin() error {
	if a.state != stateStart {
		return fmt.Errorf("%w: Begin called twice on %q", ErrInvariant, a.fn.Name)
	}

	ret := a.fn.Return
	if ret == nil {
		ret = ir.Void{}
	}
	retID, err := a.types.GetOrCreateID(ret)
	if err != nil {
		return fmt.Errorf("function %q return: %w", a.fn.Name, err)
	}

	params := make([]ir.Type, len(a.fn.Params))
	for i, p := range a.fn.Params {
		params[i] = p.Type
	}
	fnTypeID, err := a.types.GetOrCreateID(ir.Func{Return: ret, Params: params})
	if err != nil {
		return fmt.Errorf("function %q type: %w", a.fn.Name, err)
	}

	a.funcID = a.builder.AddFunction(retID, fnTypeID, FunctionControlNone)

	a.paramIDs = make([]ID, len(a.fn.Params))
	for i, p := range a.fn.Params {
		paramTypeID, err := a.types.GetOrCreateID(p.Type)
		if err != nil {
			return fmt.Errorf("function %q parameter %q: %w", a.fn.Name, p.Name, err)
		}
		a.paramIDs[i] = a.builder.AddFunctionParameter(paramTypeID)
	}

	a.state = stateHeaderEmitted
	return nil
}

// EmitBlocks pre-assigns a label to every block, then walks bodies and
// terminators in order.
func (a *FunctionAssembler) EmitBlocks() error {
	if a.state != stateHeaderEmitted {
		return fmt.Errorf("%w: EmitBlocks before Begin on %q", ErrInvariant, a.fn.Name)
	}

	// First pass: labels for every block, so forward branches resolve.
	for _, block := range a.fn.Blocks {
		a.labels[block] = a.builder.AllocID()
	}

	for _, block := range a.fn.Blocks {
		a.builder.AddLabelWithID(a.labels[block])

		if a.lowerer != nil {
			for _, inst := range block.Instructions {
				if err := a.lowerer.Lower(a, inst); err != nil {
					return fmt.Errorf("function %q block %q: %w", a.fn.Name, block.Name, err)
				}
			}
		}

		if err := a.emitTerminator(block); err != nil {
			return err
		}
	}

	a.state = stateBlocksEmitted
	return nil
}

// End emits OpFunctionEnd. No instruction may be appended after it.
func (a *FunctionAssembler) End() error {
	if a.state != stateBlocksEmitted {
		return fmt.Errorf("%w: End before EmitBlocks on %q", ErrInvariant, a.fn.Name)
	}
	a.builder.AddFunctionEnd()
	a.state = stateEnded
	return nil
}

// FuncID returns the function's result ID. Valid after Begin.
func (a *FunctionAssembler) FuncID() ID {
	return a.funcID
}

// ParamID returns the result ID of the i-th parameter. Valid after Begin.
func (a *FunctionAssembler) ParamID(i int) ID {
	return a.paramIDs[i]
}

// Builder exposes the assembler's local builder for merging and for
// instruction lowerers.
func (a *FunctionAssembler) Builder() *ModuleBuilder {
	return a.builder
}

// Label returns the pre-assigned label ID of a block.
func (a *FunctionAssembler) Label(block *ir.Block) (ID, error) {
	label, ok := a.labels[block]
	if !ok {
		return 0, fmt.Errorf("%w: branch to block %q with no pre-assigned label", ErrInvariant, block.Name)
	}
	return label, nil
}

// ResolveValue maps an IR value reference to its SPIR-V ID.
func (a *FunctionAssembler) ResolveValue(v ir.Value) (ID, error) {
	switch val := v.(type) {
	case ir.Argument:
		if val.Index < 0 || val.Index >= len(a.paramIDs) {
			return 0, fmt.Errorf("%w: argument index %d out of range", ErrInvariant, val.Index)
		}
		return a.paramIDs[val.Index], nil
	default:
		return 0, fmt.Errorf("%w: unresolvable value %T", ErrInvariant, v)
	}
}

func (a *FunctionAssembler) emitTerminator(block *ir.Block) error {
	switch term := block.Terminator.(type) {
	case ir.Branch:
		target, err := a.Label(term.Target)
		if err != nil {
			return err
		}
		a.builder.AddBranch(target)
		return nil

	case ir.CondBranch:
		cond, err := a.ResolveValue(term.Cond)
		if err != nil {
			return err
		}
		trueLabel, err := a.Label(term.True)
		if err != nil {
			return err
		}
		falseLabel, err := a.Label(term.False)
		if err != nil {
			return err
		}
		return a.builder.AddBranchConditional(cond, trueLabel, falseLabel)

	case ir.Switch:
		return a.emitSwitch(term)

	case ir.Return:
		value, err := a.ResolveValue(term.Value)
		if err != nil {
			return err
		}
		a.builder.AddReturnValue(value)
		return nil

	case ir.ReturnVoid:
		a.builder.AddReturn()
		return nil

	case ir.Unreachable:
		a.builder.AddUnreachable()
		return nil

	case nil:
		return fmt.Errorf("%w: block %q has no terminator", ErrInvariant, block.Name)

	default:
		return fmt.Errorf("%w: unknown terminator %T", ErrInvariant, term)
	}
}

func (a *FunctionAssembler) emitSwitch(term ir.Switch) error {
	selector, err := a.ResolveValue(term.Selector)
	if err != nil {
		return err
	}
	defaultLabel, err := a.Label(term.Default)
	if err != nil {
		return err
	}

	targets := make([]LabeledTarget, len(term.Cases))
	for i, c := range term.Cases {
		label, err := a.Label(c.Target)
		if err != nil {
			return err
		}
		targets[i] = LabeledTarget{Value: c.Value, Label: label}
	}

	return a.builder.AddSwitch(selector, defaultLabel, a.selectorWidth(term.Selector), targets...)
}

// selectorWidth reports the bit width of a switch selector; case literals
// occupy that many words on the wire.
func (a *FunctionAssembler) selectorWidth(v ir.Value) uint32 {
	if arg, ok := v.(ir.Argument); ok && arg.Index >= 0 && arg.Index < len(a.fn.Params) {
		if intType, ok := a.fn.Params[arg.Index].Type.(ir.Int); ok {
			return intType.Width
		}
	}
	return 32
}
