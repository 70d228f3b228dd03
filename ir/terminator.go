package ir

// Terminator ends a basic block. Every reachable block has exactly one.
type Terminator interface {
	terminator()
}

// Branch is an unconditional jump.
type Branch struct {
	Target *Block
}

func (Branch) terminator() {}

// CondBranch is a two-way conditional jump.
type CondBranch struct {
	Cond  Value
	True  *Block
	False *Block
}

func (CondBranch) terminator() {}

// Switch is an n-way jump on an integer selector.
type Switch struct {
	Selector Value
	Default  *Block
	Cases    []SwitchCase
}

func (Switch) terminator() {}

// SwitchCase pairs one selector value with its target block.
type SwitchCase struct {
	Value  uint64
	Target *Block
}

// Return exits the function with a value.
type Return struct {
	Value Value
}

func (Return) terminator() {}

// ReturnVoid exits a void function.
type ReturnVoid struct{}

func (ReturnVoid) terminator() {}

// Unreachable marks a block that control flow can never reach.
type Unreachable struct{}

func (Unreachable) terminator() {}
