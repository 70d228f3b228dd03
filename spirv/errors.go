package spirv

import "errors"

// Assembly errors. All of them abort the current compilation unit: a
// partially emitted module cannot be made valid by continuing, so none are
// locally recoverable.
var (
	// ErrUnsupportedType reports an IR type with no SPIR-V lowering.
	ErrUnsupportedType = errors.New("spirv: unsupported type")

	// ErrInstructionTooLarge reports an instruction whose word count exceeds
	// the 16-bit field of the header word.
	ErrInstructionTooLarge = errors.New("spirv: instruction exceeds 65535 words")

	// ErrTypeCycle reports a recursive type declaration. SPIR-V has no cyclic
	// value types outside explicit forward-pointer declarations.
	ErrTypeCycle = errors.New("spirv: cyclic type declaration")

	// ErrMalformedString reports a literal string that is not valid UTF-8.
	ErrMalformedString = errors.New("spirv: literal string is not valid UTF-8")

	// ErrInvariant reports a violated caller precondition, such as a branch
	// to a block with no pre-assigned label. It signals a bug in the driving
	// code generator, not bad user input.
	ErrInvariant = errors.New("spirv: assembler invariant violated")
)
