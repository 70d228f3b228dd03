package spirv

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// PackHeader combines an opcode and a word count into the instruction header
// word: (wordCount << 16) | opcode. The word count includes the header word
// itself. A count that does not fit the 16-bit field is a hard limit of the
// binary format and is reported as ErrInstructionTooLarge.
func PackHeader(op Opcode, wordCount int) (uint32, error) {
	count, err := safecast.Conv[uint16](wordCount)
	if err != nil {
		return 0, fmt.Errorf("%w: %s needs %d words", ErrInstructionTooLarge, op, wordCount)
	}
	return (uint32(count) << 16) | uint32(op), nil
}

// UnpackHeader splits an instruction header word back into its opcode and
// word count.
func UnpackHeader(word uint32) (Opcode, int) {
	return Opcode(word & 0xFFFF), int(word >> 16)
}

// EncodeString encodes a literal string operand: UTF-8 bytes, a single NUL
// terminator, zero-padded to a word boundary, packed little-endian into
// words. Invalid UTF-8 is rejected rather than substituted.
func EncodeString(s string) ([]uint32, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedString, s)
	}

	bytes := []byte(s)
	bytes = append(bytes, 0) // NUL terminator
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}

	words := make([]uint32, 0, len(bytes)/4)
	for i := 0; i < len(bytes); i += 4 {
		word := uint32(bytes[i]) |
			uint32(bytes[i+1])<<8 |
			uint32(bytes[i+2])<<16 |
			uint32(bytes[i+3])<<24
		words = append(words, word)
	}
	return words, nil
}

// StringWords returns the number of words EncodeString will produce for s.
func StringWords(s string) int {
	return (len(s) + 1 + 3) / 4
}

// EncodeLiteral encodes a literal number of the given bit width: one word
// for widths up to 32, two words (low word first) for 64. The width is the
// target type's declared width, not the host representation of the value.
func EncodeLiteral(bits uint64, width uint32) []uint32 {
	if width > 32 {
		return []uint32{uint32(bits & 0xFFFFFFFF), uint32(bits >> 32)}
	}
	return []uint32{uint32(bits)}
}

// LabeledTarget is the composite operand used by OpSwitch: one selector
// value paired with the label of its target block. Flattening order is
// fixed at value then label; the value occupies as many words as the
// selector type is wide.
type LabeledTarget struct {
	Value uint64
	Label ID
}

// Words flattens the target into its wire form for a selector of the given
// bit width.
func (t LabeledTarget) Words(selectorWidth uint32) []uint32 {
	words := EncodeLiteral(t.Value, selectorWidth)
	return append(words, uint32(t.Label))
}

// String implements fmt.Stringer for diagnostics.
func (op Opcode) String() string {
	return fmt.Sprintf("Op(%d)", uint16(op))
}
