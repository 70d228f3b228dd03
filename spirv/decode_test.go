package spirv

import (
	"encoding/binary"
	"testing"
)

// decodedInst is one instruction split back into opcode and operand words.
type decodedInst struct {
	Op       Opcode
	Operands []uint32
}

// decodeWords splits an instruction stream into decoded instructions.
func decodeWords(t *testing.T, words []uint32) []decodedInst {
	t.Helper()

	var insts []decodedInst
	for i := 0; i < len(words); {
		op, count := UnpackHeader(words[i])
		if count == 0 || i+count > len(words) {
			t.Fatalf("bad word count %d at offset %d", count, i)
		}
		insts = append(insts, decodedInst{Op: op, Operands: words[i+1 : i+count]})
		i += count
	}
	return insts
}

// decodeModule splits a serialized module into its header words and decoded
// instruction stream.
func decodeModule(t *testing.T, module []byte) ([HeaderWords]uint32, []decodedInst) {
	t.Helper()

	if len(module)%4 != 0 {
		t.Fatalf("module size %d is not word-aligned", len(module))
	}
	words := make([]uint32, len(module)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(module[i*4:])
	}
	if len(words) < HeaderWords {
		t.Fatalf("module too small: %d words", len(words))
	}

	var header [HeaderWords]uint32
	copy(header[:], words[:HeaderWords])
	return header, decodeWords(t, words[HeaderWords:])
}

// findInsts returns every decoded instruction with the given opcode.
func findInsts(insts []decodedInst, op Opcode) []decodedInst {
	var found []decodedInst
	for _, inst := range insts {
		if inst.Op == op {
			found = append(found, inst)
		}
	}
	return found
}

// opcodeSequence projects the instruction stream onto its opcodes.
func opcodeSequence(insts []decodedInst) []Opcode {
	ops := make([]Opcode, len(insts))
	for i, inst := range insts {
		ops[i] = inst.Op
	}
	return ops
}
