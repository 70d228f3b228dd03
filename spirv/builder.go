package spirv

import "encoding/binary"

// ModuleBuilder accumulates an ordered SPIR-V word stream.
//
// A builder owns the fixed 5-word module header and a flat instruction
// stream. Each exported Add* method is a typed wrapper over one internal
// encoder: it computes the instruction's word count, packs the header word
// and appends header plus operands.
//
// Per-kernel function bodies are assembled into private builders and spliced
// into the enclosing module with Merge. Builders do not resequence: the
// SPIR-V section ordering contract (capabilities, extensions, imports,
// memory model, entry points, execution modes, debug, annotations,
// types/constants/globals, functions) is the caller's responsibility when
// composing the final stream from sub-builders.
type ModuleBuilder struct {
	version Version
	ids     *IDProvider
	words   []uint32 // instruction stream, header excluded
}

// NewModuleBuilder creates a builder targeting the given version. All
// builders of one compilation unit must share the same IDProvider.
func NewModuleBuilder(version Version, ids *IDProvider) *ModuleBuilder {
	return &ModuleBuilder{
		version: version,
		ids:     ids,
		words:   make([]uint32, 0, 64),
	}
}

// AllocID reserves a fresh result ID from the shared provider.
func (b *ModuleBuilder) AllocID() ID {
	return b.ids.Next()
}

// emit appends one fixed-arity instruction. Fixed arities are bounded far
// below the 16-bit word-count field, so header packing cannot fail here.
func (b *ModuleBuilder) emit(op Opcode, operands ...uint32) {
	if err := b.emitChecked(op, operands...); err != nil {
		panic(err)
	}
}

// emitChecked appends one instruction whose operand list is caller-sized.
func (b *ModuleBuilder) emitChecked(op Opcode, operands ...uint32) error {
	header, err := PackHeader(op, len(operands)+1)
	if err != nil {
		return err
	}
	b.words = append(b.words, header)
	b.words = append(b.words, operands...)
	return nil
}

// appendIDs converts an ID list onto a word slice.
func appendIDs(words []uint32, ids []ID) []uint32 {
	for _, id := range ids {
		words = append(words, uint32(id))
	}
	return words
}

// Mode-setting instructions

// AddCapability emits OpCapability.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	b.emit(OpCapability, uint32(capability))
}

// AddExtension emits OpExtension.
func (b *ModuleBuilder) AddExtension(name string) error {
	words, err := EncodeString(name)
	if err != nil {
		return err
	}
	return b.emitChecked(OpExtension, words...)
}

// AddExtInstImport emits OpExtInstImport and returns the import's result ID.
func (b *ModuleBuilder) AddExtInstImport(name string) (ID, error) {
	strWords, err := EncodeString(name)
	if err != nil {
		return 0, err
	}
	id := b.AllocID()
	words := append([]uint32{uint32(id)}, strWords...)
	if err := b.emitChecked(OpExtInstImport, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddExtInst emits OpExtInst invoking one extended-set instruction.
func (b *ModuleBuilder) AddExtInst(resultType, set ID, instruction uint32, operands ...ID) (ID, error) {
	id := b.AllocID()
	words := []uint32{uint32(resultType), uint32(id), uint32(set), instruction}
	words = appendIDs(words, operands)
	if err := b.emitChecked(OpExtInst, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddMemoryModel emits OpMemoryModel.
func (b *ModuleBuilder) AddMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.emit(OpMemoryModel, uint32(addressing), uint32(memory))
}

// AddEntryPoint emits OpEntryPoint for a function and its interface IDs.
func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, fn ID, name string, interfaces ...ID) error {
	strWords, err := EncodeString(name)
	if err != nil {
		return err
	}
	words := []uint32{uint32(model), uint32(fn)}
	words = append(words, strWords...)
	words = appendIDs(words, interfaces)
	return b.emitChecked(OpEntryPoint, words...)
}

// AddExecutionMode emits OpExecutionMode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint ID, mode ExecutionMode, params ...uint32) error {
	words := append([]uint32{uint32(entryPoint), uint32(mode)}, params...)
	return b.emitChecked(OpExecutionMode, words...)
}

// Debug instructions

// AddString emits OpString and returns the string's result ID.
func (b *ModuleBuilder) AddString(text string) (ID, error) {
	strWords, err := EncodeString(text)
	if err != nil {
		return 0, err
	}
	id := b.AllocID()
	words := append([]uint32{uint32(id)}, strWords...)
	if err := b.emitChecked(OpString, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddName emits OpName.
func (b *ModuleBuilder) AddName(target ID, name string) error {
	strWords, err := EncodeString(name)
	if err != nil {
		return err
	}
	words := append([]uint32{uint32(target)}, strWords...)
	return b.emitChecked(OpName, words...)
}

// AddMemberName emits OpMemberName.
func (b *ModuleBuilder) AddMemberName(structType ID, member uint32, name string) error {
	strWords, err := EncodeString(name)
	if err != nil {
		return err
	}
	words := append([]uint32{uint32(structType), member}, strWords...)
	return b.emitChecked(OpMemberName, words...)
}

// AddLine emits OpLine.
func (b *ModuleBuilder) AddLine(file ID, line, column uint32) {
	b.emit(OpLine, uint32(file), line, column)
}

// Annotation instructions

// AddDecorate emits OpDecorate.
func (b *ModuleBuilder) AddDecorate(target ID, decoration Decoration, params ...uint32) error {
	words := append([]uint32{uint32(target), uint32(decoration)}, params...)
	return b.emitChecked(OpDecorate, words...)
}

// AddMemberDecorate emits OpMemberDecorate.
func (b *ModuleBuilder) AddMemberDecorate(structType ID, member uint32, decoration Decoration, params ...uint32) error {
	words := append([]uint32{uint32(structType), member, uint32(decoration)}, params...)
	return b.emitChecked(OpMemberDecorate, words...)
}

// AddDecorationGroup emits OpDecorationGroup and returns the group ID.
func (b *ModuleBuilder) AddDecorationGroup() ID {
	id := b.AllocID()
	b.emit(OpDecorationGroup, uint32(id))
	return id
}

// AddGroupDecorate emits OpGroupDecorate applying a group to its targets.
func (b *ModuleBuilder) AddGroupDecorate(group ID, targets ...ID) error {
	words := appendIDs([]uint32{uint32(group)}, targets)
	return b.emitChecked(OpGroupDecorate, words...)
}

// Type-declaration instructions

// AddTypeVoid emits OpTypeVoid with a pre-reserved result ID.
func (b *ModuleBuilder) AddTypeVoid(result ID) {
	b.emit(OpTypeVoid, uint32(result))
}

// AddTypeBool emits OpTypeBool.
func (b *ModuleBuilder) AddTypeBool(result ID) {
	b.emit(OpTypeBool, uint32(result))
}

// AddTypeInt emits OpTypeInt.
func (b *ModuleBuilder) AddTypeInt(result ID, width uint32, signed bool) {
	signedness := uint32(0)
	if signed {
		signedness = 1
	}
	b.emit(OpTypeInt, uint32(result), width, signedness)
}

// AddTypeFloat emits OpTypeFloat.
func (b *ModuleBuilder) AddTypeFloat(result ID, width uint32) {
	b.emit(OpTypeFloat, uint32(result), width)
}

// AddTypeVector emits OpTypeVector.
func (b *ModuleBuilder) AddTypeVector(result, component ID, count uint32) {
	b.emit(OpTypeVector, uint32(result), uint32(component), count)
}

// AddTypeMatrix emits OpTypeMatrix.
func (b *ModuleBuilder) AddTypeMatrix(result, column ID, columns uint32) {
	b.emit(OpTypeMatrix, uint32(result), uint32(column), columns)
}

// AddTypeArray emits OpTypeArray. The length operand is a constant ID, not
// a literal.
func (b *ModuleBuilder) AddTypeArray(result, element, length ID) {
	b.emit(OpTypeArray, uint32(result), uint32(element), uint32(length))
}

// AddTypeRuntimeArray emits OpTypeRuntimeArray.
func (b *ModuleBuilder) AddTypeRuntimeArray(result, element ID) {
	b.emit(OpTypeRuntimeArray, uint32(result), uint32(element))
}

// AddTypeStruct emits OpTypeStruct.
func (b *ModuleBuilder) AddTypeStruct(result ID, members ...ID) error {
	words := appendIDs([]uint32{uint32(result)}, members)
	return b.emitChecked(OpTypeStruct, words...)
}

// AddTypePointer emits OpTypePointer.
func (b *ModuleBuilder) AddTypePointer(result ID, storage StorageClass, element ID) {
	b.emit(OpTypePointer, uint32(result), uint32(storage), uint32(element))
}

// AddTypeFunction emits OpTypeFunction.
func (b *ModuleBuilder) AddTypeFunction(result, returnType ID, params ...ID) error {
	words := appendIDs([]uint32{uint32(result), uint32(returnType)}, params)
	return b.emitChecked(OpTypeFunction, words...)
}

// Constant-creation instructions

// AddConstantTrue emits OpConstantTrue.
func (b *ModuleBuilder) AddConstantTrue(resultType ID) ID {
	id := b.AllocID()
	b.emit(OpConstantTrue, uint32(resultType), uint32(id))
	return id
}

// AddConstantFalse emits OpConstantFalse.
func (b *ModuleBuilder) AddConstantFalse(resultType ID) ID {
	id := b.AllocID()
	b.emit(OpConstantFalse, uint32(resultType), uint32(id))
	return id
}

// AddConstant emits OpConstant with a literal of the given bit width.
func (b *ModuleBuilder) AddConstant(resultType ID, bits uint64, width uint32) ID {
	id := b.AllocID()
	words := append([]uint32{uint32(resultType), uint32(id)}, EncodeLiteral(bits, width)...)
	b.emit(OpConstant, words...)
	return id
}

// AddConstantWithID emits OpConstant using a pre-reserved result ID.
func (b *ModuleBuilder) AddConstantWithID(resultType, result ID, bits uint64, width uint32) {
	words := append([]uint32{uint32(resultType), uint32(result)}, EncodeLiteral(bits, width)...)
	b.emit(OpConstant, words...)
}

// AddConstantComposite emits OpConstantComposite.
func (b *ModuleBuilder) AddConstantComposite(resultType ID, constituents ...ID) (ID, error) {
	id := b.AllocID()
	words := appendIDs([]uint32{uint32(resultType), uint32(id)}, constituents)
	if err := b.emitChecked(OpConstantComposite, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddConstantNull emits OpConstantNull.
func (b *ModuleBuilder) AddConstantNull(resultType ID) ID {
	id := b.AllocID()
	b.emit(OpConstantNull, uint32(resultType), uint32(id))
	return id
}

// Function instructions

// AddFunction emits OpFunction and returns the function's result ID.
func (b *ModuleBuilder) AddFunction(returnType, functionType ID, control FunctionControl) ID {
	id := b.AllocID()
	b.emit(OpFunction, uint32(returnType), uint32(id), uint32(control), uint32(functionType))
	return id
}

// AddFunctionParameter emits OpFunctionParameter.
func (b *ModuleBuilder) AddFunctionParameter(paramType ID) ID {
	id := b.AllocID()
	b.emit(OpFunctionParameter, uint32(paramType), uint32(id))
	return id
}

// AddFunctionEnd emits OpFunctionEnd.
func (b *ModuleBuilder) AddFunctionEnd() {
	b.emit(OpFunctionEnd)
}

// AddFunctionCall emits OpFunctionCall.
func (b *ModuleBuilder) AddFunctionCall(resultType, fn ID, args ...ID) (ID, error) {
	id := b.AllocID()
	words := appendIDs([]uint32{uint32(resultType), uint32(id), uint32(fn)}, args)
	if err := b.emitChecked(OpFunctionCall, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// Memory instructions

// AddVariable emits OpVariable.
func (b *ModuleBuilder) AddVariable(pointerType ID, storage StorageClass) ID {
	id := b.AllocID()
	b.emit(OpVariable, uint32(pointerType), uint32(id), uint32(storage))
	return id
}

// AddVariableWithInit emits OpVariable with an initializer.
func (b *ModuleBuilder) AddVariableWithInit(pointerType ID, storage StorageClass, init ID) ID {
	id := b.AllocID()
	b.emit(OpVariable, uint32(pointerType), uint32(id), uint32(storage), uint32(init))
	return id
}

// AddLoad emits OpLoad. At most one trailing memory-access mask may be
// supplied; when absent it contributes no words.
func (b *ModuleBuilder) AddLoad(resultType, pointer ID, access ...MemoryAccess) ID {
	id := b.AllocID()
	words := []uint32{uint32(resultType), uint32(id), uint32(pointer)}
	for _, a := range access {
		words = append(words, uint32(a))
	}
	b.emit(OpLoad, words...)
	return id
}

// AddStore emits OpStore with an optional trailing memory-access mask.
func (b *ModuleBuilder) AddStore(pointer, value ID, access ...MemoryAccess) {
	words := []uint32{uint32(pointer), uint32(value)}
	for _, a := range access {
		words = append(words, uint32(a))
	}
	b.emit(OpStore, words...)
}

// AddCopyMemory emits OpCopyMemory.
func (b *ModuleBuilder) AddCopyMemory(target, source ID, access ...MemoryAccess) {
	words := []uint32{uint32(target), uint32(source)}
	for _, a := range access {
		words = append(words, uint32(a))
	}
	b.emit(OpCopyMemory, words...)
}

// AddAccessChain emits OpAccessChain.
func (b *ModuleBuilder) AddAccessChain(resultType, base ID, indices ...ID) (ID, error) {
	id := b.AllocID()
	words := appendIDs([]uint32{uint32(resultType), uint32(id), uint32(base)}, indices)
	if err := b.emitChecked(OpAccessChain, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddInBoundsAccessChain emits OpInBoundsAccessChain.
func (b *ModuleBuilder) AddInBoundsAccessChain(resultType, base ID, indices ...ID) (ID, error) {
	id := b.AllocID()
	words := appendIDs([]uint32{uint32(resultType), uint32(id), uint32(base)}, indices)
	if err := b.emitChecked(OpInBoundsAccessChain, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddPtrAccessChain emits OpPtrAccessChain.
func (b *ModuleBuilder) AddPtrAccessChain(resultType, base, element ID, indices ...ID) (ID, error) {
	id := b.AllocID()
	words := appendIDs([]uint32{uint32(resultType), uint32(id), uint32(base), uint32(element)}, indices)
	if err := b.emitChecked(OpPtrAccessChain, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// Composite instructions

// AddCompositeConstruct emits OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType ID, constituents ...ID) (ID, error) {
	id := b.AllocID()
	words := appendIDs([]uint32{uint32(resultType), uint32(id)}, constituents)
	if err := b.emitChecked(OpCompositeConstruct, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddCompositeExtract emits OpCompositeExtract with literal indices.
func (b *ModuleBuilder) AddCompositeExtract(resultType, composite ID, indices ...uint32) (ID, error) {
	id := b.AllocID()
	words := append([]uint32{uint32(resultType), uint32(id), uint32(composite)}, indices...)
	if err := b.emitChecked(OpCompositeExtract, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddCompositeInsert emits OpCompositeInsert with literal indices.
func (b *ModuleBuilder) AddCompositeInsert(resultType, object, composite ID, indices ...uint32) (ID, error) {
	id := b.AllocID()
	words := append([]uint32{uint32(resultType), uint32(id), uint32(object), uint32(composite)}, indices...)
	if err := b.emitChecked(OpCompositeInsert, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddVectorShuffle emits OpVectorShuffle.
func (b *ModuleBuilder) AddVectorShuffle(resultType, vec1, vec2 ID, components ...uint32) (ID, error) {
	id := b.AllocID()
	words := append([]uint32{uint32(resultType), uint32(id), uint32(vec1), uint32(vec2)}, components...)
	if err := b.emitChecked(OpVectorShuffle, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// AddCopyObject emits OpCopyObject.
func (b *ModuleBuilder) AddCopyObject(resultType, operand ID) ID {
	id := b.AllocID()
	b.emit(OpCopyObject, uint32(resultType), uint32(id), uint32(operand))
	return id
}

// Arithmetic, logical, bit and conversion instructions. These families are
// mechanically uniform, so they share three shapes.

// AddBinaryOp emits any two-operand instruction producing a typed result
// (arithmetic, comparison, bitwise, logical families).
func (b *ModuleBuilder) AddBinaryOp(op Opcode, resultType, left, right ID) ID {
	id := b.AllocID()
	b.emit(op, uint32(resultType), uint32(id), uint32(left), uint32(right))
	return id
}

// AddUnaryOp emits any one-operand instruction producing a typed result
// (negation, logical/bitwise not, all conversions, bitcast).
func (b *ModuleBuilder) AddUnaryOp(op Opcode, resultType, operand ID) ID {
	id := b.AllocID()
	b.emit(op, uint32(resultType), uint32(id), uint32(operand))
	return id
}

// AddSelect emits OpSelect.
func (b *ModuleBuilder) AddSelect(resultType, condition, accept, reject ID) ID {
	id := b.AllocID()
	b.emit(OpSelect, uint32(resultType), uint32(id), uint32(condition), uint32(accept), uint32(reject))
	return id
}

// PhiOperand pairs a value with the label of the parent block it flows from.
type PhiOperand struct {
	Value  ID
	Parent ID
}

// AddPhi emits OpPhi.
func (b *ModuleBuilder) AddPhi(resultType ID, operands ...PhiOperand) (ID, error) {
	id := b.AllocID()
	words := []uint32{uint32(resultType), uint32(id)}
	for _, op := range operands {
		words = append(words, uint32(op.Value), uint32(op.Parent))
	}
	if err := b.emitChecked(OpPhi, words...); err != nil {
		return 0, err
	}
	return id, nil
}

// Control-flow instructions

// AddLabel emits OpLabel with a fresh result ID.
func (b *ModuleBuilder) AddLabel() ID {
	id := b.AllocID()
	b.emit(OpLabel, uint32(id))
	return id
}

// AddLabelWithID emits OpLabel using a pre-assigned label ID. Function
// assembly pre-assigns every block label before walking bodies so that
// forward branches can be encoded.
func (b *ModuleBuilder) AddLabelWithID(label ID) {
	b.emit(OpLabel, uint32(label))
}

// AddBranch emits OpBranch.
func (b *ModuleBuilder) AddBranch(target ID) {
	b.emit(OpBranch, uint32(target))
}

// AddBranchConditional emits OpBranchConditional. Branch weights are
// optional; when present there must be exactly two.
func (b *ModuleBuilder) AddBranchConditional(condition, trueLabel, falseLabel ID, weights ...uint32) error {
	words := []uint32{uint32(condition), uint32(trueLabel), uint32(falseLabel)}
	words = append(words, weights...)
	return b.emitChecked(OpBranchConditional, words...)
}

// AddSwitch emits OpSwitch. The selector's bit width decides how many words
// each target's literal value occupies.
func (b *ModuleBuilder) AddSwitch(selector, defaultLabel ID, selectorWidth uint32, targets ...LabeledTarget) error {
	words := []uint32{uint32(selector), uint32(defaultLabel)}
	for _, t := range targets {
		words = append(words, t.Words(selectorWidth)...)
	}
	return b.emitChecked(OpSwitch, words...)
}

// AddSelectionMerge emits OpSelectionMerge.
func (b *ModuleBuilder) AddSelectionMerge(mergeLabel ID, control SelectionControl) {
	b.emit(OpSelectionMerge, uint32(mergeLabel), uint32(control))
}

// AddLoopMerge emits OpLoopMerge.
func (b *ModuleBuilder) AddLoopMerge(mergeLabel, continueLabel ID, control LoopControl) {
	b.emit(OpLoopMerge, uint32(mergeLabel), uint32(continueLabel), uint32(control))
}

// AddReturn emits OpReturn.
func (b *ModuleBuilder) AddReturn() {
	b.emit(OpReturn)
}

// AddReturnValue emits OpReturnValue.
func (b *ModuleBuilder) AddReturnValue(value ID) {
	b.emit(OpReturnValue, uint32(value))
}

// AddKill emits OpKill.
func (b *ModuleBuilder) AddKill() {
	b.emit(OpKill)
}

// AddUnreachable emits OpUnreachable.
func (b *ModuleBuilder) AddUnreachable() {
	b.emit(OpUnreachable)
}

// Barrier and atomic instructions

// AddControlBarrier emits OpControlBarrier. The scope and semantics operands
// are constant IDs per the SPIR-V specification.
func (b *ModuleBuilder) AddControlBarrier(execution, memory, semantics ID) {
	b.emit(OpControlBarrier, uint32(execution), uint32(memory), uint32(semantics))
}

// AddMemoryBarrier emits OpMemoryBarrier.
func (b *ModuleBuilder) AddMemoryBarrier(memory, semantics ID) {
	b.emit(OpMemoryBarrier, uint32(memory), uint32(semantics))
}

// AddAtomicLoad emits OpAtomicLoad.
func (b *ModuleBuilder) AddAtomicLoad(resultType, pointer, scope, semantics ID) ID {
	id := b.AllocID()
	b.emit(OpAtomicLoad, uint32(resultType), uint32(id), uint32(pointer), uint32(scope), uint32(semantics))
	return id
}

// AddAtomicStore emits OpAtomicStore.
func (b *ModuleBuilder) AddAtomicStore(pointer, scope, semantics, value ID) {
	b.emit(OpAtomicStore, uint32(pointer), uint32(scope), uint32(semantics), uint32(value))
}

// AddAtomicBinary emits any read-modify-write atomic taking one value
// operand (exchange, add, sub, min, max, and, or, xor).
func (b *ModuleBuilder) AddAtomicBinary(op Opcode, resultType, pointer, scope, semantics, value ID) ID {
	id := b.AllocID()
	b.emit(op, uint32(resultType), uint32(id), uint32(pointer), uint32(scope), uint32(semantics), uint32(value))
	return id
}

// AddAtomicUnary emits OpAtomicIIncrement or OpAtomicIDecrement.
func (b *ModuleBuilder) AddAtomicUnary(op Opcode, resultType, pointer, scope, semantics ID) ID {
	id := b.AllocID()
	b.emit(op, uint32(resultType), uint32(id), uint32(pointer), uint32(scope), uint32(semantics))
	return id
}

// Stream composition

// Merge appends another builder's instruction stream (its header excluded)
// onto this one. The caller guarantees both builders share one IDProvider
// and that merge order respects the SPIR-V section ordering.
func (b *ModuleBuilder) Merge(other *ModuleBuilder) {
	b.words = append(b.words, other.words...)
}

// Words exposes the accumulated instruction stream.
func (b *ModuleBuilder) Words() []uint32 {
	return b.words
}

// Finalize patches the id-bound into the header and serializes the module
// little-endian.
func (b *ModuleBuilder) Finalize() []byte {
	header := [HeaderWords]uint32{
		MagicNumber,
		b.version.Word(),
		GeneratorID,
		uint32(b.ids.Bound()),
		0, // reserved schema
	}

	buffer := make([]byte, (HeaderWords+len(b.words))*4)
	offset := 0
	for _, word := range header {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	for _, word := range b.words {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	return buffer
}
