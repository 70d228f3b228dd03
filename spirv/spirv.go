// Package spirv assembles SPIR-V binary modules from kernel IR.
//
// SPIR-V is the standard intermediate language for GPU kernels and shaders,
// used by Vulkan and OpenCL. This package provides the binary encoding layer
// of the backend: result-ID allocation, type deduplication, and word-exact
// instruction emission.
package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// Word converts the version to its SPIR-V header encoding.
func (v Version) Word() uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}

// SPIR-V module constants
const (
	// MagicNumber is the first word of every SPIR-V module.
	MagicNumber = 0x07230203

	// GeneratorID identifies this assembler in the module header.
	// Unregistered generator.
	GeneratorID = 0x00000000

	// HeaderWords is the fixed size of the module header.
	HeaderWords = 5
)

// ID is a SPIR-V result ID: an opaque handle naming a value, type or block
// within one module. ID 0 is reserved and never issued.
type ID uint32

// Opcode is a 16-bit SPIR-V instruction-kind tag.
type Opcode uint16

// Miscellaneous and debug instructions
const (
	OpNop             Opcode = 0
	OpUndef           Opcode = 1
	OpSource          Opcode = 3
	OpSourceExtension Opcode = 4
	OpName            Opcode = 5
	OpMemberName      Opcode = 6
	OpString          Opcode = 7
	OpLine            Opcode = 8
)

// Extension and mode-setting instructions
const (
	OpExtension     Opcode = 10
	OpExtInstImport Opcode = 11
	OpExtInst       Opcode = 12
	OpMemoryModel   Opcode = 14
	OpEntryPoint    Opcode = 15
	OpExecutionMode Opcode = 16
	OpCapability    Opcode = 17
)

// Type-declaration instructions
const (
	OpTypeVoid         Opcode = 19
	OpTypeBool         Opcode = 20
	OpTypeInt          Opcode = 21
	OpTypeFloat        Opcode = 22
	OpTypeVector       Opcode = 23
	OpTypeMatrix       Opcode = 24
	OpTypeImage        Opcode = 25
	OpTypeSampler      Opcode = 26
	OpTypeArray        Opcode = 28
	OpTypeRuntimeArray Opcode = 29
	OpTypeStruct       Opcode = 30
	OpTypeOpaque       Opcode = 31
	OpTypePointer      Opcode = 32
	OpTypeFunction     Opcode = 33
)

// Constant-creation instructions
const (
	OpConstantTrue      Opcode = 41
	OpConstantFalse     Opcode = 42
	OpConstant          Opcode = 43
	OpConstantComposite Opcode = 44
	OpConstantNull      Opcode = 46
)

// Function instructions
const (
	OpFunction          Opcode = 54
	OpFunctionParameter Opcode = 55
	OpFunctionEnd       Opcode = 56
	OpFunctionCall      Opcode = 57
)

// Memory instructions
const (
	OpVariable            Opcode = 59
	OpLoad                Opcode = 61
	OpStore               Opcode = 62
	OpCopyMemory          Opcode = 63
	OpAccessChain         Opcode = 65
	OpInBoundsAccessChain Opcode = 66
	OpPtrAccessChain      Opcode = 67
)

// Annotation instructions
const (
	OpDecorate        Opcode = 71
	OpMemberDecorate  Opcode = 72
	OpDecorationGroup Opcode = 73
	OpGroupDecorate   Opcode = 74
)

// Composite instructions
const (
	OpVectorShuffle      Opcode = 79
	OpCompositeConstruct Opcode = 80
	OpCompositeExtract   Opcode = 81
	OpCompositeInsert    Opcode = 82
	OpCopyObject         Opcode = 83
)

// Conversion instructions
const (
	OpConvertFToU Opcode = 109
	OpConvertFToS Opcode = 110
	OpConvertSToF Opcode = 111
	OpConvertUToF Opcode = 112
	OpUConvert    Opcode = 113
	OpSConvert    Opcode = 114
	OpFConvert    Opcode = 115
	OpBitcast     Opcode = 124
)

// Arithmetic instructions
const (
	OpSNegate Opcode = 126
	OpFNegate Opcode = 127
	OpIAdd    Opcode = 128
	OpFAdd    Opcode = 129
	OpISub    Opcode = 130
	OpFSub    Opcode = 131
	OpIMul    Opcode = 132
	OpFMul    Opcode = 133
	OpUDiv    Opcode = 134
	OpSDiv    Opcode = 135
	OpFDiv    Opcode = 136
	OpUMod    Opcode = 137
	OpSRem    Opcode = 138
	OpSMod    Opcode = 139
	OpFRem    Opcode = 140
	OpFMod    Opcode = 141
)

// Relational and logical instructions
const (
	OpLogicalEqual         Opcode = 164
	OpLogicalNotEqual      Opcode = 165
	OpLogicalOr            Opcode = 166
	OpLogicalAnd           Opcode = 167
	OpLogicalNot           Opcode = 168
	OpSelect               Opcode = 169
	OpIEqual               Opcode = 170
	OpINotEqual            Opcode = 171
	OpUGreaterThan         Opcode = 172
	OpSGreaterThan         Opcode = 173
	OpUGreaterThanEqual    Opcode = 174
	OpSGreaterThanEqual    Opcode = 175
	OpULessThan            Opcode = 176
	OpSLessThan            Opcode = 177
	OpULessThanEqual       Opcode = 178
	OpSLessThanEqual       Opcode = 179
	OpFOrdEqual            Opcode = 180
	OpFOrdNotEqual         Opcode = 182
	OpFOrdLessThan         Opcode = 184
	OpFOrdGreaterThan      Opcode = 186
	OpFOrdLessThanEqual    Opcode = 188
	OpFOrdGreaterThanEqual Opcode = 190
)

// Bit instructions
const (
	OpShiftRightLogical    Opcode = 194
	OpShiftRightArithmetic Opcode = 195
	OpShiftLeftLogical     Opcode = 196
	OpBitwiseOr            Opcode = 197
	OpBitwiseXor           Opcode = 198
	OpBitwiseAnd           Opcode = 199
	OpNot                  Opcode = 200
)

// Control-flow instructions
const (
	OpPhi               Opcode = 245
	OpLoopMerge         Opcode = 246
	OpSelectionMerge    Opcode = 247
	OpLabel             Opcode = 248
	OpBranch            Opcode = 249
	OpBranchConditional Opcode = 250
	OpSwitch            Opcode = 251
	OpKill              Opcode = 252
	OpReturn            Opcode = 253
	OpReturnValue       Opcode = 254
	OpUnreachable       Opcode = 255
)

// Barrier and atomic instructions
const (
	OpControlBarrier   Opcode = 224
	OpMemoryBarrier    Opcode = 225
	OpAtomicLoad       Opcode = 227
	OpAtomicStore      Opcode = 228
	OpAtomicExchange   Opcode = 229
	OpAtomicIIncrement Opcode = 232
	OpAtomicIDecrement Opcode = 233
	OpAtomicIAdd       Opcode = 234
	OpAtomicISub       Opcode = 235
	OpAtomicSMin       Opcode = 236
	OpAtomicUMin       Opcode = 237
	OpAtomicSMax       Opcode = 238
	OpAtomicUMax       Opcode = 239
	OpAtomicAnd        Opcode = 240
	OpAtomicOr         Opcode = 241
	OpAtomicXor        Opcode = 242
)

// Capability represents a SPIR-V capability.
type Capability uint32

// Capabilities used by kernel modules
const (
	CapabilityMatrix       Capability = 0
	CapabilityShader       Capability = 1
	CapabilityAddresses    Capability = 4
	CapabilityLinkage      Capability = 5
	CapabilityKernel       Capability = 6
	CapabilityFloat16      Capability = 9
	CapabilityFloat64      Capability = 10
	CapabilityInt64        Capability = 11
	CapabilityInt64Atomics Capability = 12
	CapabilityInt16        Capability = 22
	CapabilityInt8         Capability = 39
)

// AddressingModel represents the module addressing model.
type AddressingModel uint32

const (
	AddressingModelLogical    AddressingModel = 0
	AddressingModelPhysical32 AddressingModel = 1
	AddressingModelPhysical64 AddressingModel = 2
)

// MemoryModel represents the module memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
)

// ExecutionModel represents an entry point's execution model.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
	ExecutionModelKernel    ExecutionModel = 6
)

// ExecutionMode represents an entry point execution mode.
type ExecutionMode uint32

const (
	ExecutionModeLocalSize       ExecutionMode = 17
	ExecutionModeLocalSizeHint   ExecutionMode = 18
	ExecutionModeOriginUpperLeft ExecutionMode = 7
	ExecutionModeContractionOff  ExecutionMode = 31
)

// StorageClass denotes the memory region a pointer addresses.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassCrossWorkgroup  StorageClass = 5
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassGeneric         StorageClass = 8
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationBlock             Decoration = 2
	DecorationRowMajor          Decoration = 4
	DecorationColMajor          Decoration = 5
	DecorationArrayStride       Decoration = 6
	DecorationMatrixStride      Decoration = 7
	DecorationBuiltIn           Decoration = 11
	DecorationVolatile          Decoration = 21
	DecorationConstant          Decoration = 22
	DecorationRestrict          Decoration = 19
	DecorationAliased           Decoration = 20
	DecorationLocation          Decoration = 30
	DecorationBinding           Decoration = 33
	DecorationDescriptorSet     Decoration = 34
	DecorationOffset            Decoration = 35
	DecorationAlignment         Decoration = 44
	DecorationLinkageAttributes Decoration = 41
)

// FunctionControl is the OpFunction control mask.
type FunctionControl uint32

const (
	FunctionControlNone   FunctionControl = 0
	FunctionControlInline FunctionControl = 1
	FunctionControlPure   FunctionControl = 4
	FunctionControlConst  FunctionControl = 8
)

// SelectionControl is the OpSelectionMerge control mask.
type SelectionControl uint32

const (
	SelectionControlNone        SelectionControl = 0
	SelectionControlFlatten     SelectionControl = 1
	SelectionControlDontFlatten SelectionControl = 2
)

// LoopControl is the OpLoopMerge control mask.
type LoopControl uint32

const (
	LoopControlNone       LoopControl = 0
	LoopControlUnroll     LoopControl = 1
	LoopControlDontUnroll LoopControl = 2
)

// MemoryAccess is the optional memory-access mask on loads and stores.
type MemoryAccess uint32

const (
	MemoryAccessNone        MemoryAccess = 0
	MemoryAccessVolatile    MemoryAccess = 1
	MemoryAccessAligned     MemoryAccess = 2
	MemoryAccessNontemporal MemoryAccess = 4
)

// Scope identifies an execution or memory scope for barriers and atomics.
type Scope uint32

const (
	ScopeCrossDevice Scope = 0
	ScopeDevice      Scope = 1
	ScopeWorkgroup   Scope = 2
	ScopeSubgroup    Scope = 3
	ScopeInvocation  Scope = 4
)

// MemorySemantics is the memory-semantics mask for barriers and atomics.
type MemorySemantics uint32

const (
	MemorySemanticsNone                 MemorySemantics = 0
	MemorySemanticsAcquire              MemorySemantics = 0x2
	MemorySemanticsRelease              MemorySemantics = 0x4
	MemorySemanticsAcquireRelease       MemorySemantics = 0x8
	MemorySemanticsWorkgroupMemory      MemorySemantics = 0x100
	MemorySemanticsCrossWorkgroupMemory MemorySemantics = 0x200
)
