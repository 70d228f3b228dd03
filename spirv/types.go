package spirv

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/spvasm/ir"
)

// TypeTable maps semantic IR types to SPIR-V IDs and owns the ordered
// emission of their declarations.
//
// Identity is structural: two ir.Type values describing the same shape
// resolve to the same ID, and the module carries exactly one declaration per
// distinct type. An ID may be reserved before its declaration is emitted;
// EnsureDeclared and GenerateAll close that gap, emitting every dependency
// strictly before its dependent.
//
// Lookups of already-reserved types take the shared read path; reservation
// and declaration take the exclusive path, which covers the whole recursive
// emission so dependency declarations happen-before the composite's
// declaration is visible to other goroutines.
type TypeTable struct {
	mu      sync.RWMutex
	ids     *IDProvider
	entries map[string]*typeEntry
	order   []*typeEntry // reservation order

	// lengths deduplicates the u32 OpConstant ids used as array lengths.
	lengths map[uint32]ID
}

type typeEntry struct {
	id        ID
	node      ir.Type
	emitted   bool
	declaring bool // cycle guard, set while this entry's dependencies emit
}

// NewTypeTable creates an empty table drawing IDs from the shared provider.
func NewTypeTable(ids *IDProvider) *TypeTable {
	return &TypeTable{
		ids:     ids,
		entries: make(map[string]*typeEntry, 16),
		lengths: make(map[uint32]ID, 4),
	}
}

// GetOrCreateID returns the ID reserved for the type, reserving a fresh one
// on first encounter. The declaration itself is deferred.
func (t *TypeTable) GetOrCreateID(node ir.Type) (ID, error) {
	key, err := normalizeType(node)
	if err != nil {
		return 0, err
	}

	t.mu.RLock()
	entry, ok := t.entries[key]
	t.mu.RUnlock()
	if ok {
		return entry.id, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reserveLocked(key, node).id, nil
}

// reserveLocked records a type under an already-computed key, returning the
// existing entry if a concurrent caller got there first.
func (t *TypeTable) reserveLocked(key string, node ir.Type) *typeEntry {
	if entry, ok := t.entries[key]; ok {
		return entry
	}
	entry := &typeEntry{id: t.ids.Next(), node: node}
	t.entries[key] = entry
	t.order = append(t.order, entry)
	return entry
}

// EnsureDeclared emits the type's declaration into the builder unless it was
// already emitted. Constituent types (pointer elements, array elements,
// struct fields, function signatures) are declared first.
func (t *TypeTable) EnsureDeclared(node ir.Type, b *ModuleBuilder) error {
	key, err := normalizeType(node)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.declareLocked(t.reserveLocked(key, node), b)
}

// GenerateAll declares every reserved-but-unemitted type in reservation
// order. Dependencies reserved during emission are picked up as the order
// list grows.
func (t *TypeTable) GenerateAll(b *ModuleBuilder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < len(t.order); i++ {
		if err := t.declareLocked(t.order[i], b); err != nil {
			return err
		}
	}
	return nil
}

func (t *TypeTable) declareLocked(entry *typeEntry, b *ModuleBuilder) error {
	if entry.emitted {
		return nil
	}
	if entry.declaring {
		return fmt.Errorf("%w: %T", ErrTypeCycle, entry.node)
	}
	entry.declaring = true
	defer func() { entry.declaring = false }()

	switch node := entry.node.(type) {
	case ir.Void:
		b.AddTypeVoid(entry.id)

	case ir.Bool:
		b.AddTypeBool(entry.id)

	case ir.Int:
		b.AddTypeInt(entry.id, node.Width, node.Signed)

	case ir.Float:
		b.AddTypeFloat(entry.id, node.Width)

	case ir.Pointer:
		elem, err := t.dependencyLocked(node.Elem, b)
		if err != nil {
			return err
		}
		b.AddTypePointer(entry.id, StorageClassOf(node.Space), elem)

	case ir.Array:
		elem, err := t.dependencyLocked(node.Elem, b)
		if err != nil {
			return err
		}
		length, err := t.lengthConstantLocked(node.Length, b)
		if err != nil {
			return err
		}
		b.AddTypeArray(entry.id, elem, length)

	case ir.Struct:
		fields := make([]ID, len(node.Fields))
		for i, field := range node.Fields {
			id, err := t.dependencyLocked(field, b)
			if err != nil {
				return err
			}
			fields[i] = id
		}
		if err := b.AddTypeStruct(entry.id, fields...); err != nil {
			return err
		}

	case ir.Func:
		ret := node.Return
		if ret == nil {
			ret = ir.Void{}
		}
		retID, err := t.dependencyLocked(ret, b)
		if err != nil {
			return err
		}
		params := make([]ID, len(node.Params))
		for i, param := range node.Params {
			id, err := t.dependencyLocked(param, b)
			if err != nil {
				return err
			}
			params[i] = id
		}
		if err := b.AddTypeFunction(entry.id, retID, params...); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, entry.node)
	}

	entry.emitted = true
	return nil
}

// dependencyLocked reserves and declares a constituent type, returning its ID.
func (t *TypeTable) dependencyLocked(node ir.Type, b *ModuleBuilder) (ID, error) {
	key, err := normalizeType(node)
	if err != nil {
		return 0, err
	}
	entry := t.reserveLocked(key, node)
	if err := t.declareLocked(entry, b); err != nil {
		return 0, err
	}
	return entry.id, nil
}

// lengthConstantLocked declares (once) the u32 constant used as an array
// length operand and returns its ID.
func (t *TypeTable) lengthConstantLocked(length uint32, b *ModuleBuilder) (ID, error) {
	if id, ok := t.lengths[length]; ok {
		return id, nil
	}
	u32, err := t.dependencyLocked(ir.Int{Width: 32, Signed: false}, b)
	if err != nil {
		return 0, err
	}
	id := t.ids.Next()
	b.AddConstantWithID(u32, id, uint64(length), 32)
	t.lengths[length] = id
	return id, nil
}

// StorageClassOf lowers an IR address space to its SPIR-V storage class.
// Generic remains the default for unspecified spaces.
func StorageClassOf(space ir.AddressSpace) StorageClass {
	switch space {
	case ir.SpaceFunction:
		return StorageClassFunction
	case ir.SpaceWorkgroup:
		return StorageClassWorkgroup
	case ir.SpaceCrossWorkgroup:
		return StorageClassCrossWorkgroup
	case ir.SpacePrivate:
		return StorageClassPrivate
	case ir.SpaceConstant:
		return StorageClassUniformConstant
	default:
		return StorageClassGeneric
	}
}

// maxTypeDepth bounds type nesting during normalization. SPIR-V value types
// cannot be recursive, so nesting past this depth means the upstream IR holds
// a cyclic type graph.
const maxTypeDepth = 256

// normalizeType builds a structural key for a type. Two types describing the
// same shape produce the same key.
func normalizeType(node ir.Type) (string, error) {
	return normalizeTypeDepth(node, 0)
}

func normalizeTypeDepth(node ir.Type, depth int) (string, error) {
	if depth > maxTypeDepth {
		return "", fmt.Errorf("%w: type nesting exceeds %d", ErrTypeCycle, maxTypeDepth)
	}

	switch n := node.(type) {
	case ir.Void:
		return "void", nil

	case ir.Bool:
		return "bool", nil

	case ir.Int:
		b := make([]byte, 0, 12)
		b = append(b, "int:"...)
		b = strconv.AppendUint(b, uint64(n.Width), 10)
		if n.Signed {
			b = append(b, ":s"...)
		} else {
			b = append(b, ":u"...)
		}
		return string(b), nil

	case ir.Float:
		return "float:" + strconv.FormatUint(uint64(n.Width), 10), nil

	case ir.Pointer:
		elem, err := normalizeTypeDepth(n.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return "ptr:" + strconv.FormatUint(uint64(n.Space), 10) + ":" + elem, nil

	case ir.Array:
		elem, err := normalizeTypeDepth(n.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return "array:" + strconv.FormatUint(uint64(n.Length), 10) + ":" + elem, nil

	case ir.Struct:
		var sb strings.Builder
		sb.WriteString("struct:")
		sb.WriteString(n.Name)
		for _, field := range n.Fields {
			key, err := normalizeTypeDepth(field, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString(":{")
			sb.WriteString(key)
			sb.WriteString("}")
		}
		return sb.String(), nil

	case ir.Func:
		var sb strings.Builder
		sb.WriteString("fn:")
		ret := n.Return
		if ret == nil {
			ret = ir.Void{}
		}
		key, err := normalizeTypeDepth(ret, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(key)
		for _, param := range n.Params {
			key, err := normalizeTypeDepth(param, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString(":(")
			sb.WriteString(key)
			sb.WriteString(")")
		}
		return sb.String(), nil

	case ir.Opaque:
		return "", fmt.Errorf("%w: opaque type %q", ErrUnsupportedType, n.Name)

	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, node)
	}
}
