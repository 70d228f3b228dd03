package spirv

import "sync/atomic"

// IDProvider hands out fresh result IDs for one compilation unit.
//
// The counter is shared by every builder and type table of the unit so that
// kernels assembled in parallel never receive the same ID. IDs start at 1
// (ID 0 is reserved by SPIR-V) and are never reclaimed.
type IDProvider struct {
	next atomic.Uint32
}

// NewIDProvider creates an ID provider with no IDs issued.
func NewIDProvider() *IDProvider {
	return &IDProvider{}
}

// Next returns a fresh ID. Safe for concurrent callers.
func (p *IDProvider) Next() ID {
	return ID(p.next.Add(1))
}

// Bound returns one past the highest ID issued so far, the value the module
// header's id-bound field must carry.
func (p *IDProvider) Bound() ID {
	return ID(p.next.Load() + 1)
}
