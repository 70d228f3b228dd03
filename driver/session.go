// Package driver composes whole SPIR-V modules from kernel IR.
//
// A Session owns the shared per-compilation-unit state (ID provider, type
// table) and assembles kernels in parallel, each into a private builder,
// before splicing everything together in SPIR-V section order.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/spvasm/ir"
	"github.com/gogpu/spvasm/spirv"
)

// Options configures module assembly.
type Options struct {
	// Version is the SPIR-V version to target.
	Version spirv.Version

	// Addressing and Memory select the module memory model.
	Addressing spirv.AddressingModel
	Memory     spirv.MemoryModel

	// Capabilities are declared at the top of the module.
	Capabilities []spirv.Capability

	// Debug emits OpName records for functions and parameters.
	Debug bool

	// Jobs limits parallel kernel assembly; 0 means GOMAXPROCS.
	Jobs int

	// Logger receives per-kernel assembly diagnostics; nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns options for an OpenCL-flavoured kernel module.
func DefaultOptions() Options {
	return Options{
		Version:    spirv.Version1_3,
		Addressing: spirv.AddressingModelPhysical64,
		Memory:     spirv.MemoryModelOpenCL,
		Capabilities: []spirv.Capability{
			spirv.CapabilityAddresses,
			spirv.CapabilityKernel,
			spirv.CapabilityInt64,
		},
	}
}

// Session is one compilation unit: a shared ID space, a shared type table
// and the options the final module is assembled under.
type Session struct {
	opts  Options
	ids   *spirv.IDProvider
	types *spirv.TypeTable
	log   *slog.Logger
}

// NewSession creates a fresh compilation unit.
func NewSession(opts Options) *Session {
	ids := spirv.NewIDProvider()
	log := opts.Logger
	if log == nil {
		log = slog.New(discardHandler{})
	}
	return &Session{
		opts:  opts,
		ids:   ids,
		types: spirv.NewTypeTable(ids),
		log:   log,
	}
}

// IDs exposes the session's shared ID provider.
func (s *Session) IDs() *spirv.IDProvider {
	return s.ids
}

// Types exposes the session's shared type table.
func (s *Session) Types() *spirv.TypeTable {
	return s.types
}

// Compile assembles all functions into one finalized SPIR-V module.
//
// Kernels are assembled concurrently, each into a private builder drawing
// IDs from the shared provider; the merge into the final stream happens once
// per function, in input order, after all assembly is done. An error from
// any kernel aborts the unit — a partial module is never returned.
func (s *Session) Compile(ctx context.Context, fns []*ir.Function) ([]byte, error) {
	start := time.Now()

	assemblers := make([]*spirv.FunctionAssembler, len(fns))

	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(fns), 1)))

	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			asmStart := time.Now()
			a := spirv.NewFunctionAssembler(fn, s.opts.Version, s.ids, s.types)
			if err := a.Assemble(); err != nil {
				return fmt.Errorf("kernel %q: %w", fn.Name, err)
			}
			assemblers[i] = a

			s.log.Debug("kernel assembled",
				"kernel", fn.Name,
				"blocks", len(fn.Blocks),
				"duration", time.Since(asmStart))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	module, err := s.compose(fns, assemblers)
	if err != nil {
		return nil, err
	}

	s.log.Info("module assembled",
		"kernels", len(fns),
		"bytes", len(module),
		"duration", time.Since(start))
	return module, nil
}

// compose splices the section streams together in the order the SPIR-V
// specification requires: capabilities, memory model, entry points, debug
// names, types and constants, then function bodies.
func (s *Session) compose(fns []*ir.Function, assemblers []*spirv.FunctionAssembler) ([]byte, error) {
	top := spirv.NewModuleBuilder(s.opts.Version, s.ids)

	for _, cap := range s.opts.Capabilities {
		top.AddCapability(cap)
	}
	top.AddMemoryModel(s.opts.Addressing, s.opts.Memory)

	for i, fn := range fns {
		if !fn.Kernel {
			continue
		}
		if err := top.AddEntryPoint(spirv.ExecutionModelKernel, assemblers[i].FuncID(), fn.Name); err != nil {
			return nil, fmt.Errorf("entry point %q: %w", fn.Name, err)
		}
	}

	if s.opts.Debug {
		for i, fn := range fns {
			if err := top.AddName(assemblers[i].FuncID(), fn.Name); err != nil {
				return nil, err
			}
			for pi, p := range fn.Params {
				if p.Name == "" {
					continue
				}
				if err := top.AddName(assemblers[i].ParamID(pi), p.Name); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := s.types.GenerateAll(top); err != nil {
		return nil, err
	}

	for _, a := range assemblers {
		top.Merge(a.Builder())
	}

	return top.Finalize(), nil
}
