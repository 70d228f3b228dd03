// Package spvasm assembles SPIR-V modules from kernel IR.
//
// spvasm is the binary-emission layer of a retargetable GPU kernel compiler
// backend: it allocates result IDs, deduplicates type declarations and
// encodes word-exact SPIR-V instructions, assembling per-kernel function
// bodies in parallel into one module.
//
// Example usage:
//
//	fns := []*ir.Function{kernel}
//	module, err := spvasm.Assemble(context.Background(), fns, spvasm.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control over shared state and section composition, use the
// driver package directly; for word-level emission, the spirv package.
package spvasm

import (
	"context"

	"github.com/gogpu/spvasm/driver"
	"github.com/gogpu/spvasm/ir"
)

// Options configures module assembly. See driver.Options.
type Options = driver.Options

// DefaultOptions returns options for an OpenCL-flavoured kernel module.
func DefaultOptions() Options {
	return driver.DefaultOptions()
}

// Assemble compiles a set of kernel functions into one finalized SPIR-V
// module. A fresh compilation unit (ID space, type table) is created per
// call; kernels assemble in parallel and types are deduplicated module-wide.
func Assemble(ctx context.Context, fns []*ir.Function, opts Options) ([]byte, error) {
	return driver.NewSession(opts).Compile(ctx, fns)
}
