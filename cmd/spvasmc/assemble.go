package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gogpu/spvasm/driver"
	"github.com/gogpu/spvasm/spirv"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [flags] <manifest.toml>",
	Short: "Assemble a SPIR-V module from a kernel manifest",
	Long:  `Assemble reads a TOML kernel manifest and writes the assembled SPIR-V binary module`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAssemble,
}

func init() {
	assembleCmd.Flags().StringP("output", "o", "out.spv", "output module path")
	assembleCmd.Flags().Int("jobs", 0, "parallel kernel assembly limit (0 = GOMAXPROCS)")
	assembleCmd.Flags().String("cache-dir", "", "module cache directory (empty disables caching)")
	assembleCmd.Flags().Bool("debug-names", false, "emit OpName debug records")
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	cacheColor   = color.New(color.FgCyan)
)

func runAssemble(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	debugNames, err := cmd.Flags().GetBool("debug-names")
	if err != nil {
		return fmt.Errorf("failed to get debug-names flag: %w", err)
	}

	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	fns, err := manifest.Functions()
	if err != nil {
		return err
	}

	opts := driver.DefaultOptions()
	opts.Jobs = jobs
	opts.Debug = debugNames
	opts.Logger = loggerFromFlags(cmd)
	if v, ok := parseVersion(manifest.Version); ok {
		opts.Version = v
	}

	var cache *driver.Cache
	var key string
	if cacheDir != "" {
		cache, err = driver.NewCache(cacheDir)
		if err != nil {
			return err
		}
		key = cache.Key(fns, opts)
		if module, ok := cache.Load(key); ok {
			cacheColor.Fprintf(cmd.OutOrStdout(), "cache hit %s\n", key[:12])
			return os.WriteFile(output, module, 0o644)
		}
	}

	module, err := driver.NewSession(opts).Compile(cmd.Context(), fns)
	if err != nil {
		return fmt.Errorf("assembly failed: %w", err)
	}

	if cache != nil {
		if err := cache.Store(key, fns, module); err != nil {
			return err
		}
	}

	if err := os.WriteFile(output, module, 0o644); err != nil {
		return fmt.Errorf("write module: %w", err)
	}

	successColor.Fprintf(cmd.OutOrStdout(), "assembled %d kernels -> %s (%d bytes)\n",
		len(fns), output, len(module))
	return nil
}

// parseVersion parses "major.minor" manifest version strings.
func parseVersion(s string) (spirv.Version, bool) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return spirv.Version{}, false
	}
	switch major + "." + minor {
	case "1.0":
		return spirv.Version1_0, true
	case "1.3":
		return spirv.Version1_3, true
	case "1.4":
		return spirv.Version1_4, true
	case "1.5":
		return spirv.Version1_5, true
	case "1.6":
		return spirv.Version1_6, true
	}
	return spirv.Version{}, false
}
