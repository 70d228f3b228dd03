// spvasmc assembles SPIR-V kernel modules from TOML kernel manifests.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/spvasm/driver"
)

var rootCmd = &cobra.Command{
	Use:   "spvasmc",
	Short: "SPIR-V kernel module assembler",
	Long:  `spvasmc assembles SPIR-V binary modules from kernel manifests`,
}

func main() {
	rootCmd.AddCommand(assembleCmd)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loggerFromFlags builds the driver logger from the persistent flags.
func loggerFromFlags(cmd *cobra.Command) *slog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	level := slog.LevelInfo
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return driver.NewLogger(driver.LogConfig{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
}
