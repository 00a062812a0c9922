package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFile    string
	quiet      bool
}

// NewRootCommand builds the pixprobe command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pixprobe",
		Short:         "Forensic analysis of image tampering",
		Long:          "pixprobe runs a battery of forensic detectors over an image (noise, clones, splicing, lighting, compression traces) and consolidates the findings into a report.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&rootFlags.logFile, "log-file", "", "duplicate logs into this file")
	root.PersistentFlags().BoolVarP(&rootFlags.quiet, "quiet", "q", false, "only log warnings and errors")

	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newListCommand())
	root.AddCommand(newVerifyCommand())

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		printError("%v", err)
		return 1
	}
	return 0
}
