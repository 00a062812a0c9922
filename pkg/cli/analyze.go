package cli

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pixprobe/pkg/acquire"
	"pixprobe/pkg/analyzer"
	"pixprobe/pkg/analyzer/clone"
	"pixprobe/pkg/analyzer/edge"
	"pixprobe/pkg/analyzer/ela"
	"pixprobe/pkg/analyzer/exiftool"
	"pixprobe/pkg/analyzer/jpegquality"
	"pixprobe/pkg/analyzer/luminance"
	"pixprobe/pkg/analyzer/noise"
	"pixprobe/pkg/analyzer/splicing"
	"pixprobe/pkg/config"
	"pixprobe/pkg/logging"
	"pixprobe/pkg/models"
	"pixprobe/pkg/report"
)

func newAnalyzeCommand() *cobra.Command {
	var flags struct {
		outputDir        string
		blockSize        int
		cloneRatio       float64
		cloneMinDistance float64
		disabled         []string
		skipAcquire      bool
		noHTML           bool
	}

	cmd := &cobra.Command{
		Use:   "analyze <image> [image...]",
		Short: "Run the forensic detector battery over one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := config.Overrides{
				OutputDir:         flags.outputDir,
				DisabledAnalyzers: flags.disabled,
			}
			if cmd.Flags().Changed("block-size") {
				overrides.BlockSize = flags.blockSize
				overrides.BlockSizeSet = true
			}
			if cmd.Flags().Changed("clone-ratio") {
				overrides.CloneRatio = flags.cloneRatio
				overrides.CloneRatioSet = true
			}
			if cmd.Flags().Changed("clone-min-distance") {
				overrides.CloneMinDistance = flags.cloneMinDistance
				overrides.CloneMinDistanceSet = true
			}

			cfg, err := config.Loader{ConfigPath: rootFlags.configPath}.Load(overrides)
			if err != nil {
				return err
			}

			log, closer, err := logging.Setup(logging.Options{
				Level: rootFlags.logLevel,
				File:  rootFlags.logFile,
				Quiet: rootFlags.quiet,
			})
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			for _, imagePath := range args {
				if err := analyzeImage(imagePath, cfg, log, flags.skipAcquire, flags.noHTML); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "directory for reports and visualizations")
	cmd.Flags().IntVar(&flags.blockSize, "block-size", 32, "analysis block size in pixels")
	cmd.Flags().Float64Var(&flags.cloneRatio, "clone-ratio", 0.7, "ratio test threshold for clone matching")
	cmd.Flags().Float64Var(&flags.cloneMinDistance, "clone-min-distance", 50, "minimum pixel distance between clone regions")
	cmd.Flags().StringSliceVar(&flags.disabled, "disable", nil, "analyzer names to skip")
	cmd.Flags().BoolVar(&flags.skipAcquire, "skip-acquire", false, "analyze the original file instead of a hashed working copy")
	cmd.Flags().BoolVar(&flags.noHTML, "no-html", false, "skip the HTML report")

	return cmd
}

func analyzeImage(imagePath string, cfg config.RuntimeConfig, log *logrus.Logger, skipAcquire, noHTML bool) error {
	printInfo("Analyzing image: %s", imagePath)

	var evidence *acquire.Evidence
	target := imagePath
	if !skipAcquire {
		var err error
		evidence, err = acquire.Acquire(imagePath, filepath.Join(cfg.OutputDir, "evidence"))
		if err != nil {
			return fmt.Errorf("evidence acquisition failed: %w", err)
		}
		target = evidence.WorkingCopy
		printSuccess("Acquired working copy %s (sha256 %s)", evidence.WorkingCopy, evidence.SHA256)
	}

	pipe := buildPipeline(cfg, log)
	results := pipe.ExecuteAll(target)

	displayResults(results)

	writer := report.NewWriter(cfg.OutputDir, log)
	rep := report.Build(imagePath, results, evidence)
	jsonPath, err := writer.WriteJSON(rep)
	if err != nil {
		return err
	}
	printSuccess("JSON report: %s", jsonPath)

	if !noHTML {
		htmlPath, err := writer.WriteHTML(rep)
		if err != nil {
			return err
		}
		printSuccess("HTML report: %s", htmlPath)
	}
	return nil
}

// buildPipeline registers the full detector battery in a fixed order and
// disables what the configuration switches off.
func buildPipeline(cfg config.RuntimeConfig, log *logrus.Logger) *analyzer.Pipeline {
	pipe := analyzer.NewPipeline(log)
	pipe.Register(exiftool.New(cfg.ExiftoolTimeout, log))
	pipe.Register(noise.New(cfg.OutputDir, cfg.BlockSize, log))
	pipe.Register(clone.New(cfg.OutputDir, cfg.CloneRatio, cfg.CloneMinDistance, log))
	pipe.Register(splicing.New(cfg.OutputDir, cfg.BlockSize, log))
	pipe.Register(ela.New(cfg.OutputDir, cfg.ELAQuality, log))
	pipe.Register(luminance.New(cfg.OutputDir, cfg.BlockSize, log))
	pipe.Register(edge.New(cfg.OutputDir, cfg.BlockSize, log))
	pipe.Register(jpegquality.New(cfg.OutputDir, log))

	for _, a := range pipe.Analyzers() {
		if cfg.IsDisabled(a.Name()) {
			pipe.SetEnabled(a.Name(), false)
		}
	}
	return pipe
}

func displayResults(results *models.PipelineResult) {
	fmt.Println("\n--- Analysis Results ---")
	for _, name := range results.Order {
		r := results.Get(name)
		switch r.Status {
		case models.StatusError:
			printError("%s: %s", name, r.Error)
		case models.StatusToolUnavailable:
			printWarning("%s: %s", name, r.Interpretation)
		case models.StatusNotApplicable, models.StatusInsufficientFeatures:
			printInfo("%s: %s", name, r.Interpretation)
		default:
			printLevel(r)
		}
	}
	fmt.Println("-------------------------")
}

func printLevel(r *models.AnalysisResult) {
	switch r.SuspicionLevel {
	case "Very High":
		printAlert("%s: %s (score %.2f). %s", r.Analyzer, r.SuspicionLevel, r.SuspicionScore, r.Interpretation)
	case "High":
		printWarning("%s: %s (score %.2f). %s", r.Analyzer, r.SuspicionLevel, r.SuspicionScore, r.Interpretation)
	case "Moderate":
		printInfo("%s: %s (score %.2f). %s", r.Analyzer, r.SuspicionLevel, r.SuspicionScore, r.Interpretation)
	default:
		printSuccess("%s: %s (score %.2f). %s", r.Analyzer, r.SuspicionLevel, r.SuspicionScore, r.Interpretation)
	}
}
