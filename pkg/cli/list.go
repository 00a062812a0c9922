package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pixprobe/pkg/config"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available analyzers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Loader{ConfigPath: rootFlags.configPath}.Load(config.Overrides{})
			if err != nil {
				return err
			}

			log := logrus.New()
			log.SetOutput(io.Discard)

			for _, a := range buildPipeline(cfg, log).Analyzers() {
				switch {
				case cfg.IsDisabled(a.Name()):
					printWarning("%s (disabled by configuration)", a.Name())
				case !a.Available():
					printError("%s (unavailable on this system)", a.Name())
				default:
					printSuccess("%s", a.Name())
				}
			}
			return nil
		},
	}
}
