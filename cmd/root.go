// Package cmd wires the command surface to the core packages. All command
// logic returns typed errors; process-exit decisions live in main.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pinvirt/internal/config"
	"pinvirt/internal/store"
	"pinvirt/internal/topology"
	"pinvirt/internal/ui"
)

var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrDuplicateVM      = errors.New("vm already pinned")
	ErrRootRequired     = errors.New("root privileges required")
)

// App carries the shared collaborators built once per invocation.
type App struct {
	cfg    *config.Config
	store  *store.Store
	source *topology.Source
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	var configPath string
	var stateFile string
	var logLevel string

	root := &cobra.Command{
		Use:   "pinvirt",
		Short: "Manage vCPU pinning for virtual machines",
		Long: "pinvirt assigns host logical CPUs to virtual machines, records the\n" +
			"assignments so repeated runs never double-allocate a CPU, and emits\n" +
			"oVirt-compatible pinning strings.\n\n" +
			"Run without a command for the interactive wizard.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if stateFile != "" {
				cfg.StateFile = stateFile
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("%w: unknown log level %q", ErrInvalidArguments, cfg.LogLevel)
			}
			logrus.SetLevel(level)

			app.cfg = cfg
			app.store = store.New(cfg.StateFile)
			app.source = topology.NewSource(cfg.TopologyCommand)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			topo, err := app.source.Detect()
			if err != nil {
				return err
			}
			return ui.Run(topo, app.store)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringVar(&stateFile, "state-file", "", "pinning state file (default "+store.DefaultPath+")")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warning, error")

	root.AddCommand(
		newAddCmd(app),
		newAddManualCmd(app),
		newRemoveCmd(app),
		newListCmd(app),
		newTopologyCmd(app),
		newFreeCPUsCmd(app),
	)
	return root
}

func requireRoot() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("%w: run this command as root", ErrRootRequired)
	}
	return nil
}
