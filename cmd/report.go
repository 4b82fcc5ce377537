package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"pinvirt/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all pinned VMs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintVMs(app.store.Load())
			return nil
		},
	}
}

func newTopologyCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Show host CPU topology with usage markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := app.source.Detect()
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(topo)
			}

			ui.PrintTopology(topo, app.store.Load().UsedCPUs())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func newFreeCPUsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "free-cpus",
		Short: "Show logical CPUs not assigned to any VM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := app.source.Detect()
			if err != nil {
				return err
			}
			ui.PrintFreeCPUs(topo, app.store.Load().UsedCPUs())
			return nil
		},
	}
}
