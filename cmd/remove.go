package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pinvirt/internal/ui"
)

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <vm-name>",
		Short: "Remove a VM's pinning record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("%w: vm name cannot be empty", ErrInvalidArguments)
			}
			return app.runRemove(name)
		},
	}
}

func (app *App) runRemove(name string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	release, err := app.store.Lock()
	if err != nil {
		return err
	}
	defer release()

	pinned := app.store.Load()
	if _, exists := pinned[name]; !exists {
		logrus.Warnf("VM %q not found in pinning records", name)
		return nil
	}

	delete(pinned, name)
	if err := app.store.Save(pinned); err != nil {
		return err
	}

	ui.PrintRemoved(name)
	return nil
}
