package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pinvirt/internal/alloc"
	"pinvirt/internal/ui"
)

func newAddCmd(app *App) *cobra.Command {
	var multiSocket bool
	var useHT bool

	cmd := &cobra.Command{
		Use:   "add <vm-name> <vcpus> [socket]",
		Short: "Automatically pin a new VM",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("%w: vm name cannot be empty", ErrInvalidArguments)
			}

			vcpus, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: vcpu count %q is not a number", ErrInvalidArguments, args[1])
			}

			socket := alloc.NoSocket
			if len(args) == 3 {
				socket, err = strconv.Atoi(args[2])
				if err != nil || socket < 0 {
					return fmt.Errorf("%w: socket id %q is not a non-negative number", ErrInvalidArguments, args[2])
				}
			}

			return app.runAdd(name, alloc.Request{
				VCPUs:            vcpus,
				TargetSocket:     socket,
				AllowMultiSocket: multiSocket,
				UseHyperthreads:  useHT,
			})
		},
	}

	cmd.Flags().BoolVar(&multiSocket, "multi-socket", false, "allow cores from other sockets when the preferred one is full")
	cmd.Flags().BoolVar(&useHT, "use-ht", false, "use both hyperthreads of each core before moving to the next")
	return cmd
}

func (app *App) runAdd(name string, req alloc.Request) error {
	if err := requireRoot(); err != nil {
		return err
	}

	release, err := app.store.Lock()
	if err != nil {
		return err
	}
	defer release()

	pinned := app.store.Load()
	if _, exists := pinned[name]; exists {
		return fmt.Errorf("%w: %q, remove it first to re-pin", ErrDuplicateVM, name)
	}

	topo, err := app.source.Detect()
	if err != nil {
		return err
	}

	assigned, err := alloc.Allocate(topo, req, pinned.UsedCPUs())
	if err != nil {
		return err
	}

	pinned[name] = assigned
	if err := app.store.Save(pinned); err != nil {
		return err
	}

	ui.PrintPinned(name, assigned, false)
	return nil
}
