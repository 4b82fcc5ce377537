package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pinvirt/internal/pinning"
	"pinvirt/internal/ui"
)

// ManualValidationError reports every offending CPU id of a manual request
// in one pass, together with the ids still free, so the operator sees the
// whole problem at once.
type ManualValidationError struct {
	Unknown   []int
	InUse     []int
	Available []int
}

func (e *ManualValidationError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("non-existent CPU ids: %s", pinning.Ranges(e.Unknown)))
	}
	if len(e.InUse) > 0 {
		parts = append(parts, fmt.Sprintf("CPUs already in use: %s", pinning.Ranges(e.InUse)))
	}
	parts = append(parts, fmt.Sprintf("available CPUs: %s", pinning.Ranges(e.Available)))
	return "cannot pin VM: " + strings.Join(parts, "; ")
}

func newAddManualCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-manual <vm-name> <cpu-list>",
		Short: "Manually pin a VM to a comma-separated list of logical CPUs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("%w: vm name cannot be empty", ErrInvalidArguments)
			}

			cpus, err := parseCPUList(args[1])
			if err != nil {
				return err
			}
			return app.runAddManual(name, cpus)
		},
	}
}

// parseCPUList parses "1,3,5,7" into sorted ids. The list length is the
// vCPU count; there is no separate count parameter.
func parseCPUList(raw string) ([]int, error) {
	var cpus []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid CPU list %q, expected integers", ErrInvalidArguments, raw)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate CPU id %d in list", ErrInvalidArguments, id)
		}
		seen[id] = true
		cpus = append(cpus, id)
	}
	if len(cpus) == 0 {
		return nil, fmt.Errorf("%w: CPU list cannot be empty", ErrInvalidArguments)
	}
	return cpus, nil
}

func (app *App) runAddManual(name string, cpus []int) error {
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

	used := pinned.UsedCPUs()
	var unknown, inUse []int
	for _, id := range cpus {
		switch {
		case !topo.Contains(id):
			unknown = append(unknown, id)
		case used[id]:
			inUse = append(inUse, id)
		}
	}
	if len(unknown) > 0 || len(inUse) > 0 {
		return &ManualValidationError{
			Unknown:   unknown,
			InUse:     inUse,
			Available: topo.FreeIDs(used),
		}
	}

	sort.Ints(cpus)
	pinned[name] = cpus
	if err := app.store.Save(pinned); err != nil {
		return err
	}

	ui.PrintPinned(name, cpus, true)
	return nil
}
