package ui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"pinvirt/internal/pinning"
	"pinvirt/internal/store"
	"pinvirt/internal/topology"
)

// PrintVMs lists every pinned VM with its CPU set and oVirt pinning string.
func PrintVMs(pinned store.PinningMap) {
	fmt.Println(subtitleStyle.Render("Pinned VMs"))
	fmt.Println()

	if len(pinned) == 0 {
		fmt.Println(dimStyle.Render("  (none)"))
		fmt.Println()
		return
	}

	names := make([]string, 0, len(pinned))
	for name := range pinned {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cpus := append([]int(nil), pinned[name]...)
		sort.Ints(cpus)
		fmt.Printf("  %s\n", highlightStyle.Render(name))
		fmt.Printf("      CPUs:    %s\n", cpuStyle.Render(pinning.Ranges(cpus)))
		fmt.Printf("      Pinning: %s\n", cpuStyle.Render(pinning.String(cpus)))
	}
	fmt.Println()
}

// PrintTopology renders the socket/core/thread tree with per-CPU usage
// markers.
func PrintTopology(topo *topology.Topology, used map[int]bool) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Host CPU Topology"))
	b.WriteString("\n\n")

	cores := topo.Cores()
	threads := len(topo.CPUs)
	b.WriteString(fmt.Sprintf("  %s %d    %s %d    %s %d\n\n",
		socketStyle.Render("Sockets:"), len(topo.Sockets()),
		cpuStyle.Render("Cores:"), len(cores),
		dimStyle.Render("Threads:"), threads))

	for _, socketID := range topo.Sockets() {
		var socketCores []topology.Core
		for _, core := range cores {
			if core.SocketID == socketID {
				socketCores = append(socketCores, core)
			}
		}

		b.WriteString(fmt.Sprintf("  %s %d\n", socketStyle.Render("Socket"), socketID))
		for i, core := range socketCores {
			prefix := "├─"
			if i == len(socketCores)-1 {
				prefix = "└─"
			}

			cells := make([]string, 0, len(core.Threads))
			coreFree := true
			for _, id := range core.Threads {
				if used[id] {
					coreFree = false
					cells = append(cells, usedStyle.Render(fmt.Sprintf("%3d*", id)))
				} else {
					cells = append(cells, freeStyle.Render(fmt.Sprintf("%3d ", id)))
				}
			}

			status := freeStyle.Render("free")
			if !coreFree {
				status = usedStyle.Render("used")
			}
			b.WriteString(fmt.Sprintf("     %s Core %3d: [%s] %s\n",
				prefix, core.CoreID, strings.Join(cells, "]["), status))
		}
	}

	fmt.Println(boxStyle.Render(b.String()))
}

// PrintFreeCPUs reports the logical CPUs not assigned to any VM.
func PrintFreeCPUs(topo *topology.Topology, used map[int]bool) {
	free := topo.FreeIDs(used)
	fmt.Println(subtitleStyle.Render(fmt.Sprintf("Free logical CPUs (%d)", len(free))))
	fmt.Println()
	if len(free) == 0 {
		fmt.Println(dimStyle.Render("  (none)"))
	} else {
		fmt.Printf("  %s\n", freeStyle.Render(pinning.Ranges(free)))
	}
	fmt.Println()
}

// PrintPinned confirms a new assignment and emits the pinning string for
// the virtualization manager.
func PrintPinned(vmName string, cpus []int, manual bool) {
	mode := "automatic"
	if manual {
		mode = "manual"
	}
	content := fmt.Sprintf("✓ Pinned VM %s (%s, %d vCPUs)\n\n  CPUs:    %s\n  Pinning: %s",
		vmName, mode, len(cpus), pinning.Ranges(cpus), pinning.String(cpus))
	fmt.Println()
	fmt.Println(successBoxStyle.Render(content))
	fmt.Println()
}

// PrintRemoved confirms the deletion of a VM's record.
func PrintRemoved(vmName string) {
	fmt.Println()
	fmt.Println(successBoxStyle.Render(fmt.Sprintf("✓ Removed pinning entry for VM %s", vmName)))
	fmt.Println()
}

func PrintError(err error) {
	content := fmt.Sprintf("✗ Error: %v", err)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, errorBoxStyle.Render(content))
	fmt.Fprintln(os.Stderr)
}
