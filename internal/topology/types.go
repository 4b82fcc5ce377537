package topology

import "sort"

// LogicalCPU is one schedulable hardware thread. Threads sharing the same
// (SocketID, CoreID) pair are hyperthread siblings of one physical core.
type LogicalCPU struct {
	ID       int `json:"logical_id"`
	CoreID   int `json:"core_id"`
	SocketID int `json:"socket_id"`
}

// Topology holds the host CPU enumeration in source order, deduplicated by
// logical id. It is rebuilt on every invocation and never persisted.
type Topology struct {
	CPUs []LogicalCPU `json:"cpus"`
}

// Core is one physical core with its logical thread ids sorted ascending.
type Core struct {
	SocketID int   `json:"socket_id"`
	CoreID   int   `json:"core_id"`
	Threads  []int `json:"threads"`
}

func (t *Topology) Sockets() []int {
	seen := make(map[int]bool)
	var sockets []int
	for _, cpu := range t.CPUs {
		if seen[cpu.SocketID] {
			continue
		}
		seen[cpu.SocketID] = true
		sockets = append(sockets, cpu.SocketID)
	}
	sort.Ints(sockets)
	return sockets
}

func (t *Topology) HasSocket(id int) bool {
	for _, cpu := range t.CPUs {
		if cpu.SocketID == id {
			return true
		}
	}
	return false
}

func (t *Topology) IDs() []int {
	ids := make([]int, 0, len(t.CPUs))
	for _, cpu := range t.CPUs {
		ids = append(ids, cpu.ID)
	}
	sort.Ints(ids)
	return ids
}

func (t *Topology) Contains(id int) bool {
	for _, cpu := range t.CPUs {
		if cpu.ID == id {
			return true
		}
	}
	return false
}

// FreeIDs returns all logical ids not present in used, sorted ascending.
func (t *Topology) FreeIDs(used map[int]bool) []int {
	free := []int{}
	for _, cpu := range t.CPUs {
		if !used[cpu.ID] {
			free = append(free, cpu.ID)
		}
	}
	sort.Ints(free)
	return free
}

// Cores groups the logical CPUs by physical core, ordered by socket then
// core id, with each core's threads sorted ascending.
func (t *Topology) Cores() []Core {
	type key struct{ socket, core int }
	groups := make(map[key][]int)
	for _, cpu := range t.CPUs {
		k := key{cpu.SocketID, cpu.CoreID}
		groups[k] = append(groups[k], cpu.ID)
	}

	cores := make([]Core, 0, len(groups))
	for k, threads := range groups {
		sort.Ints(threads)
		cores = append(cores, Core{SocketID: k.socket, CoreID: k.core, Threads: threads})
	}
	sort.Slice(cores, func(i, j int) bool {
		if cores[i].SocketID == cores[j].SocketID {
			return cores[i].CoreID < cores[j].CoreID
		}
		return cores[i].SocketID < cores[j].SocketID
	})
	return cores
}
