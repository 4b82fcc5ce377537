// Package alloc selects logical CPUs for a VM out of the free portion of
// the host topology. Allocation is a pure function of its inputs: the same
// topology, request and used set always yield the same CPUs.
package alloc

import (
	"errors"
	"fmt"
	"sort"

	"pinvirt/internal/topology"
)

var (
	ErrNoSuchSocket      = errors.New("no such socket")
	ErrInsufficientCores = errors.New("insufficient free cores")
	ErrInvalidRequest    = errors.New("invalid allocation request")
)

// NoSocket marks a request without a socket preference.
const NoSocket = -1

type Request struct {
	VCPUs int

	// TargetSocket is the preferred socket id, or NoSocket. With
	// AllowMultiSocket the preference orders candidates but does not
	// exclude other sockets; without it the allocation is confined to
	// the target socket.
	TargetSocket     int
	AllowMultiSocket bool

	// UseHyperthreads packs every thread of a core before moving to the
	// next core. Off, only the first thread of each core is eligible, so
	// a VM never lands on sibling threads unless asked to.
	UseHyperthreads bool
}

type coreKey struct {
	socket int
	core   int
}

// Allocate returns the logical CPU ids satisfying req, sorted ascending.
func Allocate(topo *topology.Topology, req Request, used map[int]bool) ([]int, error) {
	if req.VCPUs <= 0 {
		return nil, fmt.Errorf("%w: vcpu count must be positive, got %d", ErrInvalidRequest, req.VCPUs)
	}
	if req.TargetSocket != NoSocket && !topo.HasSocket(req.TargetSocket) {
		return nil, fmt.Errorf("%w: socket %d not present, host has %v",
			ErrNoSuchSocket, req.TargetSocket, topo.Sockets())
	}

	buckets := freeCoreBuckets(topo, req, used)
	keys := sortedCoreKeys(buckets, req.TargetSocket)

	if req.UseHyperthreads {
		return packThreads(buckets, keys, req.VCPUs)
	}
	return firstThreadPerCore(buckets, keys, req.VCPUs)
}

// freeCoreBuckets groups the free logical ids by physical core. When the
// allocation is confined to one socket, other sockets never produce a
// bucket. Each bucket is sorted so its first entry is the lowest-numbered
// thread of the core.
func freeCoreBuckets(topo *topology.Topology, req Request, used map[int]bool) map[coreKey][]int {
	buckets := make(map[coreKey][]int)
	for _, cpu := range topo.CPUs {
		if used[cpu.ID] {
			continue
		}
		if req.TargetSocket != NoSocket && !req.AllowMultiSocket && cpu.SocketID != req.TargetSocket {
			continue
		}
		key := coreKey{socket: cpu.SocketID, core: cpu.CoreID}
		buckets[key] = append(buckets[key], cpu.ID)
	}
	for _, ids := range buckets {
		sort.Ints(ids)
	}
	return buckets
}

// sortedCoreKeys orders the buckets: cores on the target socket first, then
// ascending socket, then ascending core. This single ordering carries both
// the socket preference and the multi-socket spillover.
func sortedCoreKeys(buckets map[coreKey][]int, targetSocket int) []coreKey {
	keys := make([]coreKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi := targetSocket != NoSocket && keys[i].socket == targetSocket
		pj := targetSocket != NoSocket && keys[j].socket == targetSocket
		if pi != pj {
			return pi
		}
		if keys[i].socket != keys[j].socket {
			return keys[i].socket < keys[j].socket
		}
		return keys[i].core < keys[j].core
	})
	return keys
}

func firstThreadPerCore(buckets map[coreKey][]int, keys []coreKey, vcpus int) ([]int, error) {
	if len(keys) < vcpus {
		return nil, fmt.Errorf("%w: need %d physical cores, %d available",
			ErrInsufficientCores, vcpus, len(keys))
	}
	assigned := make([]int, 0, vcpus)
	for _, key := range keys[:vcpus] {
		assigned = append(assigned, buckets[key][0])
	}
	sort.Ints(assigned)
	return assigned, nil
}

func packThreads(buckets map[coreKey][]int, keys []coreKey, vcpus int) ([]int, error) {
	total := 0
	for _, ids := range buckets {
		total += len(ids)
	}
	if total < vcpus {
		return nil, fmt.Errorf("%w: need %d logical cpus, %d available",
			ErrInsufficientCores, vcpus, total)
	}

	assigned := make([]int, 0, vcpus)
	for _, key := range keys {
		need := vcpus - len(assigned)
		if need <= 0 {
			break
		}
		ids := buckets[key]
		if need > len(ids) {
			need = len(ids)
		}
		assigned = append(assigned, ids[:need]...)
	}
	sort.Ints(assigned)
	return assigned, nil
}
