// Package pinning renders CPU assignments for the outside world: the oVirt
// pinning syntax consumed by the virtualization manager, and collapsed
// range notation for human-readable reports.
package pinning

import (
	"sort"
	"strconv"
	"strings"
)

// String formats the assigned CPUs as oVirt vcpu-to-cpu pairs,
// "0#1_1#3_2#7" for the set {1,3,7}. The virtual index is the position in
// the sorted, deduplicated list, so any permutation of the same set yields
// the same string.
func String(assigned []int) string {
	cpus := sortedUnique(assigned)
	parts := make([]string, 0, len(cpus))
	for vcpu, pcpu := range cpus {
		parts = append(parts, strconv.Itoa(vcpu)+"#"+strconv.Itoa(pcpu))
	}
	return strings.Join(parts, "_")
}

// Ranges collapses a CPU set into cpulist notation, "0-3,8,10-11".
func Ranges(cpus []int) string {
	sorted := sortedUnique(cpus)
	if len(sorted) == 0 {
		return ""
	}

	var parts []string
	start := sorted[0]
	prev := sorted[0]
	for _, cur := range sorted[1:] {
		if cur == prev+1 {
			prev = cur
			continue
		}
		parts = append(parts, formatRange(start, prev))
		start = cur
		prev = cur
	}
	parts = append(parts, formatRange(start, prev))

	return strings.Join(parts, ",")
}

func formatRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func sortedUnique(values []int) []int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	result := make([]int, 0, len(sorted))
	for _, v := range sorted {
		if len(result) > 0 && v == result[len(result)-1] {
			continue
		}
		result = append(result, v)
	}
	return result
}
