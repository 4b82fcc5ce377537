package topology

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrEmptyTopology = errors.New("no usable cpu topology records")

// Parse reads a line-oriented CPU enumeration in lscpu -p format: one
// "logical,core,socket" triple per non-comment line. Malformed lines are
// skipped with a warning; a logical id seen twice keeps its first record.
// Parse fails only when nothing valid remains.
func Parse(r io.Reader) (*Topology, error) {
	scanner := bufio.NewScanner(r)
	seen := make(map[int]bool)
	var cpus []LogicalCPU

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cpu, err := parseRecord(line)
		if err != nil {
			logrus.WithField("line", line).Warn("skipping invalid topology record")
			continue
		}
		if seen[cpu.ID] {
			continue
		}
		seen[cpu.ID] = true
		cpus = append(cpus, cpu)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(cpus) == 0 {
		return nil, ErrEmptyTopology
	}
	return &Topology{CPUs: cpus}, nil
}

func parseRecord(line string) (LogicalCPU, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return LogicalCPU{}, errors.New("expected three fields")
	}

	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return LogicalCPU{}, err
		}
		if v < 0 {
			return LogicalCPU{}, errors.New("negative field")
		}
		values[i] = v
	}
	return LogicalCPU{ID: values[0], CoreID: values[1], SocketID: values[2]}, nil
}
