package topology

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var ErrSourceUnavailable = errors.New("cpu topology source unavailable")

// DefaultCommand is the host enumeration command fed to Parse.
const DefaultCommand = "lscpu -p=CPU,CORE,SOCKET"

// Source runs an external enumeration command and parses its output. The
// command is injectable so tests and unusual hosts can substitute their own.
type Source struct {
	argv []string
}

func NewSource(command string) *Source {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	return &Source{argv: strings.Fields(command)}
}

func (s *Source) Detect() (*Topology, error) {
	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, wrapCommandError(err, stderr.String())
	}
	return Parse(&stdout)
}

func wrapCommandError(err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if detail := strings.TrimSpace(stderr); detail != "" {
		return fmt.Errorf("%w: %v: %s", ErrSourceUnavailable, err, detail)
	}
	return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}
