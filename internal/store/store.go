// Package store persists the VM name to logical-CPU mapping as a single
// JSON object. Each save rewrites the whole mapping atomically; the store
// performs no cross-VM validation, that belongs to the allocation boundary.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

var ErrWriteFailed = errors.New("failed to write pinning state")

// DefaultPath is where the pinning map lives unless configuration says
// otherwise.
const DefaultPath = "/etc/pinvirt/cpu_pinning_map.json"

// PinningMap maps a VM name to its assigned logical CPU ids.
type PinningMap map[string][]int

// UsedCPUs is the union of every VM's assigned ids.
func (m PinningMap) UsedCPUs() map[int]bool {
	used := make(map[int]bool)
	for _, cpus := range m {
		for _, id := range cpus {
			used[id] = true
		}
	}
	return used
}

type Store struct {
	path string
}

func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted mapping. A missing file is an empty mapping;
// unreadable or unparseable content degrades to an empty mapping with a
// warning rather than failing the caller.
func (s *Store) Load() PinningMap {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warnf("could not read %s, assuming empty", s.path)
		}
		return PinningMap{}
	}

	var pinned PinningMap
	if err := json.Unmarshal(data, &pinned); err != nil {
		logrus.WithError(err).Warnf("could not decode %s, assuming empty", s.path)
		return PinningMap{}
	}
	if pinned == nil {
		pinned = PinningMap{}
	}
	return pinned
}

// Save rewrites the whole mapping through a temp file in the same directory
// followed by a rename, so a failed write never truncates the previous
// state.
func (s *Store) Save(pinned PinningMap) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(pinned); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Lock takes an advisory lock guarding the load-allocate-save sequence
// against a concurrent invocation. The caller must invoke the returned
// release function.
func (s *Store) Lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logrus.WithError(err).Warn("could not release state lock")
		}
	}, nil
}
