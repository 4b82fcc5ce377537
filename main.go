package main

import (
	"errors"
	"os"

	"pinvirt/cmd"
	"pinvirt/internal/alloc"
	"pinvirt/internal/store"
	"pinvirt/internal/topology"
	"pinvirt/internal/ui"
)

func main() {
	root := cmd.NewRootCmd()
	root.SetArgs(cmd.NormalizeLegacyArgs(os.Args[1:]))
	if err := root.Execute(); err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	if err == nil {
		return
	}

	ui.PrintError(err)
	switch {
	case errors.Is(err, cmd.ErrInvalidArguments):
		os.Exit(2)
	case errors.Is(err, topology.ErrSourceUnavailable) || errors.Is(err, topology.ErrEmptyTopology):
		os.Exit(3)
	case errors.Is(err, alloc.ErrNoSuchSocket) ||
		errors.Is(err, alloc.ErrInsufficientCores) ||
		errors.Is(err, alloc.ErrInvalidRequest):
		os.Exit(4)
	case errors.Is(err, cmd.ErrRootRequired) || errors.Is(err, os.ErrPermission):
		os.Exit(5)
	case errors.Is(err, store.ErrWriteFailed):
		os.Exit(6)
	default:
		os.Exit(1)
	}
}
