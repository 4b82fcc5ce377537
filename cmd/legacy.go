package cmd

var legacyCommands = map[string]string{
	"--add":        "add",
	"--add-manual": "add-manual",
	"--remove":     "remove",
	"--list":       "list",
	"--topology":   "topology",
	"--free-cpus":  "free-cpus",
	"--help":       "help",
}

// NormalizeLegacyArgs translates the historical "--command" spelling into
// the subcommand form. Only the first argument is rewritten, so flags
// belonging to subcommands pass through untouched.
func NormalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	sub, ok := legacyCommands[args[0]]
	if !ok {
		return args
	}
	out := make([]string, len(args))
	copy(out, args)
	out[0] = sub
	return out
}
