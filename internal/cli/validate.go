package cli

import (
	"flag"
	"fmt"
	"io"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: search for .thyrocheck/config.yml)")
		flowOverride := flags.String("flow", "", "Path to a flow file to check instead of the configured one")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}

		loaded, err := loadSettings(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}
		if loaded.Path == "" {
			fmt.Fprintln(stdout, "Config OK (defaults, no config file found)")
		} else {
			fmt.Fprintf(stdout, "Config OK: %s\n", loaded.Path)
		}

		path, err := flowPath(loaded, *flowOverride)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		graph, err := loadGraph(path)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}
		source := path
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(stdout, "Flow OK: %s (%d steps)\n", source, graph.Len())
		return ExitOK
	}
}
