package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/config"
	"thyrocheck/internal/server"
)

// serveHTTP is a test seam for running the HTTP server.
var serveHTTP = server.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := fs.String("config", "", "Path to config file (default: search for .thyrocheck/config.yml)")
		flowOverride := fs.String("flow", "", "Path to a flow file (default: built-in questionnaire)")
		addr := fs.String("addr", config.DefaultServerAddr, "Address to listen on")
		delay := fs.Duration("delay", config.DefaultThinkingDelay, "Pause before each system reply")
		if code, ok := parseFlags(cmd, fs, args, 0, stdout, stderr); !ok {
			return code
		}

		loaded, err := loadSettings(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config:\n%v\n", err)
			return ExitError
		}
		cfg := loaded.Config
		set := flagsSet(fs)
		if set["addr"] {
			cfg.Server.Addr = *addr
		}
		if set["delay"] {
			cfg.Chat.ThinkingDelay = *delay
		}
		if cfg.Server.Addr == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}
		if cfg.Chat.ThinkingDelay < 0 {
			fmt.Fprintln(stderr, "--delay must not be negative")
			return ExitUsage
		}

		path, err := flowPath(loaded, *flowOverride)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load flow: %v\n", err)
			return ExitError
		}
		graph, err := loadGraph(path)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load flow:\n%v\n", err)
			return ExitError
		}

		logger, closeLog, err := openLogger(cfg.Log, loaded.Root, stderr, false)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to set up logging: %v\n", err)
			return ExitError
		}
		defer closeLog()

		engine := chat.New(graph,
			chat.WithDelay(cfg.Chat.ThinkingDelay),
			chat.WithLogger(logger),
		)
		engine.Start()
		handler := server.New(engine, server.WithLogger(logger))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		serveCfg := server.Config{
			Addr: cfg.Server.Addr,
			Ready: func(bound string) {
				fmt.Fprintf(stdout, "Serving chat at http://%s\n", bound)
			},
		}
		if err := serveHTTP(ctx, serveCfg, handler); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
