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
	"thyrocheck/internal/report"
	"thyrocheck/internal/ui/live"
	"thyrocheck/internal/ui/plain"
)

// chatInput allows tests to override stdin for the plain UI.
var chatInput io.Reader = os.Stdin

// runLive is a test seam for the Bubble Tea front end.
var runLive = func(engine *chat.Engine, opts live.Options, stdout io.Writer) error {
	controller := live.Start(engine, opts, live.ProgramOptions{Output: stdout, AltScreen: true})
	unsubscribe := engine.Subscribe(controller)
	defer unsubscribe()
	engine.Start()
	return controller.Wait()
}

// runChat builds the handler for the chat command.
func runChat(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: search for .thyrocheck/config.yml)")
		flowOverride := flags.String("flow", "", "Path to a flow file (default: built-in questionnaire)")
		uiMode := flags.String("ui", "", "UI mode: auto|live|plain")
		noColor := flags.Bool("no-color", false, "Disable colors")
		delay := flags.Duration("delay", config.DefaultThinkingDelay, "Pause before each system reply")
		exportDir := flags.String("export-dir", "", "Directory for exported reports")
		format := flags.String("format", "", "Report format: text|json|html")
		verbose := flags.Bool("verbose", false, "Log debug output to stderr (forces plain UI)")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}

		loaded, err := loadSettings(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config:\n%v\n", err)
			return ExitError
		}
		cfg := loaded.Config
		set := flagsSet(flags)
		if set["ui"] {
			cfg.UI.Mode = *uiMode
		}
		if set["no-color"] {
			cfg.UI.NoColor = *noColor
		}
		if set["delay"] {
			if *delay < 0 {
				fmt.Fprintln(stderr, "--delay must not be negative")
				return ExitUsage
			}
			cfg.Chat.ThinkingDelay = *delay
		}
		if set["export-dir"] {
			cfg.Report.OutputDir = *exportDir
		}
		if set["format"] {
			cfg.Report.Format = *format
		}
		reportFormat, err := report.ParseFormat(cfg.Report.Format)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid report format: %v\n", err)
			return ExitUsage
		}

		decision, err := resolveUIMode(cfg.UI.Mode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid UI mode: %v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
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

		var logOut io.Writer = stderr
		if decision.useLive {
			logOut = nil
		}
		logger, closeLog, err := openLogger(cfg.Log, loaded.Root, logOut, *verbose)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to set up logging: %v\n", err)
			return ExitError
		}
		defer closeLog()

		exporter := report.Exporter{
			Dir:    config.ResolvePath(loaded.Root, cfg.Report.OutputDir),
			Format: reportFormat,
			Graph:  graph,
		}
		engine := chat.New(graph,
			chat.WithDelay(cfg.Chat.ThinkingDelay),
			chat.WithLogger(logger),
		)
		logger.Debug("chat starting", "flow", path, "ui_live", decision.useLive, "delay", cfg.Chat.ThinkingDelay)

		if decision.useLive {
			if err := runLive(engine, live.Options{NoColor: cfg.UI.NoColor, Export: exporter.Export}, stdout); err != nil {
				fmt.Fprintf(stderr, "UI error: %v\n", err)
				return ExitError
			}
			return ExitOK
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		engine.Start()
		err = plain.Run(ctx, engine, chatInput, stdout, plain.Options{NoColor: cfg.UI.NoColor, Export: exporter.Export})
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
