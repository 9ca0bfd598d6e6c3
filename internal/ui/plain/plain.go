package plain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"thyrocheck/internal/answer"
	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/report"
	"thyrocheck/internal/risk"
)

// Commands recognised at any prompt.
const (
	CommandRestart = ":restart"
	CommandExport  = ":export"
	CommandQuit    = ":quit"
)

// Session is the part of the engine the line UI drives.
type Session interface {
	Snapshot() chat.Snapshot
	Submit(stepID string, value answer.Value, displayText string) chat.Result
	Restart()
	Verdict() (risk.Verdict, bool)
	WaitIdle(ctx context.Context) (chat.Snapshot, error)
}

// ExportFunc writes the report for a verdict and returns its path.
type ExportFunc func(ctx context.Context, verdict risk.Verdict, ok bool) (string, error)

// Options configures Run.
type Options struct {
	NoColor bool
	Export  ExportFunc
}

type palette struct {
	system *color.Color
	user   *color.Color
	option *color.Color
	hint   *color.Color
	alert  *color.Color
	bold   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		system: color.New(color.FgCyan),
		user:   color.New(color.FgGreen),
		option: color.New(color.FgYellow),
		hint:   color.New(color.Faint),
		alert:  color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.system, p.user, p.option, p.hint, p.alert, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

type runner struct {
	session Session
	lines   *bufio.Scanner
	out     io.Writer
	opts    Options
	colors  palette
	epoch   uint64
	printed int
}

// Run drives session from lines read on in until the user quits or in is
// exhausted. The transcript is written to out.
func Run(ctx context.Context, session Session, in io.Reader, out io.Writer, opts Options) error {
	r := &runner{
		session: session,
		lines:   bufio.NewScanner(in),
		out:     out,
		opts:    opts,
		colors:  newPalette(opts.NoColor),
	}
	for {
		snapshot, err := session.WaitIdle(ctx)
		if err != nil {
			return err
		}
		r.flush(snapshot)
		r.prompt(snapshot)

		if !r.lines.Scan() {
			if err := r.lines.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}
		line := strings.TrimSpace(r.lines.Text())
		switch line {
		case CommandQuit:
			return nil
		case CommandRestart:
			session.Restart()
			continue
		case CommandExport:
			r.export(ctx)
			continue
		}
		r.answer(snapshot, line)
	}
}

// flush prints messages not printed yet. A new epoch starts over.
func (r *runner) flush(snapshot chat.Snapshot) {
	if snapshot.Epoch != r.epoch {
		if r.epoch != 0 {
			r.colors.hint.Fprintln(r.out, "--- new conversation ---")
		}
		r.epoch = snapshot.Epoch
		r.printed = 0
	}
	for _, message := range snapshot.Messages[min(r.printed, len(snapshot.Messages)):] {
		text := plainText(message.Text)
		if message.Origin == chat.OriginUser {
			r.colors.user.Fprintf(r.out, "You: %s\n", text)
			continue
		}
		r.colors.system.Fprintln(r.out, text)
	}
	r.printed = len(snapshot.Messages)
}

func (r *runner) prompt(snapshot chat.Snapshot) {
	switch {
	case snapshot.Stalled:
		r.colors.alert.Fprintln(r.out, "The conversation cannot continue. Type :restart or :quit.")
	case snapshot.Terminal():
		if snapshot.Verdict != nil {
			level := snapshot.Verdict.Level
			r.colors.bold.Fprintf(r.out, "%s %s\n", level.Label(), gauge(level.Percent(), 20))
		}
		r.colors.hint.Fprintln(r.out, "Type :export, :restart or :quit.")
	default:
		step := snapshot.Step
		for i, option := range step.Options {
			r.colors.option.Fprintf(r.out, "  %d) %s\n", i+1, option.Label)
		}
		switch step.Kind {
		case flow.KindMultiChoice:
			r.colors.hint.Fprintln(r.out, "Enter numbers separated by commas, or 0 for none.")
		case flow.KindChoice:
			r.colors.hint.Fprintln(r.out, "Enter a number.")
		}
	}
	fmt.Fprint(r.out, "> ")
}

func (r *runner) answer(snapshot chat.Snapshot, line string) {
	if !snapshot.AcceptsInput() {
		r.colors.hint.Fprintln(r.out, "No question is waiting for an answer.")
		return
	}
	step := snapshot.Step
	value, text, err := Parse(step, line)
	if err != nil {
		r.colors.alert.Fprintln(r.out, err.Error())
		return
	}
	result := r.session.Submit(step.ID, value, text)
	if result.Accepted {
		return
	}
	switch result.Reason {
	case chat.ReasonEmptyText, chat.ReasonInvalidValue:
		r.colors.alert.Fprintln(r.out, "Please enter an answer.")
	default:
		r.colors.hint.Fprintf(r.out, "Answer ignored (%s).\n", result.Reason)
	}
}

func (r *runner) export(ctx context.Context) {
	if r.opts.Export == nil {
		r.colors.hint.Fprintln(r.out, "Export is not available.")
		return
	}
	verdict, ok := r.session.Verdict()
	path, err := r.opts.Export(ctx, verdict, ok)
	switch {
	case errors.Is(err, report.ErrNoVerdict):
		r.colors.hint.Fprintln(r.out, "Nothing to export yet.")
	case err != nil:
		r.colors.alert.Fprintf(r.out, "Export failed: %v\n", err)
	default:
		r.colors.hint.Fprintf(r.out, "Report saved to %s\n", path)
	}
}

// Parse converts a typed line into an answer for step. Choice steps take an
// option number, value, or label; multi-choice steps take a comma-separated
// list where an empty line or 0 selects nothing.
func Parse(step flow.Step, line string) (answer.Value, string, error) {
	line = strings.TrimSpace(line)
	switch step.Kind {
	case flow.KindChoice:
		option, ok := matchOption(step, line)
		if !ok {
			return answer.Value{}, "", fmt.Errorf("choose one of 1-%d", len(step.Options))
		}
		value, text := chat.ChoiceAnswer(step, option.Value)
		return value, text, nil
	case flow.KindMultiChoice:
		if line == "" || line == "0" {
			value, text := chat.MultiAnswer(step, nil)
			return value, text, nil
		}
		var values []string
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			option, ok := matchOption(step, part)
			if !ok {
				return answer.Value{}, "", fmt.Errorf("unknown option %q", part)
			}
			values = append(values, option.Value)
		}
		value, text := chat.MultiAnswer(step, values)
		return value, text, nil
	default:
		value, text := chat.TextAnswer(line)
		return value, text, nil
	}
}

func matchOption(step flow.Step, token string) (flow.Option, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		if n >= 1 && n <= len(step.Options) {
			return step.Options[n-1], true
		}
		return flow.Option{}, false
	}
	for _, option := range step.Options {
		if strings.EqualFold(option.Value, token) || strings.EqualFold(option.Label, token) {
			return option, true
		}
	}
	return flow.Option{}, false
}

// plainText strips the emphasis markers used in chat narratives.
func plainText(text string) string {
	return strings.NewReplacer("**", "", "*", "").Replace(text)
}

func gauge(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
