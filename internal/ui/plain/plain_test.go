package plain

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/report"
	"thyrocheck/internal/risk"
	"thyrocheck/internal/testutil"
)

func newEngine() *chat.Engine {
	engine := chat.New(flow.Default(), chat.WithDelay(0), chat.WithIDGenerator(testutil.Sequence("p")))
	engine.Start()
	return engine
}

func run(t *testing.T, engine *chat.Engine, input string, opts Options) string {
	t.Helper()
	opts.NoColor = true
	var out bytes.Buffer
	ctx := testutil.Context(t, 5*time.Second)
	if err := Run(ctx, engine, strings.NewReader(input), &out, opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

// TestRunCompletesQuestionnaire verifies a full line-mode session.
func TestRunCompletesQuestionnaire(t *testing.T) {
	engine := newEngine()
	out := run(t, engine, "1\n2\n45\n3\n1,6,7\n2\n", Options{})

	for _, want := range []string{
		"You: Female",
		"You: 45",
		"You: Selected: Unexplained weight loss, Hand tremor, Tiredness or trouble sleeping",
		"Estimated risk level: MODERATE",
		"Moderate risk [############........]",
		"Type :export, :restart or :quit.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Fatalf("expected markdown markers to be stripped")
	}
	verdict, ok := engine.Verdict()
	if !ok || verdict.Level != risk.Moderate {
		t.Fatalf("expected moderate verdict, got %v %v", verdict.Level, ok)
	}
}

// TestRunCommands verifies restart, export, and quit.
func TestRunCommands(t *testing.T) {
	engine := newEngine()
	calls := 0
	export := func(_ context.Context, _ risk.Verdict, ok bool) (string, error) {
		calls++
		if !ok {
			return "", report.ErrNoVerdict
		}
		return "report.html", nil
	}
	out := run(t, engine, "1\n:export\n:restart\n:quit\n2\n", Options{Export: export})

	if calls != 1 || !strings.Contains(out, "Nothing to export yet.") {
		t.Fatalf("expected export attempt without verdict:\n%s", out)
	}
	if !strings.Contains(out, "--- new conversation ---") {
		t.Fatalf("expected restart separator:\n%s", out)
	}
	snapshot := engine.Snapshot()
	if len(snapshot.Messages) != 1 {
		t.Fatalf("expected quit before the next answer, got %d messages", len(snapshot.Messages))
	}
}

// TestRunRejectsBadChoice verifies invalid numbers are reported and the
// question is asked again.
func TestRunRejectsBadChoice(t *testing.T) {
	engine := newEngine()
	out := run(t, engine, "9\n\n", Options{})
	if strings.Count(out, "choose one of 1-2") != 2 {
		t.Fatalf("expected two rejections:\n%s", out)
	}
	if engine.Snapshot().Answers.Len() != 0 {
		t.Fatalf("expected no answers")
	}
}

// TestParse covers the accepted answer notations.
func TestParse(t *testing.T) {
	graph := flow.Default()
	symptoms, _ := graph.Lookup(flow.StepSymptoms)
	gender, _ := graph.Lookup(flow.StepGender)
	age, _ := graph.Lookup(flow.StepAge)

	cases := []struct {
		name   string
		step   flow.Step
		line   string
		tokens []string
		text   string
		err    bool
	}{
		{name: "number", step: gender, line: "2", tokens: []string{"female"}, text: "Female"},
		{name: "value", step: gender, line: "MALE", tokens: []string{"male"}, text: "Male"},
		{name: "label", step: gender, line: "female", tokens: []string{"female"}, text: "Female"},
		{name: "out of range", step: gender, line: "3", err: true},
		{name: "none", step: symptoms, line: "0", tokens: []string{}, text: chat.NoneSelectedText},
		{name: "empty", step: symptoms, line: "", tokens: []string{}, text: chat.NoneSelectedText},
		{name: "mixed", step: symptoms, line: "tremor, 1", tokens: []string{"weight_loss", "tremor"}, text: "Selected: Unexplained weight loss, Hand tremor"},
		{name: "unknown symptom", step: symptoms, line: "1,99", err: true},
		{name: "free text", step: age, line: " 39 ", tokens: []string{"39"}, text: "39"},
	}
	for _, tc := range cases {
		value, text, err := Parse(tc.step, tc.line)
		if tc.err {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		tokens := value.Tokens()
		if strings.Join(tokens, ",") != strings.Join(tc.tokens, ",") || text != tc.text {
			t.Fatalf("%s: got %v %q", tc.name, tokens, text)
		}
	}
}
