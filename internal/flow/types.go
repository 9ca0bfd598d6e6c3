package flow

// Kind identifies the input a step expects.
type Kind string

const (
	// KindChoice asks for exactly one option.
	KindChoice Kind = "choice"
	// KindMultiChoice asks for any subset of options.
	KindMultiChoice Kind = "multi-choice"
	// KindInput asks for free text.
	KindInput Kind = "input"
	// KindTerminal ends the conversation and accepts no input.
	KindTerminal Kind = "terminal"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindChoice, KindMultiChoice, KindInput, KindTerminal:
		return true
	default:
		return false
	}
}

// HasOptions reports whether steps of this kind carry options.
func (k Kind) HasOptions() bool {
	return k == KindChoice || k == KindMultiChoice
}

// Option is one selectable answer.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Step is a node in the conversation flow.
type Step struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Prompt  string    `json:"prompt"`
	Options []Option  `json:"options,omitempty"`
	Next    Successor `json:"next"`
}

// Option returns the option with the given value.
func (s Step) Option(value string) (Option, bool) {
	for _, option := range s.Options {
		if option.Value == value {
			return option, true
		}
	}
	return Option{}, false
}

// Label returns the option label for value, falling back to value itself.
func (s Step) Label(value string) string {
	if option, ok := s.Option(value); ok {
		return option.Label
	}
	return value
}

// IsTerminal reports whether the step ends the conversation.
func (s Step) IsTerminal() bool {
	return s.Kind == KindTerminal
}

// clone returns a step that shares no slices or maps with s.
func (s Step) clone() Step {
	out := s
	if s.Options != nil {
		out.Options = append([]Option(nil), s.Options...)
	}
	out.Next = s.Next.clone()
	return out
}
