package cucumber

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
)

var labSteps = map[string]string{
	"TSH": flow.StepLabTSH,
	"T3":  flow.StepLabT3,
	"T4":  flow.StepLabT4,
	"FT3": flow.StepLabFT3,
	"FT4": flow.StepLabFT4,
}

// submit answers stepID and records the result.
func (s *featureState) submit(stepID string, values ...string) error {
	if s.engine == nil {
		return fmt.Errorf("no conversation started")
	}
	step, ok := s.engine.Graph().Lookup(stepID)
	if !ok {
		return fmt.Errorf("unknown step %q", stepID)
	}
	value, text := chat.Answer(step, values...)
	s.lastResult = s.engine.Submit(stepID, value, text)
	return nil
}

// answerCurrent answers the current step and delivers the reply.
func (s *featureState) answerCurrent(values ...string) error {
	if err := s.answerCurrentWithoutWaiting(values...); err != nil {
		return err
	}
	if !s.lastResult.Accepted {
		return fmt.Errorf("answer %q for %s rejected: %s", strings.Join(values, ","), s.engine.Snapshot().Step.ID, s.lastResult.Reason)
	}
	s.scheduler.FireAll()
	return nil
}

func (s *featureState) answerCurrentWithoutWaiting(values ...string) error {
	if s.engine == nil {
		return fmt.Errorf("no conversation started")
	}
	return s.submit(s.engine.Snapshot().Step.ID, values...)
}

func (s *featureState) iCompleteTheGeneralQuestions() error {
	for _, value := range []string{"yes", "female", "34", "unknown"} {
		if err := s.answerCurrent(value); err != nil {
			return err
		}
	}
	return s.expectStep(flow.StepSymptoms)
}

func (s *featureState) iAnswer(value string) error {
	return s.answerCurrent(value)
}

func (s *featureState) iAnswerWithoutWaiting(value string) error {
	return s.answerCurrentWithoutWaiting(value)
}

func (s *featureState) iAnswerForStep(value, stepID string) error {
	return s.submit(stepID, value)
}

func (s *featureState) iSelectNoSymptoms() error {
	if err := s.expectStep(flow.StepSymptoms); err != nil {
		return err
	}
	return s.answerCurrent()
}

func (s *featureState) iSelectTheSymptoms(list string) error {
	if err := s.expectStep(flow.StepSymptoms); err != nil {
		return err
	}
	var values []string
	for _, part := range strings.Split(list, ",") {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return s.answerCurrent(values...)
}

func (s *featureState) iHaveLabResults() error {
	if err := s.expectStep(flow.StepLabAvailable); err != nil {
		return err
	}
	return s.answerCurrent("yes")
}

func (s *featureState) iDoNotHaveLabResults() error {
	if err := s.expectStep(flow.StepLabAvailable); err != nil {
		return err
	}
	return s.answerCurrent("no")
}

// iEnterTheLabValues answers the lab questions from a two-column table of
// code and value, in row order.
func (s *featureState) iEnterTheLabValues(table *godog.Table) error {
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected code and value cells, got %d", len(row.Cells))
		}
		code := strings.TrimSpace(row.Cells[0].Value)
		stepID, ok := labSteps[strings.ToUpper(code)]
		if !ok {
			return fmt.Errorf("unknown lab code %q", code)
		}
		if err := s.expectStep(stepID); err != nil {
			return err
		}
		if err := s.answerCurrent(row.Cells[1].Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *featureState) iRestartTheConversation() error {
	if s.engine == nil {
		return fmt.Errorf("no conversation started")
	}
	s.engine.Restart()
	return nil
}

// thePendingReplyIsDelivered runs queued replies, including ones a restart
// cancelled, so the engine's own guard is what discards stale work.
func (s *featureState) thePendingReplyIsDelivered() error {
	if s.scheduler.FireIgnoringCancel() == 0 {
		return fmt.Errorf("no reply was pending")
	}
	return nil
}
