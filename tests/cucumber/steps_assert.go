package cucumber

import (
	"fmt"
	"strings"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/risk"
)

func (s *featureState) expectStep(stepID string) error {
	if s.engine == nil {
		return fmt.Errorf("no conversation started")
	}
	snapshot := s.engine.Snapshot()
	if snapshot.Step.ID != stepID {
		return fmt.Errorf("expected step %q, got %q", stepID, snapshot.Step.ID)
	}
	return nil
}

func (s *featureState) theConversationIsAtStep(stepID string) error {
	return s.expectStep(stepID)
}

func (s *featureState) theTranscriptHasMessages(count int) error {
	if got := len(s.engine.Snapshot().Messages); got != count {
		return fmt.Errorf("expected %d messages, got %d", count, got)
	}
	return nil
}

func (s *featureState) theAnswerIsRejectedAs(reason string) error {
	if s.lastResult.Accepted {
		return fmt.Errorf("expected rejection %q, answer was accepted", reason)
	}
	if string(s.lastResult.Reason) != reason {
		return fmt.Errorf("expected rejection %q, got %q", reason, s.lastResult.Reason)
	}
	return nil
}

func (s *featureState) noAnswersAreRecorded() error {
	if n := s.engine.Snapshot().Answers.Len(); n != 0 {
		return fmt.Errorf("expected no answers, got %d", n)
	}
	return nil
}

func (s *featureState) noLabQuestionWasAsked() error {
	for _, message := range s.engine.Snapshot().Messages {
		if strings.HasPrefix(message.StepID, "lab_") && message.StepID != "lab_available" {
			return fmt.Errorf("unexpected lab message for %s", message.StepID)
		}
	}
	return nil
}

func (s *featureState) verdict() (risk.Verdict, error) {
	verdict, ok := s.engine.Verdict()
	if !ok {
		return risk.Verdict{}, fmt.Errorf("no verdict (step %s)", s.engine.Snapshot().Step.ID)
	}
	return verdict, nil
}

func (s *featureState) theRiskLevelIs(level string) error {
	verdict, err := s.verdict()
	if err != nil {
		return err
	}
	if verdict.Level.String() != level {
		return fmt.Errorf("expected %s, got %s", level, verdict.Level)
	}
	return nil
}

func (s *featureState) theVerdictHasNoLabAssessment() error {
	verdict, err := s.verdict()
	if err != nil {
		return err
	}
	if verdict.Labs != nil {
		return fmt.Errorf("expected no lab assessment, got %+v", *verdict.Labs)
	}
	return nil
}

func (s *featureState) theLabAssessmentHasObservations(count int) error {
	verdict, err := s.verdict()
	if err != nil {
		return err
	}
	if verdict.Labs == nil {
		return fmt.Errorf("expected a lab assessment")
	}
	if got := len(verdict.Labs.Observations); got != count {
		return fmt.Errorf("expected %d observations, got %d", count, got)
	}
	return nil
}

func (s *featureState) theLastUserMessageIs(text string) error {
	messages := s.engine.Snapshot().Messages
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Origin == chat.OriginUser {
			if messages[i].Text != text {
				return fmt.Errorf("expected last user message %q, got %q", text, messages[i].Text)
			}
			return nil
		}
	}
	return fmt.Errorf("no user message found")
}

func (s *featureState) theUserMessageForStepIs(stepID, text string) error {
	for _, message := range s.engine.Snapshot().Messages {
		if message.Origin != chat.OriginUser || message.StepID != stepID {
			continue
		}
		if message.Text != text {
			return fmt.Errorf("expected %s answer %q, got %q", stepID, text, message.Text)
		}
		return nil
	}
	return fmt.Errorf("no user message for step %s", stepID)
}
