package cucumber

import (
	"context"
	"time"

	"github.com/cucumber/godog"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/logging"
	"thyrocheck/internal/testutil"
)

// featureState holds one scenario's conversation.
type featureState struct {
	engine     *chat.Engine
	scheduler  *testutil.ManualScheduler
	lastResult chat.Result
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a new conversation$`, state.aNewConversation)
	ctx.Step(`^I complete the general questions$`, state.iCompleteTheGeneralQuestions)
	ctx.Step(`^I answer "([^"]*)"$`, state.iAnswer)
	ctx.Step(`^I answer "([^"]*)" without waiting$`, state.iAnswerWithoutWaiting)
	ctx.Step(`^I answer "([^"]*)" for step "([^"]*)"$`, state.iAnswerForStep)
	ctx.Step(`^I select no symptoms$`, state.iSelectNoSymptoms)
	ctx.Step(`^I select the symptoms "([^"]*)"$`, state.iSelectTheSymptoms)
	ctx.Step(`^I have lab results$`, state.iHaveLabResults)
	ctx.Step(`^I do not have lab results$`, state.iDoNotHaveLabResults)
	ctx.Step(`^I enter the lab values:$`, state.iEnterTheLabValues)
	ctx.Step(`^I restart the conversation$`, state.iRestartTheConversation)
	ctx.Step(`^the pending reply is delivered$`, state.thePendingReplyIsDelivered)

	ctx.Step(`^the conversation is at step "([^"]*)"$`, state.theConversationIsAtStep)
	ctx.Step(`^the transcript has (\d+) messages?$`, state.theTranscriptHasMessages)
	ctx.Step(`^the answer is rejected as "([^"]*)"$`, state.theAnswerIsRejectedAs)
	ctx.Step(`^no answers are recorded$`, state.noAnswersAreRecorded)
	ctx.Step(`^no lab question was asked$`, state.noLabQuestionWasAsked)
	ctx.Step(`^the risk level is (LOW|MODERATE|HIGH)$`, state.theRiskLevelIs)
	ctx.Step(`^the verdict has no lab assessment$`, state.theVerdictHasNoLabAssessment)
	ctx.Step(`^the lab assessment has (\d+) observations?$`, state.theLabAssessmentHasObservations)
	ctx.Step(`^the last user message is "([^"]*)"$`, state.theLastUserMessageIs)
	ctx.Step(`^the user message for step "([^"]*)" is "([^"]*)"$`, state.theUserMessageForStepIs)
}

// reset drops the previous scenario's engine.
func (s *featureState) reset() {
	s.engine = nil
	s.scheduler = nil
	s.lastResult = chat.Result{}
}

// aNewConversation starts an engine whose replies are delivered by the
// scenario rather than by timers.
func (s *featureState) aNewConversation() error {
	s.scheduler = testutil.NewManualScheduler()
	s.engine = chat.New(flow.Default(),
		chat.WithScheduler(s.scheduler),
		chat.WithClock(testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))),
		chat.WithIDGenerator(testutil.Sequence("msg")),
		chat.WithLogger(logging.Discard()),
	)
	s.engine.Start()
	return nil
}
