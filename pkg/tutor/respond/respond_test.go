package respond

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/state"
)

type stubLLM struct {
	reply    string
	err      error
	lastOpts llm.Options
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.lastOpts = llm.Options{}
	for _, opt := range options {
		opt(&s.lastOpts)
	}
	return s.reply, s.err
}

func TestBuildSocraticPrompt(t *testing.T) {
	st := state.NewState("u", "s", "")
	st.UserInput = "What is osmosis?"
	st.Intent = state.IntentNewQuestion
	st.RagContext = []state.RetrievedChunk{
		{Text: "chunk one"}, {Text: "chunk two"}, {Text: "chunk three"}, {Text: "chunk four"},
	}
	st.MemorySummary = state.MemorySummary{
		MasteredTopics: []string{"diffusion"},
		ConfusedTopics: []string{"osmosis"},
	}

	prompt := BuildSocraticPrompt(st, 3)

	if !strings.Contains(prompt, "[Note 1] chunk one") || !strings.Contains(prompt, "[Note 3] chunk three") {
		t.Errorf("prompt missing numbered notes:\n%s", prompt)
	}
	if strings.Contains(prompt, "chunk four") {
		t.Error("prompt should cap retrieved notes at three")
	}
	if !strings.Contains(prompt, "Student has mastered: diffusion") {
		t.Error("prompt missing mastered topics")
	}
	if !strings.Contains(prompt, "Student struggles with: osmosis") {
		t.Error("prompt missing confused topics")
	}
	if strings.Contains(prompt, "FRUSTRATION LEVEL HIGH") {
		t.Error("frustration note present below threshold")
	}
	if !strings.Contains(prompt, "ROUTING: new_question") {
		t.Error("prompt missing routing line")
	}
}

func TestSocraticInstructionsEncodeEscalationPolicy(t *testing.T) {
	lower := strings.ToLower(SocraticSystemPrompt)

	for _, cue := range []string{"don't know", "reframe", "analogy", "hint"} {
		if !strings.Contains(lower, cue) {
			t.Errorf("instructions missing escalation cue %q", cue)
		}
	}
	if !strings.Contains(lower, "summary") || !strings.Contains(lower, "notes") {
		t.Error("instructions missing the summarize-notes-first rule for generic queries")
	}
}

func TestBuildSocraticPromptFrustrationNote(t *testing.T) {
	st := state.NewState("u", "s", "")
	st.UserInput = "just tell me"
	st.FrustrationLevel = 3

	prompt := BuildSocraticPrompt(st, 3)
	if !strings.Contains(prompt, "FRUSTRATION LEVEL HIGH (3/5): Provide more direct guidance.") {
		t.Errorf("frustration note missing:\n%s", prompt)
	}
}

func TestBuildSocraticPromptEmptyFallbacks(t *testing.T) {
	st := state.NewState("u", "s", "")
	st.UserInput = "hi"

	prompt := BuildSocraticPrompt(st, 3)
	if !strings.Contains(prompt, "No specific notes retrieved.") {
		t.Error("missing empty-notes placeholder")
	}
	if !strings.Contains(prompt, "No historical data yet.") {
		t.Error("missing empty-memory placeholder")
	}
}

func TestBuildQuizPrompt(t *testing.T) {
	st := state.NewState("u", "s", "")
	st.UserInput = "quiz me"
	st.MemorySummary.ConfusedTopics = []string{"osmosis", "mitosis"}
	st.RagContext = []state.RetrievedChunk{
		{Text: "ref one"}, {Text: "ref two"}, {Text: "ref three"},
	}

	prompt := BuildQuizPrompt(st)
	if !strings.Contains(prompt, "osmosis, mitosis") {
		t.Error("prompt missing confused topics")
	}
	if !strings.Contains(prompt, "[Reference 2] ref two") {
		t.Error("prompt missing numbered references")
	}
	if strings.Contains(prompt, "ref three") {
		t.Error("prompt should cap references at two")
	}
}

func TestBuildQuizPromptDefaultsTopic(t *testing.T) {
	st := state.NewState("u", "s", "")
	st.UserInput = "quiz me"

	prompt := BuildQuizPrompt(st)
	if !strings.Contains(prompt, "the material") {
		t.Errorf("prompt should default topic to the material:\n%s", prompt)
	}
	if !strings.Contains(prompt, "No specific notes available.") {
		t.Error("missing empty-references placeholder")
	}
}

func TestSocraticExtractsVisuals(t *testing.T) {
	stub := &stubLLM{reply: `Think! [VISUAL: CREATE_NOTE | text: "hint" | x: 10 | y: 20]`}
	g := New(stub, 0.7, 2048, 3)

	st := state.NewState("u", "s", "")
	st.UserInput = "what is osmosis?"
	st.ShouldTTS = false

	if err := g.Socratic(context.Background(), st); err != nil {
		t.Fatalf("Socratic returned error: %v", err)
	}
	if st.CurrentResponse != "Think!" {
		t.Errorf("CurrentResponse = %q", st.CurrentResponse)
	}
	if len(st.VisualActions) != 1 || st.VisualActions[0].Text != "hint" {
		t.Errorf("VisualActions = %+v", st.VisualActions)
	}
	if !st.ShouldTTS {
		t.Error("ShouldTTS should be set after generation")
	}
	if stub.lastOpts.System != SocraticSystemPrompt {
		t.Error("socratic system prompt not applied")
	}
	if stub.lastOpts.Temperature != 0.7 || stub.lastOpts.MaxTokens != 2048 {
		t.Errorf("generation options = %+v", stub.lastOpts)
	}
}

func TestQuizUsesHighTemperature(t *testing.T) {
	stub := &stubLLM{reply: "Can you explain osmosis in your own words?"}
	g := New(stub, 0.7, 2048, 3)

	st := state.NewState("u", "s", "")
	st.UserInput = "quiz me"

	if err := g.Quiz(context.Background(), st); err != nil {
		t.Fatalf("Quiz returned error: %v", err)
	}
	if stub.lastOpts.Temperature != 0.8 {
		t.Errorf("quiz temperature = %v, want 0.8", stub.lastOpts.Temperature)
	}
	if stub.lastOpts.System != QuizSystemPrompt {
		t.Error("quiz system prompt not applied")
	}
}

func TestGenerateErrorsPropagate(t *testing.T) {
	stub := &stubLLM{err: errors.New("model unavailable")}
	g := New(stub, 0.7, 2048, 3)

	st := state.NewState("u", "s", "")
	st.UserInput = "hi"

	if err := g.Socratic(context.Background(), st); err == nil {
		t.Error("Socratic should propagate model errors")
	}
	if err := g.Quiz(context.Background(), st); err == nil {
		t.Error("Quiz should propagate model errors")
	}
}
