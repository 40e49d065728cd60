package router

import (
	"context"
	"testing"

	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/state"
)

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		classification string
		want           state.Intent
	}{
		{"exact new question", "NEW_QUESTION", state.IntentNewQuestion},
		{"exact answer", "ANSWER_TO_MY_QUESTION", state.IntentAnswer},
		{"exact frustrated", "FRUSTRATED_INTERRUPTION", state.IntentFrustrated},
		{"frustration variant", "THE STUDENT SHOWS FRUSTRATION", state.IntentFrustrated},
		{"exact visual", "REQUEST_FOR_VISUAL", state.IntentVisual},
		{"exact quiz", "QUIZ_ME", state.IntentQuiz},
		{"lowercase", "quiz_me", state.IntentQuiz},
		{"chatty model output", "The category is: NEW_QUESTION.", state.IntentNewQuestion},
		{"surrounding whitespace", "  ANSWER_TO_MY_QUESTION\n", state.IntentAnswer},
		{"unrecognized", "SOMETHING_ELSE", state.IntentNewQuestion},
		{"empty", "", state.IntentNewQuestion},
		// ANSWER_TO_MY_QUESTION contains "QUESTION"; the ordered match
		// must not misread it as NEW_QUESTION or QUIZ.
		{"answer wins over substring overlap", "ANSWER_TO_MY_QUESTION (the student replied)", state.IntentAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.classification); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.classification, got, tt.want)
			}
		})
	}
}

func TestClassifyEmptyInputSkipsModel(t *testing.T) {
	stub := &stubLLM{reply: "QUIZ_ME"}
	r := New(stub)

	st := state.NewState("u", "s", "")
	st.UserInput = "   "

	if err := r.Classify(context.Background(), st); err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if st.Intent != state.IntentNewQuestion {
		t.Errorf("Intent = %q, want %q", st.Intent, state.IntentNewQuestion)
	}
	if stub.calls != 0 {
		t.Errorf("model called %d times for empty input, want 0", stub.calls)
	}
}

func TestClassifyFrustrationBumpsLevel(t *testing.T) {
	stub := &stubLLM{reply: "FRUSTRATED_INTERRUPTION"}
	r := New(stub)

	st := state.NewState("u", "s", "")
	st.UserInput = "just tell me the answer already"

	for i := 0; i < 8; i++ {
		if err := r.Classify(context.Background(), st); err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
	}

	if st.Intent != state.IntentFrustrated {
		t.Errorf("Intent = %q, want %q", st.Intent, state.IntentFrustrated)
	}
	if st.FrustrationLevel != state.MaxFrustrationLevel {
		t.Errorf("FrustrationLevel = %d, want saturation at %d", st.FrustrationLevel, state.MaxFrustrationLevel)
	}
}

func TestClassifyNonFrustratedLeavesLevel(t *testing.T) {
	stub := &stubLLM{reply: "NEW_QUESTION"}
	r := New(stub)

	st := state.NewState("u", "s", "")
	st.UserInput = "what is osmosis?"
	st.FrustrationLevel = 2

	if err := r.Classify(context.Background(), st); err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if st.FrustrationLevel != 2 {
		t.Errorf("FrustrationLevel = %d, want unchanged 2", st.FrustrationLevel)
	}
}
