package router

import (
	"context"
	"fmt"
	"strings"

	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/state"
)

// SystemPrompt instructs the model to emit exactly one category label
const SystemPrompt = `You are a routing classifier for an AI tutor system.

Analyze the student's input and classify it into ONE of these categories:

1. NEW_QUESTION: Student asks a new question about the material
2. ANSWER_TO_MY_QUESTION: Student provides an answer or explanation in response to tutor's question
3. FRUSTRATED_INTERRUPTION: Student expresses frustration, confusion, or asks for direct answers
4. REQUEST_FOR_VISUAL: Student explicitly asks for a diagram, visual, or whiteboard
5. QUIZ_ME: Student requests to be quizzed or tested

Consider the conversation context. If the tutor just asked a question, the student is likely providing ANSWER_TO_MY_QUESTION.

Respond with ONLY the category name, nothing else.`

// Router classifies each student turn into an intent
type Router struct {
	llm llm.LLMProvider
}

func New(provider llm.LLMProvider) *Router {
	return &Router{llm: provider}
}

// Classify sets the intent on the state based on the latest input. A
// frustrated classification also bumps the tracked frustration level.
func (r *Router) Classify(ctx context.Context, st *state.TutorState) error {
	if strings.TrimSpace(st.UserInput) == "" {
		st.Intent = state.IntentNewQuestion
		return nil
	}

	prompt := fmt.Sprintf(
		"Conversation Context:\n%s\n\nStudent's Latest Input: %s\n\nClassification:",
		st.ConversationContext(3),
		st.UserInput,
	)

	classification, err := r.llm.Generate(ctx, prompt,
		llm.WithSystem(SystemPrompt),
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(50),
	)
	if err != nil {
		return fmt.Errorf("classify input: %w", err)
	}

	intent := Parse(classification)
	st.Intent = intent
	if intent == state.IntentFrustrated {
		st.RaiseFrustration()
	}
	return nil
}

// Parse maps a raw model classification to an intent. Matching is ordered so
// that labels containing other labels as substrings resolve correctly, and
// anything unrecognized falls back to a new question.
func Parse(classification string) state.Intent {
	c := strings.ToUpper(strings.TrimSpace(classification))

	switch {
	case strings.Contains(c, "NEW_QUESTION"):
		return state.IntentNewQuestion
	case strings.Contains(c, "ANSWER_TO_MY_QUESTION"):
		return state.IntentAnswer
	case strings.Contains(c, "FRUSTRATED") || strings.Contains(c, "FRUSTRATION"):
		return state.IntentFrustrated
	case strings.Contains(c, "VISUAL"):
		return state.IntentVisual
	case strings.Contains(c, "QUIZ"):
		return state.IntentQuiz
	default:
		return state.IntentNewQuestion
	}
}
