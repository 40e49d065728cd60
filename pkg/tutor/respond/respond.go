package respond

import (
	"context"
	"fmt"
	"strings"

	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/state"
)

const SocraticSystemPrompt = `You are Agora, a Socratic tutor helping students learn through guided questioning.

CORE PRINCIPLES:
1. NEVER give direct answers immediately
2. Ask guiding questions that lead students to discover answers themselves
3. Use analogies and examples to build understanding
4. Encourage students to explain their thinking
5. Only provide direct explanations if frustration is high (frustration_level >= 3)

YOUR APPROACH:
- Break complex topics into smaller questions
- Build on what the student already knows
- Use the "What do you think?" pattern
- Validate correct reasoning enthusiastically
- Gently correct misconceptions with questions

WHEN THE STUDENT SAYS "I DON'T KNOW":
Escalate step by step across their attempts, never all at once:
1. First, reframe the question in simpler terms
2. If they still don't know, offer an analogy to something familiar
3. If they are still stuck, give a concrete hint and ask a smaller follow-up question

GENERIC NOTE QUERIES:
If the student asks broadly what is in their notes (e.g. "what do my notes say?"),
first answer with a short summary of the RELEVANT NOTES, then pose one guiding question about them.

RESPONSE FORMAT:
You may optionally suggest visual aids. If you want to create a sticky note on the whiteboard, include:
[VISUAL: CREATE_NOTE | text: "note text" | x: 100 | y: 200]

Keep responses conversational, warm, and encouraging.
Use simple language appropriate for the topic.`

const QuizSystemPrompt = `You are generating a quiz question for a student.

RULES:
1. Create ONE clear, focused question
2. Base it on the topics the student struggles with (confused topics)
3. Use the provided notes as reference material
4. Make it challenging but fair
5. Use Socratic style - ask them to explain or apply concepts
6. DO NOT provide the answer

RESPONSE FORMAT:
Generate just the question. Be specific and clear.
You may optionally add a sticky note hint using:
[VISUAL: CREATE_NOTE | text: "hint text" | x: 100 | y: 200]`

// Fallback responses used when generation fails mid-turn
const (
	SocraticFallback = "I'm having trouble processing that. Could you rephrase your question?"
	QuizFallback     = "Let's start with a question: Can you explain the main concept we've been discussing?"
)

// Generator produces tutor responses for both socratic and quiz modes
type Generator struct {
	llm                  llm.LLMProvider
	temperature          float64
	maxTokens            int
	frustrationThreshold int
}

func New(provider llm.LLMProvider, temperature float64, maxTokens, frustrationThreshold int) *Generator {
	return &Generator{
		llm:                  provider,
		temperature:          temperature,
		maxTokens:            maxTokens,
		frustrationThreshold: frustrationThreshold,
	}
}

// Socratic generates the guided-questioning response for the current turn
// and splits out any visual directives it contains.
func (g *Generator) Socratic(ctx context.Context, st *state.TutorState) error {
	prompt := BuildSocraticPrompt(st, g.frustrationThreshold)

	response, err := g.llm.Generate(ctx, prompt,
		llm.WithSystem(SocraticSystemPrompt),
		llm.WithTemperature(g.temperature),
		llm.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		return fmt.Errorf("generate socratic response: %w", err)
	}

	cleaned, actions := ExtractVisualActions(response)
	st.CurrentResponse = cleaned
	st.VisualActions = actions
	st.ShouldTTS = true
	return nil
}

// Quiz generates a single practice question targeting the student's
// confused topics. A higher temperature keeps questions varied.
func (g *Generator) Quiz(ctx context.Context, st *state.TutorState) error {
	prompt := BuildQuizPrompt(st)

	response, err := g.llm.Generate(ctx, prompt,
		llm.WithSystem(QuizSystemPrompt),
		llm.WithTemperature(0.8),
	)
	if err != nil {
		return fmt.Errorf("generate quiz question: %w", err)
	}

	cleaned, actions := ExtractVisualActions(response)
	st.CurrentResponse = cleaned
	st.VisualActions = actions
	st.ShouldTTS = true
	return nil
}

// BuildSocraticPrompt assembles conversation, retrieved notes, knowledge
// profile, and routing info into the generation prompt.
func BuildSocraticPrompt(st *state.TutorState, frustrationThreshold int) string {
	var ragText string
	if len(st.RagContext) > 0 {
		var chunks []string
		for idx, ctx := range st.RagContext {
			if idx >= 3 {
				break
			}
			chunks = append(chunks, fmt.Sprintf("[Note %d] %s", idx+1, ctx.Text))
		}
		ragText = strings.Join(chunks, "\n")
	}
	if ragText == "" {
		ragText = "No specific notes retrieved."
	}

	var memoryText string
	if len(st.MemorySummary.MasteredTopics) > 0 {
		memoryText += fmt.Sprintf("Student has mastered: %s\n", strings.Join(st.MemorySummary.MasteredTopics, ", "))
	}
	if len(st.MemorySummary.ConfusedTopics) > 0 {
		memoryText += fmt.Sprintf("Student struggles with: %s\n", strings.Join(st.MemorySummary.ConfusedTopics, ", "))
	}
	if memoryText == "" {
		memoryText = "No historical data yet."
	}

	var frustrationNote string
	if st.FrustrationLevel >= frustrationThreshold {
		frustrationNote = fmt.Sprintf(
			"\nFRUSTRATION LEVEL HIGH (%d/%d): Provide more direct guidance.",
			st.FrustrationLevel, state.MaxFrustrationLevel,
		)
	}

	return fmt.Sprintf(`CONTEXT:
%s

STUDENT'S CURRENT INPUT: %s

RELEVANT NOTES:
%s

STUDENT KNOWLEDGE:
%s

ROUTING: %s
MODE: %s
%s
Generate your Socratic response:`,
		st.ConversationContext(5),
		st.UserInput,
		ragText,
		memoryText,
		st.Intent,
		st.Mode,
		frustrationNote,
	)
}

// BuildQuizPrompt assembles confused topics and reference notes into the
// quiz-generation prompt. With no tracked topics it quizzes on the material
// at large.
func BuildQuizPrompt(st *state.TutorState) string {
	confusedTopics := st.MemorySummary.ConfusedTopics
	if len(confusedTopics) == 0 {
		confusedTopics = []string{"the material"}
	}

	var ragText string
	if len(st.RagContext) > 0 {
		var chunks []string
		for idx, ctx := range st.RagContext {
			if idx >= 2 {
				break
			}
			chunks = append(chunks, fmt.Sprintf("[Reference %d] %s", idx+1, ctx.Text))
		}
		ragText = strings.Join(chunks, "\n")
	}
	if ragText == "" {
		ragText = "No specific notes available."
	}

	return fmt.Sprintf(`TOPICS TO QUIZ ON:
%s

REFERENCE NOTES:
%s

STUDENT'S REQUEST: %s

Generate a quiz question:`,
		strings.Join(confusedTopics, ", "),
		ragText,
		st.UserInput,
	)
}
