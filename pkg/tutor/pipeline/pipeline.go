package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agora-be/pkg/speech/tts"
	"agora-be/pkg/tutor/memory"
	"agora-be/pkg/tutor/respond"
	"agora-be/pkg/tutor/retrieval"
	"agora-be/pkg/tutor/router"
	"agora-be/pkg/tutor/state"
)

// ErrorFallback replaces the response when the whole turn fails; it is
// returned as text only, never synthesized.
const ErrorFallback = "I encountered an error processing your input. Please try again."

// Logger is the subset of the application logger the pipeline needs
type Logger interface {
	Debug(module string, message string, details map[string]interface{})
	Info(module string, message string, details map[string]interface{})
	Warn(module string, message string, details map[string]interface{})
	Error(module string, message string, details map[string]interface{})
}

// Pipeline runs one student turn through the tutoring stages in order:
// load memory, route, retrieve, respond, update memory, synthesize speech.
// Every stage degrades on failure so a single broken dependency never
// kills the turn.
type Pipeline struct {
	memory    *memory.Manager
	router    *router.Router
	retriever *retrieval.Retriever
	responder *respond.Generator
	speech    tts.Provider
	log       Logger
}

func New(
	mem *memory.Manager,
	rt *router.Router,
	retr *retrieval.Retriever,
	gen *respond.Generator,
	speech tts.Provider,
	log Logger,
) *Pipeline {
	return &Pipeline{
		memory:    mem,
		router:    rt,
		retriever: retr,
		responder: gen,
		speech:    speech,
		log:       log,
	}
}

// ProcessTurn mutates the session state in place and returns synthesized
// audio for the response, or nil when speech is skipped or unavailable.
func (p *Pipeline) ProcessTurn(ctx context.Context, st *state.TutorState, userText string) (audio []byte) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pipeline", "Turn processing panicked", map[string]interface{}{
				"panic":      fmt.Sprintf("%v", r),
				"user_id":    st.UserID,
				"session_id": st.SessionID,
			})
			st.CurrentResponse = ErrorFallback
			st.VisualActions = nil
			st.ShouldTTS = false
			st.Error = fmt.Sprintf("turn failed: %v", r)
			audio = nil
		}
	}()

	st.UserInput = userText
	st.TurnCount++
	st.ProcessingTime = 0
	st.VisualActions = nil
	st.Error = ""
	st.AddMessage(state.RoleUser, userText)

	p.log.Info("pipeline", "Processing user input", map[string]interface{}{
		"user_id":    st.UserID,
		"session_id": st.SessionID,
		"turn_count": st.TurnCount,
		"input_len":  len(userText),
	})

	if err := p.timed(st, "load_memory", func() error {
		return p.memory.Load(ctx, st)
	}); err != nil {
		st.MemorySummary = state.MemorySummary{
			MasteredTopics: []string{},
			ConfusedTopics: []string{},
		}
	}

	if err := p.timed(st, "router", func() error {
		return p.router.Classify(ctx, st)
	}); err != nil {
		st.Intent = state.IntentNewQuestion
	}

	if err := p.timed(st, "retrieve_context", func() error {
		return p.retriever.Retrieve(ctx, st)
	}); err != nil {
		st.RagContext = nil
	}

	if st.Intent == state.IntentQuiz {
		st.Mode = state.ModeQuiz
		if err := p.timed(st, "quiz", func() error {
			return p.responder.Quiz(ctx, st)
		}); err != nil {
			st.CurrentResponse = respond.QuizFallback
			st.VisualActions = nil
			st.ShouldTTS = true
		}
	} else {
		st.Mode = state.ModeSocratic
		if err := p.timed(st, "socrates", func() error {
			return p.responder.Socratic(ctx, st)
		}); err != nil {
			st.CurrentResponse = respond.SocraticFallback
			st.VisualActions = nil
			st.ShouldTTS = true
		}
	}

	// Memory update analyzes the transcript without the reply that was
	// just generated; the assistant message lands afterwards.
	_ = p.timed(st, "update_memory", func() error {
		return p.memory.Update(ctx, st)
	})

	_ = p.timed(st, "synthesize_speech", func() error {
		var err error
		audio, err = p.synthesize(ctx, st)
		return err
	})

	if st.CurrentResponse != "" {
		st.AddMessage(state.RoleAssistant, st.CurrentResponse)
	}

	p.log.Info("pipeline", "Turn completed", map[string]interface{}{
		"user_id":            st.UserID,
		"session_id":         st.SessionID,
		"turn_count":         st.TurnCount,
		"intent":             string(st.Intent),
		"processing_time_ms": int(st.ProcessingTime * 1000),
		"response_len":       len(st.CurrentResponse),
		"visual_actions":     len(st.VisualActions),
		"has_audio":          len(audio) > 0,
	})

	return audio
}

func (p *Pipeline) synthesize(ctx context.Context, st *state.TutorState) ([]byte, error) {
	if !st.ShouldTTS || p.speech == nil {
		return nil, nil
	}
	if strings.TrimSpace(st.CurrentResponse) == "" {
		return nil, nil
	}
	return p.speech.Synthesize(ctx, st.CurrentResponse)
}

// timed runs one stage, folds its wall time into the turn's processing
// total, and logs (not propagates) stage failures. The caller decides
// the degraded value.
func (p *Pipeline) timed(st *state.TutorState, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start).Seconds()
	st.ProcessingTime += elapsed

	details := map[string]interface{}{
		"stage":      stage,
		"elapsed_ms": int(elapsed * 1000),
		"user_id":    st.UserID,
		"session_id": st.SessionID,
	}
	if err != nil {
		st.Error = stage + ": " + err.Error()
		details["error"] = err.Error()
		p.log.Error("pipeline", "Stage failed, degrading", details)
		return err
	}

	p.log.Debug("pipeline", "Stage completed", details)
	return nil
}
