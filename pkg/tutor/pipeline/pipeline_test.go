package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agora-be/pkg/embedding"
	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/memory"
	"agora-be/pkg/tutor/respond"
	"agora-be/pkg/tutor/retrieval"
	"agora-be/pkg/tutor/router"
	"agora-be/pkg/tutor/state"
)

// scriptedLLM dispatches on the system prompt so one stub can play the
// router, both responders, and the memory analyst.
type scriptedLLM struct {
	routerReply    string
	socraticReply  string
	quizReply      string
	analysisReply  string
	routerErr      error
	respondErr     error
	analysisPrompt string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	var o llm.Options
	for _, opt := range options {
		opt(&o)
	}
	switch o.System {
	case router.SystemPrompt:
		return s.routerReply, s.routerErr
	case respond.SocraticSystemPrompt:
		return s.socraticReply, s.respondErr
	case respond.QuizSystemPrompt:
		return s.quizReply, s.respondErr
	case memory.AnalysisPrompt:
		s.analysisPrompt = prompt
		return s.analysisReply, nil
	}
	return "", errors.New("unexpected system prompt")
}

type stubEmbedder struct{}

func (stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1}},
	}, nil
}

type stubStore struct {
	findErr error
	upserts int
}

func (s *stubStore) FindRecent(ctx context.Context, userID string, limit int) ([]memory.Snapshot, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return []memory.Snapshot{{Mastered: []string{"diffusion"}}}, nil
}

func (s *stubStore) Upsert(ctx context.Context, userID, sessionID string, summary state.MemorySummary, digest string, vector []float32) error {
	s.upserts++
	return nil
}

type stubSearcher struct {
	chunks []state.RetrievedChunk
}

func (s *stubSearcher) SearchSimilar(ctx context.Context, userID, courseID string, vector []float32, limit int) ([]state.RetrievedChunk, error) {
	return s.chunks, nil
}

type stubTTS struct {
	audio     []byte
	calls     int
	lastText  string
	panicking bool
}

func (s *stubTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.panicking {
		panic("tts backend gone")
	}
	s.calls++
	s.lastText = text
	return s.audio, nil
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}

func newPipeline(model *scriptedLLM, store *stubStore, speech *stubTTS, interval int) *Pipeline {
	embedder := stubEmbedder{}
	mem := memory.New(model, embedder, store, interval)
	rt := router.New(model)
	retr := retrieval.New(embedder, &stubSearcher{chunks: []state.RetrievedChunk{{Text: "osmosis notes"}}})
	gen := respond.New(model, 0.7, 2048, 3)

	// A typed nil would make the provider interface non-nil
	if speech == nil {
		return New(mem, rt, retr, gen, nil, noopLogger{})
	}
	return New(mem, rt, retr, gen, speech, noopLogger{})
}

func TestProcessTurnSocratic(t *testing.T) {
	model := &scriptedLLM{
		routerReply:   "NEW_QUESTION",
		socraticReply: "What do you already know about osmosis?",
	}
	store := &stubStore{}
	speech := &stubTTS{audio: []byte("mp3")}
	p := newPipeline(model, store, speech, 5)

	st := state.NewState("u", "s", "bio")
	audio := p.ProcessTurn(context.Background(), st, "what is osmosis?")

	if st.TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", st.TurnCount)
	}
	if st.Mode != state.ModeSocratic {
		t.Errorf("Mode = %q", st.Mode)
	}
	if st.CurrentResponse != model.socraticReply {
		t.Errorf("CurrentResponse = %q", st.CurrentResponse)
	}
	if string(audio) != "mp3" {
		t.Errorf("audio = %q, want synthesized bytes", audio)
	}
	if speech.lastText != model.socraticReply {
		t.Errorf("synthesized text = %q", speech.lastText)
	}
	if len(st.Messages) != 2 ||
		st.Messages[0].Role != state.RoleUser ||
		st.Messages[1].Role != state.RoleAssistant {
		t.Errorf("transcript = %+v", st.Messages)
	}
	if len(st.RagContext) != 1 {
		t.Errorf("RagContext = %+v", st.RagContext)
	}
	if st.ProcessingTime < 0 {
		t.Errorf("ProcessingTime = %v", st.ProcessingTime)
	}
	if st.Error != "" {
		t.Errorf("Error = %q, want empty on a clean turn", st.Error)
	}
}

func TestProcessTurnQuizBranch(t *testing.T) {
	model := &scriptedLLM{
		routerReply: "QUIZ_ME",
		quizReply:   "Explain osmosis in your own words.",
	}
	p := newPipeline(model, &stubStore{}, &stubTTS{audio: []byte("a")}, 5)

	st := state.NewState("u", "s", "")
	p.ProcessTurn(context.Background(), st, "quiz me")

	if st.Mode != state.ModeQuiz {
		t.Errorf("Mode = %q, want quiz", st.Mode)
	}
	if st.CurrentResponse != model.quizReply {
		t.Errorf("CurrentResponse = %q", st.CurrentResponse)
	}
}

func TestProcessTurnResponderFailureUsesFallback(t *testing.T) {
	model := &scriptedLLM{
		routerReply: "NEW_QUESTION",
		respondErr:  errors.New("model down"),
	}
	speech := &stubTTS{audio: []byte("a")}
	p := newPipeline(model, &stubStore{}, speech, 5)

	st := state.NewState("u", "s", "")
	audio := p.ProcessTurn(context.Background(), st, "what is osmosis?")

	if st.CurrentResponse != respond.SocraticFallback {
		t.Errorf("CurrentResponse = %q, want socratic fallback", st.CurrentResponse)
	}
	// The fallback is still spoken
	if len(audio) == 0 {
		t.Error("fallback should be synthesized")
	}
	if st.Messages[len(st.Messages)-1].Content != respond.SocraticFallback {
		t.Error("fallback should land in the transcript")
	}
	if !strings.Contains(st.Error, "socrates") {
		t.Errorf("Error = %q, want the failed stage recorded", st.Error)
	}
}

func TestProcessTurnErrorClearedOnNextTurn(t *testing.T) {
	model := &scriptedLLM{
		routerReply: "NEW_QUESTION",
		respondErr:  errors.New("model down"),
	}
	p := newPipeline(model, &stubStore{}, nil, 5)

	st := state.NewState("u", "s", "")
	p.ProcessTurn(context.Background(), st, "first")
	if st.Error == "" {
		t.Fatal("degraded turn should record an error")
	}

	model.respondErr = nil
	model.socraticReply = "better now"
	p.ProcessTurn(context.Background(), st, "second")

	if st.Error != "" {
		t.Errorf("Error = %q, want cleared at the start of the next turn", st.Error)
	}
}

func TestProcessTurnQuizFailureUsesQuizFallback(t *testing.T) {
	model := &scriptedLLM{
		routerReply: "QUIZ_ME",
		respondErr:  errors.New("model down"),
	}
	p := newPipeline(model, &stubStore{}, nil, 5)

	st := state.NewState("u", "s", "")
	p.ProcessTurn(context.Background(), st, "quiz me")

	if st.CurrentResponse != respond.QuizFallback {
		t.Errorf("CurrentResponse = %q, want quiz fallback", st.CurrentResponse)
	}
}

func TestProcessTurnRouterFailureDefaultsIntent(t *testing.T) {
	model := &scriptedLLM{
		routerErr:     errors.New("classifier down"),
		socraticReply: "Let's think about that.",
	}
	p := newPipeline(model, &stubStore{}, nil, 5)

	st := state.NewState("u", "s", "")
	p.ProcessTurn(context.Background(), st, "hm?")

	if st.Intent != state.IntentNewQuestion {
		t.Errorf("Intent = %q, want default new_question", st.Intent)
	}
	if st.CurrentResponse != model.socraticReply {
		t.Errorf("CurrentResponse = %q", st.CurrentResponse)
	}
}

func TestProcessTurnMemoryLoadFailureDegrades(t *testing.T) {
	model := &scriptedLLM{
		routerReply:   "NEW_QUESTION",
		socraticReply: "ok",
	}
	store := &stubStore{findErr: errors.New("db down")}
	p := newPipeline(model, store, nil, 5)

	st := state.NewState("u", "s", "")
	p.ProcessTurn(context.Background(), st, "hi")

	if st.MemorySummary.MasteredTopics == nil || len(st.MemorySummary.MasteredTopics) != 0 {
		t.Errorf("MemorySummary = %+v, want empty", st.MemorySummary)
	}
	if st.CurrentResponse != "ok" {
		t.Errorf("CurrentResponse = %q", st.CurrentResponse)
	}
}

func TestProcessTurnPanicProducesErrorFallback(t *testing.T) {
	model := &scriptedLLM{
		routerReply:   "NEW_QUESTION",
		socraticReply: "anything",
	}
	speech := &stubTTS{panicking: true}
	p := newPipeline(model, &stubStore{}, speech, 5)

	st := state.NewState("u", "s", "")
	audio := p.ProcessTurn(context.Background(), st, "hi")

	if st.CurrentResponse != ErrorFallback {
		t.Errorf("CurrentResponse = %q, want error fallback", st.CurrentResponse)
	}
	if audio != nil {
		t.Errorf("audio = %v, want nil after panic", audio)
	}
	if st.ShouldTTS {
		t.Error("ShouldTTS should be cleared after panic")
	}
	if st.Error == "" {
		t.Error("Error should describe the failed turn")
	}
}

func TestProcessTurnNoSpeechProvider(t *testing.T) {
	model := &scriptedLLM{
		routerReply:   "NEW_QUESTION",
		socraticReply: "text only",
	}
	p := newPipeline(model, &stubStore{}, nil, 5)

	st := state.NewState("u", "s", "")
	audio := p.ProcessTurn(context.Background(), st, "hi")

	if audio != nil {
		t.Errorf("audio = %v, want nil without a speech provider", audio)
	}
	if st.CurrentResponse != "text only" {
		t.Errorf("CurrentResponse = %q", st.CurrentResponse)
	}
}

func TestProcessTurnMemoryAnalysisExcludesLatestReply(t *testing.T) {
	model := &scriptedLLM{
		routerReply:   "NEW_QUESTION",
		socraticReply: "FRESH-REPLY-MARKER",
		analysisReply: `{"mastered": [], "confused": []}`,
	}
	p := newPipeline(model, &stubStore{}, nil, 1)

	st := state.NewState("u", "s", "")
	p.ProcessTurn(context.Background(), st, "what is osmosis?")

	if model.analysisPrompt == "" {
		t.Fatal("memory analysis did not run on interval 1")
	}
	if strings.Contains(model.analysisPrompt, "FRESH-REPLY-MARKER") {
		t.Error("analysis saw the reply generated this turn")
	}
	if !strings.Contains(model.analysisPrompt, "what is osmosis?") {
		t.Error("analysis missing the student's latest input")
	}
}
