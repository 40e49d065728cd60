package retrieval

import (
	"context"
	"testing"

	"agora-be/pkg/embedding"
	"agora-be/pkg/tutor/state"
)

type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type stubSearcher struct {
	calls  int
	chunks []state.RetrievedChunk
}

func (s *stubSearcher) SearchSimilar(ctx context.Context, userID, courseID string, vector []float32, limit int) ([]state.RetrievedChunk, error) {
	s.calls++
	return s.chunks, nil
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"generic pdf question", "What is in that PDF?", BroadQuery},
		{"generic with trailing period", "tell me about my document.", BroadQuery},
		{"generic embedded in sentence", "ok so what is in that pdf you tell me", BroadQuery},
		{"generic notes question", "What are my notes about?", BroadQuery},
		{"specific question untouched", "What is cellular respiration?", "What is cellular respiration?"},
		{"mentions pdf but specific", "Does the pdf cover mitosis?", "Does the pdf cover mitosis?"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteQuery(tt.input); got != tt.want {
				t.Errorf("RewriteQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRetrieveSkipsNonRetrievalIntents(t *testing.T) {
	for _, intent := range []state.Intent{state.IntentAnswer, state.IntentFrustrated, state.IntentVisual} {
		t.Run(string(intent), func(t *testing.T) {
			embedder := &stubEmbedder{}
			searcher := &stubSearcher{}
			r := New(embedder, searcher)

			st := state.NewState("u", "s", "")
			st.UserInput = "some input"
			st.Intent = intent
			st.RagContext = []state.RetrievedChunk{{Text: "stale"}}

			if err := r.Retrieve(context.Background(), st); err != nil {
				t.Fatalf("Retrieve returned error: %v", err)
			}
			if st.RagContext != nil {
				t.Errorf("RagContext = %v, want nil", st.RagContext)
			}
			if embedder.calls != 0 || searcher.calls != 0 {
				t.Errorf("backends called (%d embed, %d search), want none", embedder.calls, searcher.calls)
			}
		})
	}
}

func TestRetrieveFillsContext(t *testing.T) {
	embedder := &stubEmbedder{}
	searcher := &stubSearcher{chunks: []state.RetrievedChunk{
		{Text: "mitochondria are the powerhouse", Score: 0.91, Source: "bio.pdf"},
	}}
	r := New(embedder, searcher)

	st := state.NewState("u", "s", "bio-101")
	st.UserInput = "What is a mitochondrion?"
	st.Intent = state.IntentNewQuestion

	if err := r.Retrieve(context.Background(), st); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(st.RagContext) != 1 || st.RagContext[0].Source != "bio.pdf" {
		t.Errorf("RagContext = %+v", st.RagContext)
	}
	if st.RagQuery != "What is a mitochondrion?" {
		t.Errorf("RagQuery = %q", st.RagQuery)
	}
	if embedder.calls != 1 || searcher.calls != 1 {
		t.Errorf("backend calls = (%d embed, %d search), want one each", embedder.calls, searcher.calls)
	}
}

func TestRetrieveRewritesGenericQueryForQuiz(t *testing.T) {
	embedder := &stubEmbedder{}
	searcher := &stubSearcher{}
	r := New(embedder, searcher)

	st := state.NewState("u", "s", "")
	st.UserInput = "what is in my pdf?"
	st.Intent = state.IntentQuiz

	if err := r.Retrieve(context.Background(), st); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if st.RagQuery != BroadQuery {
		t.Errorf("RagQuery = %q, want broad query", st.RagQuery)
	}
}

func TestRetrieveEmptyInputSkipsBackends(t *testing.T) {
	embedder := &stubEmbedder{}
	searcher := &stubSearcher{}
	r := New(embedder, searcher)

	st := state.NewState("u", "s", "")
	st.UserInput = "  "
	st.Intent = state.IntentNewQuestion

	if err := r.Retrieve(context.Background(), st); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if embedder.calls != 0 || searcher.calls != 0 {
		t.Errorf("backends called for blank input (%d embed, %d search)", embedder.calls, searcher.calls)
	}
}
