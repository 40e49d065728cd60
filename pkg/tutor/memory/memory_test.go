package memory

import (
	"context"
	"reflect"
	"testing"

	"agora-be/pkg/embedding"
	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/state"
)

type stubLLM struct {
	reply string
	calls int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, nil
}

type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5}},
	}, nil
}

type stubStore struct {
	snapshots   []Snapshot
	upserts     int
	lastSummary state.MemorySummary
	lastDigest  string
}

func (s *stubStore) FindRecent(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	return s.snapshots, nil
}

func (s *stubStore) Upsert(ctx context.Context, userID, sessionID string, summary state.MemorySummary, digest string, vector []float32) error {
	s.upserts++
	s.lastSummary = summary
	s.lastDigest = digest
	return nil
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name         string
		snapshots    []Snapshot
		wantMastered []string
		wantConfused []string
	}{
		{
			name:         "empty input",
			snapshots:    nil,
			wantMastered: nil,
			wantConfused: nil,
		},
		{
			name: "dedupes preserving insertion order",
			snapshots: []Snapshot{
				{Mastered: []string{"osmosis", "diffusion"}},
				{Mastered: []string{"diffusion", "transport"}},
			},
			wantMastered: []string{"osmosis", "diffusion", "transport"},
			wantConfused: nil,
		},
		{
			name: "mastered overrides confused",
			snapshots: []Snapshot{
				{Confused: []string{"osmosis", "mitosis"}},
				{Mastered: []string{"osmosis"}},
			},
			wantMastered: []string{"osmosis"},
			wantConfused: []string{"mitosis"},
		},
		{
			name: "empty strings dropped",
			snapshots: []Snapshot{
				{Mastered: []string{"", "osmosis"}, Confused: []string{""}},
			},
			wantMastered: []string{"osmosis"},
			wantConfused: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.snapshots)
			if !reflect.DeepEqual(got.MasteredTopics, tt.wantMastered) {
				t.Errorf("Mastered = %v, want %v", got.MasteredTopics, tt.wantMastered)
			}
			if !reflect.DeepEqual(got.ConfusedTopics, tt.wantConfused) {
				t.Errorf("Confused = %v, want %v", got.ConfusedTopics, tt.wantConfused)
			}
		})
	}
}

func TestMergeNewMasteryClearsConfusion(t *testing.T) {
	current := state.MemorySummary{
		MasteredTopics: []string{"diffusion"},
		ConfusedTopics: []string{"osmosis", "mitosis"},
	}
	analysis := Analysis{
		Mastered: []string{"osmosis"},
		Confused: []string{"meiosis"},
	}

	got := Merge(current, analysis)

	wantMastered := []string{"diffusion", "osmosis"}
	wantConfused := []string{"mitosis", "meiosis"}
	if !reflect.DeepEqual(got.MasteredTopics, wantMastered) {
		t.Errorf("Mastered = %v, want %v", got.MasteredTopics, wantMastered)
	}
	if !reflect.DeepEqual(got.ConfusedTopics, wantConfused) {
		t.Errorf("Confused = %v, want %v", got.ConfusedTopics, wantConfused)
	}
}

func TestDigest(t *testing.T) {
	summary := state.MemorySummary{
		MasteredTopics: []string{"osmosis", "diffusion"},
		ConfusedTopics: []string{"mitosis"},
	}
	want := "Mastered: osmosis, diffusion. Confused: mitosis."
	if got := Digest(summary); got != want {
		t.Errorf("Digest = %q, want %q", got, want)
	}

	empty := Digest(state.MemorySummary{})
	if empty != "Mastered: . Confused: ." {
		t.Errorf("empty Digest = %q", empty)
	}
}

func TestLoadAggregatesSnapshots(t *testing.T) {
	store := &stubStore{snapshots: []Snapshot{
		{Mastered: []string{"osmosis"}, Confused: []string{"mitosis"}},
	}}
	m := New(&stubLLM{}, &stubEmbedder{}, store, 5)

	st := state.NewState("u", "s", "")
	if err := m.Load(context.Background(), st); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(st.MemorySummary.MasteredTopics, []string{"osmosis"}) {
		t.Errorf("Mastered = %v", st.MemorySummary.MasteredTopics)
	}
}

func TestUpdateOnlyOnInterval(t *testing.T) {
	model := &stubLLM{reply: `{"mastered": ["osmosis"], "confused": []}`}
	embedder := &stubEmbedder{}
	store := &stubStore{}
	m := New(model, embedder, store, 5)

	st := state.NewState("u", "s", "")
	st.AddMessage(state.RoleUser, "what is osmosis?")
	st.AddMessage(state.RoleAssistant, "what do you think it is?")

	for turn := 1; turn <= 4; turn++ {
		st.TurnCount = turn
		if err := m.Update(context.Background(), st); err != nil {
			t.Fatalf("Update(turn %d) returned error: %v", turn, err)
		}
	}
	if store.upserts != 0 || model.calls != 0 {
		t.Fatalf("off-interval turns hit backends (upserts=%d, llm=%d)", store.upserts, model.calls)
	}

	st.TurnCount = 5
	if err := m.Update(context.Background(), st); err != nil {
		t.Fatalf("Update(turn 5) returned error: %v", err)
	}
	if store.upserts != 1 {
		t.Fatalf("upserts = %d, want 1", store.upserts)
	}
	if !reflect.DeepEqual(store.lastSummary.MasteredTopics, []string{"osmosis"}) {
		t.Errorf("persisted summary = %+v", store.lastSummary)
	}
	if store.lastDigest != "Mastered: osmosis. Confused: ." {
		t.Errorf("persisted digest = %q", store.lastDigest)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", embedder.calls)
	}
}

func TestUpdateSkipsEmptyTranscript(t *testing.T) {
	model := &stubLLM{reply: `{"mastered": [], "confused": []}`}
	store := &stubStore{}
	m := New(model, &stubEmbedder{}, store, 5)

	st := state.NewState("u", "s", "")
	st.TurnCount = 5

	if err := m.Update(context.Background(), st); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if model.calls != 0 || store.upserts != 0 {
		t.Errorf("empty transcript hit backends (llm=%d, upserts=%d)", model.calls, store.upserts)
	}
}

func TestUpdateHandlesFencedJSON(t *testing.T) {
	model := &stubLLM{reply: "```json\n{\"mastered\": [\"diffusion\"], \"confused\": [\"osmosis\"]}\n```"}
	store := &stubStore{}
	m := New(model, &stubEmbedder{}, store, 1)

	st := state.NewState("u", "s", "")
	st.TurnCount = 1
	st.AddMessage(state.RoleUser, "hm")
	st.AddMessage(state.RoleAssistant, "think about it")

	if err := m.Update(context.Background(), st); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !reflect.DeepEqual(st.MemorySummary.ConfusedTopics, []string{"osmosis"}) {
		t.Errorf("Confused = %v", st.MemorySummary.ConfusedTopics)
	}
}
