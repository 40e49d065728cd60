package memory

import (
	"context"
	"fmt"
	"strings"

	"agora-be/pkg/embedding"
	"agora-be/pkg/llm"
	"agora-be/pkg/tutor/state"
)

// AnalysisPrompt asks the model to label conversation topics as mastered or confused
const AnalysisPrompt = `You are analyzing a tutoring conversation to understand what the student has mastered vs what they're confused about.

Analyze the recent conversation and identify:
1. Topics the student clearly understands (mastered)
2. Topics the student is struggling with or confused about

Respond with ONLY valid JSON in this format:
{
  "mastered": ["topic1", "topic2"],
  "confused": ["topic3", "topic4"]
}

Be specific. Extract actual topic names from the conversation, not generic descriptions.`

// DefaultUpdateInterval is how many turns pass between memory refreshes
const DefaultUpdateInterval = 5

// Snapshot is one stored memory record's topic sets
type Snapshot struct {
	Mastered []string
	Confused []string
}

// Store persists per-student memory summaries keyed by (user, session)
type Store interface {
	FindRecent(ctx context.Context, userID string, limit int) ([]Snapshot, error)
	Upsert(ctx context.Context, userID, sessionID string, summary state.MemorySummary, digest string, vector []float32) error
}

// Analysis is the model's JSON verdict on a stretch of conversation
type Analysis struct {
	Mastered []string `json:"mastered"`
	Confused []string `json:"confused"`
}

// Manager loads and refreshes the student's understanding profile
type Manager struct {
	llm            llm.LLMProvider
	embedder       embedding.EmbeddingProvider
	store          Store
	updateInterval int
}

func New(provider llm.LLMProvider, embedder embedding.EmbeddingProvider, store Store, updateInterval int) *Manager {
	if updateInterval <= 0 {
		updateInterval = DefaultUpdateInterval
	}
	return &Manager{
		llm:            provider,
		embedder:       embedder,
		store:          store,
		updateInterval: updateInterval,
	}
}

// Load aggregates the student's recent memory records into the session state
func (m *Manager) Load(ctx context.Context, st *state.TutorState) error {
	snapshots, err := m.store.FindRecent(ctx, st.UserID, 5)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	st.MemorySummary = Aggregate(snapshots)
	return nil
}

// Update re-analyzes the recent conversation every Nth turn, merges the
// verdict into the session summary, and persists it with an embedding of
// the digest sentence. Off-interval turns are a no-op.
func (m *Manager) Update(ctx context.Context, st *state.TutorState) error {
	if st.TurnCount%m.updateInterval != 0 {
		return nil
	}

	context := st.ConversationContext(m.updateInterval)
	if strings.TrimSpace(context) == "" {
		return nil
	}

	prompt := fmt.Sprintf("Recent Conversation:\n%s\n\nAnalyze this conversation:", context)

	var analysis Analysis
	if err := llm.GenerateStructured(ctx, m.llm, prompt, &analysis, llm.WithSystem(AnalysisPrompt)); err != nil {
		return fmt.Errorf("analyze conversation: %w", err)
	}

	st.MemorySummary = Merge(st.MemorySummary, analysis)

	digest := Digest(st.MemorySummary)
	embedRes, err := m.embedder.Generate(digest, embedding.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("embed memory digest: %w", err)
	}

	if err := m.store.Upsert(ctx, st.UserID, st.SessionID, st.MemorySummary, digest, embedRes.Embedding.Values); err != nil {
		return fmt.Errorf("persist memory: %w", err)
	}
	return nil
}

// Aggregate unions topic sets across records, deduplicating and dropping
// confused topics the student has since mastered.
func Aggregate(snapshots []Snapshot) state.MemorySummary {
	var mastered, confused []string
	for _, snap := range snapshots {
		mastered = append(mastered, snap.Mastered...)
		confused = append(confused, snap.Confused...)
	}
	return reconcile(mastered, confused)
}

// Merge folds a fresh analysis into the current summary, keeping the
// mastered-overrides-confused rule.
func Merge(current state.MemorySummary, analysis Analysis) state.MemorySummary {
	mastered := append(append([]string{}, current.MasteredTopics...), analysis.Mastered...)
	confused := append(append([]string{}, current.ConfusedTopics...), analysis.Confused...)
	return reconcile(mastered, confused)
}

// Digest renders the summary as the sentence that gets embedded and stored
func Digest(summary state.MemorySummary) string {
	return fmt.Sprintf(
		"Mastered: %s. Confused: %s.",
		strings.Join(summary.MasteredTopics, ", "),
		strings.Join(summary.ConfusedTopics, ", "),
	)
}

func reconcile(mastered, confused []string) state.MemorySummary {
	dedupedMastered := dedupe(mastered)

	masteredSet := make(map[string]bool, len(dedupedMastered))
	for _, topic := range dedupedMastered {
		masteredSet[topic] = true
	}

	var dedupedConfused []string
	for _, topic := range dedupe(confused) {
		if !masteredSet[topic] {
			dedupedConfused = append(dedupedConfused, topic)
		}
	}

	return state.MemorySummary{
		MasteredTopics: dedupedMastered,
		ConfusedTopics: dedupedConfused,
	}
}

func dedupe(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	var out []string
	for _, topic := range topics {
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		out = append(out, topic)
	}
	return out
}
