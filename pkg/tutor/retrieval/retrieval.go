package retrieval

import (
	"context"
	"fmt"
	"strings"

	"agora-be/pkg/embedding"
	"agora-be/pkg/tutor/state"
)

// BroadQuery replaces generic "what's in my document" questions with a
// semantically rich query that matches content across the whole document.
const BroadQuery = "A general summary of all topics, concepts, and content in the document."

// DefaultLimit is how many chunks a search returns
const DefaultLimit = 5

var genericQueries = []string{
	"what is in that pdf",
	"what is in my pdf",
	"what are my notes about",
	"tell me about my document",
	"what is this pdf about",
	"so what is in that pdf you tell me",
	"give me an idea first",
}

// Searcher finds course-material chunks similar to a query vector,
// scoped to a single student and course.
type Searcher interface {
	SearchSimilar(ctx context.Context, userID, courseID string, vector []float32, limit int) ([]state.RetrievedChunk, error)
}

// Retriever runs the context-retrieval stage of a turn
type Retriever struct {
	embedder embedding.EmbeddingProvider
	searcher Searcher
	limit    int
}

func New(embedder embedding.EmbeddingProvider, searcher Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		limit:    DefaultLimit,
	}
}

// RewriteQuery returns the broad canonical query when the input is a generic
// meta-question about the document, otherwise the input unchanged.
func RewriteQuery(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "?", "")
	normalized = strings.ReplaceAll(normalized, ".", "")

	for _, q := range genericQueries {
		if strings.Contains(normalized, q) {
			return BroadQuery
		}
	}
	return input
}

// Retrieve fills the state's RAG context for intents that need material
// lookup. Other intents get an empty context and no embedding call.
func (r *Retriever) Retrieve(ctx context.Context, st *state.TutorState) error {
	if st.Intent != state.IntentNewQuestion && st.Intent != state.IntentQuiz {
		st.RagContext = nil
		return nil
	}

	query := RewriteQuery(st.UserInput)
	if strings.TrimSpace(query) == "" {
		st.RagContext = nil
		return nil
	}

	embedRes, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.searcher.SearchSimilar(ctx, st.UserID, st.CourseID, embedRes.Embedding.Values, r.limit)
	if err != nil {
		return fmt.Errorf("search notes: %w", err)
	}

	st.RagContext = chunks
	st.RagQuery = query
	return nil
}
