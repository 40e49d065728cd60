package state

import (
	"strings"
	"time"
)

// Intent classifies what the student is trying to do on a given turn
type Intent string

const (
	IntentNewQuestion Intent = "new_question"
	IntentAnswer      Intent = "answer_to_my_question"
	IntentFrustrated  Intent = "frustrated_interruption"
	IntentVisual      Intent = "request_for_visual"
	IntentQuiz        Intent = "quiz_me"
)

// Mode selects which response generator handles the turn
type Mode string

const (
	ModeSocratic Mode = "socratic"
	ModeQuiz     Mode = "quiz"

	// Advisory modes reserved for future branching; no generator
	// produces them yet.
	ModeExplain Mode = "explain"
	ModeVisual  Mode = "visual"
)

// MaxFrustrationLevel caps the tracked frustration counter
const MaxFrustrationLevel = 5

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in the session transcript
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RetrievedChunk is one scored piece of course material returned by retrieval
type RetrievedChunk struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// MemorySummary tracks what the student has shown they understand or struggle with
type MemorySummary struct {
	MasteredTopics []string `json:"mastered_topics"`
	ConfusedTopics []string `json:"confused_topics"`
}

// VisualAction is a canvas directive extracted from a generated response
type VisualAction struct {
	Type string `json:"type"`
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// TutorState carries everything the pipeline stages need for one session.
// Stages read and mutate it in order; it is never shared across goroutines.
type TutorState struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	CourseID  string `json:"course_id"`

	Messages  []Message `json:"messages"`
	UserInput string    `json:"user_input"`

	Intent                   Intent `json:"intent"`
	FrustrationLevel         int    `json:"frustration_level"`
	ConsecutiveSameQuestions int    `json:"consecutive_same_questions"`
	Mode                     Mode   `json:"mode"`

	RagQuery   string           `json:"rag_query"`
	RagContext []RetrievedChunk `json:"rag_context"`

	MemorySummary MemorySummary `json:"memory_summary"`

	CurrentResponse string         `json:"current_response"`
	VisualActions   []VisualAction `json:"visual_actions"`
	ShouldTTS       bool           `json:"should_tts"`

	TurnCount      int     `json:"turn_count"`
	ProcessingTime float64 `json:"processing_time"`

	// Error holds the last stage failure of the current turn, empty when
	// the turn ran clean. Cleared when the next turn starts.
	Error string `json:"error,omitempty"`
}

// NewState initializes session state for a fresh tutoring session
func NewState(userID, sessionID, courseID string) *TutorState {
	return &TutorState{
		UserID:    userID,
		SessionID: sessionID,
		CourseID:  courseID,
		Messages:  []Message{},
		Intent:    IntentNewQuestion,
		Mode:      ModeSocratic,
		MemorySummary: MemorySummary{
			MasteredTopics: []string{},
			ConfusedTopics: []string{},
		},
		VisualActions: []VisualAction{},
		ShouldTTS:     true,
	}
}

// AddMessage appends a transcript entry stamped with the current time
func (s *TutorState) AddMessage(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// ConversationContext renders the last maxTurns exchanges as prompt-ready
// text, one line per message.
func (s *TutorState) ConversationContext(maxTurns int) string {
	if len(s.Messages) == 0 {
		return ""
	}

	start := len(s.Messages) - maxTurns*2
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, msg := range s.Messages[start:] {
		speaker := "Tutor"
		if msg.Role == RoleUser {
			speaker = "Student"
		}
		lines = append(lines, speaker+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// RaiseFrustration bumps the frustration counter, saturating at the cap
func (s *TutorState) RaiseFrustration() {
	if s.FrustrationLevel < MaxFrustrationLevel {
		s.FrustrationLevel++
	}
}
