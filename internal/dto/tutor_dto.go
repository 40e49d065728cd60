package dto

import "agora-be/pkg/tutor/state"

// InitSessionRequest starts a tutoring session over the socket
type InitSessionRequest struct {
	UserId    string `json:"user_id" validate:"required"`
	SessionId string `json:"session_id"`
	CourseId  string `json:"course_id"`
}

// TurnResult is everything a transport needs to answer one student turn
type TurnResult struct {
	Response         string               `json:"response"`
	VisualActions    []state.VisualAction `json:"visual_actions"`
	Audio            []byte               `json:"-"`
	TurnCount        int                  `json:"turn_count"`
	ProcessingTimeMs int                  `json:"processing_time_ms"`
	Error            string               `json:"error,omitempty"`
}
