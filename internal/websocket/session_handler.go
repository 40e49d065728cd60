package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"agora-be/internal/dto"
	"agora-be/internal/pkg/logger"
	memrepo "agora-be/internal/repository/memory"
	"agora-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// Inbound event names
const (
	eventInitSession = "init_session"
	eventText        = "text"
	eventAudio       = "audio"
	eventEndSession  = "end_session"
)

// Outbound event names
const (
	eventSessionInitialized = "session_initialized"
	eventTranscript         = "transcript"
	eventVisual             = "visual"
	eventAudioResponse      = "audio_response"
	eventSessionStatus      = "session_status"
	eventError              = "error"
)

type socketEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type textPayload struct {
	Text string `json:"text"`
}

type audioPayload struct {
	Format string `json:"format"`
	Data   string `json:"data"` // base64
}

// SessionHandler owns one tutoring conversation socket. Events are
// processed sequentially on the connection's goroutine, so a client
// cannot interleave turns on a single socket; cross-socket replays are
// caught by the session's in-flight guard.
type SessionHandler struct {
	tutorService service.ITutorService
	logger       logger.ILogger
}

func NewSessionHandler(tutorService service.ITutorService, log logger.ILogger) *SessionHandler {
	return &SessionHandler{
		tutorService: tutorService,
		logger:       log,
	}
}

func (h *SessionHandler) Serve(c *websocket.Conn) {
	defer c.Close()

	var session *memrepo.Session

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			break
		}

		var evt socketEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			h.emitError(c, "Invalid message format")
			continue
		}

		switch evt.Event {
		case eventInitSession:
			session = h.handleInit(c, evt.Data)

		case eventText:
			if session == nil {
				h.emitError(c, "No active session. Send init_session first.")
				continue
			}
			var payload textPayload
			if err := json.Unmarshal(evt.Data, &payload); err != nil || strings.TrimSpace(payload.Text) == "" {
				continue
			}
			h.emit(c, eventTranscript, map[string]interface{}{
				"from": "student",
				"text": payload.Text,
			})
			h.processAndRespond(c, session, payload.Text)

		case eventAudio:
			if session == nil {
				h.emitError(c, "No active session. Send init_session first.")
				continue
			}
			h.handleAudio(c, session, evt.Data)

		case eventEndSession:
			if session != nil {
				h.tutorService.EndSession(session.State.SessionID)
				session = nil
			}
			h.emit(c, eventSessionStatus, map[string]interface{}{"status": "ended"})

		default:
			h.emitError(c, "Unknown event: "+evt.Event)
		}
	}

	h.logger.Debug("SessionSocket", "Connection closed", nil)
}

func (h *SessionHandler) handleInit(c *websocket.Conn, data json.RawMessage) *memrepo.Session {
	var req dto.InitSessionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.emitError(c, "Invalid init_session payload")
		return nil
	}
	if req.UserId == "" {
		h.emitError(c, "user_id required")
		return nil
	}

	session := h.tutorService.InitSession(req.UserId, req.SessionId, req.CourseId)

	h.emit(c, eventSessionInitialized, map[string]interface{}{
		"session_id": session.State.SessionID,
		"user_id":    session.State.UserID,
		"course_id":  session.State.CourseID,
	})
	return session
}

func (h *SessionHandler) handleAudio(c *websocket.Conn, session *memrepo.Session, data json.RawMessage) {
	var payload audioPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Data == "" {
		h.emitError(c, "No audio data")
		return
	}
	if payload.Format == "" {
		payload.Format = "webm"
	}

	audioBytes, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		h.emitError(c, "Invalid audio encoding")
		return
	}

	h.emit(c, eventSessionStatus, map[string]interface{}{"message": "Transcribing..."})

	transcript, err := h.tutorService.Transcribe(context.Background(), audioBytes, payload.Format)
	if err != nil {
		h.logger.Error("SessionSocket", "Transcription failed", map[string]interface{}{
			"session_id": session.State.SessionID,
			"error":      err.Error(),
		})
		h.emitError(c, "Audio processing failed")
		return
	}
	if strings.TrimSpace(transcript) == "" {
		h.emit(c, eventSessionStatus, map[string]interface{}{"message": "No speech detected"})
		return
	}

	h.emit(c, eventTranscript, map[string]interface{}{
		"from": "student",
		"text": transcript,
	})
	h.processAndRespond(c, session, transcript)
}

func (h *SessionHandler) processAndRespond(c *websocket.Conn, session *memrepo.Session, userText string) {
	h.emit(c, eventSessionStatus, map[string]interface{}{"message": "Thinking..."})

	result, err := h.tutorService.ProcessTurn(context.Background(), session, userText)
	if err != nil {
		if errors.Is(err, service.ErrTurnInFlight) {
			h.emitError(c, "Still processing your previous input, one moment.")
			return
		}
		h.emitError(c, "Processing failed")
		return
	}

	if result.Response != "" {
		h.emit(c, eventTranscript, map[string]interface{}{
			"from": "tutor",
			"text": result.Response,
		})
	}

	for _, action := range result.VisualActions {
		h.emit(c, eventVisual, map[string]interface{}{
			"action": action.Type,
			"payload": map[string]interface{}{
				"text": action.Text,
				"x":    action.X,
				"y":    action.Y,
			},
		})
	}

	if len(result.Audio) > 0 {
		h.emit(c, eventAudioResponse, map[string]interface{}{
			"session_id": session.State.SessionID,
			"data":       base64.StdEncoding.EncodeToString(result.Audio),
			"format":     "audio/mpeg",
		})
	}

	status := map[string]interface{}{
		"status":             "complete",
		"processing_time_ms": result.ProcessingTimeMs,
		"turn_count":         result.TurnCount,
	}
	if result.Error != "" {
		status["error"] = result.Error
	}
	h.emit(c, eventSessionStatus, status)
}

func (h *SessionHandler) emit(c *websocket.Conn, event string, data map[string]interface{}) {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.WriteJSON(socketMessage{Event: event, Data: data}); err != nil {
		h.logger.Warn("SessionSocket", "Write failed", map[string]interface{}{
			"event": event,
			"error": err.Error(),
		})
	}
}

func (h *SessionHandler) emitError(c *websocket.Conn, message string) {
	h.emit(c, eventError, map[string]interface{}{"message": message})
}

type socketMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}
