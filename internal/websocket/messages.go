package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aadiprofessional/matrixai-stream/usecase"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	// Inbound
	MessageTypeChat       MessageType = "chat"
	MessageTypeCancel     MessageType = "cancel"
	MessageTypeTranscribe MessageType = "transcribe"
	MessageTypePing       MessageType = "ping"

	// Outbound
	MessageTypeStreamText     MessageType = "stream_text"
	MessageTypeImageReady     MessageType = "image_ready"
	MessageTypeStreamComplete MessageType = "stream_complete"
	MessageTypeTranscription  MessageType = "transcription"
	MessageTypeVoiceStart     MessageType = "voice_start"
	MessageTypeVoiceEnd       MessageType = "voice_end"
	MessageTypePong           MessageType = "pong"
	MessageTypeError          MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type" validate:"required"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// ChatRequestMessage starts one streaming chat turn.
type ChatRequestMessage struct {
	BaseMessage
	Message    string        `json:"message" validate:"required"`
	History    []HistoryTurn `json:"history,omitempty"`
	VoiceReply bool          `json:"voice_reply,omitempty"`
}

// HistoryTurn is one prior turn of the conversation, replayed for context.
type HistoryTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// CancelMessage abandons the active streaming session.
type CancelMessage struct {
	BaseMessage
	SessionID string `json:"session_id" validate:"required"`
}

// TranscribeMessage announces a binary audio upload to transcribe. The audio
// bytes follow as one binary frame.
type TranscribeMessage struct {
	BaseMessage
	SampleRate int    `json:"sample_rate" validate:"required,min=8000,max=48000"`
	Encoding   string `json:"encoding" validate:"required,oneof=LINEAR16 WAV FLAC MP3 OGG_OPUS"`
	Language   string `json:"language" validate:"required"`
}

// StreamFrame is one outbound frame of a streaming chat turn. Text, image,
// and completion events all share this envelope.
type StreamFrame struct {
	BaseMessage
	SessionID   string `json:"session_id"`
	Content     string `json:"content,omitempty"`
	Position    int    `json:"position,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	ImageID     string `json:"image_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	// First parse as base message to get type
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeChat:
		var msg ChatRequestMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid chat message: %w", err)
		}
		if err := v.validateChat(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeCancel:
		var msg CancelMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid cancel message: %w", err)
		}
		if msg.SessionID == "" {
			return nil, fmt.Errorf("session_id is required")
		}
		return &msg, nil

	case MessageTypeTranscribe:
		var msg TranscribeMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid transcribe message: %w", err)
		}
		if err := v.validateTranscribe(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateChat validates chat request fields
func (v *MessageValidator) validateChat(msg *ChatRequestMessage) error {
	if msg.Message == "" {
		return fmt.Errorf("message is required")
	}
	validRoles := map[string]bool{
		"user": true, "assistant": true, "system": true,
	}
	for i, turn := range msg.History {
		if turn.Content == "" {
			return fmt.Errorf("history[%d].content is required", i)
		}
		if !validRoles[turn.Role] {
			return fmt.Errorf("history[%d].role must be one of: user, assistant, system", i)
		}
	}
	return nil
}

// validateTranscribe validates transcription request fields
func (v *MessageValidator) validateTranscribe(msg *TranscribeMessage) error {
	if msg.SampleRate < 8000 || msg.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}
	validEncodings := map[string]bool{
		"LINEAR16": true, "WAV": true, "FLAC": true, "MP3": true, "OGG_OPUS": true,
	}
	if !validEncodings[msg.Encoding] {
		return fmt.Errorf("encoding must be one of: LINEAR16, WAV, FLAC, MP3, OGG_OPUS")
	}
	if msg.Language == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}

// frameForEvent converts a streaming event to its outbound frame.
func frameForEvent(sessionID string, ev usecase.Event) *StreamFrame {
	frame := &StreamFrame{
		BaseMessage: BaseMessage{
			Timestamp: time.Now().Format(time.RFC3339),
		},
		SessionID:   sessionID,
		Content:     ev.Content,
		Position:    ev.Position,
		ImageURL:    ev.ImageURL,
		ImageID:     ev.ImageID,
		Description: ev.Description,
	}
	switch ev.Type {
	case usecase.EventText:
		frame.Type = MessageTypeStreamText
	case usecase.EventImageReady:
		frame.Type = MessageTypeImageReady
	case usecase.EventComplete:
		frame.Type = MessageTypeStreamComplete
	}
	return frame
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}
