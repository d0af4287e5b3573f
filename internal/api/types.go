package api

import (
	"time"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// LoginRequest represents the request payload for user authentication
type LoginRequest struct {
	UserID    string `json:"uid" validate:"required"`
	SecretKey string `json:"secret_key" validate:"required"`
}

// LoginResponse represents the response payload for user authentication
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"uid"`
}

// TranscriptRequest identifies one audio file's transcript.
type TranscriptRequest struct {
	UID     string `json:"uid" validate:"required"`
	AudioID string `json:"audioid" validate:"required"`
}

// TranscriptResponse carries the transcript with its derived reading views.
type TranscriptResponse struct {
	Transcript *entities.Transcript       `json:"transcript"`
	Paragraphs []entities.Paragraph       `json:"paragraphs"`
	Segments   []entities.SubtitleSegment `json:"segments"`
}

// EditWordRequest replaces a single word in a transcript.
type EditWordRequest struct {
	TranscriptRequest
	Index       int    `json:"index"`
	Replacement string `json:"replacement" validate:"required"`
}

// EditRangeRequest replaces a span of words. The replacement must carry
// exactly as many tokens as the span covers.
type EditRangeRequest struct {
	TranscriptRequest
	From int    `json:"from"`
	To   int    `json:"to"`
	Text string `json:"text" validate:"required"`
}

// TranslationResponse carries translations aligned to paragraphs.
type TranslationResponse struct {
	Language   string   `json:"language"`
	Paragraphs []string `json:"paragraphs"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
