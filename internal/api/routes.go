package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/internal/auth"
	"github.com/Aadiprofessional/matrixai-stream/internal/segment"
	"github.com/Aadiprofessional/matrixai-stream/internal/websocket"
	"github.com/Aadiprofessional/matrixai-stream/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, hub *websocket.Hub, transcripts *usecase.TranscriptService, apiSecret string, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "matrixai-stream",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/users/login", func(c echo.Context) error {
		return userLogin(c, apiSecret, logger)
	})

	// Transcript APIs
	v1.POST("/transcripts/fetch", func(c echo.Context) error {
		return getTranscript(c, transcripts, logger)
	})
	v1.POST("/transcripts/srt", func(c echo.Context) error {
		return exportSRT(c, transcripts, logger)
	})
	v1.POST("/transcripts/edit-word", func(c echo.Context) error {
		return editWord(c, transcripts, logger)
	})
	v1.POST("/transcripts/edit-range", func(c echo.Context) error {
		return editRange(c, transcripts, logger)
	})
	v1.POST("/transcripts/translations/:language", func(c echo.Context) error {
		return getTranslations(c, transcripts, logger)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

func userLogin(c echo.Context, apiSecret string, logger *zap.Logger) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.UserID == "" || req.SecretKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "uid and secret key are required",
		})
	}
	if req.SecretKey != apiSecret {
		logger.Warn("User authentication failed", zap.String("uid", req.UserID))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid credentials",
		})
	}

	token, err := auth.GenerateUserToken(req.UserID)
	if err != nil {
		logger.Error("Failed to generate user token",
			zap.String("uid", req.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		UserID:    req.UserID,
	})
}

func getTranscript(c echo.Context, transcripts *usecase.TranscriptService, logger *zap.Logger) error {
	var req TranscriptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
	}
	if req.UID == "" || req.AudioID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "uid and audioid are required",
		})
	}

	transcript, err := transcripts.Load(c.Request().Context(), req.UID, req.AudioID)
	if err != nil {
		logger.Error("Failed to load transcript",
			zap.String("audio_id", req.AudioID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "transcript_unavailable",
			Message: "Transcript could not be loaded",
		})
	}

	return c.JSON(http.StatusOK, TranscriptResponse{
		Transcript: transcript,
		Paragraphs: transcripts.Paragraphs(transcript),
		Segments:   transcripts.Segments(transcript, segment.DefaultOptions()),
	})
}

func exportSRT(c echo.Context, transcripts *usecase.TranscriptService, logger *zap.Logger) error {
	var req TranscriptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
	}

	transcript, err := transcripts.Load(c.Request().Context(), req.UID, req.AudioID)
	if err != nil {
		logger.Error("Failed to load transcript for SRT export",
			zap.String("audio_id", req.AudioID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "transcript_unavailable"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+req.AudioID+`.srt"`)
	return c.Blob(http.StatusOK, "application/x-subrip", []byte(transcripts.ExportSRT(transcript)))
}

func editWord(c echo.Context, transcripts *usecase.TranscriptService, logger *zap.Logger) error {
	var req EditWordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
	}

	transcript, err := transcripts.Load(c.Request().Context(), req.UID, req.AudioID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "transcript_unavailable"})
	}

	if err := transcripts.EditWord(c.Request().Context(), transcript, req.Index, req.Replacement); err != nil {
		return editErrorResponse(c, err, logger)
	}
	return c.JSON(http.StatusOK, TranscriptResponse{
		Transcript: transcript,
		Paragraphs: transcripts.Paragraphs(transcript),
		Segments:   transcripts.Segments(transcript, segment.DefaultOptions()),
	})
}

func editRange(c echo.Context, transcripts *usecase.TranscriptService, logger *zap.Logger) error {
	var req EditRangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
	}

	transcript, err := transcripts.Load(c.Request().Context(), req.UID, req.AudioID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "transcript_unavailable"})
	}

	if err := transcripts.EditRange(c.Request().Context(), transcript, req.From, req.To, req.Text); err != nil {
		return editErrorResponse(c, err, logger)
	}
	return c.JSON(http.StatusOK, TranscriptResponse{
		Transcript: transcript,
		Paragraphs: transcripts.Paragraphs(transcript),
		Segments:   transcripts.Segments(transcript, segment.DefaultOptions()),
	})
}

// editErrorResponse maps edit rejections to client errors. Parity violations
// and bad indexes are the caller's fault; everything else is a cache failure.
func editErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	switch {
	case errors.Is(err, entities.ErrWordIndexOutOfRange):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "index_out_of_range",
			Message: err.Error(),
		})
	case errors.Is(err, entities.ErrEmptyReplacement), errors.Is(err, entities.ErrWordCountMismatch):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "word_count_mismatch",
			Message: err.Error(),
		})
	default:
		logger.Error("Failed to persist transcript edit", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "edit_failed",
			Message: "Edit could not be persisted",
		})
	}
}

func getTranslations(c echo.Context, transcripts *usecase.TranscriptService, logger *zap.Logger) error {
	language := c.Param("language")
	var req TranscriptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
	}

	transcript, err := transcripts.Load(c.Request().Context(), req.UID, req.AudioID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "transcript_unavailable"})
	}

	paragraphs := transcripts.Paragraphs(transcript)
	translated := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		translated[i] = transcripts.TranslatedParagraph(transcript, language, p)
	}
	return c.JSON(http.StatusOK, TranslationResponse{
		Language:   language,
		Paragraphs: translated,
	})
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	// Extract JWT token from Authorization header only
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" && len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required in Authorization header",
		})
	}

	// Validate JWT token
	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	if claims.UserID == "" {
		logger.Error("WebSocket connection rejected: missing user ID in token")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_token_claims",
			Message: "User ID not found in token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("uid", claims.UserID),
		zap.String("role", claims.Role))

	return websocket.HandleWebSocket(hub, c, claims.UserID, logger)
}
