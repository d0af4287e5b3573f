package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/adapters/imagegen"
	"github.com/Aadiprofessional/matrixai-stream/adapters/llm"
	"github.com/Aadiprofessional/matrixai-stream/adapters/mongo"
	"github.com/Aadiprofessional/matrixai-stream/adapters/stt"
	"github.com/Aadiprofessional/matrixai-stream/adapters/transcript"
	"github.com/Aadiprofessional/matrixai-stream/adapters/tts"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
	"github.com/Aadiprofessional/matrixai-stream/internal/api"
	"github.com/Aadiprofessional/matrixai-stream/internal/auth"
	"github.com/Aadiprofessional/matrixai-stream/internal/config"
	"github.com/Aadiprofessional/matrixai-stream/internal/visual"
	"github.com/Aadiprofessional/matrixai-stream/internal/websocket"
	"github.com/Aadiprofessional/matrixai-stream/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	auth.SetSecret(cfg.JWTSecret)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Streaming LLM backend
	streamer := buildStreamer(cfg, logger)

	// Image generation backend
	imageClient, err := imagegen.NewClient(imagegen.Config{BaseURL: cfg.ImageBaseURL}, logger)
	if err != nil {
		logger.Fatal("image generation client", zap.Error(err))
	}

	// Transcript backend with optional MongoDB offline cache
	transcriptClient, err := transcript.NewClient(transcript.Config{BaseURL: cfg.TranscriptBaseURL}, logger)
	if err != nil {
		logger.Fatal("transcript client", zap.Error(err))
	}
	var cache repositories.TranscriptCache
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = mongo.NewClient(mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase}, logger)
		if err != nil {
			logger.Warn("MongoDB unavailable, transcript cache disabled", zap.Error(err))
		} else {
			cache = mongo.NewTranscriptCache(mongoClient.Database)
		}
	}

	// Voice reply synthesis is optional
	var voice repositories.TextToSpeech
	if cfg.ElevenLabsAPIKey != "" {
		voice, err = tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
			APIKey:  cfg.ElevenLabsAPIKey,
			VoiceID: cfg.ElevenLabsVoiceID,
		}, logger)
		if err != nil {
			logger.Fatal("eleven labs client", zap.Error(err))
		}
	}

	// Speech to text falls back to the mock without Google credentials
	var speechToText repositories.SpeechToText
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		speechToText = &stt.GoogleSpeechToText{}
	} else {
		speechToText = stt.NewMockSpeechToText(logger)
	}

	// Initialize usecase services
	store := usecase.NewSessionStore()
	assets := usecase.NewAssetService(store, visual.NewAnalyzer(), imageClient, logger)
	stream := usecase.NewStreamService(streamer, assets, store, logger)
	transcripts := usecase.NewTranscriptService(transcriptClient, cache, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(stream, assets, voice, speechToText, logger)
	go hub.Run()

	cleanup := websocket.NewSessionCleanupService(store, assets, cfg.SessionMaxAge, logger)
	cleanup.Start()
	defer cleanup.Stop()

	// Initialize API routes
	api.InitRoutes(e, hub, transcripts, cfg.APISecret, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("llm_provider", cfg.LLMProvider))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if mongoClient != nil {
		if err := mongoClient.Close(ctx); err != nil {
			logger.Warn("closing MongoDB client", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// buildStreamer selects the chat streaming backend from configuration.
func buildStreamer(cfg *config.Config, logger *zap.Logger) repositories.ChatStreamer {
	switch cfg.LLMProvider {
	case "gemini":
		streamer, err := llm.NewGeminiStreamer(context.Background(), llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, logger)
		if err != nil {
			logger.Fatal("gemini streamer", zap.Error(err))
		}
		return streamer
	case "mock":
		return llm.NewMockStreamer()
	default:
		streamer, err := llm.NewQwenStreamer(llm.QwenConfig{
			APIKey:  cfg.QwenAPIKey,
			BaseURL: cfg.QwenBaseURL,
			Model:   cfg.QwenModel,
		}, logger)
		if err != nil {
			logger.Fatal("qwen streamer", zap.Error(err))
		}
		return streamer
	}
}
