// Package websocket carries the chat surface: each connected client can run
// one streaming chat turn at a time, receiving text fragments, image_ready
// insertions, and optional voice replies over the same connection.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
	"github.com/Aadiprofessional/matrixai-stream/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio uploads
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	stream *usecase.StreamService
	assets *usecase.AssetService
	tts    repositories.TextToSpeech
	stt    repositories.SpeechToText

	validator *MessageValidator
	logger    *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(
	stream *usecase.StreamService,
	assets *usecase.AssetService,
	tts repositories.TextToSpeech,
	stt repositories.SpeechToText,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stream:     stream,
		assets:     assets,
		tts:        tts,
		stt:        stt,
		validator:  NewMessageValidator(),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("userID", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()
			client.abandonSession()
			h.logger.Info("Client unregistered", zap.String("userID", client.userID))
		}
	}
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Authenticated user this connection belongs to.
	userID string

	logger *zap.Logger

	// Active streaming turn, guarded by mutex. One turn at a time per
	// connection; a new chat while one is active cancels the old one.
	mutex        sync.Mutex
	sessionID    string
	cancelStream context.CancelFunc
	pendingAudio *TranscribeMessage
}

// HandleWebSocket handles websocket requests with a pre-authenticated user ID.
func HandleWebSocket(hub *Hub, c echo.Context, userID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 256),
		userID: userID,
		logger: logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processAudioUpload(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendJSON marshals and queues one outbound text frame.
func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal outbound message", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Dropping frame for slow client", zap.String("userID", c.userID))
	}
}

// processMessage processes incoming control messages.
func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_message", err.Error(), ""))
		return
	}

	switch msg := parsed.(type) {
	case *ChatRequestMessage:
		c.handleChat(msg)
	case *CancelMessage:
		c.handleCancel(msg)
	case *TranscribeMessage:
		c.mutex.Lock()
		c.pendingAudio = msg
		c.mutex.Unlock()
	case *PingMessage:
		c.sendJSON(CreatePongMessage(msg.Data))
	}
}

// handleChat starts one streaming turn: background image generation kicks
// off immediately, then the text stream runs with image insertions
// interleaved, and an optional voice reply follows completion.
func (c *Client) handleChat(msg *ChatRequestMessage) {
	sessionID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	c.mutex.Lock()
	if c.cancelStream != nil {
		// A new chat supersedes the active turn.
		c.cancelStream()
		c.hub.assets.CleanupSession(c.sessionID)
	}
	c.sessionID = sessionID
	c.cancelStream = cancel
	c.mutex.Unlock()

	_, decision := c.hub.assets.InitializeSession(sessionID, msg.Message)
	if decision.ShouldGenerate {
		go func() {
			if err := c.hub.assets.StartGeneration(ctx, sessionID, c.userID); err != nil {
				c.logger.Warn("Background generation ended early",
					zap.String("sessionID", sessionID),
					zap.Error(err))
			}
		}()
	}

	messages := make([]repositories.ChatMessage, 0, len(msg.History)+1)
	for _, turn := range msg.History {
		messages = append(messages, repositories.ChatMessage{
			Role:    repositories.Role(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, repositories.ChatMessage{
		Role:    repositories.UserRole,
		Content: msg.Message,
	})

	go func() {
		defer func() {
			c.mutex.Lock()
			if c.sessionID == sessionID {
				c.cancelStream = nil
			}
			c.mutex.Unlock()
		}()

		fullText, err := c.hub.stream.StreamResponse(ctx, sessionID, messages, func(ev usecase.Event) {
			c.sendJSON(frameForEvent(sessionID, ev))
		})
		if err != nil {
			c.logger.Error("Stream turn failed",
				zap.String("sessionID", sessionID),
				zap.Error(err))
			c.sendJSON(CreateErrorMessage("stream_failed", "failed to start response stream", ""))
			return
		}

		if msg.VoiceReply && fullText != "" {
			c.voiceReply(ctx, sessionID, fullText)
		}
	}()
}

// handleCancel abandons the active turn. In-flight generation calls finish
// in the background; their results are discarded.
func (c *Client) handleCancel(msg *CancelMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if msg.SessionID != c.sessionID {
		c.logger.Debug("Cancel for unknown session", zap.String("sessionID", msg.SessionID))
		return
	}
	if c.cancelStream != nil {
		c.cancelStream()
		c.cancelStream = nil
	}
	c.hub.assets.CleanupSession(c.sessionID)
	c.logger.Info("Session cancelled", zap.String("sessionID", c.sessionID))
}

// abandonSession tears down the active turn when the connection drops.
func (c *Client) abandonSession() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.cancelStream != nil {
		c.cancelStream()
		c.cancelStream = nil
	}
	if c.sessionID != "" {
		c.hub.assets.CleanupSession(c.sessionID)
	}
}

// voiceReply streams the completed response as audio: a voice_start frame,
// binary audio chunks, then voice_end.
func (c *Client) voiceReply(ctx context.Context, sessionID, text string) {
	if c.hub.tts == nil {
		return
	}

	audioChan, err := c.hub.tts.ConvertTextToSpeech(ctx, text)
	if err != nil {
		c.logger.Error("Failed to synthesize voice reply",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return
	}

	c.sendJSON(&StreamFrame{
		BaseMessage: BaseMessage{
			Type:      MessageTypeVoiceStart,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		SessionID: sessionID,
	})

	for audioData := range audioChan {
		select {
		case c.send <- WriteData{Type: websocket.BinaryMessage, Payload: audioData}:
		case <-ctx.Done():
			return
		}
	}

	c.sendJSON(&StreamFrame{
		BaseMessage: BaseMessage{
			Type:      MessageTypeVoiceEnd,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		SessionID: sessionID,
	})
}

// processAudioUpload transcribes one binary audio upload announced by a
// preceding transcribe control message.
func (c *Client) processAudioUpload(data []byte) {
	c.mutex.Lock()
	pending := c.pendingAudio
	c.pendingAudio = nil
	c.mutex.Unlock()

	if pending == nil {
		c.logger.Warn("Binary frame without transcribe announcement",
			zap.String("userID", c.userID),
			zap.Int("size", len(data)))
		return
	}
	if c.hub.stt == nil {
		c.sendJSON(CreateErrorMessage("transcription_unavailable", "transcription is not configured", ""))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	words, err := c.hub.stt.TranscribeAudio(ctx, data, repositories.AudioConfig{
		SampleRate: pending.SampleRate,
		Encoding:   pending.Encoding,
		Language:   pending.Language,
	})
	if err != nil {
		c.logger.Error("Transcription failed", zap.Error(err))
		c.sendJSON(CreateErrorMessage("transcription_failed", err.Error(), ""))
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":       MessageTypeTranscription,
		"timestamp":  time.Now().Format(time.RFC3339),
		"words_data": words,
	})
	if err != nil {
		c.logger.Error("Failed to marshal transcription", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Dropping transcription for slow client", zap.String("userID", c.userID))
	}
}
