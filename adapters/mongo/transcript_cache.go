package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

// cacheKeyPrefix mirrors the key shape the web client used for its local
// mirror of fetched transcripts.
const cacheKeyPrefix = "audioData-"

// TranscriptCache stores one document per audio file, keyed by
// "audioData-{audioID}". Upserts keep the cache a mirror of the latest
// successful fetch; it is never authoritative.
type TranscriptCache struct {
	collection *mongo.Collection
}

var _ repositories.TranscriptCache = (*TranscriptCache)(nil)

// NewTranscriptCache creates a MongoDB-backed transcript cache.
func NewTranscriptCache(db *mongo.Database) *TranscriptCache {
	return &TranscriptCache{
		collection: db.Collection("transcript_cache"),
	}
}

type cacheDocument struct {
	Key        string               `bson:"_id"`
	Transcript *entities.Transcript `bson:"transcript"`
	CachedAt   time.Time            `bson:"cached_at"`
}

func cacheKey(audioID string) string {
	return cacheKeyPrefix + audioID
}

// Get implements repositories.TranscriptCache
func (c *TranscriptCache) Get(ctx context.Context, audioID string) (*entities.Transcript, error) {
	if audioID == "" {
		return nil, errors.New("audio ID cannot be empty")
	}

	var doc cacheDocument
	err := c.collection.FindOne(ctx, bson.M{"_id": cacheKey(audioID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("transcript %s not cached", audioID)
		}
		return nil, fmt.Errorf("failed to read transcript cache: %w", err)
	}
	return doc.Transcript, nil
}

// Put implements repositories.TranscriptCache
func (c *TranscriptCache) Put(ctx context.Context, transcript *entities.Transcript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	if transcript.AudioID == "" {
		return errors.New("audio ID cannot be empty")
	}

	doc := cacheDocument{
		Key:        cacheKey(transcript.AudioID),
		Transcript: transcript,
		CachedAt:   time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := c.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts); err != nil {
		return fmt.Errorf("failed to write transcript cache: %w", err)
	}
	return nil
}

// Delete implements repositories.TranscriptCache
func (c *TranscriptCache) Delete(ctx context.Context, audioID string) error {
	if audioID == "" {
		return errors.New("audio ID cannot be empty")
	}
	if _, err := c.collection.DeleteOne(ctx, bson.M{"_id": cacheKey(audioID)}); err != nil {
		return fmt.Errorf("failed to delete cached transcript: %w", err)
	}
	return nil
}
