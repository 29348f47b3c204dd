package agent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vedantghorpade1/Sarvam/internal/fault"
)

const collectionName = "agents"

// Store persists agent configurations in MongoDB.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection(collectionName)}
}

// Create fills defaults, assigns an id, and inserts the agent.
func (s *Store) Create(ctx context.Context, a *Agent) error {
	if a.Name == "" || a.FirstMessage == "" || a.SystemPrompt == "" {
		return fault.New(fault.KindInvalidArgument, "name, firstMessage and systemPrompt are required")
	}
	if a.UserID == "" {
		return fault.New(fault.KindInvalidArgument, "userId is required")
	}
	if a.VoiceID == "" {
		a.VoiceID = DefaultVoiceID
	}
	if a.Language == "" {
		a.Language = DefaultLanguage
	}
	if a.MaxDurationSeconds <= 0 {
		a.MaxDurationSeconds = DefaultMaxDurationSeconds
	}
	a.ID = uuid.NewString()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fault.Wrap(fault.KindProvider, err, "insert agent")
	}
	return nil
}

// Get loads one agent owned by userID.
func (s *Store) Get(ctx context.Context, userID, agentID string) (*Agent, error) {
	var a Agent
	err := s.col.FindOne(ctx, bson.M{"_id": agentID, "user_id": userID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fault.New(fault.KindNotFound, "agent %s not found", agentID)
	}
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "find agent")
	}
	return &a, nil
}

// ListByUser returns the user's agents, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Agent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "list agents")
	}
	defer cur.Close(ctx)

	agents := []Agent{}
	if err := cur.All(ctx, &agents); err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "decode agents")
	}
	return agents, nil
}

// Delete removes one agent owned by userID.
func (s *Store) Delete(ctx context.Context, userID, agentID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": agentID, "user_id": userID})
	if err != nil {
		return fault.Wrap(fault.KindProvider, err, "delete agent")
	}
	if res.DeletedCount == 0 {
		return fault.New(fault.KindNotFound, "agent %s not found", agentID)
	}
	return nil
}

// RecordCall updates usage counters after a call completed. Runs on the
// call-completion path, never inside the turn loop.
func (s *Store) RecordCall(ctx context.Context, agentID string, duration time.Duration) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"last_called_at": now, "updated_at": now},
		"$inc": bson.M{"usage_minutes": duration.Minutes()},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": agentID}, update)
	if err != nil {
		return fault.Wrap(fault.KindProvider, err, "record call usage")
	}
	if res.MatchedCount == 0 {
		return fault.New(fault.KindNotFound, "agent %s not found", agentID)
	}
	return nil
}
