package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/domain"
)

// SnapshotStore implements SnapshotStore using Redis
type SnapshotStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewSnapshotStore creates a new Redis snapshot store
func NewSnapshotStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Save persists a snapshot with the configured TTL
func (s *SnapshotStore) Save(ctx context.Context, snapshot domain.ExecutionSnapshot) error {
	if snapshot.ExecutionID == "" {
		return fmt.Errorf("snapshot has no execution id")
	}

	key := getSnapshotKey(snapshot.ExecutionID)

	// Serialize snapshot
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Save to Redis with TTL
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("execution_id", snapshot.ExecutionID),
		zap.String("status", string(snapshot.Status)))

	return nil
}

// Get retrieves a snapshot by execution id
func (s *SnapshotStore) Get(ctx context.Context, executionID string) (*domain.ExecutionSnapshot, error) {
	key := getSnapshotKey(executionID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("execution not found: %s", executionID)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot domain.ExecutionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// List returns all stored snapshots
func (s *SnapshotStore) List(ctx context.Context) ([]*domain.ExecutionSnapshot, error) {
	pattern := "deskd:execution:*"

	// Scan for keys
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	// Get all snapshots
	snapshots := make([]*domain.ExecutionSnapshot, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var snapshot domain.ExecutionSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			continue
		}

		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, nil
}

// Delete removes a snapshot by execution id
func (s *SnapshotStore) Delete(ctx context.Context, executionID string) error {
	key := getSnapshotKey(executionID)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	s.logger.Debug("snapshot deleted",
		zap.String("execution_id", executionID))

	return nil
}

// getSnapshotKey returns the Redis key for an execution snapshot
func getSnapshotKey(executionID string) string {
	return fmt.Sprintf("deskd:execution:%s", executionID)
}
