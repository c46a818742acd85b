package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tradedesk/deskd/internal/domain"
)

// InMemorySnapshotStore implements SnapshotStore using an in-memory map.
// This is for testing purposes only.
type InMemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.ExecutionSnapshot
}

// NewInMemorySnapshotStore creates a new in-memory snapshot store
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{
		snapshots: make(map[string]domain.ExecutionSnapshot),
	}
}

// Save persists a snapshot keyed by its execution id
func (s *InMemorySnapshotStore) Save(ctx context.Context, snapshot domain.ExecutionSnapshot) error {
	if snapshot.ExecutionID == "" {
		return fmt.Errorf("snapshot has no execution id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.ExecutionID] = snapshot
	return nil
}

// Get retrieves a snapshot by execution id
func (s *InMemorySnapshotStore) Get(ctx context.Context, executionID string) (*domain.ExecutionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[executionID]
	if !ok {
		return nil, fmt.Errorf("execution not found: %s", executionID)
	}

	return &snapshot, nil
}

// List returns all stored snapshots
func (s *InMemorySnapshotStore) List(ctx context.Context) ([]*domain.ExecutionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]*domain.ExecutionSnapshot, 0, len(s.snapshots))
	for id := range s.snapshots {
		snapshot := s.snapshots[id]
		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, nil
}

// Delete removes a snapshot by execution id
func (s *InMemorySnapshotStore) Delete(ctx context.Context, executionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, executionID)
	return nil
}
