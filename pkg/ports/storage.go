package ports

import (
	"context"

	"github.com/tradedesk/deskd/internal/domain"
)

// SnapshotStore persists execution snapshots keyed by execution id
type SnapshotStore interface {
	Save(ctx context.Context, snapshot domain.ExecutionSnapshot) error
	Get(ctx context.Context, executionID string) (*domain.ExecutionSnapshot, error)
	List(ctx context.Context) ([]*domain.ExecutionSnapshot, error)
	Delete(ctx context.Context, executionID string) error
}
