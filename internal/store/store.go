package store

import (
	"context"

	"github.com/moonlitlabs/oneiro/internal/types"
)

// Store defines the persistence gateway contract for dream records.
// Records are partitioned by user id; no operation crosses users.
type Store interface {
	ListDreams(ctx context.Context, userID string) ([]types.Dream, error)
	GetDream(ctx context.Context, userID, dreamID string) (*types.Dream, error)
	AddDream(ctx context.Context, userID string, dream types.NewDream) (string, error)
	UpdateDreamImage(ctx context.Context, userID, dreamID, imageURL string) error
	DeleteDream(ctx context.Context, userID, dreamID string) error
	CountDreams(ctx context.Context) (int64, error)
	ExportAll(ctx context.Context) ([]types.Dream, error)
	Close() error
}
