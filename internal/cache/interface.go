package cache

import (
	"context"

	"github.com/google/uuid"
)

// LikeCounter caches derived like counts so template reads don't recount on
// every request. A miss is not an error; callers fall back to the database.
type LikeCounter interface {
	GetLikeCount(ctx context.Context, templateID uuid.UUID) (int64, bool, error)
	SetLikeCount(ctx context.Context, templateID uuid.UUID, count int64) error
	InvalidateLikeCount(ctx context.Context, templateID uuid.UUID) error

	Close() error
}
