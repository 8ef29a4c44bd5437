// Package ctxdata carries the acting user's identity on the context, the way
// the surrounding application's auth layer hands it to the core.
package ctxdata

import (
	"context"

	"github.com/google/uuid"
)

type userIDKey struct{}

var userIDKeyInstance = userIDKey{}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKeyInstance, userID)
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(userIDKeyInstance)
	userID, ok := v.(uuid.UUID)
	return userID, ok
}
