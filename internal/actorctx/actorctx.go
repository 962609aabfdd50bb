package actorctx

import "context"

type key struct{}

// WithUserID records the authenticated user on a request context so code
// below the HTTP layer, logging included, can see who is acting.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, key{}, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(key{}).(int64)

	return v, ok && v > 0
}
