package actorctx

import (
	"context"
	"testing"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)

	id, ok := UserIDFrom(ctx)
	if !ok || id != 42 {
		t.Fatalf("got (%d, %v)", id, ok)
	}

	if _, ok := UserIDFrom(context.Background()); ok {
		t.Fatalf("expected no user on empty context")
	}
}
