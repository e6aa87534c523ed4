package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// actorKey stores the authenticated admin's id in the request context.
const actorKey = contextKey("actor")

// WithActor returns a copy of ctx carrying the acting admin id.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromContext retrieves the authenticated admin id from the request context.
// It returns the id and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	return ActorFromCtx(c.Request.Context())
}

// ActorFromCtx retrieves the acting admin or user id stored by WithActor.
func ActorFromCtx(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey).(string)
	return actor, ok && actor != ""
}
