package ctxkeys

import (
	"context"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserIDKey       contextKey = "user_id"
	SubscriptionKey contextKey = "subscription"
)

// UserID returns the authenticated caller, or "" when the request is
// anonymous.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func Subscription(ctx context.Context) *model.Subscription {
	subscription, _ := ctx.Value(SubscriptionKey).(*model.Subscription)
	return subscription
}

func WithSubscription(ctx context.Context, subscription *model.Subscription) context.Context {
	return context.WithValue(ctx, SubscriptionKey, subscription)
}
