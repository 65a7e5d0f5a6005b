package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/VSD-Devs/sandalwood-memories/internal/ctxkeys"
	"github.com/VSD-Devs/sandalwood-memories/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

// Auth validates the bearer token minted by the external identity service
// and puts the caller's user ID + subscription into the request context.
// Requests without a valid token continue anonymously; RequireAuth decides
// per-route whether that is acceptable.
func Auth(jwtSecret string, subscriptionService *service.SubscriptionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.Parse(strings.TrimPrefix(authz, "Bearer "), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)

			// Subscription context is best effort; quota checks re-resolve
			// the plan themselves and default to free.
			subscription, err := subscriptionService.Subscription(userID)
			if err == nil {
				ctx = ctxkeys.WithSubscription(ctx, subscription)
			} else {
				slog.Debug("no subscription in auth context", "error", err, "user_id", userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.UserID(r.Context()) == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
