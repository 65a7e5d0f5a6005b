package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/ctxkeys"
	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/VSD-Devs/sandalwood-memories/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

type subscriptionResponse struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// Get returns the caller's subscription. Users with no row are on the free
// plan, which is what a missing subscription means everywhere else too.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	subscription, err := h.subscriptionService.Subscription(userID)
	if err != nil {
		if err == repository.ErrSubscriptionNotFound {
			respondJSON(w, http.StatusOK, subscriptionResponse{
				Plan:   string(model.PlanFree),
				Status: model.SubscriptionStatusActive,
			})
			return
		}
		slog.Error("failed to load subscription", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	respondJSON(w, http.StatusOK, subscriptionResponse{
		Plan:             string(subscription.Plan()),
		Status:           subscription.Status,
		CurrentPeriodEnd: subscription.CurrentPeriodEnd,
	})
}

// Cancel marks the subscription cancelled; the next quota check treats the
// user as free-tier.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.subscriptionService.Cancel(userID)
	if err != nil {
		if err == repository.ErrSubscriptionNotFound {
			respondError(w, http.StatusNotFound, "no subscription to cancel")
			return
		}
		slog.Error("failed to cancel subscription", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to cancel subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
