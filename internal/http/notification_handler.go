package http

import (
	"net/http"

	"github.com/fjod/omnex-storefront/internal/cart"
)

type NotificationFeed interface {
	Badge() cart.Badge
	Active() []cart.Notification
}

type NotificationHandler struct {
	feed NotificationFeed
}

func NewNotificationHandler(feed NotificationFeed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

type NotificationsResponseDTO struct {
	Badge         cart.Badge          `json:"badge"`
	Notifications []cart.Notification `json:"notifications"`
}

// GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, NotificationsResponseDTO{
		Badge:         h.feed.Badge(),
		Notifications: h.feed.Active(),
	})
}
