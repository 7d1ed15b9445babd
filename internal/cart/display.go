package cart

import (
	"sync"
	"time"
)

// NotificationTTL is how long a transient notification stays visible.
const NotificationTTL = 3 * time.Second

// Display receives one-way updates after cart mutations.
type Display interface {
	UpdateBadge(count int, visible bool)
	Notify(message string, ttl time.Duration)
}

type NopDisplay struct{}

func (NopDisplay) UpdateBadge(int, bool) {}

func (NopDisplay) Notify(string, time.Duration) {}

type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

type Notification struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Feed keeps the current badge and the notifications that have not expired
// yet, so an API client can poll what a page would show.
type Feed struct {
	mu    sync.Mutex
	badge Badge
	notes []Notification
	now   func() time.Time
}

func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

func (f *Feed) UpdateBadge(count int, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badge = Badge{Count: count, Visible: visible}
}

func (f *Feed) Notify(message string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prune()
	f.notes = append(f.notes, Notification{Message: message, ExpiresAt: f.now().Add(ttl)})
}

func (f *Feed) Badge() Badge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.badge
}

// Active returns the notifications that are still visible, oldest first.
func (f *Feed) Active() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prune()
	out := make([]Notification, len(f.notes))
	copy(out, f.notes)
	return out
}

func (f *Feed) prune() {
	now := f.now()
	kept := f.notes[:0]
	for _, n := range f.notes {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	f.notes = kept
}
