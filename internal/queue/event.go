// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// Queue names. Each event type has its own durable queue on the default
// exchange.
const (
	RatingSubmittedQueue = "rating.submitted"
	StoreCreatedQueue    = "store.created"
)

// RatingSubmittedEvent is published after a rating has been stored. It
// carries the recomputed mean so consumers can notify the store owner
// without querying the primary database.
type RatingSubmittedEvent struct {
	StoreID       uint64   `json:"store_id"`
	OwnerID       *uint64  `json:"owner_id"`
	UserID        uint64   `json:"user_id"`
	Rating        int      `json:"rating"`
	OverallRating *float64 `json:"overall_rating"`
	SubmittedAt   string   `json:"submitted_at"`
}

// StoreCreatedEvent is published when an administrator registers a store.
type StoreCreatedEvent struct {
	StoreID   uint64  `json:"store_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	OwnerID   *uint64 `json:"owner_id"`
	CreatedAt string  `json:"created_at"`
}
