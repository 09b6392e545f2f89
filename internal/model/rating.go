package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether v is an allowed rating value.
func ValidRating(v int) bool { return v >= MinRating && v <= MaxRating }

// Rating mirrors the `ratings` table. CreatedAt records the first
// submission; overwriting a rating keeps it.
type Rating struct {
	ID        uint64    `db:"id"`
	UserID    uint64    `db:"user_id"`
	StoreID   uint64    `db:"store_id"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// RatingSummary is returned after a rating submission: the recomputed
// store mean and the caller's current rating.
type RatingSummary struct {
	OverallRating *float64 `db:"overall_rating" json:"overall_rating"`
	UserRating    *int     `db:"user_rating" json:"user_rating"`
}

// RatingEntry is a single rating as seen by a store owner.
type RatingEntry struct {
	UserID    uint64    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreRatingDetail groups the ratings of one owned store, newest first.
type StoreRatingDetail struct {
	StoreID       uint64        `json:"store_id"`
	StoreName     string        `json:"store_name"`
	OverallRating *float64      `json:"overall_rating"`
	Ratings       []RatingEntry `json:"ratings"`
}
