package model

// Store mirrors the `stores` table. OwnerID is nil when the owning user
// has been deleted (ON DELETE SET NULL).
type Store struct {
	ID      uint64  `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Email   string  `db:"email" json:"email"`
	Address string  `db:"address" json:"address"`
	OwnerID *uint64 `db:"owner_id" json:"owner_id"`
}

// StoreView is one row of the user-facing store list. OverallRating is
// nil for a store nobody has rated yet; UserRating is nil when the
// requesting user has not rated the store.
type StoreView struct {
	StoreID       uint64   `db:"store_id" json:"store_id"`
	StoreName     string   `db:"store_name" json:"store_name"`
	Address       string   `db:"address" json:"address"`
	OverallRating *float64 `db:"overall_rating" json:"overall_rating"`
	UserRating    *int     `db:"user_rating" json:"user_rating"`
}

// StoreListing is a store as shown on the admin dashboard, with its own
// aggregate rating.
type StoreListing struct {
	Store
	OverallRating *float64 `db:"overall_rating" json:"overall_rating"`
}
