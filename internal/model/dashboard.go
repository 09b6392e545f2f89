package model

import "encoding/json"

// PlatformStats holds the admin dashboard totals.
type PlatformStats struct {
	TotalUsers   int64 `db:"total_users" json:"total_users"`
	TotalStores  int64 `db:"total_stores" json:"total_stores"`
	TotalRatings int64 `db:"total_ratings" json:"total_ratings"`
}

// UserListing is a row of the basic admin user list (roles user/admin).
type UserListing struct {
	ID      uint64 `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email"`
	Address string `db:"address" json:"address"`
	Role    Role   `db:"role" json:"role"`
}

// DetailedUser is a row of the detailed admin user list. Rating is only
// present for store owners and is nil when none of their stores has
// been rated.
type DetailedUser struct {
	UserListing
	Rating *float64 `db:"rating" json:"-"`
}

// MarshalJSON emits "rating" (possibly null) for store owners only.
func (d DetailedUser) MarshalJSON() ([]byte, error) {
	if d.Role != RoleStoreOwner {
		return json.Marshal(d.UserListing)
	}
	return json.Marshal(struct {
		UserListing
		Rating *float64 `json:"rating"`
	}{d.UserListing, d.Rating})
}

// AdminSummary is the full admin dashboard payload.
type AdminSummary struct {
	Stats            PlatformStats  `json:"stats"`
	StoreList        []StoreListing `json:"store_list"`
	UserList         []UserListing  `json:"user_list"`
	DetailedUserList []DetailedUser `json:"detailed_user_list"`
}

// AdminFilter narrows the admin dashboard lists. Empty fields match
// everything; matching is a case-insensitive substring test.
type AdminFilter struct {
	Name    string
	Email   string
	Address string
	Role    string
}
