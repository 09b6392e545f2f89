package model

import "time"

// User represents a row of the `users` table. The password hash never
// leaves the repository and handler layers; responses use PublicUser.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hashed password.
//	Address      – postal address.
//	Role         – user, admin or store_owner.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Address      string    `db:"address"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// PublicUser is the user shape exposed over HTTP and attached to the
// request context once a session has been resolved.
type PublicUser struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Role    Role   `json:"role"`
}

// Public strips the password hash from u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
		Role:    u.Role,
	}
}
