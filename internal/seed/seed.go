// Package seed creates the demo accounts, one per role, so a fresh
// installation can be explored without going through signup.
package seed

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
)

// UserCreator is implemented by *repository.UserRepo.
type UserCreator interface {
	Create(ctx context.Context, in repository.NewUser, cost int) (model.User, error)
}

// DefaultPassword satisfies the password policy.
const DefaultPassword = "Roxiler@123"

// Accounts returns the demo users, all sharing password.
func Accounts(password string) []repository.NewUser {
	return []repository.NewUser{
		{Name: "Demo User", Email: "demo.user@example.com", Password: password, Address: "User Address", Role: model.RoleUser},
		{Name: "Demo Store Owner", Email: "demo.owner@example.com", Password: password, Address: "Store Owner Address", Role: model.RoleStoreOwner},
		{Name: "Demo Admin", Email: "demo.admin@example.com", Password: password, Address: "Admin Address", Role: model.RoleAdmin},
	}
}

// Run creates every account that does not exist yet. Existing emails are
// skipped, so running it twice is harmless. It returns how many users
// were created.
func Run(ctx context.Context, users UserCreator, accounts []repository.NewUser, cost int, log logrus.FieldLogger) (int, error) {
	created := 0
	for _, a := range accounts {
		u, err := users.Create(ctx, a, cost)
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			log.WithField("email", a.Email).Info("seed: user already exists")
			continue
		case err != nil:
			return created, err
		}
		created++
		log.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "role": u.Role}).Info("seed: user created")
	}
	return created, nil
}
