package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

// The handlers depend on these narrow views of the repositories so that
// tests can substitute in-memory fakes.

// UserStore is implemented by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, in repository.NewUser, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error
}

// TokenIssuer is implemented by *utils.TokenService.
type TokenIssuer interface {
	Issue(userID uint64, email, role string) (utils.SessionToken, error)
}

// RatingStore is implemented by *repository.RatingRepo.
type RatingStore interface {
	ListStoresForUser(ctx context.Context, userID uint64, query string) ([]model.StoreView, error)
	Upsert(ctx context.Context, userID, storeID uint64, rating int) (model.RatingSummary, error)
	StoreOwner(ctx context.Context, storeID uint64) (*uint64, error)
	OwnerDashboard(ctx context.Context, ownerID uint64) ([]model.StoreRatingDetail, error)
}

// StoreCreator is implemented by *repository.StoreRepo.
type StoreCreator interface {
	Create(ctx context.Context, s *model.Store) error
}

// DashboardStore is implemented by *repository.DashboardRepo.
type DashboardStore interface {
	AdminSummary(ctx context.Context, f model.AdminFilter) (model.AdminSummary, error)
}

const defaultDBTimeout = 5 * time.Second

// dbContext bounds a data-access call by d, or by five seconds when d is
// not set.
func dbContext(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultDBTimeout
	}
	return context.WithTimeout(c.Request().Context(), d)
}
