package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/middleware"
)

// OwnerHandler serves the store owner dashboard.
type OwnerHandler struct {
	Cfg     config.Config
	Ratings RatingStore
}

func NewOwnerHandler(cfg config.Config, r RatingStore) *OwnerHandler {
	return &OwnerHandler{Cfg: cfg, Ratings: r}
}

// Dashboard lists every rating of the caller's stores, grouped per store
// with the store mean. An owner without rated stores gets 404.
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthenticated("Unauthorized: no token provided")
	}
	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	stores, err := h.Ratings.OwnerDashboard(ctx, u.ID)
	if err != nil {
		return storageError(err)
	}
	if len(stores) == 0 {
		return apperror.NotFound("No ratings found for your stores")
	}
	return success(c, http.StatusOK, "Ratings for your stores retrieved", echo.Map{"data": stores})
}
