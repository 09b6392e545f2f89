package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/metrics"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

// StoreHandler serves the store list and rating submission for users
// with the "user" role.
type StoreHandler struct {
	Cfg     config.Config
	Ratings RatingStore
	Events  queue.Publisher
	Log     logrus.FieldLogger
}

func NewStoreHandler(cfg config.Config, r RatingStore, ev queue.Publisher, log logrus.FieldLogger) *StoreHandler {
	return &StoreHandler{Cfg: cfg, Ratings: r, Events: ev, Log: log}
}

type rateReq struct {
	Rating *int `json:"rating" validate:"required"`
}

// ListStores returns every store with its mean rating and the caller's
// own rating. ?q= narrows the list by name or address.
func (h *StoreHandler) ListStores(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthenticated("Unauthorized: no token provided")
	}
	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	views, err := h.Ratings.ListStoresForUser(ctx, u.ID, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return storageError(err)
	}
	return success(c, http.StatusOK, "All stores retrieved", echo.Map{"data": views})
}

// RateStore creates or replaces the caller's rating of a store and
// returns the recomputed mean.
func (h *StoreHandler) RateStore(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperror.Unauthenticated("Unauthorized: no token provided")
	}
	storeID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req rateReq
	if err := bind(c, &req); err != nil {
		return apperror.Validation("Rating must be between 1 and 5")
	}
	if !model.ValidRating(*req.Rating) {
		return apperror.Validation("Rating must be between 1 and 5")
	}

	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	sum, err := h.Ratings.Upsert(ctx, u.ID, storeID, *req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidRating):
			return apperror.Validation("Rating must be between 1 and 5")
		case errors.Is(err, repository.ErrStoreNotFound):
			return apperror.NotFound("Store not found")
		}
		return storageError(err)
	}
	metrics.RatingSubmitted()
	h.publishRating(ctx, u.ID, storeID, *req.Rating, sum)

	return success(c, http.StatusOK, "Rating submitted successfully", echo.Map{"data": sum})
}

// publishRating announces the rating to the store owner. Failures are
// logged only; the rating is already committed.
func (h *StoreHandler) publishRating(ctx context.Context, userID, storeID uint64, rating int, sum model.RatingSummary) {
	if h.Events == nil {
		return
	}
	owner, err := h.Ratings.StoreOwner(ctx, storeID)
	if err != nil {
		h.Log.WithError(err).WithField("store_id", storeID).Warn("rating event: owner lookup failed")
		return
	}
	ev := queue.RatingSubmittedEvent{
		StoreID:       storeID,
		OwnerID:       owner,
		UserID:        userID,
		Rating:        rating,
		OverallRating: sum.OverallRating,
		SubmittedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.Publish(ctx, h.ratingQueue(), ev); err != nil {
		h.Log.WithError(err).WithField("store_id", storeID).Warn("rating event not published")
	}
}

func (h *StoreHandler) ratingQueue() string {
	if h.Cfg.RatingQueue != "" {
		return h.Cfg.RatingQueue
	}
	return queue.RatingSubmittedQueue
}
