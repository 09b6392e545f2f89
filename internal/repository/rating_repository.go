package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/store-rating/internal/model"
)

// RatingRepo owns the ratings table and the store views derived from it.
type RatingRepo struct{ db *sqlx.DB }

// NewRatingRepo constructs a RatingRepo with the provided DB handle.
func NewRatingRepo(db *sqlx.DB) *RatingRepo { return &RatingRepo{db: db} }

// ListStoresForUser returns every store with its overall mean rating and
// the caller's own rating. An optional query narrows the list to stores
// whose name or address contains it (case-insensitive under the table
// collation). Stores are ordered by id.
func (r *RatingRepo) ListStoresForUser(ctx context.Context, userID uint64, query string) ([]model.StoreView, error) {
	where := ""
	args := []interface{}{userID}
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = " WHERE (s.name LIKE ? OR s.address LIKE ?)"
		args = append(args, pattern, pattern)
	}
	q := `SELECT s.id AS store_id, s.name AS store_name, s.address,
       ROUND(AVG(r.rating), 2) AS overall_rating,
       (SELECT ur.rating FROM ratings ur WHERE ur.user_id = ? AND ur.store_id = s.id) AS user_rating
FROM stores s
LEFT JOIN ratings r ON r.store_id = s.id` + where + `
GROUP BY s.id, s.name, s.address
ORDER BY s.id`
	out := []model.StoreView{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert records the user's rating for a store, replacing any earlier
// one, and returns the store's recomputed mean together with the stored
// value. The write and the read-back run in one transaction so the
// summary always reflects this write. The unique (user_id, store_id)
// key guarantees at most one row per pair even under concurrent
// submissions.
func (r *RatingRepo) Upsert(ctx context.Context, userID, storeID uint64, rating int) (model.RatingSummary, error) {
	if !model.ValidRating(rating) {
		return model.RatingSummary{}, ErrInvalidRating
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.RatingSummary{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ratings (user_id, store_id, rating) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE rating = VALUES(rating)`,
		userID, storeID, rating); err != nil {
		if isForeignKeyViolation(err) {
			return model.RatingSummary{}, ErrStoreNotFound
		}
		return model.RatingSummary{}, err
	}

	var sum model.RatingSummary
	if err := tx.GetContext(ctx, &sum,
		`SELECT ROUND(AVG(r.rating), 2) AS overall_rating,
       (SELECT ur.rating FROM ratings ur WHERE ur.user_id = ? AND ur.store_id = ?) AS user_rating
FROM ratings r
WHERE r.store_id = ?`,
		userID, storeID, storeID); err != nil {
		return model.RatingSummary{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RatingSummary{}, err
	}
	committed = true
	return sum, nil
}

// StoreOwner returns the owner id of a store, or nil when the store has
// none. Used to address rating notifications.
func (r *RatingRepo) StoreOwner(ctx context.Context, storeID uint64) (*uint64, error) {
	var owner sql.NullInt64
	err := r.db.GetContext(ctx, &owner, "SELECT owner_id FROM stores WHERE id = ?", storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStoreNotFound
	}
	if err != nil || !owner.Valid {
		return nil, err
	}
	id := uint64(owner.Int64)
	return &id, nil
}

type ownerRatingRow struct {
	StoreID       uint64    `db:"store_id"`
	StoreName     string    `db:"store_name"`
	OverallRating *float64  `db:"overall_rating"`
	UserID        uint64    `db:"user_id"`
	UserName      string    `db:"user_name"`
	UserEmail     string    `db:"user_email"`
	Rating        int       `db:"rating"`
	CreatedAt     time.Time `db:"created_at"`
}

// OwnerDashboard returns, for each store owned by ownerID that has at
// least one rating, the store's mean and every individual rating with
// the rater's name and email. Stores are ordered by id and ratings
// newest first. An owner without rated stores gets an empty slice.
func (r *RatingRepo) OwnerDashboard(ctx context.Context, ownerID uint64) ([]model.StoreRatingDetail, error) {
	const q = `SELECT s.id AS store_id, s.name AS store_name,
       (SELECT ROUND(AVG(a.rating), 2) FROM ratings a WHERE a.store_id = s.id) AS overall_rating,
       u.id AS user_id, u.name AS user_name, u.email AS user_email,
       r.rating, r.created_at
FROM stores s
JOIN ratings r ON r.store_id = s.id
JOIN users u ON u.id = r.user_id
WHERE s.owner_id = ?
ORDER BY s.id, r.created_at DESC, r.id DESC`
	var rows []ownerRatingRow
	if err := r.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, err
	}
	out := []model.StoreRatingDetail{}
	for _, row := range rows {
		if n := len(out); n == 0 || out[n-1].StoreID != row.StoreID {
			out = append(out, model.StoreRatingDetail{
				StoreID:       row.StoreID,
				StoreName:     row.StoreName,
				OverallRating: row.OverallRating,
				Ratings:       []model.RatingEntry{},
			})
		}
		last := &out[len(out)-1]
		last.Ratings = append(last.Ratings, model.RatingEntry{
			UserID:    row.UserID,
			UserName:  row.UserName,
			UserEmail: row.UserEmail,
			Rating:    row.Rating,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
