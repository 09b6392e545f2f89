package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/store-rating/internal/model"
)

// DashboardRepo answers the admin dashboard queries.
type DashboardRepo struct{ db *sqlx.DB }

func NewDashboardRepo(db *sqlx.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// AdminSummary gathers platform totals, the store list with per-store
// means, the user list (roles user and admin) and the detailed user list
// (all roles, with a rating for store owners). All four reads run inside
// one read-only transaction so they observe the same snapshot.
func (r *DashboardRepo) AdminSummary(ctx context.Context, f model.AdminFilter) (model.AdminSummary, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return model.AdminSummary{}, err
	}
	defer func() { _ = tx.Rollback() }()

	out := model.AdminSummary{
		StoreList:        []model.StoreListing{},
		UserList:         []model.UserListing{},
		DetailedUserList: []model.DetailedUser{},
	}

	if err := tx.GetContext(ctx, &out.Stats, `SELECT
       (SELECT COUNT(*) FROM users) AS total_users,
       (SELECT COUNT(*) FROM stores) AS total_stores,
       (SELECT COUNT(*) FROM ratings) AS total_ratings`); err != nil {
		return model.AdminSummary{}, err
	}

	var sf likeFilter
	sf.add("s.name", f.Name)
	sf.add("s.email", f.Email)
	sf.add("s.address", f.Address)
	storeQ := `SELECT s.id, s.name, s.email, s.address, s.owner_id,
       ROUND(AVG(r.rating), 2) AS overall_rating
FROM stores s
LEFT JOIN ratings r ON r.store_id = s.id` + sf.clause("WHERE") + `
GROUP BY s.id, s.name, s.email, s.address, s.owner_id
ORDER BY s.id`
	if err := tx.SelectContext(ctx, &out.StoreList, storeQ, sf.args...); err != nil {
		return model.AdminSummary{}, err
	}

	var uf likeFilter
	uf.add("u.name", f.Name)
	uf.add("u.email", f.Email)
	uf.add("u.address", f.Address)
	uf.add("u.role", f.Role)

	userQ := `SELECT u.id, u.name, u.email, u.address, u.role
FROM users u
WHERE u.role IN (?, ?)` + uf.clause("AND") + `
ORDER BY u.id`
	userArgs := append([]interface{}{model.RoleUser, model.RoleAdmin}, uf.args...)
	if err := tx.SelectContext(ctx, &out.UserList, userQ, userArgs...); err != nil {
		return model.AdminSummary{}, err
	}

	detailedQ := `SELECT u.id, u.name, u.email, u.address, u.role,
       CASE WHEN u.role = ? THEN ROUND(AVG(r.rating), 2) END AS rating
FROM users u
LEFT JOIN stores s ON s.owner_id = u.id
LEFT JOIN ratings r ON r.store_id = s.id` + uf.clause("WHERE") + `
GROUP BY u.id, u.name, u.email, u.address, u.role
ORDER BY u.id`
	detailedArgs := append([]interface{}{model.RoleStoreOwner}, uf.args...)
	if err := tx.SelectContext(ctx, &out.DetailedUserList, detailedQ, detailedArgs...); err != nil {
		return model.AdminSummary{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.AdminSummary{}, err
	}
	return out, nil
}
