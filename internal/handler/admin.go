package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

// AdminHandler serves store and user creation and the admin dashboard.
type AdminHandler struct {
	Cfg       config.Config
	Users     UserStore
	Stores    StoreCreator
	Dashboard DashboardStore
	Events    queue.Publisher
	Log       logrus.FieldLogger
}

type createStoreReq struct {
	Name    string  `json:"name" validate:"required,min=2,max=60"`
	Email   string  `json:"email" validate:"required,email,max=254"`
	Address string  `json:"address" validate:"required,min=5,max=400"`
	OwnerID *uint64 `json:"owner_id" validate:"required"`
}

func (r *createStoreReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
}

type createUserReq struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,strongpwd"`
	Address  string `json:"address" validate:"required,min=5,max=400"`
	Role     string `json:"role" validate:"required,role"`
}

func (r *createUserReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// CreateStore registers a store for an existing owner.
func (h *AdminHandler) CreateStore(c echo.Context) error {
	var req createStoreReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if *req.OwnerID == 0 {
		return apperror.Validation("Owner not found")
	}

	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	s := &model.Store{Name: req.Name, Email: req.Email, Address: req.Address, OwnerID: req.OwnerID}
	if err := h.Stores.Create(ctx, s); err != nil {
		switch {
		case errors.Is(err, repository.ErrOwnerNotFound):
			return apperror.Validation("Owner not found")
		case errors.Is(err, repository.ErrStoreEmailExists):
			return apperror.Conflict("Email Already Used")
		}
		return storageError(err)
	}

	if h.Events != nil {
		ev := queue.StoreCreatedEvent{
			StoreID:   s.ID,
			Name:      s.Name,
			Email:     s.Email,
			OwnerID:   s.OwnerID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.Publish(ctx, queue.StoreCreatedQueue, ev); err != nil {
			h.Log.WithError(err).WithField("store_id", s.ID).Warn("store event not published")
		}
	}
	return success(c, http.StatusCreated, "Store created successfully", echo.Map{"store_id": s.ID, "store": s})
}

// CreateUser adds a user with any role, administrators included.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	role, _ := model.ParseRole(req.Role)

	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, repository.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     role,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Conflict("User already exists")
		}
		return storageError(err)
	}
	return success(c, http.StatusCreated, "User Created Successfully", echo.Map{"user": u.Public()})
}

// GetDashboard returns platform totals and the store and user lists.
// The name, email, address and role query parameters filter the lists.
func (h *AdminHandler) GetDashboard(c echo.Context) error {
	f := model.AdminFilter{
		Name:    c.QueryParam("name"),
		Email:   c.QueryParam("email"),
		Address: c.QueryParam("address"),
		Role:    c.QueryParam("role"),
	}
	ctx, cancel := dbContext(c, h.Cfg.DBTimeout)
	defer cancel()

	sum, err := h.Dashboard.AdminSummary(ctx, f)
	if err != nil {
		return storageError(err)
	}
	return success(c, http.StatusOK, "Dashboard retrieved", echo.Map{
		"stats":              sum.Stats,
		"store_list":         sum.StoreList,
		"user_list":          sum.UserList,
		"detailed_user_list": sum.DetailedUserList,
	})
}
