package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/apperror"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

type fakeUsers map[uint64]model.User

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type slowUsers struct{}

func (slowUsers) GetByID(ctx context.Context, _ uint64) (model.User, error) {
	<-ctx.Done()
	return model.User{}, ctx.Err()
}

func newResolver(t *testing.T) (SessionResolver, *utils.TokenService) {
	t.Helper()
	tokens, err := utils.NewTokenService("test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	users := fakeUsers{
		1: {ID: 1, Name: "Ada Admin", Email: "admin@example.com", PasswordHash: "hash", Role: model.RoleAdmin},
		2: {ID: 2, Name: "Uma User", Email: "user@example.com", PasswordHash: "hash", Role: model.RoleUser},
		3: {ID: 3, Name: "Oscar Owner", Email: "owner@example.com", PasswordHash: "hash", Role: model.RoleStoreOwner},
	}
	return SessionResolver{Tokens: tokens, Users: users}, tokens
}

func issue(t *testing.T, tokens *utils.TokenService, id uint64) string {
	t.Helper()
	tok, err := tokens.Issue(id, "", "")
	require.NoError(t, err)
	return tok.Token
}

func TestResolve_RoleMatrix(t *testing.T) {
	r, tokens := newResolver(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		id      uint64
		allowed model.RoleSet
		want    apperror.Kind
		ok      bool
	}{
		{"admin on admin route", 1, model.Roles(model.RoleAdmin), 0, true},
		{"user on admin route", 2, model.Roles(model.RoleAdmin), apperror.KindForbidden, false},
		{"owner on user route", 3, model.Roles(model.RoleUser), apperror.KindForbidden, false},
		{"owner on owner route", 3, model.Roles(model.RoleStoreOwner), 0, true},
		{"any role on open route", 2, model.Roles(), 0, true},
		{"deleted user", 42, model.Roles(), apperror.KindNotFound, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := r.Resolve(ctx, issue(t, tokens, tc.id), tc.allowed)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.id, u.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.want, apperror.KindOf(err))
		})
	}
}

func TestResolve_TokenFailures(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "", nil)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	_, err = r.Resolve(ctx, "garbage", nil)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	other, err := utils.NewTokenService("another-secret", time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue(1, "", "")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, forged.Token, model.Roles(model.RoleAdmin))
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestResolve_ExpiredToken(t *testing.T) {
	r, _ := newResolver(t)
	// A token issued eight days ago with a seven day lifetime.
	past, err := utils.NewTokenService("test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	past.SetClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
	old, err := past.Issue(2, "", "")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), old.Token, nil)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.ErrorIs(t, err, utils.ErrTokenExpired)
}

func TestResolve_DatabaseTimeout(t *testing.T) {
	r, tokens := newResolver(t)
	r.Users = slowUsers{}
	r.DBTimeout = 20 * time.Millisecond

	_, err := r.Resolve(context.Background(), issue(t, tokens, 2), nil)
	assert.Equal(t, apperror.KindUnavailable, apperror.KindOf(err))
}

func TestRequireRole(t *testing.T) {
	u := model.PublicUser{ID: 2, Role: model.RoleUser}
	assert.NoError(t, RequireRole(u, nil))
	assert.NoError(t, RequireRole(u, model.Roles(model.RoleUser, model.RoleAdmin)))
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(RequireRole(u, model.Roles(model.RoleAdmin))))
}

func TestSession_Middleware(t *testing.T) {
	r, tokens := newResolver(t)
	e := echo.New()
	mw := Session(r, "jwt", model.RoleUser)
	var seen model.PublicUser
	h := mw(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		seen = u
		return c.NoContent(http.StatusOK)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/stores", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: issue(t, tokens, 2)})
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, uint64(2), seen.ID)
		assert.Equal(t, "user@example.com", seen.Email)
	})

	t.Run("bearer fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/stores", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, tokens, 2))
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
	})

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/stores", nil)
		rec := httptest.NewRecorder()
		err := h(e.NewContext(req, rec))
		assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	})

	t.Run("wrong role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/stores", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: issue(t, tokens, 3)})
		rec := httptest.NewRecorder()
		err := h(e.NewContext(req, rec))
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	})
}

func TestCurrentUser_Guest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
	assert.Equal(t, "guest", userID(c))
}
