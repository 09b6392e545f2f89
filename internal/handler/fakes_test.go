package handler

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

type ratingKey struct{ user, store uint64 }

type storedRating struct {
	value     int
	createdAt time.Time
}

// memDB is an in-memory stand-in for the MySQL repositories. It keeps
// the same uniqueness and foreign key rules.
type memDB struct {
	mu        sync.Mutex
	users     map[uint64]model.User
	stores    map[uint64]model.Store
	ratings   map[ratingKey]storedRating
	nextUser  uint64
	nextStore uint64
	tick      time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[uint64]model.User{},
		stores:  map[uint64]model.Store{},
		ratings: map[ratingKey]storedRating{},
		tick:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) now() time.Time {
	m.tick = m.tick.Add(time.Minute)
	return m.tick
}

func (m *memDB) Create(ctx context.Context, in repository.NewUser, cost int) (model.User, error) {
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return model.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, u := range m.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	m.nextUser++
	u := model.User{ID: m.nextUser, Name: in.Name, Email: email, PasswordHash: hash, Address: in.Address, Role: in.Role, CreatedAt: m.now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memDB) GetByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memDB) GetByID(ctx context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memDB) UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

// storeRepo exposes the store Create method, which collides with the
// user Create method on memDB.
type storeRepo struct{ m *memDB }

func (s storeRepo) Create(ctx context.Context, st *model.Store) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.OwnerID != nil {
		if _, ok := m.users[*st.OwnerID]; !ok {
			return repository.ErrOwnerNotFound
		}
	}
	st.Email = strings.ToLower(strings.TrimSpace(st.Email))
	for _, existing := range m.stores {
		if existing.Email == st.Email {
			return repository.ErrStoreEmailExists
		}
	}
	m.nextStore++
	st.ID = m.nextStore
	m.stores[st.ID] = *st
	return nil
}

// mean returns the rounded mean rating of a store; callers hold m.mu.
func (m *memDB) mean(storeID uint64) *float64 {
	var sum, n int
	for k, r := range m.ratings {
		if k.store == storeID {
			sum += r.value
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := math.Round(float64(sum)/float64(n)*100) / 100
	return &v
}

func (m *memDB) sortedStores() []model.Store {
	out := make([]model.Store, 0, len(m.stores))
	for _, s := range m.stores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memDB) ListStoresForUser(ctx context.Context, userID uint64, query string) ([]model.StoreView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	out := []model.StoreView{}
	for _, s := range m.sortedStores() {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) && !strings.Contains(strings.ToLower(s.Address), q) {
			continue
		}
		v := model.StoreView{StoreID: s.ID, StoreName: s.Name, Address: s.Address, OverallRating: m.mean(s.ID)}
		if r, ok := m.ratings[ratingKey{userID, s.ID}]; ok {
			val := r.value
			v.UserRating = &val
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *memDB) Upsert(ctx context.Context, userID, storeID uint64, rating int) (model.RatingSummary, error) {
	if !model.ValidRating(rating) {
		return model.RatingSummary{}, repository.ErrInvalidRating
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[storeID]; !ok {
		return model.RatingSummary{}, repository.ErrStoreNotFound
	}
	k := ratingKey{userID, storeID}
	r, ok := m.ratings[k]
	if !ok {
		r.createdAt = m.now()
	}
	r.value = rating
	m.ratings[k] = r
	own := rating
	return model.RatingSummary{OverallRating: m.mean(storeID), UserRating: &own}, nil
}

func (m *memDB) StoreOwner(ctx context.Context, storeID uint64) (*uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[storeID]
	if !ok {
		return nil, repository.ErrStoreNotFound
	}
	return s.OwnerID, nil
}

func (m *memDB) OwnerDashboard(ctx context.Context, ownerID uint64) ([]model.StoreRatingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.StoreRatingDetail{}
	for _, s := range m.sortedStores() {
		if s.OwnerID == nil || *s.OwnerID != ownerID {
			continue
		}
		d := model.StoreRatingDetail{StoreID: s.ID, StoreName: s.Name, OverallRating: m.mean(s.ID)}
		for k, r := range m.ratings {
			if k.store != s.ID {
				continue
			}
			u := m.users[k.user]
			d.Ratings = append(d.Ratings, model.RatingEntry{UserID: u.ID, UserName: u.Name, UserEmail: u.Email, Rating: r.value, CreatedAt: r.createdAt})
		}
		if len(d.Ratings) == 0 {
			continue
		}
		sort.Slice(d.Ratings, func(i, j int) bool { return d.Ratings[i].CreatedAt.After(d.Ratings[j].CreatedAt) })
		out = append(out, d)
	}
	return out, nil
}

func (m *memDB) AdminSummary(ctx context.Context, f model.AdminFilter) (model.AdminSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := model.AdminSummary{
		Stats: model.PlatformStats{
			TotalUsers:   int64(len(m.users)),
			TotalStores:  int64(len(m.stores)),
			TotalRatings: int64(len(m.ratings)),
		},
		StoreList:        []model.StoreListing{},
		UserList:         []model.UserListing{},
		DetailedUserList: []model.DetailedUser{},
	}
	for _, s := range m.sortedStores() {
		out.StoreList = append(out.StoreList, model.StoreListing{Store: s, OverallRating: m.mean(s.ID)})
	}
	ids := make([]uint64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := m.users[id]
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		row := model.UserListing{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role}
		if u.Role != model.RoleStoreOwner {
			out.UserList = append(out.UserList, row)
		}
		d := model.DetailedUser{UserListing: row}
		if u.Role == model.RoleStoreOwner {
			var sum, n int
			for k, r := range m.ratings {
				if s, ok := m.stores[k.store]; ok && s.OwnerID != nil && *s.OwnerID == u.ID {
					sum += r.value
					n++
				}
			}
			if n > 0 {
				v := math.Round(float64(sum)/float64(n)*100) / 100
				d.Rating = &v
			}
		}
		out.DetailedUserList = append(out.DetailedUserList, d)
	}
	return out, nil
}

type recordedEvent struct {
	queue string
	event interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{queue, event})
	return nil
}

func (p *recordingPublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }
