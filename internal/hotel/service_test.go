package hotel

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/validation"
)

type memoryRepository struct {
	mu          sync.Mutex
	hotels      map[string]*Hotel
	seq         int
	deactivated []string
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{hotels: map[string]*Hotel{}}
}

func (m *memoryRepository) Create(_ context.Context, h *Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	h.ID = "hotel-" + strconv.Itoa(m.seq)
	h.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := *h
	m.hotels[h.ID] = &cp
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memoryRepository) List(_ context.Context, f Filter) ([]*Hotel, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Hotel
	for _, h := range m.hotels {
		if !h.IsActive {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(h.Location), strings.ToLower(f.Location)) {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Star > 0 && h.StarRating != f.Star {
			continue
		}
		cp := *h
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := min(f.Offset(), len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], len(all), nil
}

func (m *memoryRepository) Update(_ context.Context, h *Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[h.ID]; !ok {
		return ErrNotFound
	}
	cp := *h
	m.hotels[h.ID] = &cp
	return nil
}

func (m *memoryRepository) ExistsByNameAndLocation(_ context.Context, name, location, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.hotels {
		if h.Name == name && h.Location == location && h.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return ErrNotFound
	}
	h.IsActive = false
	m.deactivated = append(m.deactivated, id)
	return nil
}

func newTestService() (Service, *memoryRepository) {
	repo := newMemoryRepository()
	return NewService(repo, validation.New(), logger.Discard()), repo
}

func validRequest() CreateRequest {
	return CreateRequest{
		Name:        "Grand Palace Hotel",
		Description: "Luxury hotel in the heart of the city",
		Location:    "New Delhi",
		StarRating:  5,
		Amenities:   []string{"WiFi", "Pool"},
		Address:     "123 Main Street, New Delhi",
		Phone:       "+91-11-12345678",
		Email:       "Info@GrandPalace.com",
		CreatedBy:   "admin-1",
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	h, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, h.IsActive)
	assert.Equal(t, "info@grandpalace.com", h.Email)

	_, err = svc.Create(ctx, validRequest())
	assert.ErrorIs(t, err, ErrDuplicateName)

	other := validRequest()
	other.Location = "Mumbai"
	_, err = svc.Create(ctx, other)
	assert.NoError(t, err, "same name in another location is allowed")
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	req := validRequest()
	req.StarRating = 6
	req.Phone = "call reception"
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	second := validRequest()
	second.Name = "Budget Inn"
	h2, err := svc.Create(ctx, second)
	require.NoError(t, err)

	stars := 3
	updated, err := svc.Update(ctx, first.ID, UpdateRequest{StarRating: &stars})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.StarRating)

	taken := "Grand Palace Hotel"
	_, err = svc.Update(ctx, h2.ID, UpdateRequest{Name: &taken})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Update(ctx, "missing", UpdateRequest{StarRating: &stars})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteHidesHotel(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	h, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, h.ID))
	assert.Equal(t, []string{h.ID}, repo.deactivated)

	_, err = svc.GetActive(ctx, h.ID)
	assert.ErrorIs(t, err, ErrInactive)

	raw, err := svc.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, raw.IsActive)

	hotels, total, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, hotels)
	assert.Zero(t, total)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := range 12 {
		req := validRequest()
		req.Name = "Hotel " + strconv.Itoa(i)
		if i%2 == 0 {
			req.Location = "Goa"
		}
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	hotels, total, err := svc.List(ctx, Filter{Location: "goa", Params: pagination.Params{Page: 2, Limit: 4}})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, hotels, 2)
}
