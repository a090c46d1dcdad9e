package booking

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/event"
	"github.com/nekogravitycat/hotel-booking-backend/internal/hotel"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// memoryRepository serializes WithRoomLock per room, like the row lock of the real stores.
type memoryRepository struct {
	mu       sync.Mutex
	roomMu   map[string]*sync.Mutex
	rooms    map[string]bool
	bookings map[string]*Booking
	seq      int

	collisions   int
	beforeUpdate func(id string)
}

func newMemoryRepository(roomIDs ...string) *memoryRepository {
	m := &memoryRepository{
		roomMu:   map[string]*sync.Mutex{},
		rooms:    map[string]bool{},
		bookings: map[string]*Booking{},
	}
	for _, id := range roomIDs {
		m.rooms[id] = true
	}
	return m
}

func (m *memoryRepository) WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if !m.rooms[roomID] {
		m.mu.Unlock()
		return ErrRoomNotFound
	}
	l, ok := m.roomMu[roomID]
	if !ok {
		l = &sync.Mutex{}
		m.roomMu[roomID] = l
	}
	m.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

func (m *memoryRepository) FindConfirmed(_ context.Context, roomID string, since time.Time) ([]Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Interval
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Status == StatusConfirmed && b.EndDate.After(since) {
			out = append(out, b.Interval())
		}
	}
	return out, nil
}

func (m *memoryRepository) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collisions > 0 {
		m.collisions--
		return ErrDuplicateReference
	}
	m.seq++
	b.ID = "b-" + strconv.Itoa(m.seq)
	b.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memoryRepository) UpdateStatus(_ context.Context, id string, from, to Status) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if b.Status != from {
		return ErrStatusChanged
	}
	b.Status = to
	return nil
}

func (m *memoryRepository) setStatus(id string, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[id].Status = s
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	cp.HotelName = "Seaside"
	return &cp, nil
}

func (m *memoryRepository) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Booking
	for _, b := range m.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.HotelID != "" && b.HotelID != f.HotelID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		cp := *b
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := min(f.Offset(), len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], len(all), nil
}

func (m *memoryRepository) CompleteEnded(_ context.Context, now time.Time) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if b.Status == StatusConfirmed && !b.EndDate.After(now) {
			b.Status = StatusCompleted
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepository) HasActiveBookings(_ context.Context, roomID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Status == StatusConfirmed && !b.EndDate.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

type stubRooms map[string]*room.Room

func (s stubRooms) GetByID(_ context.Context, id string) (*room.Room, error) {
	if r, ok := s[id]; ok {
		return r, nil
	}
	return nil, room.ErrNotFound
}

type stubHotels map[string]*hotel.Hotel

func (s stubHotels) GetByID(_ context.Context, id string) (*hotel.Hotel, error) {
	if h, ok := s[id]; ok {
		return h, nil
	}
	return nil, hotel.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var (
	guest = auth.Actor{ID: "u-guest", Role: auth.RoleUser}
	other = auth.Actor{ID: "u-other", Role: auth.RoleUser}
	admin = auth.Actor{ID: "u-admin", Role: auth.RoleAdmin}
)

type fixture struct {
	svc       *service
	repo      *memoryRepository
	rooms     stubRooms
	hotels    stubHotels
	publisher *recordingPublisher
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newMemoryRepository("r-101", "r-102", "r-closed", "r-withdrawn"),
		rooms: stubRooms{
			"r-101":       {ID: "r-101", HotelID: "h-1", PricePerNight: 100, MaxGuests: 2, IsAvailable: true},
			"r-102":       {ID: "r-102", HotelID: "h-1", PricePerNight: 150, MaxGuests: 4, IsAvailable: true},
			"r-closed":    {ID: "r-closed", HotelID: "h-closed", PricePerNight: 80, MaxGuests: 2, IsAvailable: true},
			"r-withdrawn": {ID: "r-withdrawn", HotelID: "h-1", PricePerNight: 80, MaxGuests: 2, IsAvailable: false},
		},
		hotels: stubHotels{
			"h-1":      {ID: "h-1", Name: "Seaside", IsActive: true},
			"h-closed": {ID: "h-closed", Name: "Old Inn", IsActive: false},
		},
		publisher: &recordingPublisher{},
		now:       time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.rooms, f.hotels, f.publisher, logger.Discard()).(*service)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) book(t *testing.T, actor auth.Actor, roomID, start, end string) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateRequest{RoomID: roomID, StartDate: start, EndDate: end, Guests: 1}, actor)
	require.NoError(t, err)
	return b
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), CreateRequest{
		RoomID:          "r-101",
		StartDate:       "2024-02-15",
		EndDate:         "2024-02-18",
		Guests:          2,
		SpecialRequests: "  late check-in ",
	}, guest)
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, 300.0, b.TotalPrice)
	assert.Equal(t, guest.ID, b.UserID)
	assert.Equal(t, "h-1", b.HotelID)
	assert.Equal(t, "late check-in", b.SpecialRequests)
	assert.Regexp(t, `^BK\d+[0-9A-F]{5}$`, b.BookingReference)
	assert.Equal(t, "Seaside", b.HotelName, "returned booking is reloaded with display fields")
	assert.Equal(t, []event.Type{event.BookingCreated}, f.publisher.types())
}

func TestCreateChecksInOrder(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{
			name:    "missing room",
			req:     CreateRequest{StartDate: "2024-02-15", EndDate: "2024-02-18", Guests: 1},
			wantErr: ErrMissingFields,
		},
		{
			name:    "zero guests",
			req:     CreateRequest{RoomID: "r-101", StartDate: "2024-02-15", EndDate: "2024-02-18"},
			wantErr: ErrMissingFields,
		},
		{
			name:    "unknown room wins over bad dates",
			req:     CreateRequest{RoomID: "r-404", StartDate: "junk", EndDate: "junk", Guests: 1},
			wantErr: ErrRoomNotFound,
		},
		{
			name:    "inactive hotel",
			req:     CreateRequest{RoomID: "r-closed", StartDate: "2024-02-15", EndDate: "2024-02-18", Guests: 1},
			wantErr: ErrRoomUnavailable,
		},
		{
			name:    "withdrawn room",
			req:     CreateRequest{RoomID: "r-withdrawn", StartDate: "2024-02-15", EndDate: "2024-02-18", Guests: 1},
			wantErr: ErrRoomUnavailable,
		},
		{
			name:    "capacity wins over bad dates",
			req:     CreateRequest{RoomID: "r-101", StartDate: "junk", EndDate: "2024-02-18", Guests: 3},
			wantErr: ErrCapacityExceeded,
		},
		{
			name:    "unparseable date",
			req:     CreateRequest{RoomID: "r-101", StartDate: "02/15/2024", EndDate: "2024-02-18", Guests: 1},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "start in the past",
			req:     CreateRequest{RoomID: "r-101", StartDate: "2024-01-20", EndDate: "2024-02-18", Guests: 1},
			wantErr: ErrStartInPast,
		},
		{
			name:    "zero length",
			req:     CreateRequest{RoomID: "r-101", StartDate: "2024-02-15", EndDate: "2024-02-15", Guests: 1},
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "end before start",
			req:     CreateRequest{RoomID: "r-101", StartDate: "2024-02-18", EndDate: "2024-02-15", Guests: 1},
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.req, guest)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.bookings)
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestCreateRequiresActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateRequest{RoomID: "r-101", StartDate: "2024-02-15", EndDate: "2024-02-18", Guests: 1}, auth.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestCreateOverlap(t *testing.T) {
	f := newFixture(t)
	f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")

	_, err := f.svc.Create(context.Background(), CreateRequest{RoomID: "r-101", StartDate: "2024-02-17", EndDate: "2024-02-19", Guests: 1}, other)
	assert.ErrorIs(t, err, ErrDateConflict)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	next := f.book(t, other, "r-101", "2024-02-18", "2024-02-20")
	assert.Equal(t, 200.0, next.TotalPrice, "back-to-back stays do not conflict")

	f.book(t, other, "r-102", "2024-02-15", "2024-02-18")
}

func TestCreateAfterCancelFreesDates(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")

	_, err := f.svc.Cancel(context.Background(), b.ID, guest)
	require.NoError(t, err)

	f.book(t, other, "r-101", "2024-02-16", "2024-02-17")
}

func TestCreateConcurrentOverlapping(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := auth.Actor{ID: "u-" + strconv.Itoa(i), Role: auth.RoleUser}
			_, err := f.svc.Create(context.Background(), CreateRequest{
				RoomID:    "r-101",
				StartDate: "2024-02-15",
				EndDate:   "2024-02-18",
				Guests:    1,
			}, actor)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrDateConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	intervals, err := f.repo.FindConfirmed(context.Background(), "r-101", f.now)
	require.NoError(t, err)
	assert.Len(t, intervals, 1)
}

func TestCreateRetriesReferenceCollision(t *testing.T) {
	f := newFixture(t)

	f.repo.collisions = 2
	b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
	assert.NotEmpty(t, b.ID)

	f.repo.collisions = maxReferenceAttempts
	_, err := f.svc.Create(context.Background(), CreateRequest{RoomID: "r-102", StartDate: "2024-02-15", EndDate: "2024-02-18", Guests: 1}, guest)
	assert.True(t, apperror.Is(err, apperror.KindStore))
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
	assert.Equal(t, StatusConfirmed, b.Status)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")

		cancelled, err := f.svc.Cancel(ctx, b.ID, guest)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
		assert.Equal(t, b.TotalPrice, cancelled.TotalPrice)
		assert.Equal(t, b.BookingReference, cancelled.BookingReference)
		assert.Equal(t, []event.Type{event.BookingCreated, event.BookingCancelled}, f.publisher.types())

		_, err = f.svc.Cancel(ctx, b.ID, guest)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("admin cancels for owner", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
		_, err := f.svc.Cancel(ctx, b.ID, admin)
		assert.NoError(t, err)
	})

	t.Run("other user forbidden", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
		_, err := f.svc.Cancel(ctx, b.ID, other)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Cancel(ctx, "b-missing", guest)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("already started", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
		f.now = time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
		_, err := f.svc.Cancel(ctx, b.ID, guest)
		assert.ErrorIs(t, err, ErrAlreadyStarted)
	})

	t.Run("completed", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
		f.repo.setStatus(b.ID, StatusCompleted)
		_, err := f.svc.Cancel(ctx, b.ID, guest)
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
		f.repo.beforeUpdate = func(id string) { f.repo.setStatus(id, StatusCancelled) }

		_, err := f.svc.Cancel(ctx, b.ID, guest)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.Equal(t, []event.Type{event.BookingCreated}, f.publisher.types())
	})
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")

	got, err := f.svc.GetByID(ctx, b.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.GetByID(ctx, b.ID, admin)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(ctx, b.ID, other)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.svc.GetByID(ctx, "b-missing", guest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 25 {
		s := start.AddDate(0, 0, 2*i)
		f.book(t, guest, "r-102", s.Format(dateLayout), s.AddDate(0, 0, 1).Format(dateLayout))
	}

	items, info, err := f.svc.List(ctx, Filter{Params: pagination.Params{Page: 2, Limit: 10}}, guest)
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, pagination.Info{Page: 2, Limit: 10, TotalCount: 25, TotalPages: 3, HasNextPage: true, HasPrevPage: true}, info)
	assert.True(t, items[0].CreatedAt.After(items[9].CreatedAt), "newest first")

	items, info, err = f.svc.List(ctx, Filter{Params: pagination.Params{Page: 3, Limit: 10}}, guest)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.False(t, info.HasNextPage)
}

func TestListScopesToActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
	f.book(t, other, "r-102", "2024-02-15", "2024-02-18")

	items, _, err := f.svc.List(ctx, Filter{UserID: other.ID}, guest)
	require.NoError(t, err)
	require.Len(t, items, 1, "non-admins only ever see their own bookings")
	assert.Equal(t, mine.ID, items[0].ID)

	items, info, err := f.svc.List(ctx, Filter{}, admin)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, info.TotalPages)

	items, _, err = f.svc.List(ctx, Filter{UserID: other.ID}, admin)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.svc.Cancel(ctx, mine.ID, guest)
	require.NoError(t, err)
	items, _, err = f.svc.List(ctx, Filter{Status: StatusCancelled}, admin)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, _, err = f.svc.List(ctx, Filter{Status: "pending"}, admin)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, _, err = f.svc.List(ctx, Filter{}, auth.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestCompleteFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ended := f.book(t, guest, "r-101", "2024-02-15", "2024-02-18")
	f.book(t, guest, "r-101", "2024-02-20", "2024-02-22")
	cancelled := f.book(t, guest, "r-102", "2024-02-10", "2024-02-12")
	_, err := f.svc.Cancel(ctx, cancelled.ID, guest)
	require.NoError(t, err)

	f.now = time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)
	n, err := f.svc.CompleteFinished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetByID(ctx, ended.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	got, err = f.svc.GetByID(ctx, cancelled.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status, "cancelled stays cancelled")

	n, err = f.svc.CompleteFinished(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	types := f.publisher.types()
	assert.Equal(t, event.BookingCompleted, types[len(types)-1])
}
